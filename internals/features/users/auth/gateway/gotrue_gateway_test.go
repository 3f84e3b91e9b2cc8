package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIdentity_AdoptsNewSession(t *testing.T) {
	identityID := uuid.New()
	var gotAPIKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/v1/signup", r.URL.Path)
		gotAPIKey = r.Header.Get("apikey")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@sekolah.sch.id", body["email"])
		assert.NotEmpty(t, body["password"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "new-user-token",
			"refresh_token": "new-user-refresh",
			"user":          map[string]string{"id": identityID.String()},
		})
	}))
	defer srv.Close()

	gw := NewGoTrueGateway(srv.URL, "anon-key", "service-key")

	id, err := gw.CreateIdentity(context.Background(), "admin@sekolah.sch.id", "S3cret!wordXYZ")
	require.NoError(t, err)
	assert.Equal(t, identityID, id)
	assert.Equal(t, "anon-key", gotAPIKey)

	// gateway mengadopsi session identity baru — side effect yang harus
	// dijaga pemanggil lewat snapshot/restore
	sess := gw.CurrentSession()
	require.NotNil(t, sess)
	assert.Equal(t, "new-user-token", sess.AccessToken)
}

func TestCreateIdentity_ErrorClassification(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		msg     string
		wantErr error
	}{
		{"email duplikat", 400, "User already registered", ErrDuplicateEmail},
		{"password lemah", 422, "Password should be at least 6 characters", ErrWeakCredential},
		{"provider down", 502, "bad gateway", ErrServiceUnavailable},
		{"rate limited", 429, "over quota", ErrServiceUnavailable},
		{"422 tanpa pesan jelas", 422, "unprocessable", ErrDuplicateEmail},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"msg": tc.msg})
			}))
			defer srv.Close()

			gw := NewGoTrueGateway(srv.URL, "anon-key", "service-key")
			_, err := gw.CreateIdentity(context.Background(), "x@y.id", "pw")
			assert.ErrorIs(t, err, tc.wantErr)
			// session tidak boleh berubah pada sign-up yang gagal
			assert.Nil(t, gw.CurrentSession())
		})
	}
}

func TestDeleteIdentity_Idempotent404(t *testing.T) {
	id := uuid.New()
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/auth/v1/admin/users/"+id.String(), r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		if calls == 1 {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound) // sudah terhapus
	}))
	defer srv.Close()

	gw := NewGoTrueGateway(srv.URL, "anon-key", "service-key")

	require.NoError(t, gw.DeleteIdentity(context.Background(), id))
	// delete kedua: 404 = sukses, bukan error
	require.NoError(t, gw.DeleteIdentity(context.Background(), id))
}

func TestDeleteIdentity_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw := NewGoTrueGateway(srv.URL, "anon-key", "service-key")
	err := gw.DeleteIdentity(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestDeleteIdentity_NoServiceKey(t *testing.T) {
	gw := NewGoTrueGateway("http://localhost:1", "anon-key", "")
	err := gw.DeleteIdentity(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestSignInWithPassword_SetsSession(t *testing.T) {
	identityID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "op-token",
			"refresh_token": "op-refresh",
			"user":          map[string]string{"id": identityID.String()},
		})
	}))
	defer srv.Close()

	gw := NewGoTrueGateway(srv.URL, "anon-key", "service-key")
	sess, id, err := gw.SignInWithPassword(context.Background(), "op@platform.id", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, identityID, id)
	assert.Equal(t, "op-token", sess.AccessToken)
	require.NotNil(t, gw.CurrentSession())
}

func TestRestoreSession_RoundTrip(t *testing.T) {
	gw := NewGoTrueGateway("http://localhost:1", "anon-key", "service-key")

	require.Nil(t, gw.CurrentSession())

	snap := &Session{AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, gw.RestoreSession(context.Background(), snap))

	got := gw.CurrentSession()
	require.NotNil(t, got)
	assert.Equal(t, "a", got.AccessToken)

	// CurrentSession mengembalikan copy, bukan pointer internal
	got.AccessToken = "mutated"
	assert.Equal(t, "a", gw.CurrentSession().AccessToken)

	// restore nil = kembali ke keadaan tanpa session
	require.NoError(t, gw.RestoreSession(context.Background(), nil))
	assert.Nil(t, gw.CurrentSession())
}
