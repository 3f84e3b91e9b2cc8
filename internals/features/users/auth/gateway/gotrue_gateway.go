package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

/* ==========================
   GoTrue-style HTTP gateway
========================== */

type gotrueUser struct {
	ID uuid.UUID `json:"id"`
}

type gotrueAuthResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         gotrueUser `json:"user"`
	// beberapa versi provider menaruh user di root
	ID uuid.UUID `json:"id"`
}

type gotrueError struct {
	Message   string `json:"msg"`
	Error     string `json:"error"`
	ErrorDesc string `json:"error_description"`
}

func (e *gotrueError) text() string {
	for _, s := range []string{e.Message, e.ErrorDesc, e.Error} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// GoTrueGateway implementasi IdentityGateway di atas REST API provider
// (sign-up self-service pakai anon key, admin delete pakai service key).
type GoTrueGateway struct {
	rc         *resty.Client
	anonKey    string
	serviceKey string

	mu      sync.RWMutex
	session *Session
}

func NewGoTrueGateway(baseURL, anonKey, serviceKey string) *GoTrueGateway {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10 * time.Second).
		SetRetryCount(0) // retry diatur orchestrator, bukan transport
	return &GoTrueGateway{
		rc:         rc,
		anonKey:    anonKey,
		serviceKey: serviceKey,
	}
}

// CreateIdentity: POST /auth/v1/signup.
// Provider mengembalikan session identity BARU dan gateway mengadopsinya —
// persis side effect yang dijaga SessionContinuityGuard.
func (g *GoTrueGateway) CreateIdentity(ctx context.Context, email, credential string) (uuid.UUID, error) {
	var out gotrueAuthResponse
	var apiErr gotrueError

	resp, err := g.rc.R().
		SetContext(ctx).
		SetHeader("apikey", g.anonKey).
		SetBody(map[string]string{"email": email, "password": credential}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/auth/v1/signup")
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if resp.IsError() {
		return uuid.Nil, classifySignupError(resp.StatusCode(), apiErr.text())
	}

	identityID := out.User.ID
	if identityID == uuid.Nil {
		identityID = out.ID
	}
	if identityID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: response tanpa user id", ErrServiceUnavailable)
	}

	// adopsi session baru (perilaku provider), pemanggil yang memutuskan restore
	if out.AccessToken != "" {
		g.setSession(&Session{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken})
	}

	return identityID, nil
}

// DeleteIdentity: DELETE /auth/v1/admin/users/:id. 404 dianggap sukses (idempotent).
func (g *GoTrueGateway) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	if strings.TrimSpace(g.serviceKey) == "" {
		return fmt.Errorf("%w: service key kosong", ErrServiceUnavailable)
	}

	resp, err := g.rc.R().
		SetContext(ctx).
		SetHeader("apikey", g.serviceKey).
		SetAuthToken(g.serviceKey).
		Delete("/auth/v1/admin/users/" + id.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	switch {
	case resp.StatusCode() == 404:
		return nil
	case resp.IsError():
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode())
	}
	return nil
}

// SignInWithPassword: POST /auth/v1/token?grant_type=password.
// Dipakai auth service login operator; bukan bagian kontrak orchestrator.
func (g *GoTrueGateway) SignInWithPassword(ctx context.Context, email, password string) (*Session, uuid.UUID, error) {
	var out gotrueAuthResponse
	var apiErr gotrueError

	resp, err := g.rc.R().
		SetContext(ctx).
		SetHeader("apikey", g.anonKey).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/auth/v1/token")
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if resp.IsError() {
		if resp.StatusCode() >= 500 {
			return nil, uuid.Nil, fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode())
		}
		return nil, uuid.Nil, fmt.Errorf("sign-in ditolak: %s", apiErr.text())
	}

	identityID := out.User.ID
	if identityID == uuid.Nil {
		identityID = out.ID
	}
	sess := &Session{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}
	g.setSession(sess)
	return sess, identityID, nil
}

func (g *GoTrueGateway) CurrentSession() *Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return nil
	}
	cp := *g.session
	return &cp
}

func (g *GoTrueGateway) RestoreSession(ctx context.Context, s *Session) error {
	if s == nil {
		g.setSession(nil)
		return nil
	}
	cp := *s
	g.setSession(&cp)
	return nil
}

func (g *GoTrueGateway) setSession(s *Session) {
	g.mu.Lock()
	g.session = s
	g.mu.Unlock()
}

func classifySignupError(status int, msg string) error {
	low := strings.ToLower(msg)
	switch {
	case strings.Contains(low, "already registered") ||
		strings.Contains(low, "already been registered") ||
		strings.Contains(low, "duplicate"):
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, msg)
	case strings.Contains(low, "password"):
		return fmt.Errorf("%w: %s", ErrWeakCredential, msg)
	case status >= 500 || status == 429:
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, status)
	case status == 422 || status == 400:
		// provider kadang mengembalikan 422 untuk email duplikat tanpa pesan jelas
		log.Printf("[WARN] signup ditolak tanpa klasifikasi jelas: status=%d msg=%q", status, msg)
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, msg)
	default:
		return fmt.Errorf("%w: status %d %s", ErrServiceUnavailable, status, msg)
	}
}
