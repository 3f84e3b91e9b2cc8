package controller

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/features/schools/school_provisioning/service"
	helper "schoolku_backend/internals/helpers"
)

func renderVia(t *testing.T, err error) (int, helper.ErrorResponse) {
	t.Helper()

	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		return renderProvisioningError(c, err)
	})

	resp, terr := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, terr)
	defer resp.Body.Close()

	var body helper.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRenderProvisioningError_ValidationFields(t *testing.T) {
	status, body := renderVia(t, &service.ValidationError{
		Fields: map[string]string{"school.school_name": "Nama sekolah wajib diisi."},
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_ERROR", body.ErrorCode)
	assert.Contains(t, body.Errors, "school.school_name")
}

func TestRenderProvisioningError_Taxonomy(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"tenant create", &service.TenantCreateError{Err: errors.New("db")}, fiber.StatusBadGateway, "TENANT_CREATE_ERROR"},
		{"ineligible", &service.IneligibleAdminError{UserID: uuid.New(), Compensated: true}, fiber.StatusConflict, "INELIGIBLE_ADMIN"},
		{"identity create", &service.IdentityCreateError{Err: errors.New("signup"), Compensated: true}, fiber.StatusBadGateway, "IDENTITY_CREATE_ERROR"},
		{"admin link", &service.AdminLinkError{Err: errors.New("update"), Compensated: true}, fiber.StatusBadGateway, "ADMIN_LINK_ERROR"},
		{"tak dikenal", errors.New("misterius"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := renderVia(t, tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantCode, body.ErrorCode)
			assert.False(t, body.Success)
		})
	}
}

func TestRenderProvisioningError_PartialExposesOrphanID(t *testing.T) {
	orphanID := uuid.New()
	status, body := renderVia(t, &service.PartialProvisioningError{
		OrphanIdentityID: orphanID,
		SchoolRemoved:    true,
		Err:              errors.New("profile insert"),
	})

	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "PARTIAL_PROVISIONING", body.ErrorCode)
	// id identity yatim harus sampai ke UI untuk tindak lanjut operator
	assert.Equal(t, orphanID.String(), body.Errors["orphan_identity_id"])
}

func TestRenderProvisioningError_LinkPendingExposesBothIDs(t *testing.T) {
	schoolID := uuid.New()
	adminID := uuid.New()
	status, body := renderVia(t, &service.LinkPendingError{
		SchoolID:    schoolID,
		AdminUserID: adminID,
		Err:         errors.New("deadlock"),
	})

	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "LINK_PENDING", body.ErrorCode)
	assert.Equal(t, schoolID.String(), body.Errors["school_id"])
	assert.Equal(t, adminID.String(), body.Errors["admin_user_id"])
}
