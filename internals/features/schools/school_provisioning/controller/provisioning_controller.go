package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"schoolku_backend/internals/features/schools/school_provisioning/dto"
	"schoolku_backend/internals/features/schools/school_provisioning/service"
	helper "schoolku_backend/internals/helpers"
)

type ProvisioningController struct {
	Service *service.ProvisioningService
}

func NewProvisioningController(svc *service.ProvisioningService) *ProvisioningController {
	return &ProvisioningController{Service: svc}
}

// 🟢 POST /api/o/schools/with-admin
// Handler submit form "buat sekolah + admin pertama".
func (pc *ProvisioningController) CreateSchoolWithAdmin(c *fiber.Ctx) error {
	var req dto.CreateSchoolWithAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format JSON tidak valid")
	}

	result, err := pc.Service.CreateSchoolWithAdmin(c.UserContext(), req)
	if err != nil {
		return renderProvisioningError(c, err)
	}

	return helper.JsonCreated(c, "Sekolah dan admin berhasil dibuat", result)
}

// 🟢 POST /api/o/schools/:id/retry-admin-link
// Mengulang step link saja untuk sekolah di state link_pending.
func (pc *ProvisioningController) RetryAdminLink(c *fiber.Ctx) error {
	schoolID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format ID sekolah tidak valid")
	}

	result, err := pc.Service.RetryAdminLink(c.UserContext(), schoolID)
	if err != nil {
		return renderProvisioningError(c, err)
	}

	return helper.JsonOK(c, "Admin berhasil di-link ke sekolah", result)
}

// renderProvisioningError memetakan taksonomi error service ke envelope JSON.
// ValidationError → pesan per field (form); sisanya → pesan toast + error_code
// supaya UI bisa membedakan mana yang aman di-resubmit.
func renderProvisioningError(c *fiber.Ctx, err error) error {
	var (
		ve *service.ValidationError
		tc *service.TenantCreateError
		ia *service.IneligibleAdminError
		ic *service.IdentityCreateError
		al *service.AdminLinkError
		pp *service.PartialProvisioningError
		lp *service.LinkPendingError
	)

	switch {
	case errors.As(err, &ve):
		return helper.JsonValidationError(c, ve.Fields)

	case errors.As(err, &tc):
		return helper.JsonErrorWithCode(c, fiber.StatusBadGateway,
			"TENANT_CREATE_ERROR", "Gagal membuat sekolah. Tidak ada data tersisa — silakan coba lagi.")

	case errors.As(err, &ia):
		return helper.JsonErrorWithCode(c, fiber.StatusConflict,
			"INELIGIBLE_ADMIN", "Kandidat sudah tidak memenuhi syarat jadi admin. Sekolah dibatalkan — pilih kandidat lain.")

	case errors.As(err, &ic):
		return helper.JsonErrorWithCode(c, fiber.StatusBadGateway,
			"IDENTITY_CREATE_ERROR", "Gagal membuat akun admin. Sekolah dibatalkan — silakan coba lagi.")

	case errors.As(err, &al):
		return helper.JsonErrorWithCode(c, fiber.StatusBadGateway,
			"ADMIN_LINK_ERROR", "Gagal mempromosikan admin. Sekolah dibatalkan — silakan coba lagi.")

	case errors.As(err, &pp):
		// residual state: UI wajib menampilkan warning non-dismissible
		log.Printf("[ERROR] provisioning meninggalkan identity yatim: %s", pp.OrphanIdentityID)
		return c.Status(fiber.StatusBadGateway).JSON(helper.ErrorResponse{
			Success:   false,
			Message:   "Provisioning gagal dan cleanup tidak tuntas. JANGAN submit ulang — butuh tindak lanjut operator.",
			ErrorCode: "PARTIAL_PROVISIONING",
			Errors: map[string]string{
				"orphan_identity_id": pp.OrphanIdentityID.String(),
			},
		})

	case errors.As(err, &lp):
		return c.Status(fiber.StatusConflict).JSON(helper.ErrorResponse{
			Success:   false,
			Message:   "Sekolah dan admin sudah dibuat tapi belum ter-link. Ulangi lewat retry-admin-link.",
			ErrorCode: "LINK_PENDING",
			Errors: map[string]string{
				"school_id":     lp.SchoolID.String(),
				"admin_user_id": lp.AdminUserID.String(),
			},
		})

	default:
		log.Printf("[ERROR] provisioning error tak terklasifikasi: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan internal")
	}
}
