package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/schools/schools/dto"
	"schoolku_backend/internals/features/schools/schools/model"
	helper "schoolku_backend/internals/helpers"
)

type SchoolController struct {
	DB *gorm.DB
}

func NewSchoolController(db *gorm.DB) *SchoolController {
	return &SchoolController{DB: db}
}

// 📄 GET /api/o/schools — list sekolah (?active= & ?q=)
func (sc *SchoolController) GetSchools(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := sc.DB.WithContext(c.UserContext()).Model(&model.SchoolModel{})

	if v := strings.TrimSpace(c.Query("active")); v != "" {
		q = q.Where("school_is_active = ?", v == "true" || v == "1")
	}
	if kw := strings.TrimSpace(c.Query("q")); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		q = q.Where("LOWER(school_name) LIKE ? OR LOWER(school_city) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung sekolah")
	}

	var schools []model.SchoolModel
	if err := q.Order("school_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&schools).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data sekolah")
	}

	return helper.JsonList(c, "OK", dto.FromModelSchools(schools),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// 📄 GET /api/o/schools/:id
func (sc *SchoolController) GetSchoolByID(c *fiber.Ctx) error {
	schoolID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format ID sekolah tidak valid")
	}

	var school model.SchoolModel
	if err := sc.DB.WithContext(c.UserContext()).
		First(&school, "school_id = ?", schoolID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}

	return helper.JsonOK(c, "OK", dto.FromModelSchool(&school))
}

// 📄 GET /api/a/school — sekolah milik admin yang sedang login (dari claim token)
func (sc *SchoolController) GetMySchool(c *fiber.Ctx) error {
	schoolID, err := helper.GetSchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Token tidak memuat school_id")
	}

	var school model.SchoolModel
	if err := sc.DB.WithContext(c.UserContext()).
		First(&school, "school_id = ?", schoolID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}

	return helper.JsonOK(c, "OK", dto.FromModelSchool(&school))
}

// 🟢 PATCH /api/o/schools/:id — partial update
func (sc *SchoolController) UpdateSchool(c *fiber.Ctx) error {
	schoolID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format ID sekolah tidak valid")
	}

	var existing model.SchoolModel
	if err := sc.DB.WithContext(c.UserContext()).
		First(&existing, "school_id = ?", schoolID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}

	var input dto.SchoolUpdateRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format JSON tidak valid")
	}

	if input.SchoolName != nil {
		if strings.TrimSpace(*input.SchoolName) == "" {
			return helper.JsonError(c, fiber.StatusBadRequest, "Nama sekolah tidak boleh kosong")
		}
		existing.SchoolName = strings.TrimSpace(*input.SchoolName)
	}
	if input.SchoolAddress != nil {
		existing.SchoolAddress = strings.TrimSpace(*input.SchoolAddress)
	}
	if input.SchoolCity != nil {
		existing.SchoolCity = strings.TrimSpace(*input.SchoolCity)
	}
	if input.SchoolProvince != nil {
		existing.SchoolProvince = strings.TrimSpace(*input.SchoolProvince)
	}
	if input.SchoolCountry != nil && strings.TrimSpace(*input.SchoolCountry) != "" {
		existing.SchoolCountry = strings.TrimSpace(*input.SchoolCountry)
	}
	if input.SchoolPhone != nil {
		existing.SchoolPhone = strings.TrimSpace(*input.SchoolPhone)
	}
	if input.SchoolEmail != nil {
		existing.SchoolEmail = strings.TrimSpace(strings.ToLower(*input.SchoolEmail))
	}
	if input.SchoolMaxStudents != nil {
		if *input.SchoolMaxStudents <= 0 {
			return helper.JsonError(c, fiber.StatusBadRequest, "Kapasitas siswa harus lebih dari 0")
		}
		existing.SchoolMaxStudents = input.SchoolMaxStudents
	}
	if input.SchoolIsActive != nil {
		existing.SchoolIsActive = *input.SchoolIsActive
	}

	if err := sc.DB.WithContext(c.UserContext()).Save(&existing).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui sekolah")
	}

	return helper.JsonUpdated(c, "Sekolah berhasil diperbarui", dto.FromModelSchool(&existing))
}

// 🗑️ DELETE /api/o/schools/:id — soft delete.
// Sekolah yang masih direferensikan user TIDAK pernah hard delete;
// cukup nonaktifkan lalu gorm soft delete.
func (sc *SchoolController) DeactivateSchool(c *fiber.Ctx) error {
	schoolID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format ID sekolah tidak valid")
	}

	var existing model.SchoolModel
	if err := sc.DB.WithContext(c.UserContext()).
		First(&existing, "school_id = ?", schoolID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}

	if err := sc.DB.WithContext(c.UserContext()).
		Model(&existing).
		Update("school_is_active", false).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menonaktifkan sekolah")
	}
	if err := sc.DB.WithContext(c.UserContext()).Delete(&existing).Error; err != nil {
		log.Printf("[ERROR] Failed to soft delete school: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus sekolah")
	}

	log.Printf("[INFO] School deactivated: %s", schoolID)
	return helper.JsonDeleted(c, "Sekolah berhasil dinonaktifkan", fiber.Map{
		"school_id": schoolID.String(),
	})
}
