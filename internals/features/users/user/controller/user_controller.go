package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/users/user/dto"
	"schoolku_backend/internals/features/users/user/model"
	helper "schoolku_backend/internals/helpers"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// 📄 GET /api/o/users — list user (filter ?role= & ?school_id= & ?q=)
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := uc.DB.WithContext(c.UserContext()).Model(&model.UserModel{})

	if role := strings.TrimSpace(c.Query("role")); role != "" {
		if !constants.IsValidRole(role) {
			return helper.JsonError(c, fiber.StatusBadRequest, "Role tidak dikenal")
		}
		q = q.Where("user_role = ?", role)
	}
	if sid := strings.TrimSpace(c.Query("school_id")); sid != "" {
		schoolID, err := uuid.Parse(sid)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Format school_id tidak valid")
		}
		q = q.Where("user_school_id = ?", schoolID)
	}
	if kw := strings.TrimSpace(c.Query("q")); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		q = q.Where("LOWER(user_full_name) LIKE ? OR LOWER(user_email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung user")
	}

	var users []model.UserModel
	if err := q.Order("user_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&users).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data user")
	}

	return helper.JsonList(c, "OK", dto.FromModelUsers(users),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// 📄 GET /api/o/users/eligible-admins — kandidat yang boleh dipromosikan jadi school_admin
// Filter sama dengan invariant promosi: belum admin & belum terikat sekolah.
func (uc *UserController) GetEligibleAdminCandidates(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := uc.DB.WithContext(c.UserContext()).Model(&model.UserModel{}).
		Where("user_role <> ? AND user_school_id IS NULL", constants.RoleSchoolAdmin)

	if kw := strings.TrimSpace(c.Query("q")); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		q = q.Where("LOWER(user_full_name) LIKE ? OR LOWER(user_email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung kandidat")
	}

	var users []model.UserModel
	if err := q.Order("user_full_name ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&users).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil kandidat admin")
	}

	return helper.JsonList(c, "OK", dto.FromModelUsers(users),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// 📄 GET /api/o/users/:id
func (uc *UserController) GetUserByID(c *fiber.Ctx) error {
	userID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format ID user tidak valid")
	}

	var user model.UserModel
	if err := uc.DB.WithContext(c.UserContext()).
		First(&user, "user_id = ?", userID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "User tidak ditemukan")
	}

	return helper.JsonOK(c, "OK", dto.FromModelUser(&user))
}

// 🟢 PATCH /api/o/users/:id — partial update (nama, phone, approve)
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format ID user tidak valid")
	}

	var input dto.UserUpdateRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format JSON tidak valid")
	}

	var existing model.UserModel
	if err := uc.DB.WithContext(c.UserContext()).
		First(&existing, "user_id = ?", userID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "User tidak ditemukan")
	}

	if input.UserFullName != nil {
		if strings.TrimSpace(*input.UserFullName) == "" {
			return helper.JsonError(c, fiber.StatusBadRequest, "Nama lengkap tidak boleh kosong")
		}
		existing.UserFullName = strings.TrimSpace(*input.UserFullName)
	}
	if input.UserPhone != nil {
		existing.UserPhone = strings.TrimSpace(*input.UserPhone)
	}
	if input.UserApproved != nil {
		existing.UserIsApproved = *input.UserApproved
	}

	if err := uc.DB.WithContext(c.UserContext()).Save(&existing).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui user")
	}

	return helper.JsonUpdated(c, "User berhasil diperbarui", dto.FromModelUser(&existing))
}
