package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/users/auth/gateway"
	authService "schoolku_backend/internals/features/users/auth/service"
	userDTO "schoolku_backend/internals/features/users/user/dto"
	userModel "schoolku_backend/internals/features/users/user/model"
	helpers "schoolku_backend/internals/helpers"
)

type AuthController struct {
	DB      *gorm.DB
	Gateway *gateway.GoTrueGateway
}

func NewAuthController(db *gorm.DB, gw *gateway.GoTrueGateway) *AuthController {
	return &AuthController{DB: db, Gateway: gw}
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	return authService.Login(ac.DB, ac.Gateway, c)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return authService.Logout(c)
}

func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	return authService.RefreshToken(ac.DB, c)
}

// Me mengembalikan profil user yang sedang login (dari token).
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	var user userModel.UserModel
	if err := ac.DB.WithContext(c.UserContext()).
		First(&user, "user_id = ?", userID).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusNotFound, "User tidak ditemukan")
	}

	return helpers.JsonOK(c, "OK", userDTO.FromModelUser(&user))
}
