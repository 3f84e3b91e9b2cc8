package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/users/user/controller"
)

// UserOwnerRoutes: dipasang di group platform admin (/api/o)
func UserOwnerRoutes(router fiber.Router, db *gorm.DB) {
	ctrl := controller.NewUserController(db)

	users := router.Group("/users")
	users.Get("/", ctrl.GetUsers)
	users.Get("/eligible-admins", ctrl.GetEligibleAdminCandidates)
	users.Get("/:id", ctrl.GetUserByID)
	users.Patch("/:id", ctrl.UpdateUser)
}
