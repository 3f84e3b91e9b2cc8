package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/schools/schools/controller"
)

// SchoolOwnerRoutes: CRUD sekolah untuk platform admin (/api/o).
// Create TIDAK ada di sini — sekolah baru hanya lahir lewat alur provisioning.
func SchoolOwnerRoutes(router fiber.Router, db *gorm.DB) {
	ctrl := controller.NewSchoolController(db)

	schools := router.Group("/schools")
	schools.Get("/", ctrl.GetSchools)
	schools.Get("/:id", ctrl.GetSchoolByID)
	schools.Patch("/:id", ctrl.UpdateSchool)
	schools.Delete("/:id", ctrl.DeactivateSchool)
}

// SchoolAdminRoutes: portal admin sekolah (/api/a) — hanya sekolahnya sendiri.
func SchoolAdminRoutes(router fiber.Router, db *gorm.DB) {
	ctrl := controller.NewSchoolController(db)

	router.Get("/school", ctrl.GetMySchool)
}
