package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/schools/school_provisioning/controller"
	"schoolku_backend/internals/features/schools/school_provisioning/repository"
	"schoolku_backend/internals/features/schools/school_provisioning/service"
	"schoolku_backend/internals/features/users/auth/gateway"
	"schoolku_backend/internals/middlewares"
)

// ProvisioningOwnerRoutes: alur buat-sekolah-plus-admin, hanya platform admin (/api/o)
func ProvisioningOwnerRoutes(router fiber.Router, db *gorm.DB, gw gateway.IdentityGateway) {
	svc := service.NewProvisioningService(repository.NewTenantStore(db), gw)
	ctrl := controller.NewProvisioningController(svc)

	schools := router.Group("/schools", middlewares.ProvisioningRateLimiter())
	schools.Post("/with-admin", ctrl.CreateSchoolWithAdmin)
	schools.Post("/:id/retry-admin-link", ctrl.RetryAdminLink)
}
