package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/features/users/auth/gateway"
	authRoute "schoolku_backend/internals/features/users/auth/route"
	provisioningRoute "schoolku_backend/internals/features/schools/school_provisioning/route"
	schoolRoute "schoolku_backend/internals/features/schools/schools/route"
	userRoute "schoolku_backend/internals/features/users/user/route"
	authmw "schoolku_backend/internals/middlewares/auth"
	guard "schoolku_backend/internals/middlewares/features"
)

/* =======================================================
   SetupRoutes — semua grup route didaftarkan dari sini
   /api     : publik (auth)
   /api/o   : owner/platform_admin (provisioning, sekolah, user)
   /api/a   : admin sekolah (sekolahnya sendiri)
======================================================= */

func SetupRoutes(app *fiber.App, db *gorm.DB, gw *gateway.GoTrueGateway) {
	BaseRoutes(app, db)

	api := app.Group("/api")
	authRoute.AuthRoutes(api, db, gw)

	// ---- Grup owner (platform_admin) ----
	owner := app.Group("/api/o",
		authmw.AuthJWT(authmw.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			AllowCookieFallback: true,
		}),
		guard.IsPlatformAdmin(),
	)
	provisioningRoute.ProvisioningOwnerRoutes(owner, db, gw)
	schoolRoute.SchoolOwnerRoutes(owner, db)
	userRoute.UserOwnerRoutes(owner, db)

	// ---- Grup admin sekolah ----
	schoolAdmin := app.Group("/api/a",
		authmw.AuthJWT(authmw.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			AllowCookieFallback: true,
		}),
		guard.IsSchoolAdmin(),
	)
	schoolRoute.SchoolAdminRoutes(schoolAdmin, db)
}
