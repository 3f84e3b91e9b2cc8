package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	authController "schoolku_backend/internals/features/users/auth/controller"
	"schoolku_backend/internals/features/users/auth/gateway"
	"schoolku_backend/internals/middlewares"
	authmw "schoolku_backend/internals/middlewares/auth"
)

// AuthRoutes: endpoint publik (login/refresh) + endpoint bertoken (me/logout).
func AuthRoutes(router fiber.Router, db *gorm.DB, gw *gateway.GoTrueGateway) {
	ctrl := authController.NewAuthController(db, gw)

	public := router.Group("/auth")
	public.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)
	public.Post("/refresh-token", ctrl.RefreshToken)

	protected := router.Group("/auth",
		authmw.AuthJWT(authmw.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			AllowCookieFallback: true,
		}),
	)
	protected.Get("/me", ctrl.Me)
	protected.Post("/logout", ctrl.Logout)
}
