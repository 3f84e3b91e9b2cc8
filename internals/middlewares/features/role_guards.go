package features

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/constants"
	helper "schoolku_backend/internals/helpers"
)

// IsPlatformAdmin: guard untuk fitur konsol global (provisioning dsb.)
func IsPlatformAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if helper.GetRoleFromToken(c) != constants.RolePlatformAdmin {
			return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorPlatformAdmin("konsol platform"))
		}
		return c.Next()
	}
}

// IsSchoolAdmin: guard untuk portal admin sekolah.
// Platform admin ikut lolos (superset).
func IsSchoolAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := helper.GetRoleFromToken(c)
		if role != constants.RoleSchoolAdmin && role != constants.RolePlatformAdmin {
			return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorSchoolAdmin("portal sekolah"))
		}
		return c.Next()
	}
}
