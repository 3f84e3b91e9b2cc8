package features

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/constants"
	helper "schoolku_backend/internals/helpers"
)

func statusWithRole(t *testing.T, guard fiber.Handler, role string) int {
	t.Helper()

	app := fiber.New()
	app.Get("/t",
		func(c *fiber.Ctx) error {
			if role != "" {
				c.Locals(helper.LocUserRole, role)
			}
			return c.Next()
		},
		guard,
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestIsPlatformAdmin(t *testing.T) {
	assert.Equal(t, fiber.StatusOK, statusWithRole(t, IsPlatformAdmin(), constants.RolePlatformAdmin))
	assert.Equal(t, fiber.StatusForbidden, statusWithRole(t, IsPlatformAdmin(), constants.RoleSchoolAdmin))
	assert.Equal(t, fiber.StatusForbidden, statusWithRole(t, IsPlatformAdmin(), constants.RoleTeacher))
	assert.Equal(t, fiber.StatusForbidden, statusWithRole(t, IsPlatformAdmin(), ""))
}

func TestIsSchoolAdmin(t *testing.T) {
	assert.Equal(t, fiber.StatusOK, statusWithRole(t, IsSchoolAdmin(), constants.RoleSchoolAdmin))
	// platform admin superset: ikut lolos portal sekolah
	assert.Equal(t, fiber.StatusOK, statusWithRole(t, IsSchoolAdmin(), constants.RolePlatformAdmin))
	assert.Equal(t, fiber.StatusForbidden, statusWithRole(t, IsSchoolAdmin(), constants.RoleTeacher))
	assert.Equal(t, fiber.StatusForbidden, statusWithRole(t, IsSchoolAdmin(), constants.RoleParent))
	assert.Equal(t, fiber.StatusForbidden, statusWithRole(t, IsSchoolAdmin(), ""))
}
