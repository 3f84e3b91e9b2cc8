package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys yang dihydrate middleware AuthJWT
const (
	LocUserID   = "user_id"
	LocUserRole = "user_role"
	LocSchoolID = "school_id"
	LocRawToken = "raw_token"
)

// GetRawAccessToken mengembalikan access token dari:
// 1) cookie "access_token"
// 2) Locals("raw_token") yang diset middleware
// 3) Authorization header "Bearer <token>"
func GetRawAccessToken(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Cookies("access_token")); v != "" {
		return v
	}
	if v, ok := c.Locals(LocRawToken).(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	const p = "Bearer "
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > len(p) && strings.HasPrefix(auth, p) {
		return strings.TrimSpace(auth[len(p):])
	}
	return ""
}

func GetRefreshTokenFromCookie(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Cookies("refresh_token"))
}

// GetUserIDFromToken membaca user_id hasil hydrate middleware
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v, ok := c.Locals(LocUserID).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user_id tidak ditemukan di token")
	}
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user_id tidak valid")
	}
	return id, nil
}

func GetRoleFromToken(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocUserRole).(string); ok {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return ""
}

func GetSchoolIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v, ok := c.Locals(LocSchoolID).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "school_id tidak ditemukan di token")
	}
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "school_id tidak valid")
	}
	return id, nil
}

// CSRF check double-submit: header X-CSRF-Token harus sama dengan cookie csrf_token
func CheckCSRFCookieHeader(c *fiber.Ctx) error {
	csrfCookie := strings.TrimSpace(c.Cookies("csrf_token"))
	if csrfCookie == "" {
		return fiber.NewError(fiber.StatusForbidden, "CSRF token missing (cookie)")
	}
	csrfHeader := strings.TrimSpace(c.Get("X-CSRF-Token"))
	if csrfHeader == "" {
		return fiber.NewError(fiber.StatusForbidden, "CSRF token missing (header)")
	}
	if csrfCookie != csrfHeader {
		return fiber.NewError(fiber.StatusForbidden, "CSRF token mismatch")
	}
	return nil
}
