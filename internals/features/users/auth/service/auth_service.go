package service

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/features/users/auth/gateway"
	userDTO "schoolku_backend/internals/features/users/user/dto"
	userModel "schoolku_backend/internals/features/users/user/model"
	helpers "schoolku_backend/internals/helpers"
)

/* ==========================
   Const & small helpers
========================== */

const (
	accessTTLDefault  = 24 * time.Hour
	refreshTTLDefault = 7 * 24 * time.Hour
)

func nowUTC() time.Time { return time.Now().UTC() }

func getJWTSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTSecret)
	if secret == "" {
		return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_SECRET belum diset")
	}
	return secret, nil
}

func getRefreshSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTRefreshSecret)
	if secret == "" {
		return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_REFRESH_SECRET belum diset")
	}
	return secret, nil
}

/* ==========================
   LOGIN
========================== */

// Login operator: credential diverifikasi provider identity, profil (role,
// school_id) diambil dari store, lalu app menerbitkan JWT-nya sendiri.
func Login(db *gorm.DB, gw *gateway.GoTrueGateway, c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Password == "" {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Email dan password wajib diisi")
	}

	_, identityID, err := gw.SignInWithPassword(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Email atau password salah")
	}

	// Profil harus ada — identity tanpa profil berarti provisioning belum tuntas
	var user userModel.UserModel
	if err := db.WithContext(c.UserContext()).
		First(&user, "user_id = ?", identityID).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusForbidden, "Akun belum terdaftar di sistem sekolah")
	}
	if !user.UserIsApproved {
		return helpers.JsonError(c, fiber.StatusForbidden, "Akun Anda belum disetujui. Hubungi admin.")
	}

	return issueTokens(c, &user)
}

/* ==========================
   ISSUE TOKENS + Response
========================== */

func buildAccessClaims(user *userModel.UserModel, now time.Time) jwt.MapClaims {
	claims := jwt.MapClaims{
		"typ":       "access",
		"sub":       user.UserID.String(),
		"id":        user.UserID.String(),
		"full_name": user.UserFullName,
		"role":      user.UserRole,
		"iat":       now.Unix(),
		"exp":       now.Add(accessTTLDefault).Unix(),
	}
	if user.UserSchoolID != nil {
		claims["school_id"] = user.UserSchoolID.String()
	}
	return claims
}

func buildRefreshClaims(user *userModel.UserModel, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"typ": "refresh",
		"sub": user.UserID.String(),
		"id":  user.UserID.String(),
		"iat": now.Unix(),
		"exp": now.Add(refreshTTLDefault).Unix(),
	}
}

func issueTokens(c *fiber.Ctx, user *userModel.UserModel) error {
	jwtSecret, err := getJWTSecret()
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	now := nowUTC()

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildAccessClaims(user, now)).
		SignedString([]byte(jwtSecret))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat access token")
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildRefreshClaims(user, now)).
		SignedString([]byte(refreshSecret))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat refresh token")
	}

	setAuthCookies(c, accessToken, refreshToken, now)

	return helpers.JsonOK(c, "Login berhasil", fiber.Map{
		"user":         userDTO.FromModelUser(user),
		"access_token": accessToken,
	})
}

func setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string, now time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(accessTTLDefault),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(refreshTTLDefault),
	})
}

/* ==========================
   LOGOUT
========================== */

func Logout(c *fiber.Ctx) error {
	// CSRF wajib jika auth via cookie (tanpa Bearer)
	cookieAT := strings.TrimSpace(c.Cookies("access_token"))
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	usesCookieAuth := cookieAT != "" && !strings.HasPrefix(authHeader, "Bearer ")

	if usesCookieAuth {
		if err := helpers.CheckCSRFCookieHeader(c); err != nil {
			return helpers.JsonError(c, fiber.StatusForbidden, err.Error())
		}
	}

	expired := nowUTC().Add(-time.Hour)
	for _, name := range []string{"access_token", "refresh_token", "csrf_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			HTTPOnly: name != "csrf_token",
			Secure:   true,
			SameSite: "None",
			Path:     "/",
			Expires:  expired,
			MaxAge:   -1,
		})
	}

	return helpers.JsonOK(c, "Logout successful", nil)
}

/* ==========================
   REFRESH
========================== */

func RefreshToken(db *gorm.DB, c *fiber.Ctx) error {
	raw := helpers.GetRefreshTokenFromCookie(c)
	if raw == "" {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak ditemukan")
	}

	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(refreshSecret), nil
	})
	if err != nil || !tok.Valid {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak valid")
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak valid")
	}

	sub, _ := claims["sub"].(string)
	var user userModel.UserModel
	if err := db.WithContext(c.UserContext()).
		First(&user, "user_id = ?", strings.TrimSpace(sub)).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "User tidak ditemukan")
	}

	return issueTokens(c, &user)
}
