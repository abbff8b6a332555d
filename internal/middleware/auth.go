// Package middleware provides HTTP middleware for the fiber application.
package middleware

import (
	"errors"
	"strings"

	"kosh/internal/services/auth"
	"kosh/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "refreshToken"

// AuthMiddleware guards protected routes. It extracts the bearer access
// token and the refresh cookie and hands both to the session authority;
// claims of authenticated requests are stored in the request context.
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	accessToken := BearerToken(c)
	refreshToken := c.Cookies(RefreshCookieName)

	claims, err := m.authService.Authenticate(c.UserContext(), accessToken, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRevoked):
			return utils.Unauthorized(c, "Access token has been invalidated. Please login again.")
		case errors.Is(err, auth.ErrInvalidToken):
			return utils.Forbidden(c, "Invalid or expired access token")
		case accessToken == "":
			return utils.Unauthorized(c, "Access token required")
		default:
			return utils.Unauthorized(c, "Refresh token missing or invalid. Please login again.")
		}
	}

	c.Locals("claims", claims)
	c.Locals("accountID", claims.AccountID)
	return c.Next()
}

// BearerToken extracts the token from the Authorization header, or "".
func BearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}
