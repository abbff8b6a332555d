package handlers

import (
	"errors"
	"log"
	"time"

	"kosh/internal/config"
	"kosh/internal/middleware"
	"kosh/internal/services/auth"
	"kosh/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns an access token. The refresh
// token travels only in an http-only cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.Username == "" || input.Password == "" {
		return utils.BadRequest(c, "Username and password are required")
	}

	accessToken, refreshToken, err := h.authService.Login(c.UserContext(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		log.Printf("login error: %v", err)
		return utils.InternalError(c, "Internal server error")
	}

	h.setRefreshCookie(c, refreshToken)
	return utils.Success(c, fiber.Map{"accessToken": accessToken})
}

// RefreshToken mints a new access token for an active session.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies(middleware.RefreshCookieName)

	accessToken, err := h.authService.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return utils.Unauthorized(c, "Refresh token required")
		}
		return utils.Forbidden(c, "Invalid or expired refresh token")
	}
	return utils.Success(c, fiber.Map{"accessToken": accessToken})
}

// Logout revokes the refresh token and blacklists the presented access
// token for its remaining lifetime.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies(middleware.RefreshCookieName)
	accessToken := middleware.BearerToken(c)

	if err := h.authService.Logout(c.UserContext(), refreshToken, accessToken); err != nil {
		log.Printf("logout error: %v", err)
		return utils.InternalError(c, "Failed to logout")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		SameSite: "Strict",
		Path:     "/",
	})
	return utils.Success(c, fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshCookieName,
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		SameSite: "Strict",
		Path:     "/",
		MaxAge:   int(h.authService.RefreshTTL() / time.Second),
	})
}
