package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kosh/internal/models"
	"kosh/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	claims *models.SessionClaims
	err    error
}

func (s *stubAuthService) Login(context.Context, string, string) (string, string, error) {
	return "", "", nil
}

func (s *stubAuthService) Refresh(context.Context, string) (string, error) { return "", nil }

func (s *stubAuthService) Logout(context.Context, string, string) error { return nil }

func (s *stubAuthService) Authenticate(context.Context, string, string) (*models.SessionClaims, error) {
	return s.claims, s.err
}

func (s *stubAuthService) RefreshTTL() time.Duration { return time.Hour }

func newGuardedApp(svc auth.Service) *fiber.App {
	app := fiber.New()
	app.Get("/protected", NewAuthMiddleware(svc).Handler, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"accountID": c.Locals("accountID")})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, access, refreshCookie string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	if refreshCookie != "" {
		req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: refreshCookie})
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("authenticated request reaches the handler with claims", func(t *testing.T) {
		app := newGuardedApp(&stubAuthService{
			claims: &models.SessionClaims{AccountID: 7, Username: "alice"},
		})
		status, body := doRequest(t, app, "good-access", "good-refresh")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(7), body["accountID"])
	})

	t.Run("missing access token", func(t *testing.T) {
		app := newGuardedApp(&stubAuthService{err: auth.ErrUnauthenticated})
		status, body := doRequest(t, app, "", "good-refresh")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Access token required", body["error"])
	})

	t.Run("revoked access token", func(t *testing.T) {
		app := newGuardedApp(&stubAuthService{err: auth.ErrRevoked})
		status, body := doRequest(t, app, "revoked", "good-refresh")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Access token has been invalidated. Please login again.", body["error"])
	})

	t.Run("dead session", func(t *testing.T) {
		app := newGuardedApp(&stubAuthService{err: auth.ErrUnauthenticated})
		status, body := doRequest(t, app, "still-signed", "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Refresh token missing or invalid. Please login again.", body["error"])
	})

	t.Run("unverifiable access token", func(t *testing.T) {
		app := newGuardedApp(&stubAuthService{err: auth.ErrInvalidToken})
		status, body := doRequest(t, app, "tampered", "good-refresh")
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Invalid or expired access token", body["error"])
	})
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = BearerToken(c)
		return c.SendStatus(http.StatusOK)
	})

	for header, want := range map[string]string{
		"Bearer abc":  "abc",
		"bearer abc":  "",
		"Basic xyz":   "",
		"":            "",
		"Bearer ":     "",
		"Bearer a b":  "a b",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		_, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, got, "header %q", header)
	}
}
