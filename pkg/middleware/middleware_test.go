package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"invoice-assistant/internal/models"
	"invoice-assistant/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubResolver struct {
	users map[string]*models.User
	err   error
}

func (r stubResolver) UserFromToken(_ context.Context, token string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if user, ok := r.users[token]; ok {
		return user, nil
	}
	return nil, auth.ErrInvalidToken
}

func newAuthApp(t *testing.T, resolver UserResolver) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(resolver, zaptest.NewLogger(t)), func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.SendString(user.Username)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	app := newAuthApp(t, stubResolver{users: map[string]*models.User{"good": {ID: 1, Username: "user1"}}})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"no scheme", "good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"basic", "Basic dXNlcjE6cGFzc3dvcmQx", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
			}
		})
	}
}

func TestAuthMiddlewareStoreFailure(t *testing.T) {
	app := newAuthApp(t, stubResolver{err: errors.New("database is closed")})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAdminSecret(t *testing.T) {
	newApp := func(secret string) *fiber.App {
		app := fiber.New()
		app.Get("/debug", AdminSecret(secret, zaptest.NewLogger(t)), func(c *fiber.Ctx) error {
			return c.SendStatus(http.StatusNoContent)
		})
		return app
	}

	cases := []struct {
		name     string
		secret   string
		provided string
		status   int
	}{
		{"match", "s3cret", "s3cret", http.StatusNoContent},
		{"mismatch", "s3cret", "guess", http.StatusForbidden},
		{"missing header", "s3cret", "", http.StatusForbidden},
		{"unconfigured", "", "", http.StatusForbidden},
		{"unconfigured with header", "", "anything", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/debug", nil)
			if tc.provided != "" {
				req.Header.Set(HeaderAdminSecret, tc.provided)
			}
			resp, err := newApp(tc.secret).Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
