package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/event-ticketing/internal/domain"
	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

func newGuardedApp(t *testing.T, tm *TokenManager, roles ...domain.Role) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Message)
		},
	})
	handlers := []fiber.Handler{NewMiddleware(tm).Handle}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.SendString(p.ID + ":" + string(p.Role))
	})
	app.Get("/protected", handlers...)
	return app
}

func doGet(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestMiddleware_Handle(t *testing.T) {
	tm, err := NewTokenManager("secret", time.Hour, time.Hour, nil)
	require.NoError(t, err)
	token, _, err := tm.Issue(domain.Identity{ID: "u1", Role: domain.RoleEventOwner})
	require.NoError(t, err)
	app := newGuardedApp(t, tm)

	status, body := doGet(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, MsgNoToken, body)

	status, body = doGet(t, app, "Token "+token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, MsgNoToken, body)

	status, body = doGet(t, app, "Bearer garbage")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, MsgInvalidToken, body)

	status, body = doGet(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u1:EVENT_OWNER", body)
}

func TestRequireRole(t *testing.T) {
	tm, err := NewTokenManager("secret", time.Hour, time.Hour, nil)
	require.NoError(t, err)
	app := newGuardedApp(t, tm, domain.RoleSuperAdmin, domain.RoleEventOwner)

	baseToken, _, err := tm.Issue(domain.Identity{ID: "b1", Role: domain.RoleBaseUser})
	require.NoError(t, err)
	status, body := doGet(t, app, "Bearer "+baseToken)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, MsgAccessDenied, body)

	adminToken, _, err := tm.Issue(domain.Identity{ID: "a1", Role: domain.RoleSuperAdmin})
	require.NoError(t, err)
	status, _ = doGet(t, app, "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, status)
}
