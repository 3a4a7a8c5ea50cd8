package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bizfish/tag-a-meal-app/internal/metrics"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/pkg/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*fiber.App, jwt.JWTService) {
	jwtService := jwt.NewJWTServiceWithSecret("test-secret", "TEST")
	m := middleware.NewMiddleware()

	app := fiber.New()
	app.Use(m.Prometheus())
	app.Get("/private", m.AuthMiddleware(jwtService), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserID(c))
	})
	app.Get("/public", m.OptionalAuth(jwtService), func(c *fiber.Ctx) error {
		return c.SendString("user=" + middleware.UserID(c))
	})
	return app, jwtService
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware(t *testing.T) {
	app, jwtService := newApp(t)
	session, err := jwtService.GenerateSession("user-1", "authenticated")
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/private", nil))
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Contains(t, body, "no token provided")
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer nope")
		status, _ := do(t, app, req)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+session.RefreshToken)
		status, _ := do(t, app, req)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
		status, body := do(t, app, req)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "user-1", body)
	})
}

func TestOptionalAuth(t *testing.T) {
	app, jwtService := newApp(t)
	session, err := jwtService.GenerateSession("user-2", "authenticated")
	require.NoError(t, err)

	_, body := do(t, app, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, "user=", body)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	status, body := do(t, app, req)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user=", body)

	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: session.AccessToken})
	_, body = do(t, app, req)
	assert.Equal(t, "user=user-2", body)
}

func TestPrometheusUsesRoutePattern(t *testing.T) {
	app, _ := newApp(t)
	before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/public", "200"))

	do(t, app, httptest.NewRequest(http.MethodGet, "/public?x=1", nil))
	do(t, app, httptest.NewRequest(http.MethodGet, "/public", nil))

	after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/public", "200"))
	assert.Equal(t, before+2, after)
}
