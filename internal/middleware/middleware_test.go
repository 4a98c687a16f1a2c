package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"storeapi/internal/middleware"
	"storeapi/internal/services"
)

func newGuardedApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	issuer := services.NewJWTIssuer("test-secret", time.Hour)
	token, err := issuer.Sign(t.Context(), "user-1")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/private", middleware.AuthRequired(issuer, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserID(c))
	})
	return app, token
}

func TestAuthRequired(t *testing.T) {
	app, token := newGuardedApp(t)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, fiber.StatusUnauthorized},
		{"empty token", "Bearer ", fiber.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", fiber.StatusUnauthorized},
		{"valid token", "Bearer " + token, fiber.StatusOK},
		{"lower case scheme", "bearer " + token, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthRequired_StoresUserID(t *testing.T) {
	app, token := newGuardedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, _ := resp.Body.Read(buf)
	assert.Equal(t, "user-1", string(buf[:n]))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(fiber.HeaderXRequestID, "client-supplied-id")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// A third request reuses the buffers of the first two.
	_, err = app.Test(httptest.NewRequest(http.MethodPost, "/overwritten", nil), -1)
	require.NoError(t, err)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(200), fields["status"])
	assert.NotEmpty(t, fields["request_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	fields = entries[1].ContextMap()
	assert.Equal(t, "/missing", fields["path"])
	assert.Equal(t, int64(404), fields["status"])
	assert.Equal(t, "client-supplied-id", fields["request_id"])
}
