package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonasWeber/CheckFlow/internal/pkg/usercontext"
)

// A nil DB is safe here because requests without a usable bearer token never
// reach the lookup.
func guestApp() *fiber.App {
	app := fiber.New()
	app.Get("/probe", OptionalBearerAuth(nil), func(c *fiber.Ctx) error {
		return c.JSON(usercontext.GetUserContext(c))
	})
	return app
}

func TestOptionalBearerAuthMissingHeaderStaysGuest(t *testing.T) {
	app := guestApp()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOptionalBearerAuthMalformedHeaderStaysGuest(t *testing.T) {
	app := guestApp()

	for _, header := range []string{"Basic abc123", "Bearer", "Bearer   ", "   "} {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(fiber.HeaderAuthorization, header)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, "header %q", header)
	}
}

func TestExtractBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		return c.SendString(extractBearerToken(c))
	})

	tests := []struct {
		header string
		want   string
	}{
		{"Bearer cfl_token123", "cfl_token123"},
		{"bearer cfl_token123", "cfl_token123"},
		{"Bearer   cfl_token123  ", "cfl_token123"},
		{"Token cfl_token123", ""},
		{"", ""},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/t", nil)
		if tc.header != "" {
			req.Header.Set(fiber.HeaderAuthorization, tc.header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		body := make([]byte, 128)
		n, _ := resp.Body.Read(body)
		assert.Equal(t, tc.want, string(body[:n]), "header %q", tc.header)
	}
}
