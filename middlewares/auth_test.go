package middlewares

import (
	"net/http/httptest"
	"os"
	"testing"

	"autocare-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// loadJWTSecret caches via sync.Once, so the secret must exist before
	// any test touches the middleware.
	os.Setenv("JWT_SECRET_KEY", "test-secret")
}

func authTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/whoami", IsAuthenticatedHeader(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("userID"),
			"role":    c.Locals("role"),
		})
	})
	app.Get("/manager-only", IsAuthenticatedHeader(), RequireRoles(models.RoleManager), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuthMissingHeader(t *testing.T) {
	app := authTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthGarbageToken(t *testing.T) {
	app := authTestApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthValidTokenRoundTrip(t *testing.T) {
	app := authTestApp()

	token, err := GenerateJWT("user-123", models.RoleCustomer)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoles(t *testing.T) {
	app := authTestApp()

	customerToken, err := GenerateJWT("user-123", models.RoleCustomer)
	require.NoError(t, err)
	managerToken, err := GenerateJWT("user-456", models.RoleManager)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/manager-only", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/manager-only", nil)
	req.Header.Set("Authorization", "Bearer "+managerToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
