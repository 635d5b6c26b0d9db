package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/swapplace-api/internal/config"
	"github.com/rajivgeraev/swapplace-api/internal/middleware"
	"github.com/rajivgeraev/swapplace-api/internal/storage/memory"
)

func newTestApp() *fiber.App {
	cfg := &config.Config{JWTSecret: "test-secret"}
	service := NewAuthService(cfg, memory.New())

	app := fiber.New()
	service.SetupRoutes(app, middleware.AuthMiddleware(service.GetJWTService()))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp()

	resp, body := doJSON(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", body["user"].(map[string]any)["username"])

	resp, body = doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	// Токен дает доступ к защищенным маршрутам
	resp, body = doJSON(t, app, "GET", "/api/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["user"].(map[string]any)["username"])
}

func TestRegister_DuplicateUsername(t *testing.T) {
	app := newTestApp()

	payload := fiber.Map{"username": "alice", "password": "secret123"}
	resp, _ := doJSON(t, app, "POST", "/api/auth/register", "", payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/auth/register", "", payload)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRegister_RequiresCredentials(t *testing.T) {
	app := newTestApp()

	resp, _ := doJSON(t, app, "POST", "/api/auth/register", "", fiber.Map{"username": "  ", "password": ""})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp()

	doJSON(t, app, "POST", "/api/auth/register", "", fiber.Map{"username": "alice", "password": "secret123"})

	resp, _ := doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{"username": "alice", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{"username": "nobody", "password": "secret123"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_WithoutToken(t *testing.T) {
	app := newTestApp()

	resp, _ := doJSON(t, app, "GET", "/api/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
