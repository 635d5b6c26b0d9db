package favorite

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage/memory"
)

// testAuth подставляет userID из заголовка вместо проверки JWT
func testAuth(c fiber.Ctx) error {
	c.Locals("userID", c.Get("X-User-ID"))
	return c.Next()
}

func newTestApp(store *memory.Store) *fiber.App {
	app := fiber.New()
	NewFavoriteService(store).SetupRoutes(app, testAuth)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, userID uuid.UUID) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, &bytes.Buffer{})
	req.Header.Set("X-User-ID", userID.String())

	resp, err := app.Test(req)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func seedProduct(t *testing.T, store *memory.Store) (*models.User, *models.Product) {
	t.Helper()
	ctx := context.Background()
	owner := &models.User{ID: uuid.New(), Username: "alice", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(ctx, owner))
	product := &models.Product{ID: uuid.New(), OwnerID: owner.ID, Name: "Велосипед"}
	require.NoError(t, store.CreateProduct(ctx, product))
	return owner, product
}

func TestFavorites_AddListRemove(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	_, product := seedProduct(t, store)
	bob := &models.User{ID: uuid.New(), Username: "bob", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(context.Background(), bob))
	path := "/api/favorites/" + product.ID.String()

	resp, _ := doJSON(t, app, "POST", path, bob.ID)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Повторное добавление не ошибка
	resp, body := doJSON(t, app, "POST", path, bob.ID)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	_, body = doJSON(t, app, "GET", "/api/favorites/", bob.ID)
	require.Equal(t, float64(1), body["count"])
	favorites := body["favorites"].([]any)
	fav := favorites[0].(map[string]any)
	assert.Equal(t, "Велосипед", fav["product"].(map[string]any)["name"])

	_, body = doJSON(t, app, "GET", path+"/check", bob.ID)
	assert.Equal(t, true, body["is_favorite"])

	resp, _ = doJSON(t, app, "DELETE", path, bob.ID)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body = doJSON(t, app, "GET", path+"/check", bob.ID)
	assert.Equal(t, false, body["is_favorite"])
}

func TestAddFavorite_UnknownProduct(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	bob := &models.User{ID: uuid.New(), Username: "bob", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(context.Background(), bob))

	resp, _ := doJSON(t, app, "POST", "/api/favorites/"+uuid.NewString(), bob.ID)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRemoveFavorite_NotInFavorites(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	_, product := seedProduct(t, store)
	bob := &models.User{ID: uuid.New(), Username: "bob", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(context.Background(), bob))

	resp, _ := doJSON(t, app, "DELETE", "/api/favorites/"+product.ID.String(), bob.ID)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
