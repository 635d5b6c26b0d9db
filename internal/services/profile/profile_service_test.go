package profile

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
	NewProfileService(store).SetupRoutes(app, testAuth)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, userID uuid.UUID, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID.String())

	resp, err := app.Test(req)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func TestGetPanel_AggregatesSellerStats(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	ctx := context.Background()

	alice := &models.User{ID: uuid.New(), Username: "alice", Role: models.RoleUser}
	bob := &models.User{ID: uuid.New(), Username: "bob", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))

	first := &models.Product{ID: uuid.New(), OwnerID: alice.ID, Name: "Лампа"}
	second := &models.Product{ID: uuid.New(), OwnerID: alice.ID, Name: "Стол"}
	require.NoError(t, store.CreateProduct(ctx, first))
	require.NoError(t, store.CreateProduct(ctx, second))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.IncrementVisits(ctx, first.ID))
	}
	require.NoError(t, store.IncrementVisits(ctx, second.ID))

	require.NoError(t, store.CreateTrade(ctx, &models.Trade{
		ID: uuid.New(), ProposerID: bob.ID, ResponderID: alice.ID, ProductID: first.ID,
	}, nil))

	require.NoError(t, store.UpsertRating(ctx, &models.Rating{
		ID: uuid.New(), RatedUserID: alice.ID, RaterUserID: bob.ID, TradeID: uuid.New(), Stars: 4,
	}))
	require.NoError(t, store.UpsertRating(ctx, &models.Rating{
		ID: uuid.New(), RatedUserID: alice.ID, RaterUserID: bob.ID, TradeID: uuid.New(), Stars: 5,
	}))

	resp, body := doJSON(t, app, "GET", "/api/profile/panel", alice.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	panel := body["panel"].(map[string]any)
	assert.Equal(t, float64(2), panel["product_count"])
	assert.Equal(t, float64(4), panel["total_visits"])
	assert.Equal(t, float64(1), panel["trades_received"])
	assert.Equal(t, 4.5, panel["average_rating"])
	assert.Equal(t, float64(2), panel["rating_count"])
}

func TestUpdateInterests_NormalizesTags(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	ctx := context.Background()

	alice := &models.User{ID: uuid.New(), Username: "alice", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(ctx, alice))

	resp, body := doJSON(t, app, "PUT", "/api/profile/interests", alice.ID, fiber.Map{
		"interests": []string{" Спорт ", "ТЕХНИКА", "", "  "},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"спорт", "техника"}, body["interests"])

	profile, err := store.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "спорт,техника", profile.Interests)
	assert.Equal(t, []string{"спорт", "техника"}, profile.InterestList())
}
