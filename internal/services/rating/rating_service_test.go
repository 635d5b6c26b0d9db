package rating

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
	tradesvc "github.com/rajivgeraev/swapplace-api/internal/services/trade"
	"github.com/rajivgeraev/swapplace-api/internal/storage/memory"
)

// testAuth подставляет userID из заголовка вместо проверки JWT
func testAuth(c fiber.Ctx) error {
	c.Locals("userID", c.Get("X-User-ID"))
	return c.Next()
}

func newTestApp(store *memory.Store) *fiber.App {
	app := fiber.New()
	// В приложении префикс закрывает группа обменов
	app.Use("/api/trades", testAuth)
	NewRatingService(store).SetupRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, userID uuid.UUID, body any) *http.Response {
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
	return resp
}

// seedAcceptedTrade создает принятый обмен с чатом между двумя участниками
func seedAcceptedTrade(t *testing.T, store *memory.Store) (alice, bob *models.User, trade *models.Trade) {
	t.Helper()
	ctx := context.Background()

	alice = &models.User{ID: uuid.New(), Username: "alice", Role: models.RoleUser}
	bob = &models.User{ID: uuid.New(), Username: "bob", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))

	product := &models.Product{ID: uuid.New(), OwnerID: bob.ID, Name: "Книга"}
	require.NoError(t, store.CreateProduct(ctx, product))

	trade = &models.Trade{ID: uuid.New(), ProposerID: alice.ID, ResponderID: bob.ID, ProductID: product.ID}
	require.NoError(t, store.CreateTrade(ctx, trade, nil))

	_, err := store.AcceptTrade(ctx, trade.ID, &models.Chat{
		ID: uuid.New(), TradeID: trade.ID, ProposerID: alice.ID, ResponderID: bob.ID,
	}, nil)
	require.NoError(t, err)
	return alice, bob, trade
}

func TestRateTrade_UpdatesRatedProfile(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	alice, bob, trade := seedAcceptedTrade(t, store)

	resp := doJSON(t, app, "POST", "/api/trades/"+trade.ID.String()+"/rating", alice.ID, fiber.Map{"stars": 5})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	profile, err := store.GetProfile(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, profile.RatingSum)
	assert.Equal(t, 1, profile.RatingCount)
	assert.Equal(t, 5.0, profile.AverageRating())
}

func TestRateTrade_ReRateReplacesStars(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	alice, bob, trade := seedAcceptedTrade(t, store)
	path := "/api/trades/" + trade.ID.String() + "/rating"

	resp := doJSON(t, app, "POST", path, alice.ID, fiber.Map{"stars": 4})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "POST", path, alice.ID, fiber.Map{"stars": 2})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Повторная оценка заменяет значение: сумма корректируется на разницу,
	// счетчик остается прежним
	profile, err := store.GetProfile(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.RatingSum)
	assert.Equal(t, 1, profile.RatingCount)
	assert.Equal(t, 2.0, profile.AverageRating())
}

func TestRateTrade_StarsOutOfRange(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	alice, _, trade := seedAcceptedTrade(t, store)
	path := "/api/trades/" + trade.ID.String() + "/rating"

	for _, stars := range []int{0, 6, -1} {
		resp := doJSON(t, app, "POST", path, alice.ID, fiber.Map{"stars": stars})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestRateTrade_NonParticipantForbidden(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	_, _, trade := seedAcceptedTrade(t, store)

	eve := &models.User{ID: uuid.New(), Username: "eve", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(context.Background(), eve))

	resp := doJSON(t, app, "POST", "/api/trades/"+trade.ID.String()+"/rating", eve.ID, fiber.Map{"stars": 3})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGetMyRating_ReflectsStoredValue(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	alice, _, trade := seedAcceptedTrade(t, store)
	path := "/api/trades/" + trade.ID.String() + "/rating"

	// До оценки — пусто
	resp := doJSON(t, app, "GET", path, alice.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Nil(t, body["rating"])

	doJSON(t, app, "POST", path, alice.ID, fiber.Map{"stars": 4})

	resp = doJSON(t, app, "GET", path, alice.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(4), body["rating"].(map[string]any)["stars"])
}

func TestRateTrade_PendingTradeNotFound(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	ctx := context.Background()

	alice := &models.User{ID: uuid.New(), Username: "alice", Role: models.RoleUser}
	bob := &models.User{ID: uuid.New(), Username: "bob", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))

	product := &models.Product{ID: uuid.New(), OwnerID: bob.ID, Name: "Книга"}
	require.NoError(t, store.CreateProduct(ctx, product))

	trade := &models.Trade{ID: uuid.New(), ProposerID: alice.ID, ResponderID: bob.ID, ProductID: product.ID}
	require.NoError(t, store.CreateTrade(ctx, trade, nil))

	// У непринятого обмена нет чата, оценивать нечего
	resp := doJSON(t, app, "POST", "/api/trades/"+trade.ID.String()+"/rating", alice.ID, fiber.Map{"stars": 4})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSetupRoutes_SingleAuthPassOnTradesPrefix(t *testing.T) {
	store := memory.New()
	alice, _, tr := seedAcceptedTrade(t, store)

	var authCalls int
	countingAuth := func(c fiber.Ctx) error {
		authCalls++
		c.Locals("userID", c.Get("X-User-ID"))
		return c.Next()
	}

	// Как в приложении: группу /api/trades закрывает сервис обменов,
	// маршруты оценок регистрируются следом без своего слоя
	app := fiber.New()
	tradesvc.NewTradeService(store).SetupRoutes(app, countingAuth)
	NewRatingService(store).SetupRoutes(app)

	resp := doJSON(t, app, "GET", "/api/trades/"+tr.ID.String()+"/rating", alice.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, authCalls)
}
