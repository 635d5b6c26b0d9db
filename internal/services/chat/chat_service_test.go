package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
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
	NewChatService(store).SetupRoutes(app, testAuth)
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

// seedChat создает двух участников и чат принятого обмена
func seedChat(t *testing.T, store *memory.Store) (alice, bob *models.User, chat *models.Chat) {
	t.Helper()
	ctx := context.Background()

	alice = &models.User{ID: uuid.New(), Username: "alice", Role: models.RoleUser}
	bob = &models.User{ID: uuid.New(), Username: "bob", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))

	product := &models.Product{ID: uuid.New(), OwnerID: bob.ID, Name: "Велосипед"}
	require.NoError(t, store.CreateProduct(ctx, product))

	trade := &models.Trade{ID: uuid.New(), ProposerID: alice.ID, ResponderID: bob.ID, ProductID: product.ID}
	require.NoError(t, store.CreateTrade(ctx, trade, nil))

	chat, err := store.AcceptTrade(ctx, trade.ID, &models.Chat{
		ID: uuid.New(), TradeID: trade.ID, ProposerID: alice.ID, ResponderID: bob.ID,
	}, nil)
	require.NoError(t, err)
	return alice, bob, chat
}

func TestSendMessage_NotifiesOtherParticipant(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	alice, bob, chat := seedChat(t, store)

	resp, body := doJSON(t, app, "POST", "/api/chats/"+chat.ID.String()+"/messages", alice.ID, fiber.Map{"text": "привет"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	msg := body["message"].(map[string]any)
	assert.Equal(t, "привет", msg["content"])
	assert.Equal(t, "alice", msg["author"])

	notifs, err := store.ListNotifications(context.Background(), bob.ID, []string{models.NotificationMessage}, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "/chats/"+chat.ID.String(), notifs[0].Link)
}

func TestSendMessage_ValidatesContent(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	alice, _, chat := seedChat(t, store)
	path := "/api/chats/" + chat.ID.String() + "/messages"

	// Пустое после обрезки пробелов
	resp, _ := doJSON(t, app, "POST", path, alice.ID, fiber.Map{"text": "   "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Длиннее 500 символов
	resp, _ = doJSON(t, app, "POST", path, alice.ID, fiber.Map{"text": strings.Repeat("ы", 501)})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Ровно 500 символов допустимо
	resp, _ = doJSON(t, app, "POST", path, alice.ID, fiber.Map{"text": strings.Repeat("ы", 500)})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestSendMessage_NonMemberForbiddenWithoutSideEffects(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	alice, bob, chat := seedChat(t, store)

	eve := &models.User{ID: uuid.New(), Username: "eve", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(context.Background(), eve))

	resp, _ := doJSON(t, app, "POST", "/api/chats/"+chat.ID.String()+"/messages", eve.ID, fiber.Map{"text": "впустите"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	messages, err := store.ListMessagesSince(context.Background(), chat.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	for _, userID := range []uuid.UUID{alice.ID, bob.ID} {
		notifs, err := store.ListNotifications(context.Background(), userID, nil, 0)
		require.NoError(t, err)
		assert.Empty(t, notifs)
	}
}

func TestGetChatMessages_SinceIDReturnsOnlyNewer(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	alice, bob, chat := seedChat(t, store)
	path := "/api/chats/" + chat.ID.String() + "/messages"

	doJSON(t, app, "POST", path, alice.ID, fiber.Map{"text": "привет"})
	doJSON(t, app, "POST", path, bob.ID, fiber.Map{"text": "и тебе"})
	doJSON(t, app, "POST", path, alice.ID, fiber.Map{"text": "обменяемся?"})

	_, body := doJSON(t, app, "GET", path, alice.ID, nil)
	require.Equal(t, float64(3), body["count"])
	messages := body["messages"].([]any)
	firstID := messages[0].(map[string]any)["id"].(float64)
	assert.Equal(t, "привет", messages[0].(map[string]any)["content"])

	_, body = doJSON(t, app, "GET", path+"?since_id="+strconv.FormatInt(int64(firstID), 10), alice.ID, nil)
	require.Equal(t, float64(2), body["count"])
	messages = body["messages"].([]any)
	assert.Equal(t, "и тебе", messages[0].(map[string]any)["content"])

	// Нечитаемый since_id означает полную историю
	_, body = doJSON(t, app, "GET", path+"?since_id=abc", alice.ID, nil)
	assert.Equal(t, float64(3), body["count"])
}

func TestGetChatMessages_NonMemberForbidden(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	_, _, chat := seedChat(t, store)

	eve := &models.User{ID: uuid.New(), Username: "eve", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(context.Background(), eve))

	resp, _ := doJSON(t, app, "GET", "/api/chats/"+chat.ID.String()+"/messages", eve.ID, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGetChats_ListsOwnChats(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	alice, _, chat := seedChat(t, store)

	_, body := doJSON(t, app, "GET", "/api/chats/", alice.ID, nil)
	require.Equal(t, float64(1), body["count"])
	chats := body["chats"].([]any)
	assert.Equal(t, chat.ID.String(), chats[0].(map[string]any)["id"])
}

func TestReportChat_ReturnsAcknowledgement(t *testing.T) {
	store := memory.New()
	app := newTestApp(store)
	alice, _, chat := seedChat(t, store)

	resp, body := doJSON(t, app, "POST", "/api/chats/"+chat.ID.String()+"/report", alice.ID, fiber.Map{"reason": "спам"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Contains(t, body["message"], "поддержки")
}
