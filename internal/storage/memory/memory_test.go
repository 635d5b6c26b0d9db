package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

func newUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.New(), Username: username, Role: models.RoleUser}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func newProduct(t *testing.T, s *Store, owner *models.User, name string, tags ...string) *models.Product {
	t.Helper()
	product := &models.Product{ID: uuid.New(), OwnerID: owner.ID, Name: name, Tags: tags}
	require.NoError(t, s.CreateProduct(context.Background(), product))
	return product
}

func newPendingTrade(t *testing.T, s *Store, proposer, responder *models.User, product *models.Product) *models.Trade {
	t.Helper()
	trade := &models.Trade{
		ID:          uuid.New(),
		ProposerID:  proposer.ID,
		ResponderID: responder.ID,
		ProductID:   product.ID,
	}
	require.NoError(t, s.CreateTrade(context.Background(), trade, &models.Notification{
		UserID:   responder.ID,
		Title:    "Новое предложение обмена",
		Category: models.NotificationNewTrade,
	}))
	return trade
}

func acceptTrade(t *testing.T, s *Store, trade *models.Trade) *models.Chat {
	t.Helper()
	chat, err := s.AcceptTrade(context.Background(), trade.ID, &models.Chat{
		ID:          uuid.New(),
		TradeID:     trade.ID,
		ProposerID:  trade.ProposerID,
		ResponderID: trade.ResponderID,
	}, nil)
	require.NoError(t, err)
	return chat
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := New()
	newUser(t, s, "alice")

	err := s.CreateUser(context.Background(), &models.User{ID: uuid.New(), Username: "alice"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestCreateUser_BootstrapsProfileAndModeration(t *testing.T) {
	s := New()
	user := newUser(t, s, "alice")

	profile, err := s.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.Warnings)
	assert.False(t, profile.Suspended)

	rec, err := s.GetModeration(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationActive, rec.State)
}

func TestAcceptTrade_SecondResponseConflicts(t *testing.T) {
	s := New()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")
	product := newProduct(t, s, bob, "Велосипед")
	trade := newPendingTrade(t, s, alice, bob, product)

	acceptTrade(t, s, trade)

	_, err := s.AcceptTrade(context.Background(), trade.ID, &models.Chat{
		ID: uuid.New(), TradeID: trade.ID, ProposerID: alice.ID, ResponderID: bob.ID,
	}, nil)
	assert.ErrorIs(t, err, storage.ErrStateConflict)

	err = s.RejectTrade(context.Background(), trade.ID, nil)
	assert.ErrorIs(t, err, storage.ErrStateConflict)
}

func TestAcceptTrade_SingleChatWithBothParticipants(t *testing.T) {
	s := New()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")
	product := newProduct(t, s, bob, "Гитара")
	trade := newPendingTrade(t, s, alice, bob, product)

	chat := acceptTrade(t, s, trade)
	assert.True(t, chat.HasParticipant(alice.ID))
	assert.True(t, chat.HasParticipant(bob.ID))

	found, err := s.GetChatByTrade(context.Background(), trade.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, found.ID)

	aliceChats, err := s.ListChats(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceChats, 1)

	trades, err := s.ListTrades(context.Background(), alice.ID, storage.TradeFilter{Direction: "all", Status: "all"})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.NotNil(t, trades[0].ChatID)
	assert.Equal(t, chat.ID, *trades[0].ChatID)
}

func TestListMessagesSince_ReturnsOnlyNewer(t *testing.T) {
	s := New()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")
	product := newProduct(t, s, bob, "Книга")
	trade := newPendingTrade(t, s, alice, bob, product)
	chat := acceptTrade(t, s, trade)

	var lastID int64
	for _, text := range []string{"привет", "как дела", "обменяемся?"} {
		msg := &models.Message{ChatID: chat.ID, AuthorID: alice.ID, Content: text}
		require.NoError(t, s.CreateMessage(context.Background(), msg, nil))
		lastID = msg.ID
	}

	all, err := s.ListMessagesSince(context.Background(), chat.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Порядок строго возрастающий
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].ID, all[i-1].ID)
	}

	newer, err := s.ListMessagesSince(context.Background(), chat.ID, all[0].ID)
	require.NoError(t, err)
	require.Len(t, newer, 2)
	assert.Equal(t, "как дела", newer[0].Content)

	none, err := s.ListMessagesSince(context.Background(), chat.ID, lastID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpsertRating_RepeatAdjustsSumKeepsCount(t *testing.T) {
	s := New()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")
	tradeID := uuid.New()

	rate := func(stars int) {
		require.NoError(t, s.UpsertRating(context.Background(), &models.Rating{
			ID:          uuid.New(),
			RatedUserID: bob.ID,
			RaterUserID: alice.ID,
			TradeID:     tradeID,
			Stars:       stars,
		}))
	}

	rate(4)
	profile, err := s.GetProfile(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, profile.RatingSum)
	assert.Equal(t, 1, profile.RatingCount)

	rate(2)
	profile, err = s.GetProfile(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.RatingSum)
	assert.Equal(t, 1, profile.RatingCount)
	assert.Equal(t, 2.0, profile.AverageRating())
}

func TestMarkNotificationRead_SecondReadNotFound(t *testing.T) {
	s := New()
	alice := newUser(t, s, "alice")

	notif := &models.Notification{UserID: alice.ID, Title: "Привет", Category: models.NotificationInfo}
	require.NoError(t, s.CreateNotification(context.Background(), notif))

	require.NoError(t, s.MarkNotificationRead(context.Background(), alice.ID, notif.ID))
	err := s.MarkNotificationRead(context.Background(), alice.ID, notif.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBlockUser_IncrementsWarningsAndSuspends(t *testing.T) {
	s := New()
	alice := newUser(t, s, "alice")

	warnings, err := s.BlockUser(context.Background(), alice.ID, "спам", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, warnings)

	profile, err := s.GetProfile(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.True(t, profile.Suspended)
	assert.Equal(t, "спам", profile.SuspensionReason)

	rec, err := s.GetModeration(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationBlocked, rec.State)

	// Разблокировка снимает приостановку, но сохраняет счетчик
	require.NoError(t, s.UnblockUser(context.Background(), alice.ID, nil))
	profile, err = s.GetProfile(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.False(t, profile.Suspended)
	assert.Equal(t, 1, profile.Warnings)
}

func TestBlockUser_NotificationSeesUpdatedCounter(t *testing.T) {
	s := New()
	alice := newUser(t, s, "alice")

	notify := func(warnings int) *models.Notification {
		return &models.Notification{
			UserID:   alice.ID,
			Title:    "Страйк",
			Message:  fmt.Sprintf("страйк %d", warnings),
			Category: models.NotificationAlert,
		}
	}
	for i := 1; i <= 2; i++ {
		warnings, err := s.BlockUser(context.Background(), alice.ID, "спам", notify)
		require.NoError(t, err)
		require.Equal(t, i, warnings)
	}

	// Текст каждого уведомления совпадает со счетчиком на момент блокировки
	notifs, err := s.ListNotifications(context.Background(), alice.ID, []string{models.NotificationAlert}, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 2)
	assert.Equal(t, "страйк 2", notifs[0].Message)
	assert.Equal(t, "страйк 1", notifs[1].Message)
}

func TestPurgeUser_RemovesEverything(t *testing.T) {
	s := New()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")

	product := newProduct(t, s, alice, "Самокат")
	product.ImagePublicID = "swapplace/products/scooter"
	require.NoError(t, s.UpdateProduct(context.Background(), product))

	trade := newPendingTrade(t, s, bob, alice, product)
	chat := acceptTrade(t, s, trade)
	require.NoError(t, s.CreateMessage(context.Background(), &models.Message{
		ChatID: chat.ID, AuthorID: bob.ID, Content: "привет",
	}, nil))
	require.NoError(t, s.AddFavorite(context.Background(), &models.Favorite{
		ID: uuid.New(), UserID: bob.ID, ProductID: product.ID,
	}))

	imageIDs, err := s.PurgeUser(context.Background(), alice.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"swapplace/products/scooter"}, imageIDs)

	_, err = s.GetUser(context.Background(), alice.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetProduct(context.Background(), product.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetChat(context.Background(), chat.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetTrade(context.Background(), trade.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	favorites, err := s.ListFavorites(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	// Имя пользователя освобождается
	require.NoError(t, s.CreateUser(context.Background(), &models.User{ID: uuid.New(), Username: "alice"}))
}
