package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// Ошибки хранилища. Обработчики переводят их в HTTP-статусы.
var (
	// ErrNotFound — запрошенная запись отсутствует
	ErrNotFound = errors.New("запись не найдена")
	// ErrDuplicate — нарушено ограничение уникальности
	ErrDuplicate = errors.New("запись уже существует")
	// ErrStateConflict — операция недопустима в текущем состоянии записи
	ErrStateConflict = errors.New("недопустимое состояние записи")
)

// TradeFilter задает выборку обменов пользователя
type TradeFilter struct {
	Direction string // all, incoming, outgoing
	Status    string // all, pending, accepted, rejected
}

// Store — хранилище SwapPlace. Составные операции (создание обмена с
// уведомлением, принятие обмена с чатом, каскадное удаление и т.д.)
// атомарны: либо выполняется всё, либо ничего.
type Store interface {
	// Пользователи и профили
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateInterests(ctx context.Context, userID uuid.UUID, interests string) error

	// Товары
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, limit int) ([]models.Product, error)
	ListProductsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error)
	RecommendProducts(ctx context.Context, userID uuid.UUID, interests []string, limit int) ([]models.Product, error)
	IncrementVisits(ctx context.Context, productID uuid.UUID) error

	// Избранное
	AddFavorite(ctx context.Context, fav *models.Favorite) error
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error)
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	// Обмены. AcceptTrade и RejectTrade возвращают ErrStateConflict,
	// если обмен уже не в статусе pending.
	CreateTrade(ctx context.Context, trade *models.Trade, notif *models.Notification) error
	GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	ListTrades(ctx context.Context, userID uuid.UUID, filter TradeFilter) ([]models.Trade, error)
	CountTradesReceived(ctx context.Context, userID uuid.UUID) (int, error)
	AcceptTrade(ctx context.Context, tradeID uuid.UUID, chat *models.Chat, notifs []*models.Notification) (*models.Chat, error)
	RejectTrade(ctx context.Context, tradeID uuid.UUID, notif *models.Notification) error

	// Чаты и сообщения
	GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	GetChatByTrade(ctx context.Context, tradeID uuid.UUID) (*models.Chat, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)
	CreateMessage(ctx context.Context, msg *models.Message, notif *models.Notification) error
	ListMessagesSince(ctx context.Context, chatID uuid.UUID, sinceID int64) ([]models.Message, error)

	// Уведомления
	CreateNotification(ctx context.Context, notif *models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, categories []string, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID uuid.UUID, id int64) error

	// Оценки. UpsertRating атомарно обновляет и запись, и накопитель
	// профиля: вставка добавляет stars и увеличивает счетчик, повторная
	// оценка корректирует сумму на разницу, не трогая счетчик.
	UpsertRating(ctx context.Context, rating *models.Rating) error
	GetRating(ctx context.Context, ratedID, raterID, tradeID uuid.UUID) (*models.Rating, error)

	// Модерация
	GetModeration(ctx context.Context, userID uuid.UUID) (*models.ModerationRecord, error)
	ListModeration(ctx context.Context) ([]models.ModerationRecord, error)
	// BlockUser возвращает счетчик предупреждений после увеличения.
	// notify строит уведомление по этому счетчику и вызывается в той же
	// транзакции, поэтому текст всегда совпадает с состоянием.
	BlockUser(ctx context.Context, userID uuid.UUID, reason string, notify func(warnings int) *models.Notification) (int, error)
	UnblockUser(ctx context.Context, userID uuid.UUID, notif *models.Notification) error
	PurgeUser(ctx context.Context, userID uuid.UUID, finalNotice *models.Notification) ([]string, error)
	GetInsights(ctx context.Context) (*models.InsightStats, error)
}
