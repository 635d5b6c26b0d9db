package trade

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// TradeService представляет сервис для работы с обменами
type TradeService struct {
	store storage.Store
}

// NewTradeService создает новый экземпляр TradeService
func NewTradeService(store storage.Store) *TradeService {
	return &TradeService{store: store}
}

// currentUserID извлекает ID пользователя из контекста запроса
func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}

// CreateTrade создает новое предложение обмена
func (s *TradeService) CreateTrade(c fiber.Ctx) error {
	proposerID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	var payload struct {
		ProductID string `json:"product_id"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат данных"})
	}

	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID товара"})
	}

	product, err := s.store.GetProduct(c.Context(), productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Товар не найден"})
		}
		log.Printf("Ошибка получения товара: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка создания обмена"})
	}

	// Нельзя предложить обмен за собственный товар
	if product.OwnerID == proposerID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Вы не можете предложить обмен самому себе"})
	}

	proposer, err := s.store.GetUser(c.Context(), proposerID)
	if err != nil {
		log.Printf("Ошибка получения пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка создания обмена"})
	}

	trade := &models.Trade{
		ID:          uuid.New(),
		ProposerID:  proposerID,
		ResponderID: product.OwnerID,
		ProductID:   productID,
		Status:      models.TradeStatusPending,
	}

	// Уведомление владельцу товара создается в той же транзакции
	notif := &models.Notification{
		UserID:   product.OwnerID,
		Title:    "Новое предложение обмена",
		Message:  fmt.Sprintf("Пользователь %s предлагает обмен за товар «%s»", proposer.Username, product.Name),
		Category: models.NotificationNewTrade,
		Link:     "/trades",
	}

	if err := s.store.CreateTrade(c.Context(), trade, notif); err != nil {
		log.Printf("Ошибка создания обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка создания обмена"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "trade": trade})
}

// RespondTrade принимает или отклоняет предложение обмена.
// Отвечает только получатель; решение по обмену окончательное
func (s *TradeService) RespondTrade(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	tradeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID обмена"})
	}

	var payload struct {
		Decision string `json:"decision"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат данных"})
	}

	if payload.Decision != "accept" && payload.Decision != "reject" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Решение должно быть accept или reject"})
	}

	trade, err := s.store.GetTrade(c.Context(), tradeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Обмен не найден"})
		}
		log.Printf("Ошибка получения обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка обработки обмена"})
	}

	if trade.ResponderID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"ok": false, "error": "Отвечать на предложение может только получатель"})
	}

	if payload.Decision == "reject" {
		notif := &models.Notification{
			UserID:   trade.ProposerID,
			Title:    "Обмен отклонен",
			Message:  "Ваше предложение обмена было отклонено",
			Category: models.NotificationTradeRejected,
			Link:     "/trades",
		}

		if err := s.store.RejectTrade(c.Context(), tradeID, notif); err != nil {
			if errors.Is(err, storage.ErrStateConflict) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"ok": false, "error": "Решение по обмену уже принято"})
			}
			log.Printf("Ошибка отклонения обмена: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка обработки обмена"})
		}

		return c.JSON(fiber.Map{"ok": true, "status": models.TradeStatusRejected})
	}

	// Принятие: статус, чат и оба уведомления в одной транзакции
	chat := &models.Chat{
		ID:          uuid.New(),
		TradeID:     tradeID,
		ProposerID:  trade.ProposerID,
		ResponderID: trade.ResponderID,
	}

	chatLink := "/chats/" + chat.ID.String()
	notifs := []*models.Notification{
		{
			UserID:   trade.ProposerID,
			Title:    "Обмен принят",
			Message:  "Ваше предложение обмена принято. Обсудите детали в чате",
			Category: models.NotificationTradeAccepted,
			Link:     chatLink,
		},
		{
			UserID:   trade.ResponderID,
			Title:    "Обмен принят",
			Message:  "Вы приняли предложение обмена. Обсудите детали в чате",
			Category: models.NotificationTradeAccepted,
			Link:     chatLink,
		},
	}

	createdChat, err := s.store.AcceptTrade(c.Context(), tradeID, chat, notifs)
	if err != nil {
		if errors.Is(err, storage.ErrStateConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"ok": false, "error": "Решение по обмену уже принято"})
		}
		log.Printf("Ошибка принятия обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка обработки обмена"})
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"status":  models.TradeStatusAccepted,
		"chat_id": createdChat.ID,
	})
}

// GetMyTrades возвращает обмены пользователя с фильтрами по направлению
// и статусу
func (s *TradeService) GetMyTrades(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	filter := storage.TradeFilter{
		Direction: c.Query("direction", "all"),
		Status:    c.Query("status", "all"),
	}

	switch filter.Direction {
	case "all", "incoming", "outgoing":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверное направление выборки"})
	}

	switch filter.Status {
	case "all", models.TradeStatusPending, models.TradeStatusAccepted, models.TradeStatusRejected:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный статус выборки"})
	}

	trades, err := s.store.ListTrades(c.Context(), userID, filter)
	if err != nil {
		log.Printf("Ошибка получения списка обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения обменов"})
	}

	return c.JSON(fiber.Map{"ok": true, "trades": trades, "count": len(trades)})
}
