package notification

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// feedLimit — максимум уведомлений в ленте
const feedLimit = 20

// NotificationService представляет сервис для работы с уведомлениями
type NotificationService struct {
	store storage.Store
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(store storage.Store) *NotificationService {
	return &NotificationService{store: store}
}

// currentUserID извлекает ID пользователя из контекста запроса
func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}

// feedItems преобразует уведомления в формат ленты
func feedItems(notifs []models.Notification) []fiber.Map {
	now := time.Now()
	items := make([]fiber.Map, 0, len(notifs))
	for _, n := range notifs {
		items = append(items, fiber.Map{
			"id":          n.ID,
			"title":       n.Title,
			"message":     n.Message,
			"category":    n.Category,
			"link":        n.Link,
			"created_at":  n.CreatedAt,
			"age_seconds": int64(now.Sub(n.CreatedAt).Seconds()),
		})
	}
	return items
}

// GetNotifications возвращает видимые уведомления пользователя:
// сначала новые, не более 20, с необязательным фильтром по категории
func (s *NotificationService) GetNotifications(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	var categories []string
	if category := c.Query("category"); category != "" {
		categories = []string{category}
	}

	notifs, err := s.store.ListNotifications(c.Context(), userID, categories, feedLimit)
	if err != nil {
		log.Printf("Ошибка получения уведомлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения уведомлений"})
	}

	items := feedItems(notifs)
	return c.JSON(fiber.Map{"ok": true, "notifications": items, "count": len(items)})
}

// MarkRead скрывает уведомление из ленты. Уже скрытое или чужое
// уведомление считается отсутствующим
func (s *NotificationService) MarkRead(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	var payload struct {
		ID int64 `json:"id"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат данных"})
	}

	if err := s.store.MarkNotificationRead(c.Context(), userID, payload.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Уведомление не найдено"})
		}
		log.Printf("Ошибка скрытия уведомления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка обработки уведомления"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// GetStrikes возвращает уведомления модерации: страйки и удаления
func (s *NotificationService) GetStrikes(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	categories := []string{models.NotificationAlert, models.NotificationDanger}
	notifs, err := s.store.ListNotifications(c.Context(), userID, categories, feedLimit)
	if err != nil {
		log.Printf("Ошибка получения страйков: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения страйков"})
	}

	items := feedItems(notifs)
	return c.JSON(fiber.Map{"ok": true, "strikes": items, "count": len(items)})
}
