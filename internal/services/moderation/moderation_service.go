package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// ImageDestroyer удаляет изображения из внешнего хранилища
type ImageDestroyer interface {
	DestroyImages(ctx context.Context, publicIDs []string)
}

// ModerationService представляет сервис модерации пользователей
type ModerationService struct {
	store  storage.Store
	images ImageDestroyer // может быть nil
}

// NewModerationService создает новый экземпляр ModerationService
func NewModerationService(store storage.Store, images ImageDestroyer) *ModerationService {
	return &ModerationService{store: store, images: images}
}

// currentUserID извлекает ID пользователя из контекста запроса
func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}

// AdminOnly — middleware, пропускающий только администраторов.
// Проверка идет до любых изменений
func (s *ModerationService) AdminOnly(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	user, err := s.store.GetUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
		}
		log.Printf("Ошибка получения пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка проверки прав"})
	}

	if user.Role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"ok": false, "error": "Требуются права администратора"})
	}

	return c.Next()
}

// targetUserID читает user_id из тела запроса
func targetUserID(c fiber.Ctx) (uuid.UUID, error) {
	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(payload.UserID)
}

// Strike выдает пользователю страйк: блокировка, предупреждение и
// уведомление. Третий страйк необратимо удаляет аккаунт со всем
// содержимым
func (s *ModerationService) Strike(c fiber.Ctx) error {
	userID, err := targetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID пользователя"})
	}

	// Текст страйка строится внутри транзакции блокировки, чтобы номер
	// всегда совпадал со счетчиком
	reason := "Нарушение правил сообщества"
	warnings, err := s.store.BlockUser(c.Context(), userID, reason, func(warnings int) *models.Notification {
		return &models.Notification{
			UserID:   userID,
			Title:    "Страйк",
			Message:  fmt.Sprintf("Вы получили страйк %d/%d. Причина: %s", warnings, models.MaxWarnings, reason),
			Category: models.NotificationAlert,
		}
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Пользователь не найден"})
		}
		log.Printf("Ошибка выдачи страйка: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка выдачи страйка"})
	}

	// Третий страйк: аккаунт и всё связанное с ним удаляются
	if warnings >= models.MaxWarnings {
		finalNotice := &models.Notification{
			UserID:   userID,
			Title:    "Аккаунт удален",
			Message:  fmt.Sprintf("Ваш аккаунт удален после %d страйков", models.MaxWarnings),
			Category: models.NotificationDanger,
		}

		imageIDs, err := s.store.PurgeUser(c.Context(), userID, finalNotice)
		if err != nil {
			log.Printf("Ошибка удаления пользователя: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка удаления пользователя"})
		}

		if s.images != nil && len(imageIDs) > 0 {
			s.images.DestroyImages(c.Context(), imageIDs)
		}

		return c.JSON(fiber.Map{
			"ok":       true,
			"warnings": warnings,
			"deleted":  true,
			"message":  "Пользователь удален после третьего страйка",
		})
	}

	return c.JSON(fiber.Map{"ok": true, "warnings": warnings, "deleted": false})
}

// Unblock возвращает пользователя в активное состояние. Счетчик
// страйков сохраняется
func (s *ModerationService) Unblock(c fiber.Ctx) error {
	userID, err := targetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID пользователя"})
	}

	notif := &models.Notification{
		UserID:   userID,
		Title:    "Блокировка снята",
		Message:  "Ваш аккаунт снова активен",
		Category: models.NotificationInfo,
	}

	if err := s.store.UnblockUser(c.Context(), userID, notif); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Пользователь не найден"})
		}
		log.Printf("Ошибка разблокировки пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка разблокировки пользователя"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// GetInsights возвращает сводку активности: общие счетчики и самый
// востребованный товар
func (s *ModerationService) GetInsights(c fiber.Ctx) error {
	stats, err := s.store.GetInsights(c.Context())
	if err != nil {
		log.Printf("Ошибка получения сводки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения сводки"})
	}

	return c.JSON(fiber.Map{"ok": true, "insights": stats})
}

// GetUsers возвращает всех пользователей с состоянием модерации
func (s *ModerationService) GetUsers(c fiber.Ctx) error {
	records, err := s.store.ListModeration(c.Context())
	if err != nil {
		log.Printf("Ошибка получения списка пользователей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения списка пользователей"})
	}

	return c.JSON(fiber.Map{"ok": true, "users": records, "count": len(records)})
}
