package rating

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// RatingService представляет сервис для оценок участников обмена
type RatingService struct {
	store storage.Store
}

// NewRatingService создает новый экземпляр RatingService
func NewRatingService(store storage.Store) *RatingService {
	return &RatingService{store: store}
}

// currentUserID извлекает ID пользователя из контекста запроса
func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}

// RateTrade ставит оценку второму участнику принятого обмена.
// Повторная оценка перезаписывает предыдущую
func (s *RatingService) RateTrade(c fiber.Ctx) error {
	raterID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	tradeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID обмена"})
	}

	var payload struct {
		Stars int `json:"stars"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат данных"})
	}

	if payload.Stars < 1 || payload.Stars > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Оценка должна быть от 1 до 5"})
	}

	// Оценивать можно только принятый обмен: чат существует лишь у него
	chat, err := s.store.GetChatByTrade(c.Context(), tradeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Обмен не найден или еще не принят"})
		}
		log.Printf("Ошибка получения чата обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка сохранения оценки"})
	}

	if !chat.HasParticipant(raterID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"ok": false, "error": "Оценивать обмен могут только его участники"})
	}

	rating := &models.Rating{
		ID:          uuid.New(),
		RatedUserID: chat.OtherParticipant(raterID),
		RaterUserID: raterID,
		TradeID:     tradeID,
		Stars:       payload.Stars,
	}

	if err := s.store.UpsertRating(c.Context(), rating); err != nil {
		log.Printf("Ошибка сохранения оценки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка сохранения оценки"})
	}

	return c.JSON(fiber.Map{"ok": true, "rating": rating})
}

// GetMyRating возвращает оценку, которую пользователь уже поставил за обмен
func (s *RatingService) GetMyRating(c fiber.Ctx) error {
	raterID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	tradeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID обмена"})
	}

	chat, err := s.store.GetChatByTrade(c.Context(), tradeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Обмен не найден или еще не принят"})
		}
		log.Printf("Ошибка получения чата обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения оценки"})
	}

	if !chat.HasParticipant(raterID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"ok": false, "error": "Оценивать обмен могут только его участники"})
	}

	rating, err := s.store.GetRating(c.Context(), chat.OtherParticipant(raterID), raterID, tradeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Оценки еще нет
			return c.JSON(fiber.Map{"ok": true, "rating": nil})
		}
		log.Printf("Ошибка получения оценки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения оценки"})
	}

	return c.JSON(fiber.Map{"ok": true, "rating": rating})
}
