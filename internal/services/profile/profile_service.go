package profile

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// ProfileService представляет сервис для работы с профилем пользователя
type ProfileService struct {
	store storage.Store
}

// NewProfileService создает новый экземпляр ProfileService
func NewProfileService(store storage.Store) *ProfileService {
	return &ProfileService{store: store}
}

// currentUserID извлекает ID пользователя из контекста запроса
func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}

// GetPanel возвращает сводку продавца: товары, просмотры, рейтинг
// и количество полученных предложений обмена
func (s *ProfileService) GetPanel(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	profile, err := s.store.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Профиль не найден"})
		}
		log.Printf("Ошибка получения профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения профиля"})
	}

	products, err := s.store.ListProductsByOwner(c.Context(), userID)
	if err != nil {
		log.Printf("Ошибка получения товаров: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения профиля"})
	}

	totalVisits := 0
	for _, p := range products {
		totalVisits += p.Visits
	}

	tradesReceived, err := s.store.CountTradesReceived(c.Context(), userID)
	if err != nil {
		log.Printf("Ошибка подсчета обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения профиля"})
	}

	return c.JSON(fiber.Map{
		"ok": true,
		"panel": fiber.Map{
			"product_count":   len(products),
			"total_visits":    totalVisits,
			"average_rating":  profile.AverageRating(),
			"rating_count":    profile.RatingCount,
			"trades_received": tradesReceived,
			"warnings":        profile.Warnings,
			"suspended":       profile.Suspended,
			"interests":       profile.InterestList(),
		},
	})
}

// UpdateInterests обновляет интересы пользователя для рекомендаций.
// Интересы передаются списком тегов и хранятся строкой через запятую
func (s *ProfileService) UpdateInterests(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	var payload struct {
		Interests []string `json:"interests"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат данных"})
	}

	var tags []string
	for _, raw := range payload.Interests {
		if tag := strings.ToLower(strings.TrimSpace(raw)); tag != "" {
			tags = append(tags, tag)
		}
	}

	if err := s.store.UpdateInterests(c.Context(), userID, strings.Join(tags, ",")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Профиль не найден"})
		}
		log.Printf("Ошибка обновления интересов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка обновления интересов"})
	}

	return c.JSON(fiber.Map{"ok": true, "interests": tags})
}
