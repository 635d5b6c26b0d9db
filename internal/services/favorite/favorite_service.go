package favorite

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// FavoriteService представляет сервис для работы с избранными товарами
type FavoriteService struct {
	store storage.Store
}

// NewFavoriteService создает новый экземпляр FavoriteService
func NewFavoriteService(store storage.Store) *FavoriteService {
	return &FavoriteService{store: store}
}

// currentUserID извлекает ID пользователя из контекста запроса
func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}

// AddToFavorites добавляет товар в избранное
func (s *FavoriteService) AddToFavorites(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID товара"})
	}

	if _, err := s.store.GetProduct(c.Context(), productID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Товар не найден"})
		}
		log.Printf("Ошибка получения товара: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка добавления в избранное"})
	}

	fav := &models.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
	}

	if err := s.store.AddFavorite(c.Context(), fav); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Повторное добавление не ошибка
			return c.JSON(fiber.Map{"ok": true, "message": "Товар уже в избранном"})
		}
		log.Printf("Ошибка добавления в избранное: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка добавления в избранное"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "favorite": fav})
}

// RemoveFromFavorites удаляет товар из избранного
func (s *FavoriteService) RemoveFromFavorites(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID товара"})
	}

	if err := s.store.RemoveFavorite(c.Context(), userID, productID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Товар не найден в избранном"})
		}
		log.Printf("Ошибка удаления из избранного: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка удаления из избранного"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// GetFavorites возвращает избранные товары пользователя
func (s *FavoriteService) GetFavorites(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	favorites, err := s.store.ListFavorites(c.Context(), userID)
	if err != nil {
		log.Printf("Ошибка получения избранного: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения избранного"})
	}

	return c.JSON(fiber.Map{"ok": true, "favorites": favorites, "count": len(favorites)})
}

// CheckFavorite проверяет, находится ли товар в избранном
func (s *FavoriteService) CheckFavorite(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID товара"})
	}

	isFavorite, err := s.store.IsFavorite(c.Context(), userID, productID)
	if err != nil {
		log.Printf("Ошибка проверки избранного: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка проверки избранного"})
	}

	return c.JSON(fiber.Map{"ok": true, "is_favorite": isFavorite})
}
