package product

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// ImageDestroyer удаляет изображения из внешнего хранилища
type ImageDestroyer interface {
	DestroyImages(ctx context.Context, publicIDs []string)
}

// Лимиты выборок товаров
const (
	searchLimit      = 100
	recommendedLimit = 8
	listLimit        = 100
)

// ProductService представляет сервис для работы с товарами
type ProductService struct {
	store  storage.Store
	images ImageDestroyer // может быть nil
}

// NewProductService создает новый экземпляр ProductService
func NewProductService(store storage.Store, images ImageDestroyer) *ProductService {
	return &ProductService{store: store, images: images}
}

// currentUserID извлекает ID пользователя из контекста запроса
func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}

// CreateProduct создает новый товар
func (s *ProductService) CreateProduct(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	var payload struct {
		Name          string   `json:"name"`
		Description   string   `json:"description"`
		ImageURL      string   `json:"image_url"`
		ImagePublicID string   `json:"image_public_id"`
		Category      string   `json:"category"`
		Tags          []string `json:"tags"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат данных"})
	}

	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Укажите название товара"})
	}

	product := &models.Product{
		ID:            uuid.New(),
		OwnerID:       userID,
		Name:          payload.Name,
		Description:   payload.Description,
		ImageURL:      payload.ImageURL,
		ImagePublicID: payload.ImagePublicID,
		Category:      payload.Category,
		Tags:          payload.Tags,
	}

	if err := s.store.CreateProduct(c.Context(), product); err != nil {
		log.Printf("Ошибка создания товара: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка создания товара"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "product": product})
}

// GetProducts возвращает ленту товаров: сначала новые
func (s *ProductService) GetProducts(c fiber.Ctx) error {
	products, err := s.store.ListProducts(c.Context(), listLimit)
	if err != nil {
		log.Printf("Ошибка получения списка товаров: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения товаров"})
	}

	return c.JSON(fiber.Map{"ok": true, "products": products, "count": len(products)})
}

// GetMyProducts возвращает товары текущего пользователя
func (s *ProductService) GetMyProducts(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	products, err := s.store.ListProductsByOwner(c.Context(), userID)
	if err != nil {
		log.Printf("Ошибка получения товаров пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения товаров"})
	}

	return c.JSON(fiber.Map{"ok": true, "products": products, "count": len(products)})
}

// GetProduct возвращает один товар по ID
func (s *ProductService) GetProduct(c fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID товара"})
	}

	product, err := s.store.GetProduct(c.Context(), productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Товар не найден"})
		}
		log.Printf("Ошибка получения товара: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения товара"})
	}

	return c.JSON(fiber.Map{"ok": true, "product": product})
}

// UpdateProduct обновляет товар. Доступно только владельцу
func (s *ProductService) UpdateProduct(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID товара"})
	}

	product, err := s.store.GetProduct(c.Context(), productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Товар не найден"})
		}
		log.Printf("Ошибка получения товара: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения товара"})
	}

	if product.OwnerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"ok": false, "error": "Вы не являетесь владельцем этого товара"})
	}

	var payload struct {
		Name          *string  `json:"name"`
		Description   *string  `json:"description"`
		ImageURL      *string  `json:"image_url"`
		ImagePublicID *string  `json:"image_public_id"`
		Category      *string  `json:"category"`
		Tags          []string `json:"tags"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат данных"})
	}

	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Название товара не может быть пустым"})
		}
		product.Name = name
	}
	if payload.Description != nil {
		product.Description = *payload.Description
	}
	if payload.ImageURL != nil {
		product.ImageURL = *payload.ImageURL
	}
	if payload.ImagePublicID != nil {
		product.ImagePublicID = *payload.ImagePublicID
	}
	if payload.Category != nil {
		product.Category = *payload.Category
	}
	if payload.Tags != nil {
		product.Tags = payload.Tags
	}

	if err := s.store.UpdateProduct(c.Context(), product); err != nil {
		log.Printf("Ошибка обновления товара: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка обновления товара"})
	}

	return c.JSON(fiber.Map{"ok": true, "product": product})
}

// DeleteProduct удаляет товар вместе со связанными обменами и избранным.
// Доступно только владельцу
func (s *ProductService) DeleteProduct(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID товара"})
	}

	product, err := s.store.GetProduct(c.Context(), productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Товар не найден"})
		}
		log.Printf("Ошибка получения товара: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения товара"})
	}

	if product.OwnerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"ok": false, "error": "Вы не являетесь владельцем этого товара"})
	}

	if err := s.store.DeleteProduct(c.Context(), productID); err != nil {
		log.Printf("Ошибка удаления товара: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка удаления товара"})
	}

	if s.images != nil && product.ImagePublicID != "" {
		s.images.DestroyImages(c.Context(), []string{product.ImagePublicID})
	}

	return c.JSON(fiber.Map{"ok": true, "message": "Товар удален"})
}

// SearchProducts ищет товары по названию или имени владельца
func (s *ProductService) SearchProducts(c fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.JSON(fiber.Map{"ok": true, "products": []models.Product{}, "count": 0})
	}

	products, err := s.store.SearchProducts(c.Context(), query, searchLimit)
	if err != nil {
		log.Printf("Ошибка поиска товаров: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка поиска товаров"})
	}

	return c.JSON(fiber.Map{"ok": true, "products": products, "count": len(products)})
}

// GetRecommended возвращает товары, совпадающие по тегам с интересами
// пользователя, исключая его собственные. Без интересов — просто
// последние чужие товары
func (s *ProductService) GetRecommended(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	profile, err := s.store.GetProfile(c.Context(), userID)
	if err != nil {
		log.Printf("Ошибка получения профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения рекомендаций"})
	}

	products, err := s.store.RecommendProducts(c.Context(), userID, profile.InterestList(), recommendedLimit)
	if err != nil {
		log.Printf("Ошибка получения рекомендаций: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения рекомендаций"})
	}

	return c.JSON(fiber.Map{"ok": true, "products": products, "count": len(products)})
}

// RegisterVisit увеличивает счетчик просмотров товара
func (s *ProductService) RegisterVisit(c fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID товара"})
	}

	if err := s.store.IncrementVisits(c.Context(), productID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Товар не найден"})
		}
		log.Printf("Ошибка учета просмотра: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка учета просмотра"})
	}

	return c.JSON(fiber.Map{"ok": true})
}
