package auth

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajivgeraev/swapplace-api/internal/config"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
	"github.com/rajivgeraev/swapplace-api/internal/utils"
)

// AuthService — структура для обработки регистрации и входа
type AuthService struct {
	cfg        *config.Config
	store      storage.Store
	jwtService *utils.JWTService
}

// NewAuthService — конструктор AuthService
func NewAuthService(cfg *config.Config, store storage.Store) *AuthService {
	return &AuthService{
		cfg:        cfg,
		store:      store,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService возвращает JWT-сервис для настройки middleware
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// Register создает нового пользователя
func (s *AuthService) Register(c fiber.Ctx) error {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат данных"})
	}

	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Укажите имя пользователя и пароль"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Ошибка хеширования пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка создания пользователя"})
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}

	if err := s.store.CreateUser(c.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"ok": false, "error": "Имя пользователя уже занято"})
		}
		log.Printf("Ошибка создания пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка создания пользователя"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":   true,
		"user": user.Info(),
	})
}

// Login проверяет учетные данные и возвращает JWT
func (s *AuthService) Login(c fiber.Ctx) error {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат данных"})
	}

	user, err := s.store.GetUserByUsername(c.Context(), payload.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Неверное имя пользователя или пароль"})
		}
		log.Printf("Ошибка поиска пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка входа"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Неверное имя пользователя или пароль"})
	}

	token, err := s.jwtService.GenerateToken(user.ID.String())
	if err != nil {
		log.Printf("Ошибка генерации токена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка генерации токена"})
	}

	return c.JSON(fiber.Map{
		"ok":    true,
		"token": token,
		"user":  user.Info(),
	})
}

// Me возвращает данные текущего пользователя
func (s *AuthService) Me(c fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	user, err := s.store.GetUser(c.Context(), userUUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Пользователь не найден"})
		}
		log.Printf("Ошибка получения пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения пользователя"})
	}

	return c.JSON(fiber.Map{
		"ok": true,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}
