package chat

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
	"github.com/rajivgeraev/swapplace-api/internal/utils"
)

// maxMessageLength — максимальная длина сообщения в символах
const maxMessageLength = 500

// ChatService представляет сервис для работы с чатами и сообщениями
type ChatService struct {
	store storage.Store
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(store storage.Store) *ChatService {
	return &ChatService{store: store}
}

// currentUserID извлекает ID пользователя из контекста запроса
func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}

// memberChat загружает чат и проверяет, что пользователь его участник
func (s *ChatService) memberChat(c fiber.Ctx, userID uuid.UUID) (*models.Chat, error) {
	chatID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат ID чата"})
	}

	chat, err := s.store.GetChat(c.Context(), chatID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "Чат не найден"})
		}
		log.Printf("Ошибка получения чата: %v", err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения чата"})
	}

	if !chat.HasParticipant(userID) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"ok": false, "error": "Вы не являетесь участником этого чата"})
	}

	return chat, nil
}

// GetChats возвращает чаты пользователя: сначала новые
func (s *ChatService) GetChats(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	chats, err := s.store.ListChats(c.Context(), userID)
	if err != nil {
		log.Printf("Ошибка получения списка чатов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения чатов"})
	}

	return c.JSON(fiber.Map{"ok": true, "chats": chats, "count": len(chats)})
}

// GetChatMessages возвращает сообщения чата по возрастанию.
// since_id отдает только сообщения новее указанного ID; отсутствующий
// или нечитаемый since_id означает полную историю
func (s *ChatService) GetChatMessages(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	chat, ferr := s.memberChat(c, userID)
	if chat == nil {
		return ferr
	}

	var sinceID int64
	if raw := c.Query("since_id"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			sinceID = parsed
		}
	}

	messages, err := s.store.ListMessagesSince(c.Context(), chat.ID, sinceID)
	if err != nil {
		log.Printf("Ошибка получения сообщений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка получения сообщений"})
	}

	items := make([]fiber.Map, 0, len(messages))
	for _, msg := range messages {
		item := fiber.Map{
			"id":         msg.ID,
			"content":    msg.Content,
			"timestamp":  utils.FormatDisplayTime(msg.CreatedAt),
			"created_at": msg.CreatedAt,
			"mine":       msg.AuthorID == userID,
		}
		if msg.Author != nil {
			item["author"] = msg.Author.Username
		}
		items = append(items, item)
	}

	return c.JSON(fiber.Map{"ok": true, "messages": items, "count": len(items)})
}

// SendMessage добавляет сообщение в чат и уведомляет второго участника
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	chat, ferr := s.memberChat(c, userID)
	if chat == nil {
		return ferr
	}

	var payload struct {
		Text string `json:"text"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Неверный формат данных"})
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Сообщение не может быть пустым"})
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Сообщение слишком длинное (максимум 500 символов)"})
	}

	author, err := s.store.GetUser(c.Context(), userID)
	if err != nil {
		log.Printf("Ошибка получения пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка отправки сообщения"})
	}

	msg := &models.Message{
		ChatID:   chat.ID,
		AuthorID: userID,
		Content:  text,
	}

	// Уведомление второму участнику создается в той же транзакции
	notif := &models.Notification{
		UserID:   chat.OtherParticipant(userID),
		Title:    "Новое сообщение",
		Message:  "Пользователь " + author.Username + " написал вам в чате",
		Category: models.NotificationMessage,
		Link:     "/chats/" + chat.ID.String(),
	}

	if err := s.store.CreateMessage(c.Context(), msg, notif); err != nil {
		log.Printf("Ошибка отправки сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Ошибка отправки сообщения"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok": true,
		"message": fiber.Map{
			"id":         msg.ID,
			"author":     author.Username,
			"content":    msg.Content,
			"timestamp":  utils.FormatDisplayTime(msg.CreatedAt),
			"created_at": msg.CreatedAt,
		},
	})
}

// ReportChat принимает жалобу участника чата. Жалоба не сохраняется,
// пользователю возвращается подтверждение службы поддержки
func (s *ChatService) ReportChat(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Пользователь не авторизован"})
	}

	chat, ferr := s.memberChat(c, userID)
	if chat == nil {
		return ferr
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"message": "Жалоба отправлена. Служба поддержки рассмотрит ее в ближайшее время",
	})
}
