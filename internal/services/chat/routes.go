package chat

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API чатов
func (s *ChatService) SetupRoutes(app *fiber.App, authMW fiber.Handler) {
	api := app.Group("/api/chats")
	api.Use(authMW)

	api.Get("/", s.GetChats)
	api.Get("/:id/messages", s.GetChatMessages)
	api.Post("/:id/messages", s.SendMessage)
	api.Post("/:id/report", s.ReportChat)
}
