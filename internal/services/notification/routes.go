package notification

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API уведомлений
func (s *NotificationService) SetupRoutes(app *fiber.App, authMW fiber.Handler) {
	api := app.Group("/api/notifications")
	api.Use(authMW)

	api.Get("/", s.GetNotifications)
	api.Post("/read", s.MarkRead)
	api.Get("/strikes", s.GetStrikes)
}
