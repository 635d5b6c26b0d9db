package moderation

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API модерации
func (s *ModerationService) SetupRoutes(app *fiber.App, authMW fiber.Handler) {
	api := app.Group("/api/moderation")
	api.Use(authMW)
	api.Use(s.AdminOnly)

	api.Post("/strike", s.Strike)
	api.Post("/unblock", s.Unblock)
	api.Get("/users", s.GetUsers)
	api.Get("/insights", s.GetInsights)
}
