package profile

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API профиля
func (s *ProfileService) SetupRoutes(app *fiber.App, authMW fiber.Handler) {
	api := app.Group("/api/profile")
	api.Use(authMW)

	api.Get("/panel", s.GetPanel)
	api.Put("/interests", s.UpdateInterests)
}
