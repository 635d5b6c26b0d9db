package trade

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API обменов
func (s *TradeService) SetupRoutes(app *fiber.App, authMW fiber.Handler) {
	api := app.Group("/api/trades")
	api.Use(authMW)

	api.Post("/", s.CreateTrade)
	api.Get("/", s.GetMyTrades)
	api.Put("/:id/respond", s.RespondTrade)
}
