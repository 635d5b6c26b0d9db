package rating

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API оценок. Маршруты живут на
// префиксе /api/trades, который уже закрыт авторизацией группы обменов,
// поэтому свой слой авторизации здесь не добавляется
func (s *RatingService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/trades")

	api.Post("/:id/rating", s.RateTrade)
	api.Get("/:id/rating", s.GetMyRating)
}
