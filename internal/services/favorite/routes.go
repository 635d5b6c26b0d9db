package favorite

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API избранного
func (s *FavoriteService) SetupRoutes(app *fiber.App, authMW fiber.Handler) {
	api := app.Group("/api/favorites")
	api.Use(authMW)

	api.Get("/", s.GetFavorites)
	api.Post("/:id", s.AddToFavorites)
	api.Delete("/:id", s.RemoveFromFavorites)
	api.Get("/:id/check", s.CheckFavorite)
}
