package cloudinary

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для работы с загрузкой изображений
func (s *CloudinaryService) SetupRoutes(app *fiber.App, authMW fiber.Handler) {
	api := app.Group("/api/uploads")
	api.Use(authMW)

	api.Get("/params", s.GenerateUploadParams)
}
