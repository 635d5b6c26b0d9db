package product

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API товаров
func (s *ProductService) SetupRoutes(app *fiber.App, authMW fiber.Handler) {
	api := app.Group("/api/products")
	api.Use(authMW)

	api.Get("/", s.GetProducts)
	api.Get("/my", s.GetMyProducts)
	api.Get("/search", s.SearchProducts)
	api.Get("/recommended", s.GetRecommended)
	api.Post("/", s.CreateProduct)
	api.Get("/:id", s.GetProduct)
	api.Put("/:id", s.UpdateProduct)
	api.Delete("/:id", s.DeleteProduct)
	api.Post("/:id/visit", s.RegisterVisit)
}
