package auth

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App, authMW fiber.Handler) {
	app.Post("/api/auth/register", s.Register)
	app.Post("/api/auth/login", s.Login)

	// Защищенные маршруты
	protected := app.Group("/api")
	protected.Use(authMW)
	protected.Get("/me", s.Me)
}
