package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/rajivgeraev/swapplace-api/internal/config"
	"github.com/rajivgeraev/swapplace-api/internal/db"
	"github.com/rajivgeraev/swapplace-api/internal/middleware"
	"github.com/rajivgeraev/swapplace-api/internal/services/auth"
	"github.com/rajivgeraev/swapplace-api/internal/services/chat"
	"github.com/rajivgeraev/swapplace-api/internal/services/cloudinary"
	"github.com/rajivgeraev/swapplace-api/internal/services/favorite"
	"github.com/rajivgeraev/swapplace-api/internal/services/moderation"
	"github.com/rajivgeraev/swapplace-api/internal/services/notification"
	"github.com/rajivgeraev/swapplace-api/internal/services/product"
	"github.com/rajivgeraev/swapplace-api/internal/services/profile"
	"github.com/rajivgeraev/swapplace-api/internal/services/rating"
	"github.com/rajivgeraev/swapplace-api/internal/services/trade"
	"github.com/rajivgeraev/swapplace-api/internal/storage/postgres"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	store := postgres.New(db.Pool)

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "SwapPlace API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	authService := auth.NewAuthService(cfg, store)
	cloudinaryService, err := cloudinary.NewCloudinaryService(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации Cloudinary: %v", err)
	}
	productService := product.NewProductService(store, cloudinaryService)
	favoriteService := favorite.NewFavoriteService(store)
	tradeService := trade.NewTradeService(store)
	chatService := chat.NewChatService(store)
	notificationService := notification.NewNotificationService(store)
	ratingService := rating.NewRatingService(store)
	moderationService := moderation.NewModerationService(store, cloudinaryService)
	profileService := profile.NewProfileService(store)

	// Настраиваем middleware для аутентификации
	authMiddleware := middleware.AuthMiddleware(authService.GetJWTService())

	// Регистрируем маршруты
	authService.SetupRoutes(app, authMiddleware)
	productService.SetupRoutes(app, authMiddleware)
	favoriteService.SetupRoutes(app, authMiddleware)
	tradeService.SetupRoutes(app, authMiddleware)
	chatService.SetupRoutes(app, authMiddleware)
	notificationService.SetupRoutes(app, authMiddleware)
	// Оценки регистрируются после обменов: общий префикс /api/trades
	// уже закрыт авторизацией группы обменов
	ratingService.SetupRoutes(app)
	moderationService.SetupRoutes(app, authMiddleware)
	profileService.SetupRoutes(app, authMiddleware)
	cloudinaryService.SetupRoutes(app, authMiddleware)

	// Запускаем сервер
	log.Printf("✅ SwapPlace API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"ok":    false,
		"error": err.Error(),
	})
}
