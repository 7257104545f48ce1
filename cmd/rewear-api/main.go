package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/rajivgeraev/rewear-api/internal/cache"
	"github.com/rajivgeraev/rewear-api/internal/config"
	"github.com/rajivgeraev/rewear-api/internal/db"
	"github.com/rajivgeraev/rewear-api/internal/middleware"
	"github.com/rajivgeraev/rewear-api/internal/services/admin"
	"github.com/rajivgeraev/rewear-api/internal/services/auth"
	"github.com/rajivgeraev/rewear-api/internal/services/item"
	"github.com/rajivgeraev/rewear-api/internal/services/swap"
	"github.com/rajivgeraev/rewear-api/internal/services/upload"
	"github.com/rajivgeraev/rewear-api/internal/services/user"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	// Подключаем Redis: кэш каталога и лимитер запросов
	cacheClient, err := cache.New(cfg)
	if err != nil {
		log.Printf("⚠️ Redis недоступен, кэш и лимитер отключены: %v", err)
		cacheClient = nil
	} else {
		defer cacheClient.Close()
	}

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "ReWear API",
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
	if cacheClient != nil {
		app.Use(middleware.RateLimiter(cacheClient))
	}

	// Создаём сервисы
	authService := auth.NewAuthService(cfg)
	uploadService := upload.NewUploadService(cfg)
	itemService := item.NewItemService(cfg, cacheClient, uploadService)
	swapService := swap.NewSwapService(cfg)
	userService := user.NewUserService(cfg)
	adminService := admin.NewAdminService(cfg, uploadService)

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	uploadService.SetupRoutes(app)
	itemService.SetupRoutes(app)
	swapService.SetupRoutes(app)
	userService.SetupRoutes(app)
	adminService.SetupRoutes(app)

	// Запускаем сервер
	log.Println("✅ ReWear API запущен на порту 8080")
	log.Fatal(app.Listen(":8080"))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
