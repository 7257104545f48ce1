package item

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/rewear-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API вещей
func (s *ItemService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/items")

	// Публичные маршруты; необязательная авторизация нужна, чтобы
	// не считать просмотры владельца
	api.Get("/", s.GetPublicItems)
	api.Get("/meta/categories", s.GetCategoriesMeta)
	api.Get("/:id", s.GetItem, middleware.OptionalAuthMiddleware(s.jwtService))

	// Защищенные маршруты (требуют авторизации)
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(s.jwtService))

	protected.Post("/", s.CreateItem)
	protected.Put("/:id", s.UpdateItem)
	protected.Delete("/:id", s.DeleteItem)
}
