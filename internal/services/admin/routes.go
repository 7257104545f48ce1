package admin

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/rewear-api/internal/middleware"
)

// SetupRoutes настраивает маршруты модерации. Все маршруты требуют
// авторизации и роли администратора.
func (s *AdminService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/admin")

	api.Use(middleware.AuthMiddleware(s.jwtService))
	api.Use(middleware.AdminMiddleware())

	api.Get("/stats", s.GetStats)
	api.Get("/users", s.GetUsers)
	api.Put("/users/:id/role", s.UpdateUserRole)

	api.Get("/items/pending", s.GetPendingItems)
	api.Get("/items", s.GetAllItems)
	api.Put("/items/:id/approve", s.ApproveItem)
	api.Put("/items/:id/reject", s.RejectItem)
	api.Delete("/items/:id", s.DeleteItem)

	api.Get("/swaps", s.GetAllSwaps)
}
