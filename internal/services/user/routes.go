package user

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/rewear-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для личного кабинета и профилей
func (s *UserService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/users")

	// Публичный профиль пользователя
	api.Get("/:id/profile", s.GetPublicProfile)

	me := app.Group("/api/me")
	me.Use(middleware.AuthMiddleware(s.jwtService))

	me.Get("/items", s.GetMyItems)
	me.Get("/dashboard", s.GetDashboard)
}
