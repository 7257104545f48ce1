package upload

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/rewear-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для сервиса загрузки изображений
func (s *UploadService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/upload")

	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/params", s.GenerateUploadParams)
}
