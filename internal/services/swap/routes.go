package swap

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/rewear-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для сервиса обменов
func (s *SwapService) SetupRoutes(app *fiber.App) {
	auth := middleware.AuthMiddleware(s.jwtService)

	// Заявки создаются на карточке вещи
	items := app.Group("/api/items")
	items.Post("/:id/swap", s.CreateSwapRequest, auth)
	items.Post("/:id/redeem", s.RedeemItem, auth)

	swaps := app.Group("/api/swaps")
	swaps.Use(auth)

	swaps.Get("/", s.GetMySwaps)
	swaps.Get("/received", s.GetReceivedRequests)
	swaps.Put("/:id", s.RespondToSwap)
	swaps.Delete("/:id", s.CancelSwap)
	swaps.Get("/:id/messages", s.GetConversation)
	swaps.Post("/:id/messages", s.AddMessage)
}
