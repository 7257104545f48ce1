package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/rewear-api/internal/cache"
)

const (
	rateLimit       = 60              // запросов в окно
	rateLimitWindow = 1 * time.Minute // длительность окна
)

// RateLimiter ограничивает частоту запросов счетчиком в Redis.
// Ключом служит userID для авторизованных запросов, иначе IP-адрес.
// При недоступности Redis запрос пропускается.
func RateLimiter(c *cache.Cache) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		identity := ctx.IP()
		if userID, ok := ctx.Locals("userID").(string); ok && userID != "" {
			identity = userID
		}

		key := fmt.Sprintf("ratelimit:%s", identity)

		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		count, err := c.Incr(rctx, key)
		if err != nil {
			return ctx.Next()
		}

		// На первом запросе выставляем время жизни окна
		if count == 1 {
			c.Expire(rctx, key, rateLimitWindow)
		}

		if count > rateLimit {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Слишком много запросов, попробуйте позже",
			})
		}

		return ctx.Next()
	}
}
