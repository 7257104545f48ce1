package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/utils"
)

// AuthMiddleware создаёт middleware для проверки JWT
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		userID, err := extractUserID(c, jwtService)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		// Добавляем userID в контекст
		c.Locals("userID", userID)

		return c.Next()
	}
}

// OptionalAuthMiddleware определяет пользователя, если токен передан,
// но пропускает запрос и без него. Нужно публичным маршрутам, которые
// ведут себя по-разному для владельца вещи (например, счетчик просмотров).
func OptionalAuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Get("Authorization") != "" {
			if userID, err := extractUserID(c, jwtService); err == nil {
				c.Locals("userID", userID)
			}
		}
		return c.Next()
	}
}

// extractUserID достает и проверяет userID из заголовка Authorization
func extractUserID(c fiber.Ctx, jwtService *utils.JWTService) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
	}

	// Проверяем Bearer токен
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	userID, err := jwtService.ExtractUserID(parts[1])
	if err != nil {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	// Проверяем, что userID является валидным UUID
	if _, err := uuid.Parse(userID); err != nil {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID")
	}

	return userID, nil
}
