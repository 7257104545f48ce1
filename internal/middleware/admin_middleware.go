package middleware

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/db"
	"github.com/rajivgeraev/rewear-api/internal/models"
)

// AdminMiddleware пропускает только пользователей с ролью admin.
// Должен стоять после AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		userID, ok := c.Locals("userID").(string)
		if !ok || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
		}

		userUUID, err := uuid.Parse(userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
		}

		ctx, cancel := db.GetContext()
		defer cancel()

		role, err := db.GetUserRole(ctx, userUUID)
		if err != nil {
			log.Printf("Ошибка проверки роли пользователя: %v", err)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Доступ запрещен"})
		}

		if role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Требуются права администратора"})
		}

		return c.Next()
	}
}
