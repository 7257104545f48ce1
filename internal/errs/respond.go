package errs

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"
)

// Respond преобразует доменную ошибку в HTTP-ответ.
// Нераспознанные ошибки логируются и отдаются как 500 без деталей.
func Respond(c fiber.Ctx, err error) error {
	var (
		validation  *ValidationError
		notFound    *NotFoundError
		forbidden   *ForbiddenError
		transition  *IllegalTransitionError
		duplicate   *DuplicateRequestError
		points      *InsufficientPointsError
		offered     *InvalidOfferedItemError
		activeSwaps *HasActiveSwapsError
	)

	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  validation.Error(),
			"fields": validation.Fields,
		})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "не найдено"})
	case errors.As(err, &forbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": forbidden.Error()})
	case errors.As(err, &transition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": transition.Error()})
	case errors.As(err, &duplicate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": duplicate.Error()})
	case errors.As(err, &points):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":     points.Error(),
			"required":  points.Required,
			"available": points.Available,
		})
	case errors.As(err, &offered):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": offered.Error()})
	case errors.As(err, &activeSwaps):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": activeSwaps.Error()})
	}

	log.Printf("Внутренняя ошибка: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
}
