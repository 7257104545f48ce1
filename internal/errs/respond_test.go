package errs

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respondStatus(t *testing.T, err error) int {
	t.Helper()

	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return Respond(c, err)
	})

	resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, testErr)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRespondStatusCodes(t *testing.T) {
	assert.Equal(t, fiber.StatusBadRequest, respondStatus(t, NewValidation("title", "укажите название")))
	assert.Equal(t, fiber.StatusNotFound, respondStatus(t, &NotFoundError{Entity: "вещь"}))
	assert.Equal(t, fiber.StatusForbidden, respondStatus(t, &ForbiddenError{}))
	assert.Equal(t, fiber.StatusBadRequest, respondStatus(t, &IllegalTransitionError{Entity: "item"}))
	assert.Equal(t, fiber.StatusBadRequest, respondStatus(t, &DuplicateRequestError{}))
	assert.Equal(t, fiber.StatusBadRequest, respondStatus(t, &InsufficientPointsError{Required: 30, Available: 10}))
	assert.Equal(t, fiber.StatusBadRequest, respondStatus(t, &InvalidOfferedItemError{}))
	assert.Equal(t, fiber.StatusBadRequest, respondStatus(t, &HasActiveSwapsError{Count: 2}))
	assert.Equal(t, fiber.StatusInternalServerError, respondStatus(t, errors.New("boom")))
}

func TestRespondWrappedError(t *testing.T) {
	// Обернутая доменная ошибка распознается через errors.As
	wrapped := errors.Join(errors.New("context"), &NotFoundError{Entity: "обмен"})
	assert.Equal(t, fiber.StatusNotFound, respondStatus(t, wrapped))
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidation("size", "выберите размер из списка")
	assert.Contains(t, err.Error(), "size")

	empty := &ValidationError{}
	assert.Equal(t, "некорректные данные", empty.Error())
}
