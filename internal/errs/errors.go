package errs

import (
	"fmt"
	"strings"
)

// ValidationError описывает некорректные входные данные.
// Fields содержит сообщение для каждого нарушенного поля.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "некорректные данные"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, ", ")
}

// NewValidation создает ValidationError с одним полем
func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// NotFoundError означает, что сущность с указанным ID не существует
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " не найдено"
}

// ForbiddenError означает, что у пользователя нет прав на операцию
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return "доступ запрещен"
	}
	return e.Reason
}

// IllegalTransitionError означает нарушение графа переходов статусов
type IllegalTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("недопустимый переход %s: %s -> %s", e.Entity, e.From, e.To)
}

// DuplicateRequestError означает повторную заявку на обмен от того же пользователя
type DuplicateRequestError struct{}

func (e *DuplicateRequestError) Error() string {
	return "у вас уже есть активная заявка на обмен этой вещи"
}

// InsufficientPointsError означает нехватку баллов для списания
type InsufficientPointsError struct {
	Required  int
	Available int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("недостаточно баллов: требуется %d, доступно %d", e.Required, e.Available)
}

// InvalidOfferedItemError означает, что предлагаемая вещь не существует
// или не принадлежит заявителю
type InvalidOfferedItemError struct{}

func (e *InvalidOfferedItemError) Error() string {
	return "предлагаемая вещь не найдена или не принадлежит вам"
}

// HasActiveSwapsError блокирует удаление вещи, на которую есть живые обмены
type HasActiveSwapsError struct {
	Count int
}

func (e *HasActiveSwapsError) Error() string {
	return "нельзя удалить вещь с активными заявками на обмен"
}
