package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/errs"
)

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет пользователя в системе
type User struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username,omitempty"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	Role           string     `json:"role"`
	Points         int        `json:"points"`
	PointsEarned   int        `json:"points_earned"`
	PointsSpent    int        `json:"points_spent"`
	ItemsListed    int        `json:"items_listed"`
	SwapsCompleted int        `json:"swaps_completed"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsAdmin проверяет административную роль
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AddPoints начисляет баллы на баланс и увеличивает счетчик заработанных.
// Неположительные суммы игнорируются.
func (u *User) AddPoints(amount int) {
	if amount <= 0 {
		return
	}
	u.Points += amount
	u.PointsEarned += amount
}

// DeductPoints списывает баллы с баланса. Баланс не может уйти в минус:
// при нехватке возвращается ошибка, баланс не меняется.
func (u *User) DeductPoints(amount int) error {
	if amount <= 0 {
		return nil
	}
	if amount > u.Points {
		return &errs.InsufficientPointsError{Required: amount, Available: u.Points}
	}
	u.Points -= amount
	u.PointsSpent += amount
	return nil
}
