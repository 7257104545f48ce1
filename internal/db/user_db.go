package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/rewear-api/internal/errs"
	"github.com/rajivgeraev/rewear-api/internal/models"
)

// GetUserByID возвращает пользователя по ID
func GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := Pool.QueryRow(ctx, `
		SELECT id, username, first_name, last_name, avatar_url, role,
		       points, points_earned, points_spent, items_listed, swaps_completed,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID).Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.AvatarURL,
		&user.Role,
		&user.Points,
		&user.PointsEarned,
		&user.PointsSpent,
		&user.ItemsListed,
		&user.SwapsCompleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &errs.NotFoundError{Entity: "пользователь"}
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}
	return &user, nil
}

// GetUserRole возвращает роль пользователя
func GetUserRole(ctx context.Context, userID uuid.UUID) (string, error) {
	var role string
	err := Pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", &errs.NotFoundError{Entity: "пользователь"}
		}
		return "", fmt.Errorf("ошибка при получении роли пользователя: %w", err)
	}
	return role, nil
}

// CreateOrUpdateTelegramUser создает нового пользователя через Telegram или
// обновляет существующего. Новому пользователю начисляется стартовый баланс.
func CreateOrUpdateTelegramUser(telegramID int64, username, firstName, lastName, photoURL string,
	rawData []byte, startingPoints int) (*models.User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	tx, err := Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT user_id FROM telegram_users WHERE telegram_id = $1
	`, telegramID).Scan(&userID)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("ошибка при проверке пользователя Telegram: %w", err)
	}

	if err == pgx.ErrNoRows {
		// Создаем запись в users со стартовым балансом
		err = tx.QueryRow(ctx, `
			INSERT INTO users (first_name, last_name, username, avatar_url, role, points, last_login_at)
			VALUES ($1, $2, $3, $4, 'user', $5, CURRENT_TIMESTAMP)
			RETURNING id
		`, firstName, lastName, username, photoURL, startingPoints).Scan(&userID)
		if err != nil {
			return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
		}

		// Создаем запись в telegram_users
		_, err = tx.Exec(ctx, `
			INSERT INTO telegram_users (user_id, telegram_id, username, first_name, last_name, photo_url, raw_data)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, userID, telegramID, username, firstName, lastName, photoURL, rawData)
		if err != nil {
			return nil, fmt.Errorf("ошибка при создании Telegram пользователя: %w", err)
		}
	} else {
		// Обновляем данные профиля и время входа у существующего пользователя
		_, err = tx.Exec(ctx, `
			UPDATE users
			SET username = $1, first_name = $2, last_name = $3, avatar_url = $4,
			    last_login_at = CURRENT_TIMESTAMP
			WHERE id = $5
		`, username, firstName, lastName, photoURL, userID)
		if err != nil {
			return nil, fmt.Errorf("ошибка при обновлении пользователя: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return GetUserByID(ctx, userID)
}

// CreditPoints начисляет баллы атомарным инкрементом.
// Другого способа увеличить баланс нет.
func CreditPoints(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) error {
	if amount <= 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET points = points + $1, points_earned = points_earned + $1, updated_at = NOW()
		WHERE id = $2
	`, amount, userID)
	if err != nil {
		return fmt.Errorf("ошибка при начислении баллов: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "пользователь"}
	}
	return nil
}

// DebitPoints списывает баллы атомарным декрементом с защитой от ухода
// в минус: условие points >= $1 делает повторное списание безопасным.
func DebitPoints(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) error {
	if amount <= 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET points = points - $1, points_spent = points_spent + $1, updated_at = NOW()
		WHERE id = $2 AND points >= $1
	`, amount, userID)
	if err != nil {
		return fmt.Errorf("ошибка при списании баллов: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var available int
		err = tx.QueryRow(ctx, `SELECT points FROM users WHERE id = $1`, userID).Scan(&available)
		if err != nil {
			if err == pgx.ErrNoRows {
				return &errs.NotFoundError{Entity: "пользователь"}
			}
			return fmt.Errorf("ошибка при проверке баланса: %w", err)
		}
		return &errs.InsufficientPointsError{Required: amount, Available: available}
	}
	return nil
}

// IncrementItemsListed увеличивает счетчик размещенных вещей
func IncrementItemsListed(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE users SET items_listed = items_listed + 1, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении счетчика вещей: %w", err)
	}
	return nil
}

// IncrementSwapsCompleted увеличивает счетчик завершенных обменов
func IncrementSwapsCompleted(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE users SET swaps_completed = swaps_completed + 1, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении счетчика обменов: %w", err)
	}
	return nil
}

// GetUserSummary возвращает краткую информацию о пользователе для вложенных
// объектов в ответах API. Отсутствие пользователя не считается ошибкой.
func GetUserSummary(ctx context.Context, userID uuid.UUID) *models.User {
	var user models.User
	err := Pool.QueryRow(ctx, `
		SELECT id, username, first_name, last_name, avatar_url
		FROM users
		WHERE id = $1
	`, userID).Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.AvatarURL,
	)
	if err != nil {
		return nil
	}
	return &user
}
