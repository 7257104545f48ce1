package db

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/rewear-api/internal/errs"
	"github.com/rajivgeraev/rewear-api/internal/models"
)

// SwapColumns перечисляет колонки таблицы swaps в порядке сканирования
const SwapColumns = `id, item_requested, item_offered, requester_id, owner_id,
	type, status, message, points_used, completed_at, cancelled_at, rejected_at,
	created_at, updated_at`

// ScanSwap читает строку swaps в модель
func ScanSwap(row pgx.Row) (*models.Swap, error) {
	var swap models.Swap
	err := row.Scan(
		&swap.ID,
		&swap.ItemRequested,
		&swap.ItemOffered,
		&swap.RequesterID,
		&swap.OwnerID,
		&swap.Type,
		&swap.Status,
		&swap.Message,
		&swap.PointsUsed,
		&swap.CompletedAt,
		&swap.CancelledAt,
		&swap.RejectedAt,
		&swap.CreatedAt,
		&swap.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

// GetSwapByID возвращает обмен по ID
func GetSwapByID(ctx context.Context, swapID uuid.UUID) (*models.Swap, error) {
	swap, err := ScanSwap(Pool.QueryRow(ctx, `
		SELECT `+SwapColumns+`
		FROM swaps
		WHERE id = $1
	`, swapID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &errs.NotFoundError{Entity: "обмен"}
		}
		return nil, fmt.Errorf("ошибка при получении обмена: %w", err)
	}
	return swap, nil
}

// HasPendingSwap проверяет, есть ли у пользователя активная заявка
// на эту вещь: вторая заявка до разрешения первой запрещена
func HasPendingSwap(ctx context.Context, itemID, requesterID uuid.UUID) (bool, error) {
	var count int
	err := Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM swaps
		WHERE item_requested = $1 AND requester_id = $2 AND status = 'pending'
	`, itemID, requesterID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке существующих заявок: %w", err)
	}
	return count > 0, nil
}

// UpdateSwapStatus переводит обмен в новый статус с защитой от гонок:
// строка обновляется только если текущий статус совпадает с ожидаемым.
// Отметка времени терминального статуса выставляется ровно один раз.
func UpdateSwapStatus(ctx context.Context, tx pgx.Tx, swapID uuid.UUID, fromStatus, toStatus string) error {
	var stampColumn string
	switch toStatus {
	case models.SwapStatusCompleted:
		stampColumn = "completed_at"
	case models.SwapStatusCancelled:
		stampColumn = "cancelled_at"
	case models.SwapStatusRejected:
		stampColumn = "rejected_at"
	}

	query := `UPDATE swaps SET status = $1, updated_at = NOW()`
	if stampColumn != "" {
		query += `, ` + stampColumn + ` = COALESCE(` + stampColumn + `, NOW())`
	}
	query += ` WHERE id = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, toStatus, swapID, fromStatus)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении статуса обмена: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var current string
		err = tx.QueryRow(ctx, `SELECT status FROM swaps WHERE id = $1`, swapID).Scan(&current)
		if err != nil {
			if err == pgx.ErrNoRows {
				return &errs.NotFoundError{Entity: "обмен"}
			}
			return fmt.Errorf("ошибка при проверке статуса обмена: %w", err)
		}
		return &errs.IllegalTransitionError{Entity: "swap", From: current, To: toStatus}
	}
	return nil
}

// LoadSwapConversation возвращает переписку по обмену в порядке отправки
func LoadSwapConversation(ctx context.Context, swapID uuid.UUID) ([]models.SwapMessage, error) {
	rows, err := Pool.Query(ctx, `
		SELECT id, swap_id, sender_id, text, created_at
		FROM swap_messages
		WHERE swap_id = $1
		ORDER BY created_at ASC
	`, swapID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении переписки: %w", err)
	}
	defer rows.Close()

	var messages []models.SwapMessage
	for rows.Next() {
		var msg models.SwapMessage
		if err := rows.Scan(&msg.ID, &msg.SwapID, &msg.SenderID, &msg.Text, &msg.CreatedAt); err != nil {
			log.Printf("Ошибка сканирования сообщения: %v", err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// AddSwapMessage добавляет сообщение в переписку по обмену
func AddSwapMessage(ctx context.Context, swapID, senderID uuid.UUID, text string) (*models.SwapMessage, error) {
	msg := models.SwapMessage{
		ID:       uuid.New(),
		SwapID:   swapID,
		SenderID: senderID,
		Text:     text,
	}
	err := Pool.QueryRow(ctx, `
		INSERT INTO swap_messages (id, swap_id, sender_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, msg.ID, msg.SwapID, msg.SenderID, msg.Text).Scan(&msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка при сохранении сообщения: %w", err)
	}
	return &msg, nil
}
