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

// ItemColumns перечисляет колонки таблицы items в порядке сканирования
const ItemColumns = `id, title, description, category, type, size, condition,
	images, tags, point_value, uploaded_by, status, rejection_reason, views,
	created_at, updated_at`

// ScanItem читает строку items в модель
func ScanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Category,
		&item.Type,
		&item.Size,
		&item.Condition,
		&item.Images,
		&item.Tags,
		&item.PointValue,
		&item.UploadedBy,
		&item.Status,
		&item.RejectionReason,
		&item.Views,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemByID возвращает вещь по ID
func GetItemByID(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	item, err := ScanItem(Pool.QueryRow(ctx, `
		SELECT `+ItemColumns+`
		FROM items
		WHERE id = $1
	`, itemID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &errs.NotFoundError{Entity: "вещь"}
		}
		return nil, fmt.Errorf("ошибка при получении вещи: %w", err)
	}
	return item, nil
}

// LoadItemSwapRequests строит список заявок в карточке вещи по таблице
// swaps: отдельного хранилища заявок нет, источник правды один.
// Выкуп за баллы завершается мгновенно и заявкой в карточке не считается.
func LoadItemSwapRequests(ctx context.Context, itemID uuid.UUID) ([]models.SwapRequest, error) {
	rows, err := Pool.Query(ctx, `
		SELECT id, requester_id, message,
		       CASE status
		           WHEN 'pending' THEN 'pending'
		           WHEN 'rejected' THEN 'rejected'
		           ELSE 'accepted'
		       END,
		       created_at
		FROM swaps
		WHERE item_requested = $1 AND type = 'direct_swap' AND status <> 'cancelled'
		ORDER BY created_at ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении заявок на обмен: %w", err)
	}
	defer rows.Close()

	var requests []models.SwapRequest
	for rows.Next() {
		var req models.SwapRequest
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.Message, &req.Status, &req.CreatedAt); err != nil {
			log.Printf("Ошибка сканирования заявки: %v", err)
			continue
		}
		req.Requester = GetUserSummary(ctx, req.RequesterID)
		requests = append(requests, req)
	}
	return requests, nil
}

// CountActiveSwapsForItem считает живые обмены (pending или accepted),
// в которых вещь участвует как запрошенная или предложенная
func CountActiveSwapsForItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	var count int
	err := Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM swaps
		WHERE (item_requested = $1 OR item_offered = $1)
		  AND status IN ('pending', 'accepted')
	`, itemID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка при подсчете активных обменов: %w", err)
	}
	return count, nil
}

// MarkItemSwapped помечает вещь как обмененную. Условие по текущему
// статусу защищает от двойного обмена: повторный вызов не пройдет.
func MarkItemSwapped(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE items SET status = 'swapped', updated_at = NOW()
		WHERE id = $1 AND status = 'available'
	`, itemID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении статуса вещи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var current string
		err = tx.QueryRow(ctx, `SELECT status FROM items WHERE id = $1`, itemID).Scan(&current)
		if err != nil {
			if err == pgx.ErrNoRows {
				return &errs.NotFoundError{Entity: "вещь"}
			}
			return fmt.Errorf("ошибка при проверке статуса вещи: %w", err)
		}
		return &errs.IllegalTransitionError{Entity: "item", From: current, To: models.ItemStatusSwapped}
	}
	return nil
}

// IncrementItemViews увеличивает счетчик просмотров атомарным инкрементом
func IncrementItemViews(ctx context.Context, itemID uuid.UUID) error {
	_, err := Pool.Exec(ctx, `
		UPDATE items SET views = views + 1 WHERE id = $1
	`, itemID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении просмотров: %w", err)
	}
	return nil
}
