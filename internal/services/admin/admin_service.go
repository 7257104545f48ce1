package admin

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/config"
	"github.com/rajivgeraev/rewear-api/internal/db"
	"github.com/rajivgeraev/rewear-api/internal/errs"
	"github.com/rajivgeraev/rewear-api/internal/models"
	"github.com/rajivgeraev/rewear-api/internal/services/upload"
	"github.com/rajivgeraev/rewear-api/internal/utils"
)

// AdminService представляет сервис модерации и администрирования
type AdminService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	uploads    *upload.UploadService
}

// NewAdminService создает новый экземпляр AdminService
func NewAdminService(cfg *config.Config, uploads *upload.UploadService) *AdminService {
	return &AdminService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		uploads:    uploads,
	}
}

// GetStats возвращает сводку по платформе для панели администратора
func (s *AdminService) GetStats(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	stats := fiber.Map{}

	var totalUsers, totalAdmins int
	if err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE role = 'admin') FROM users
	`).Scan(&totalUsers, &totalAdmins); err != nil {
		log.Printf("Ошибка запроса статистики пользователей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения статистики"})
	}
	stats["users"] = fiber.Map{"total": totalUsers, "admins": totalAdmins}

	itemCounts := fiber.Map{}
	rows, err := db.Pool.Query(ctx, `SELECT status, COUNT(*) FROM items GROUP BY status`)
	if err != nil {
		log.Printf("Ошибка запроса статистики вещей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения статистики"})
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		itemCounts[status] = count
	}
	rows.Close()
	stats["items"] = itemCounts

	swapCounts := fiber.Map{}
	rows, err = db.Pool.Query(ctx, `SELECT status, COUNT(*) FROM swaps GROUP BY status`)
	if err != nil {
		log.Printf("Ошибка запроса статистики обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения статистики"})
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		swapCounts[status] = count
	}
	rows.Close()
	stats["swaps"] = swapCounts

	var pointsInCirculation int
	if err := db.Pool.QueryRow(ctx, `SELECT COALESCE(SUM(points), 0) FROM users`).Scan(&pointsInCirculation); err != nil {
		log.Printf("Ошибка запроса суммы баллов: %v", err)
	}
	stats["points_in_circulation"] = pointsInCirculation

	return c.JSON(stats)
}

// GetUsers возвращает список пользователей с поиском и фильтром по роли
func (s *AdminService) GetUsers(c fiber.Ctx) error {
	search := c.Query("search")
	role := c.Query("role", "all")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	conditions := "TRUE"
	args := []interface{}{}
	argPos := 1

	if search != "" {
		conditions += " AND (username ILIKE $" + strconv.Itoa(argPos) +
			" OR first_name ILIKE $" + strconv.Itoa(argPos) +
			" OR last_name ILIKE $" + strconv.Itoa(argPos) + ")"
		args = append(args, "%"+search+"%")
		argPos++
	}
	if role != "all" && role != "" {
		conditions += " AND role = $" + strconv.Itoa(argPos)
		args = append(args, role)
		argPos++
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	skip := (page - 1) * limit
	rows, err := db.Pool.Query(ctx, `
		SELECT id, username, first_name, last_name, avatar_url, role,
		       points, points_earned, points_spent, items_listed, swaps_completed,
		       last_login_at, created_at, updated_at
		FROM users
		WHERE `+conditions+`
		ORDER BY created_at DESC
		LIMIT `+strconv.Itoa(limit)+` OFFSET `+strconv.Itoa(skip), args...)
	if err != nil {
		log.Printf("Ошибка запроса пользователей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения пользователей"})
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.AvatarURL, &u.Role,
			&u.Points, &u.PointsEarned, &u.PointsSpent, &u.ItemsListed, &u.SwapsCompleted,
			&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		users = append(users, u)
	}

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+conditions, args...).Scan(&total); err != nil {
		log.Printf("Ошибка подсчета пользователей: %v", err)
	}

	return c.JSON(fiber.Map{
		"users":      users,
		"pagination": models.NewPagination(page, limit, len(users), total),
	})
}

// GetPendingItems возвращает очередь модерации: вещи в ожидании,
// старые заявки первыми
func (s *AdminService) GetPendingItems(c fiber.Ctx) error {
	return s.listItems(c, "status = 'pending'", "created_at ASC")
}

// GetAllItems возвращает все вещи с фильтром по статусу
func (s *AdminService) GetAllItems(c fiber.Ctx) error {
	status := c.Query("status", "all")
	conditions := "TRUE"
	if status != "all" && status != "" {
		if err := validateItemStatus(status); err != nil {
			return errs.Respond(c, err)
		}
		conditions = "status = '" + status + "'"
	}
	return s.listItems(c, conditions, "created_at DESC")
}

// validateItemStatus пропускает только известные статусы вещей;
// опечатка в фильтре возвращается ошибкой, а не подменяется
func validateItemStatus(status string) error {
	switch status {
	case models.ItemStatusPending, models.ItemStatusAvailable,
		models.ItemStatusSwapped, models.ItemStatusRejected:
		return nil
	}
	return errs.NewValidation("status", "неизвестный статус вещи")
}

func (s *AdminService) listItems(c fiber.Ctx, conditions, orderBy string) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	skip := (page - 1) * limit
	rows, err := db.Pool.Query(ctx, `
		SELECT `+db.ItemColumns+`
		FROM items
		WHERE `+conditions+`
		ORDER BY `+orderBy+`
		LIMIT `+strconv.Itoa(limit)+` OFFSET `+strconv.Itoa(skip))
	if err != nil {
		log.Printf("Ошибка запроса вещей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещей"})
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := db.ScanItem(rows)
		if err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		item.Uploader = db.GetUserSummary(ctx, item.UploadedBy)
		items = append(items, *item)
	}

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE `+conditions).Scan(&total); err != nil {
		log.Printf("Ошибка подсчета вещей: %v", err)
	}

	return c.JSON(fiber.Map{
		"items":      items,
		"pagination": models.NewPagination(page, limit, len(items), total),
	})
}

// ApproveItem публикует вещь и начисляет владельцу бонус за одобрение.
// Смена статуса и начисление идут одной транзакцией: повторное одобрение
// не пройдет и бонус второй раз не начислится.
func (s *AdminService) ApproveItem(c fiber.Ctx) error {
	itemUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := db.GetItemByID(ctx, itemUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE items SET status = 'available', rejection_reason = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, item.ID)
	if err != nil {
		log.Printf("Ошибка одобрения вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if tag.RowsAffected() == 0 {
		return errs.Respond(c, &errs.IllegalTransitionError{Entity: "item", From: item.Status, To: models.ItemStatusAvailable})
	}

	if err = db.CreditPoints(ctx, tx, item.UploadedBy, s.cfg.PointsConfig.ApprovalBonus); err != nil {
		return errs.Respond(c, err)
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"item_id":        item.ID,
		"status":         models.ItemStatusAvailable,
		"points_awarded": s.cfg.PointsConfig.ApprovalBonus,
		"message":        "Вещь одобрена и опубликована",
	})
}

// RejectItem отклоняет вещь с указанием причины. Бонус не начисляется.
func (s *AdminService) RejectItem(c fiber.Ctx) error {
	itemUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	var requestData struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}
	if requestData.Reason == "" {
		return errs.Respond(c, errs.NewValidation("reason", "причина отклонения обязательна"))
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := db.GetItemByID(ctx, itemUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE items SET status = 'rejected', rejection_reason = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`, requestData.Reason, item.ID)
	if err != nil {
		log.Printf("Ошибка отклонения вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if tag.RowsAffected() == 0 {
		return errs.Respond(c, &errs.IllegalTransitionError{Entity: "item", From: item.Status, To: models.ItemStatusRejected})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"item_id": item.ID,
		"status":  models.ItemStatusRejected,
		"message": "Вещь отклонена",
	})
}

// DeleteItem удаляет вещь со стороны модерации. Вещь с активными
// обменами удалить нельзя.
func (s *AdminService) DeleteItem(c fiber.Ctx) error {
	itemUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := db.GetItemByID(ctx, itemUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	activeSwaps, err := db.CountActiveSwapsForItem(ctx, item.ID)
	if err != nil {
		log.Printf("Ошибка проверки активных обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if activeSwaps > 0 {
		return errs.Respond(c, &errs.HasActiveSwapsError{Count: activeSwaps})
	}

	_, err = db.Pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, item.ID)
	if err != nil {
		log.Printf("Ошибка удаления вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления вещи"})
	}

	// Изображения чистим в фоне, ошибки не прерывают удаление
	if s.uploads != nil {
		go s.uploads.DestroyImages(item.Images)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Вещь удалена",
	})
}

// UpdateUserRole меняет роль пользователя. Последнего администратора
// разжаловать нельзя.
func (s *AdminService) UpdateUserRole(c fiber.Ctx) error {
	targetUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		Role string `json:"role"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}
	if requestData.Role != models.RoleUser && requestData.Role != models.RoleAdmin {
		return errs.Respond(c, errs.NewValidation("role", "допустимые роли: user, admin"))
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	target, err := db.GetUserByID(ctx, targetUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	if target.Role == models.RoleAdmin && requestData.Role == models.RoleUser {
		var adminCount int
		if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&adminCount); err != nil {
			log.Printf("Ошибка подсчета администраторов: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
		}
		if adminCount <= 1 {
			return errs.Respond(c, &errs.ForbiddenError{Reason: "нельзя разжаловать последнего администратора"})
		}
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2
	`, requestData.Role, target.ID)
	if err != nil {
		log.Printf("Ошибка обновления роли: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления роли"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user_id": target.ID,
		"role":    requestData.Role,
	})
}

// GetAllSwaps возвращает все обмены платформы с фильтром по статусу
func (s *AdminService) GetAllSwaps(c fiber.Ctx) error {
	status := c.Query("status", "all")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	conditions := "TRUE"
	args := []interface{}{}
	if status != "all" && status != "" {
		conditions = "status = $1"
		args = append(args, status)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	skip := (page - 1) * limit
	rows, err := db.Pool.Query(ctx, `
		SELECT `+db.SwapColumns+`
		FROM swaps
		WHERE `+conditions+`
		ORDER BY created_at DESC
		LIMIT `+strconv.Itoa(limit)+` OFFSET `+strconv.Itoa(skip), args...)
	if err != nil {
		log.Printf("Ошибка запроса обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения обменов"})
	}
	defer rows.Close()

	swaps := []models.Swap{}
	for rows.Next() {
		swap, err := db.ScanSwap(rows)
		if err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		swap.Requester = db.GetUserSummary(ctx, swap.RequesterID)
		swap.Owner = db.GetUserSummary(ctx, swap.OwnerID)
		swaps = append(swaps, *swap)
	}

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM swaps WHERE `+conditions, args...).Scan(&total); err != nil {
		log.Printf("Ошибка подсчета обменов: %v", err)
	}

	return c.JSON(fiber.Map{
		"swaps":      swaps,
		"pagination": models.NewPagination(page, limit, len(swaps), total),
	})
}
