package user

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/config"
	"github.com/rajivgeraev/rewear-api/internal/db"
	"github.com/rajivgeraev/rewear-api/internal/errs"
	"github.com/rajivgeraev/rewear-api/internal/models"
	"github.com/rajivgeraev/rewear-api/internal/utils"
)

// UserService представляет сервис для личного кабинета и профилей
type UserService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewUserService создает новый экземпляр UserService
func NewUserService(cfg *config.Config) *UserService {
	return &UserService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetMyItems возвращает вещи текущего пользователя, включая
// неопубликованные и отклоненные
func (s *UserService) GetMyItems(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	status := c.Query("status", "all")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	conditions := "uploaded_by = $1"
	args := []interface{}{userUUID}
	if status != "all" && status != "" {
		conditions += " AND status = $2"
		args = append(args, status)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	skip := (page - 1) * limit
	rows, err := db.Pool.Query(ctx, `
		SELECT `+db.ItemColumns+`
		FROM items
		WHERE `+conditions+`
		ORDER BY created_at DESC
		LIMIT `+strconv.Itoa(limit)+` OFFSET `+strconv.Itoa(skip), args...)
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
		items = append(items, *item)
	}

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE `+conditions, args...).Scan(&total); err != nil {
		log.Printf("Ошибка подсчета вещей: %v", err)
	}

	return c.JSON(fiber.Map{
		"items":      items,
		"pagination": models.NewPagination(page, limit, len(items), total),
	})
}

// GetDashboard возвращает сводку личного кабинета: баланс, счетчики
// вещей и обменов, суммарные просмотры
func (s *UserService) GetDashboard(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := db.GetUserByID(ctx, userUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	// Счетчики вещей по статусам одним запросом
	itemCounts := fiber.Map{
		models.ItemStatusPending:   0,
		models.ItemStatusAvailable: 0,
		models.ItemStatusSwapped:   0,
		models.ItemStatusRejected:  0,
	}
	var totalViews int
	rows, err := db.Pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(views), 0)
		FROM items
		WHERE uploaded_by = $1
		GROUP BY status
	`, userUUID)
	if err != nil {
		log.Printf("Ошибка запроса статистики вещей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения статистики"})
	}
	for rows.Next() {
		var status string
		var count, views int
		if err := rows.Scan(&status, &count, &views); err != nil {
			continue
		}
		itemCounts[status] = count
		totalViews += views
	}
	rows.Close()

	// Счетчики обменов по статусам
	swapCounts := fiber.Map{}
	rows, err = db.Pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM swaps
		WHERE requester_id = $1 OR owner_id = $1
		GROUP BY status
	`, userUUID)
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

	return c.JSON(fiber.Map{
		"user": user,
		"points": fiber.Map{
			"balance": user.Points,
			"earned":  user.PointsEarned,
			"spent":   user.PointsSpent,
		},
		"items":       itemCounts,
		"swaps":       swapCounts,
		"total_views": totalViews,
	})
}

// GetPublicProfile возвращает открытый профиль пользователя
// с его доступными вещами
func (s *UserService) GetPublicProfile(c fiber.Ctx) error {
	profileUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := db.GetUserByID(ctx, profileUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT `+db.ItemColumns+`
		FROM items
		WHERE uploaded_by = $1 AND status = 'available'
		ORDER BY created_at DESC
		LIMIT 12
	`, profileUUID)
	if err != nil {
		log.Printf("Ошибка запроса вещей профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения профиля"})
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := db.ScanItem(rows)
		if err != nil {
			continue
		}
		items = append(items, *item)
	}

	// Наружу отдаем только открытую часть профиля
	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":              user.ID,
			"username":        user.Username,
			"first_name":      user.FirstName,
			"last_name":       user.LastName,
			"avatar_url":      user.AvatarURL,
			"items_listed":    user.ItemsListed,
			"swaps_completed": user.SwapsCompleted,
			"created_at":      user.CreatedAt,
		},
		"items": items,
	})
}
