package swap

import (
	"context"
	"log"
	"strconv"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/rewear-api/internal/config"
	"github.com/rajivgeraev/rewear-api/internal/db"
	"github.com/rajivgeraev/rewear-api/internal/errs"
	"github.com/rajivgeraev/rewear-api/internal/models"
	"github.com/rajivgeraev/rewear-api/internal/utils"
)

// SwapService представляет сервис для работы с обменами
type SwapService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewSwapService создает новый экземпляр SwapService
func NewSwapService(cfg *config.Config) *SwapService {
	return &SwapService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateSwapRequest создает заявку на прямой обмен вещи.
// Таблица swaps служит единственным источником правды о заявках, отдельной
// записи в карточке вещи не делается.
func (s *SwapService) CreateSwapRequest(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	itemUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	var requestData struct {
		Message       string `json:"message"`
		OfferedItemID string `json:"offered_item_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := db.GetItemByID(ctx, itemUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	if item.Status != models.ItemStatusAvailable {
		return errs.Respond(c, &errs.IllegalTransitionError{Entity: "item", From: item.Status, To: models.ItemStatusSwapped})
	}

	if item.UploadedBy == requesterID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя обменять собственную вещь"})
	}

	// Если предложена вещь взамен, она должна существовать и принадлежать заявителю
	var offeredItemID *uuid.UUID
	if requestData.OfferedItemID != "" {
		offeredUUID, err := uuid.Parse(requestData.OfferedItemID)
		if err != nil {
			return errs.Respond(c, &errs.InvalidOfferedItemError{})
		}
		offeredItem, err := db.GetItemByID(ctx, offeredUUID)
		if err != nil || offeredItem.UploadedBy != requesterID {
			return errs.Respond(c, &errs.InvalidOfferedItemError{})
		}
		offeredItemID = &offeredUUID
	}

	// Вторая активная заявка от того же пользователя запрещена
	exists, err := db.HasPendingSwap(ctx, item.ID, requesterID)
	if err != nil {
		log.Printf("Ошибка проверки существующих заявок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if exists {
		return errs.Respond(c, &errs.DuplicateRequestError{})
	}

	swapID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO swaps (id, item_requested, item_offered, requester_id, owner_id, type, status, message)
		VALUES ($1, $2, $3, $4, $5, 'direct_swap', 'pending', $6)
	`, swapID, item.ID, offeredItemID, requesterID, item.UploadedBy, requestData.Message)
	if err != nil {
		log.Printf("Ошибка создания заявки на обмен: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения заявки"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"swap_id": swapID,
		"message": "Заявка на обмен отправлена",
	})
}

// RedeemItem выкупает вещь за баллы. Операция без фазы ожидания:
// списание, зачисление, запись обмена и смена статуса вещи происходят
// в одной транзакции.
func (s *SwapService) RedeemItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

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

	if item.Status != models.ItemStatusAvailable {
		return errs.Respond(c, &errs.IllegalTransitionError{Entity: "item", From: item.Status, To: models.ItemStatusSwapped})
	}

	if item.UploadedBy == requesterID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя выкупить собственную вещь"})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	// Смена статуса вещи идет первой: условие status = 'available'
	// отсекает повторный выкуп до любого движения баллов
	if err = db.MarkItemSwapped(ctx, tx, item.ID); err != nil {
		return errs.Respond(c, err)
	}

	// Списываем баллы у заявителя; защита от ухода в минус зашита в запрос
	if err = db.DebitPoints(ctx, tx, requesterID, item.PointValue); err != nil {
		return errs.Respond(c, err)
	}

	// Зачисляем ту же сумму владельцу
	if err = db.CreditPoints(ctx, tx, item.UploadedBy, item.PointValue); err != nil {
		return errs.Respond(c, err)
	}

	// Выкуп завершается мгновенно: запись сразу в статусе completed
	swapID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO swaps (id, item_requested, requester_id, owner_id, type, status, points_used, completed_at)
		VALUES ($1, $2, $3, $4, 'point_redemption', 'completed', $5, NOW())
	`, swapID, item.ID, requesterID, item.UploadedBy, item.PointValue)
	if err != nil {
		log.Printf("Ошибка создания записи обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения обмена"})
	}

	if err = db.IncrementSwapsCompleted(ctx, tx, requesterID); err != nil {
		return errs.Respond(c, err)
	}
	if err = db.IncrementSwapsCompleted(ctx, tx, item.UploadedBy); err != nil {
		return errs.Respond(c, err)
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"swap_id":     swapID,
		"points_used": item.PointValue,
		"message":     "Вещь успешно выкуплена за баллы",
	})
}

// GetMySwaps возвращает обмены текущего пользователя с фильтрами
// по направлению, статусу и типу
func (s *SwapService) GetMySwaps(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	role := c.Query("role", "all")     // all, incoming, outgoing
	status := c.Query("status", "all") // all, pending, accepted, rejected, completed, cancelled
	swapType := c.Query("type", "all") // all, direct_swap, point_redemption
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	conditions := ""
	args := []interface{}{userUUID}
	argPos := 2

	switch role {
	case "incoming":
		conditions = "owner_id = $1"
	case "outgoing":
		conditions = "requester_id = $1"
	default:
		conditions = "(requester_id = $1 OR owner_id = $1)"
	}

	if status != "all" && status != "" {
		conditions += " AND status = $" + strconv.Itoa(argPos)
		args = append(args, status)
		argPos++
	}
	if swapType != "all" && swapType != "" {
		conditions += " AND type = $" + strconv.Itoa(argPos)
		args = append(args, swapType)
		argPos++
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	skip := (page - 1) * limit
	query := `
		SELECT ` + db.SwapColumns + `
		FROM swaps
		WHERE ` + conditions + `
		ORDER BY created_at DESC
		LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(skip)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Ошибка запроса обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения обменов"})
	}
	defer rows.Close()

	swaps := s.collectSwaps(ctx, rows)

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM swaps WHERE `+conditions, args...).Scan(&total); err != nil {
		log.Printf("Ошибка подсчета обменов: %v", err)
	}

	return c.JSON(fiber.Map{
		"swaps":      swaps,
		"pagination": models.NewPagination(page, limit, len(swaps), total),
	})
}

// GetReceivedRequests возвращает входящие заявки на вещи пользователя
func (s *SwapService) GetReceivedRequests(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	status := c.Query("status", "pending")
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
		SELECT `+db.SwapColumns+`
		FROM swaps
		WHERE owner_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, userUUID, status, limit, skip)
	if err != nil {
		log.Printf("Ошибка запроса заявок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения заявок"})
	}
	defer rows.Close()

	swaps := s.collectSwaps(ctx, rows)

	var total int
	if err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM swaps WHERE owner_id = $1 AND status = $2
	`, userUUID, status).Scan(&total); err != nil {
		log.Printf("Ошибка подсчета заявок: %v", err)
	}

	return c.JSON(fiber.Map{
		"swaps":      swaps,
		"pagination": models.NewPagination(page, limit, len(swaps), total),
	})
}

// RespondToSwap обрабатывает ответ владельца на заявку: принять или
// отклонить. Принятый прямой обмен закрывается сразу: вещи помечаются
// обмененными, обе стороны получают бонус, запись уходит в completed.
func (s *SwapService) RespondToSwap(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	swapUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID обмена"})
	}

	var requestData struct {
		Action string `json:"action"` // accept, reject
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}
	if requestData.Action != "accept" && requestData.Action != "reject" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимое действие, используйте accept или reject"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	swap, err := db.GetSwapByID(ctx, swapUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	// Отвечать на заявку может только владелец запрошенной вещи
	if swap.OwnerID != userUUID {
		return errs.Respond(c, &errs.ForbiddenError{Reason: "только владелец вещи может ответить на заявку"})
	}

	if swap.Status != models.SwapStatusPending {
		return errs.Respond(c, &errs.IllegalTransitionError{Entity: "swap", From: swap.Status, To: models.SwapStatusCompleted})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	if requestData.Action == "reject" {
		if err = db.UpdateSwapStatus(ctx, tx, swap.ID, models.SwapStatusPending, models.SwapStatusRejected); err != nil {
			return errs.Respond(c, err)
		}
		if err = tx.Commit(ctx); err != nil {
			log.Printf("Ошибка фиксации транзакции: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"swap_id": swap.ID,
			"status":  models.SwapStatusRejected,
			"message": "Заявка на обмен отклонена",
		})
	}

	// Принятие: обмен полностью разрешен, запись сразу уходит в completed
	if err = db.UpdateSwapStatus(ctx, tx, swap.ID, models.SwapStatusPending, models.SwapStatusCompleted); err != nil {
		return errs.Respond(c, err)
	}

	if err = db.MarkItemSwapped(ctx, tx, swap.ItemRequested); err != nil {
		return errs.Respond(c, err)
	}
	if swap.ItemOffered != nil {
		if err = db.MarkItemSwapped(ctx, tx, *swap.ItemOffered); err != nil {
			return errs.Respond(c, err)
		}
	}

	if err = db.IncrementSwapsCompleted(ctx, tx, swap.RequesterID); err != nil {
		return errs.Respond(c, err)
	}
	if err = db.IncrementSwapsCompleted(ctx, tx, swap.OwnerID); err != nil {
		return errs.Respond(c, err)
	}

	// Бонус за состоявшийся прямой обмен обеим сторонам
	if swap.Type == models.SwapTypeDirect {
		bonus := s.cfg.PointsConfig.SwapBonus
		if err = db.CreditPoints(ctx, tx, swap.RequesterID, bonus); err != nil {
			return errs.Respond(c, err)
		}
		if err = db.CreditPoints(ctx, tx, swap.OwnerID, bonus); err != nil {
			return errs.Respond(c, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"swap_id": swap.ID,
		"status":  models.SwapStatusCompleted,
		"message": "Заявка на обмен принята",
	})
}

// CancelSwap отменяет заявку. Отменить может только заявитель и только
// пока заявка в ожидании.
func (s *SwapService) CancelSwap(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	swapUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID обмена"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	swap, err := db.GetSwapByID(ctx, swapUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	if swap.RequesterID != userUUID {
		return errs.Respond(c, &errs.ForbiddenError{Reason: "только заявитель может отменить заявку"})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	if err = db.UpdateSwapStatus(ctx, tx, swap.ID, models.SwapStatusPending, models.SwapStatusCancelled); err != nil {
		return errs.Respond(c, err)
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"swap_id": swap.ID,
		"status":  models.SwapStatusCancelled,
		"message": "Заявка на обмен отменена",
	})
}

// GetConversation возвращает переписку по обмену
func (s *SwapService) GetConversation(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	swapUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID обмена"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	swap, err := db.GetSwapByID(ctx, swapUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	if !swap.IsParticipant(userUUID) {
		return errs.Respond(c, &errs.ForbiddenError{Reason: "переписка доступна только участникам обмена"})
	}

	messages, err := db.LoadSwapConversation(ctx, swap.ID)
	if err != nil {
		log.Printf("Ошибка получения переписки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения переписки"})
	}

	for i := range messages {
		messages[i].Sender = db.GetUserSummary(ctx, messages[i].SenderID)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// AddMessage добавляет сообщение в переписку по обмену
func (s *SwapService) AddMessage(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	swapUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID обмена"})
	}

	var requestData struct {
		Text string `json:"text"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}
	if requestData.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Текст сообщения не указан"})
	}
	if utf8.RuneCountInString(requestData.Text) > models.MaxMessageLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Сообщение не длиннее 500 символов"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	swap, err := db.GetSwapByID(ctx, swapUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	if !swap.IsParticipant(userUUID) {
		return errs.Respond(c, &errs.ForbiddenError{Reason: "переписка доступна только участникам обмена"})
	}

	msg, err := db.AddSwapMessage(ctx, swap.ID, userUUID, requestData.Text)
	if err != nil {
		log.Printf("Ошибка сохранения сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения сообщения"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": msg,
	})
}

// collectSwaps сканирует строки и подгружает связанные вещи и пользователей
func (s *SwapService) collectSwaps(ctx context.Context, rows pgx.Rows) []models.Swap {
	swaps := []models.Swap{}
	for rows.Next() {
		swap, err := db.ScanSwap(rows)
		if err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		if item, err := db.GetItemByID(ctx, swap.ItemRequested); err == nil {
			swap.RequestedItem = item
		}
		if swap.ItemOffered != nil {
			if item, err := db.GetItemByID(ctx, *swap.ItemOffered); err == nil {
				swap.OfferedItem = item
			}
		}
		swap.Requester = db.GetUserSummary(ctx, swap.RequesterID)
		swap.Owner = db.GetUserSummary(ctx, swap.OwnerID)

		swaps = append(swaps, *swap)
	}
	return swaps
}
