package item

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/cache"
	"github.com/rajivgeraev/rewear-api/internal/config"
	"github.com/rajivgeraev/rewear-api/internal/db"
	"github.com/rajivgeraev/rewear-api/internal/errs"
	"github.com/rajivgeraev/rewear-api/internal/models"
	"github.com/rajivgeraev/rewear-api/internal/services/upload"
	"github.com/rajivgeraev/rewear-api/internal/utils"
)

// ItemService представляет сервис для работы с вещами
type ItemService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	cache      *cache.Cache
	uploads    *upload.UploadService
}

// NewItemService создает новый экземпляр ItemService
func NewItemService(cfg *config.Config, c *cache.Cache, uploads *upload.UploadService) *ItemService {
	return &ItemService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		cache:      c,
		uploads:    uploads,
	}
}

// CreateItem обрабатывает создание новой вещи. Вещь попадает в статус
// pending и становится видимой после одобрения модератором.
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Type        string   `json:"type"`
		Size        string   `json:"size"`
		Condition   string   `json:"condition"`
		Images      []string `json:"images"`
		Tags        []string `json:"tags"`
		PointValue  int      `json:"point_value"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	item := models.Item{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(requestData.Title),
		Description: strings.TrimSpace(requestData.Description),
		Category:    requestData.Category,
		Type:        requestData.Type,
		Size:        requestData.Size,
		Condition:   requestData.Condition,
		Images:      requestData.Images,
		Tags:        requestData.Tags,
		PointValue:  requestData.PointValue,
		UploadedBy:  userUUID,
		Status:      models.ItemStatusPending,
	}

	// Проверяем все поля разом и возвращаем полный список нарушений
	if err := item.Validate(); err != nil {
		return errs.Respond(c, err)
	}

	if item.Tags == nil {
		item.Tags = []string{}
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO items (id, title, description, category, type, size, condition,
		                   images, tags, point_value, uploaded_by, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending')
	`, item.ID, item.Title, item.Description, item.Category, item.Type, item.Size,
		item.Condition, item.Images, item.Tags, item.PointValue, item.UploadedBy)
	if err != nil {
		log.Printf("Ошибка вставки вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения вещи"})
	}

	// Увеличиваем счетчик размещенных вещей владельца
	if err = db.IncrementItemsListed(ctx, tx, userUUID); err != nil {
		log.Printf("Ошибка обновления счетчика вещей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"item_id": item.ID,
		"message": "Вещь отправлена на модерацию",
	})
}

// GetPublicItems возвращает витрину доступных вещей с фильтрами,
// текстовым поиском и пагинацией. Результат кэшируется на минуту.
func (s *ItemService) GetPublicItems(c fiber.Ctx) error {
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

	// Пробуем отдать страницу из кэша
	cacheKey := "catalog:" + c.OriginalURL()
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			c.Set("Content-Type", "application/json")
			return c.SendString(cached)
		}
	}

	// Собираем условия фильтрации; витрина показывает только available
	conditions := []string{"status = 'available'"}
	args := []interface{}{}
	argPos := 1

	addFilter := func(column, value string) {
		if value != "" {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", column, argPos))
			args = append(args, value)
			argPos++
		}
	}
	addFilter("category", c.Query("category"))
	addFilter("size", c.Query("size"))
	addFilter("condition", c.Query("condition"))

	if minPoints, err := strconv.Atoi(c.Query("min_points")); err == nil {
		conditions = append(conditions, fmt.Sprintf("point_value >= $%d", argPos))
		args = append(args, minPoints)
		argPos++
	}
	if maxPoints, err := strconv.Atoi(c.Query("max_points")); err == nil {
		conditions = append(conditions, fmt.Sprintf("point_value <= $%d", argPos))
		args = append(args, maxPoints)
		argPos++
	}

	if search := c.Query("search"); search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $%d))",
			argPos, argPos, argPos))
		args = append(args, "%"+search+"%")
		argPos++
	}

	orderBy := "created_at DESC"
	switch c.Query("sort") {
	case "oldest":
		orderBy = "created_at ASC"
	case "points_asc":
		orderBy = "point_value ASC"
	case "points_desc":
		orderBy = "point_value DESC"
	case "popular":
		orderBy = "views DESC"
	}

	where := strings.Join(conditions, " AND ")
	skip := (page - 1) * limit

	items, err := s.queryItems(ctx, where, orderBy, limit, skip, args)
	if err != nil {
		log.Printf("Ошибка запроса вещей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещей"})
	}

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE `+where, args...).Scan(&total); err != nil {
		log.Printf("Ошибка подсчета вещей: %v", err)
	}

	response := fiber.Map{
		"items":      items,
		"pagination": models.NewPagination(page, limit, len(items), total),
	}

	// Кэшируем сериализованный ответ
	if s.cache != nil {
		if body, err := json.Marshal(response); err == nil {
			s.cache.Set(ctx, cacheKey, string(body), cache.CatalogTTL)
		}
	}

	return c.JSON(response)
}

// queryItems выполняет выборку вещей с подгрузкой владельцев
func (s *ItemService) queryItems(ctx context.Context, where, orderBy string, limit, skip int, args []interface{}) ([]models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM items
		WHERE %s
		ORDER BY %s
		LIMIT %d OFFSET %d
	`, db.ItemColumns, where, orderBy, limit, skip)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
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
	return items, nil
}

// GetItem возвращает карточку вещи вместе с заявками на обмен.
// Просмотр чужой вещи увеличивает счетчик, просмотр владельцем нет.
func (s *ItemService) GetItem(c fiber.Ctx) error {
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

	// Определяем зрителя, если запрос авторизован
	var viewerID *uuid.UUID
	if userID, ok := c.Locals("userID").(string); ok && userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			viewerID = &parsed
		}
	}

	// Анонимные просмотры считаются, просмотры владельца нет
	if item.IncrementViews(viewerID) {
		if err := db.IncrementItemViews(ctx, item.ID); err != nil {
			log.Printf("Ошибка обновления просмотров: %v", err)
		}
	}

	requests, err := db.LoadItemSwapRequests(ctx, item.ID)
	if err != nil {
		log.Printf("Ошибка получения заявок: %v", err)
	}
	item.SwapRequests = requests
	item.Uploader = db.GetUserSummary(ctx, item.UploadedBy)

	isOwner := viewerID != nil && *viewerID == item.UploadedBy

	return c.JSON(fiber.Map{
		"item":     item,
		"is_owner": isOwner,
	})
}

// UpdateItem обновляет вещь. Разрешено только владельцу и только пока
// вещь в статусе pending или available. Применяется частичное обновление
// фиксированного набора полей; неизвестные поля отклоняются.
func (s *ItemService) UpdateItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	itemUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var patch map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := db.GetItemByID(ctx, itemUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	if item.UploadedBy != userUUID {
		return errs.Respond(c, &errs.ForbiddenError{Reason: "у вас нет прав на редактирование этой вещи"})
	}

	if item.Status != models.ItemStatusPending && item.Status != models.ItemStatusAvailable {
		return errs.Respond(c, &errs.IllegalTransitionError{Entity: "item", From: item.Status, To: item.Status})
	}

	if err := applyItemPatch(item, patch); err != nil {
		return errs.Respond(c, err)
	}

	// Повторная валидация вещи целиком после применения изменений
	if err := item.Validate(); err != nil {
		return errs.Respond(c, err)
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE items
		SET title = $1, description = $2, category = $3, type = $4, size = $5,
		    condition = $6, images = $7, tags = $8, point_value = $9, updated_at = NOW()
		WHERE id = $10
	`, item.Title, item.Description, item.Category, item.Type, item.Size,
		item.Condition, item.Images, item.Tags, item.PointValue, item.ID)
	if err != nil {
		log.Printf("Ошибка обновления вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления вещи"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"item":    item,
		"message": "Вещь успешно обновлена",
	})
}

// DeleteItem удаляет вещь владельца. Вещь с живыми заявками на обмен
// удалить нельзя.
func (s *ItemService) DeleteItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	itemUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := db.GetItemByID(ctx, itemUUID)
	if err != nil {
		return errs.Respond(c, err)
	}

	if item.UploadedBy != userUUID {
		return errs.Respond(c, &errs.ForbiddenError{Reason: "у вас нет прав на удаление этой вещи"})
	}

	active, err := db.CountActiveSwapsForItem(ctx, item.ID)
	if err != nil {
		log.Printf("Ошибка проверки активных обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if active > 0 {
		return errs.Respond(c, &errs.HasActiveSwapsError{Count: active})
	}

	_, err = db.Pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, item.ID)
	if err != nil {
		log.Printf("Ошибка удаления вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления вещи"})
	}

	// Чистим изображения в Cloudinary; ошибка не мешает удалению
	if s.uploads != nil {
		s.uploads.DestroyImages(item.Images)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Вещь успешно удалена",
	})
}

// GetCategoriesMeta возвращает справочники категорий, размеров и состояний
func (s *ItemService) GetCategoriesMeta(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": models.CategoryTypes,
		"sizes":      models.Sizes,
		"conditions": models.Conditions,
	})
}

// applyItemPatch применяет частичное обновление к вещи.
// Допускается фиксированный набор изменяемых полей; любое другое поле
// считается ошибкой валидации.
func applyItemPatch(item *models.Item, patch map[string]json.RawMessage) error {
	for field, raw := range patch {
		var err error
		switch field {
		case "title":
			var v string
			if err = json.Unmarshal(raw, &v); err == nil {
				item.Title = strings.TrimSpace(v)
			}
		case "description":
			var v string
			if err = json.Unmarshal(raw, &v); err == nil {
				item.Description = strings.TrimSpace(v)
			}
		case "category":
			err = json.Unmarshal(raw, &item.Category)
		case "type":
			err = json.Unmarshal(raw, &item.Type)
		case "size":
			err = json.Unmarshal(raw, &item.Size)
		case "condition":
			err = json.Unmarshal(raw, &item.Condition)
		case "images":
			err = json.Unmarshal(raw, &item.Images)
		case "tags":
			err = json.Unmarshal(raw, &item.Tags)
		case "point_value":
			err = json.Unmarshal(raw, &item.PointValue)
		default:
			return errs.NewValidation(field, "поле нельзя изменить")
		}
		if err != nil {
			return errs.NewValidation(field, "неверный формат значения")
		}
	}
	return nil
}
