package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/errs"
)

// Статусы вещи
const (
	ItemStatusPending   = "pending"
	ItemStatusAvailable = "available"
	ItemStatusSwapped   = "swapped"
	ItemStatusRejected  = "rejected"
)

// Статусы заявки на обмен внутри карточки вещи
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// Ограничения на поля вещи
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxImages            = 5
	MinPointValue        = 1
	MaxPointValue        = 100
)

// CategoryTypes содержит закрытый справочник категорий и типов вещей
var CategoryTypes = map[string][]string{
	"Tops":        {"T-shirt", "Blouse", "Sweater", "Tank Top", "Hoodie", "Cardigan"},
	"Bottoms":     {"Jeans", "Trousers", "Shorts", "Skirt", "Leggings"},
	"Dresses":     {"Casual Dress", "Formal Dress", "Summer Dress", "Maxi Dress"},
	"Outerwear":   {"Jacket", "Coat", "Blazer", "Vest"},
	"Shoes":       {"Sneakers", "Boots", "Sandals", "Heels", "Flats"},
	"Accessories": {"Bag", "Hat", "Scarf", "Belt", "Jewelry"},
	"Activewear":  {"Sports Bra", "Workout Pants", "Athletic Shorts"},
	"Formal":      {"Suit", "Evening Dress", "Formal Shirt"},
	"Casual":      {"Casual Shirt", "Casual Pants", "Casual Dress"},
}

// Sizes содержит закрытый справочник размеров
var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL", "6", "8", "10", "12", "14", "16"}

// Conditions содержит закрытый справочник состояний
var Conditions = []string{"Like New", "Excellent", "Good", "Fair"}

// SwapRequest представляет заявку на обмен в карточке вещи.
// Список заявок не хранится отдельно: он строится по таблице swaps.
type SwapRequest struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`
	Message     string    `json:"message,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	Requester *User `json:"requester,omitempty"`
}

// Item представляет вещь в системе
type Item struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Type            string    `json:"type"`
	Size            string    `json:"size"`
	Condition       string    `json:"condition"`
	Images          []string  `json:"images"`
	Tags            []string  `json:"tags"`
	PointValue      int       `json:"point_value"`
	UploadedBy      uuid.UUID `json:"uploaded_by"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	Views           int       `json:"views"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Дополнительные поля для API
	SwapRequests []SwapRequest `json:"swap_requests,omitempty"`
	Uploader     *User         `json:"uploader,omitempty"`
}

// itemTransitions описывает граф переходов статусов вещи.
// rejected и swapped терминальны.
var itemTransitions = map[string][]string{
	ItemStatusPending:   {ItemStatusAvailable, ItemStatusRejected},
	ItemStatusAvailable: {ItemStatusSwapped},
}

// Validate проверяет поля вещи при создании и возвращает
// ValidationError со списком всех нарушенных полей
func (i *Item) Validate() error {
	fields := map[string]string{}

	// Лимиты в символах, не в байтах: кириллица занимает два байта
	if i.Title == "" {
		fields["title"] = "укажите название"
	} else if utf8.RuneCountInString(i.Title) > MaxTitleLength {
		fields["title"] = "название не длиннее 100 символов"
	}

	if i.Description == "" {
		fields["description"] = "укажите описание"
	} else if utf8.RuneCountInString(i.Description) > MaxDescriptionLength {
		fields["description"] = "описание не длиннее 500 символов"
	}

	if _, ok := CategoryTypes[i.Category]; !ok {
		fields["category"] = "выберите категорию из списка"
	}

	if i.Type == "" {
		fields["type"] = "укажите тип вещи"
	}

	if !contains(Sizes, i.Size) {
		fields["size"] = "выберите размер из списка"
	}

	if !contains(Conditions, i.Condition) {
		fields["condition"] = "выберите состояние из списка"
	}

	if len(i.Images) == 0 {
		fields["images"] = "добавьте хотя бы одно изображение"
	} else if len(i.Images) > MaxImages {
		fields["images"] = "не больше 5 изображений"
	}

	if i.PointValue < MinPointValue || i.PointValue > MaxPointValue {
		fields["point_value"] = "стоимость в баллах должна быть от 1 до 100"
	}

	if len(fields) > 0 {
		return &errs.ValidationError{Fields: fields}
	}
	return nil
}

// TransitionTo переводит вещь в новый статус по графу переходов
func (i *Item) TransitionTo(newStatus string) error {
	for _, allowed := range itemTransitions[i.Status] {
		if allowed == newStatus {
			i.Status = newStatus
			return nil
		}
	}
	return &errs.IllegalTransitionError{Entity: "item", From: i.Status, To: newStatus}
}

// AddSwapRequest добавляет заявку на обмен в карточку вещи.
// У одного пользователя может быть не больше одной активной заявки на вещь.
func (i *Item) AddSwapRequest(requesterID uuid.UUID, message string) error {
	for _, req := range i.SwapRequests {
		if req.RequesterID == requesterID && req.Status == RequestStatusPending {
			return &errs.DuplicateRequestError{}
		}
	}
	i.SwapRequests = append(i.SwapRequests, SwapRequest{
		ID:          uuid.New(),
		RequesterID: requesterID,
		Message:     message,
		Status:      RequestStatusPending,
		CreatedAt:   time.Now(),
	})
	return nil
}

// UpdateSwapRequest меняет статус заявки в карточке вещи
func (i *Item) UpdateSwapRequest(requestID uuid.UUID, status string) error {
	if status != RequestStatusPending && status != RequestStatusAccepted && status != RequestStatusRejected {
		return errs.NewValidation("status", "недопустимый статус заявки")
	}
	for idx := range i.SwapRequests {
		if i.SwapRequests[idx].ID == requestID {
			i.SwapRequests[idx].Status = status
			return nil
		}
	}
	return &errs.NotFoundError{Entity: "заявка на обмен"}
}

// IncrementViews увеличивает счетчик просмотров. Просмотры владельца
// не считаются; анонимные просмотры считаются всегда.
func (i *Item) IncrementViews(viewerID *uuid.UUID) bool {
	if viewerID != nil && *viewerID == i.UploadedBy {
		return false
	}
	i.Views++
	return true
}

// PendingRequestCount возвращает число активных заявок на вещь
func (i *Item) PendingRequestCount() int {
	count := 0
	for _, req := range i.SwapRequests {
		if req.Status == RequestStatusPending {
			count++
		}
	}
	return count
}

// HasActiveRequests сообщает, есть ли на вещь заявки в статусе
// pending или accepted; такие вещи владелец удалить не может
func (i *Item) HasActiveRequests() bool {
	for _, req := range i.SwapRequests {
		if req.Status == RequestStatusPending || req.Status == RequestStatusAccepted {
			return true
		}
	}
	return false
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
