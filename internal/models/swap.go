package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/errs"
)

// Типы обмена
const (
	SwapTypeDirect     = "direct_swap"
	SwapTypeRedemption = "point_redemption"
)

// Статусы обмена
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusRejected  = "rejected"
	SwapStatusCompleted = "completed"
	SwapStatusCancelled = "cancelled"
)

// MaxMessageLength ограничивает длину сообщения в переписке (в символах)
const MaxMessageLength = 500

// SwapMessage представляет сообщение в переписке по обмену
type SwapMessage struct {
	ID        uuid.UUID `json:"id"`
	SwapID    uuid.UUID `json:"swap_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	Sender *User `json:"sender,omitempty"`
}

// Swap представляет обмен: прямой обмен вещами или выкуп за баллы.
// Таблица swaps служит единственным источником правды о заявках; список
// заявок в карточке вещи строится по ней.
type Swap struct {
	ID            uuid.UUID  `json:"id"`
	ItemRequested uuid.UUID  `json:"item_requested"`
	ItemOffered   *uuid.UUID `json:"item_offered,omitempty"`
	RequesterID   uuid.UUID  `json:"requester_id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	Message       string     `json:"message,omitempty"`
	PointsUsed    int        `json:"points_used"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	RejectedAt    *time.Time `json:"rejected_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Дополнительные поля для API
	RequestedItem *Item         `json:"requested_item,omitempty"`
	OfferedItem   *Item         `json:"offered_item,omitempty"`
	Requester     *User         `json:"requester,omitempty"`
	Owner         *User         `json:"owner,omitempty"`
	Conversation  []SwapMessage `json:"conversation,omitempty"`
}

// swapTransitions описывает граф переходов статусов обмена.
// Статус движется только вперед; из терминального состояния выхода нет.
// Прямой обмен при принятии закрывается сразу (pending -> completed),
// поэтому completed достижим из pending напрямую.
var swapTransitions = map[string][]string{
	SwapStatusPending:  {SwapStatusAccepted, SwapStatusRejected, SwapStatusCancelled, SwapStatusCompleted},
	SwapStatusAccepted: {SwapStatusCompleted},
}

// SetStatus переводит обмен в новый статус. При первом достижении
// терминального статуса проставляется соответствующая отметка времени;
// однажды выставленная отметка больше не меняется.
func (s *Swap) SetStatus(newStatus string, now time.Time) error {
	allowed := false
	for _, next := range swapTransitions[s.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return &errs.IllegalTransitionError{Entity: "swap", From: s.Status, To: newStatus}
	}

	s.Status = newStatus
	switch newStatus {
	case SwapStatusCompleted:
		if s.CompletedAt == nil {
			s.CompletedAt = &now
		}
	case SwapStatusCancelled:
		if s.CancelledAt == nil {
			s.CancelledAt = &now
		}
	case SwapStatusRejected:
		if s.RejectedAt == nil {
			s.RejectedAt = &now
		}
	}
	return nil
}

// AddMessage добавляет сообщение в переписку по обмену
func (s *Swap) AddMessage(senderID uuid.UUID, text string) SwapMessage {
	msg := SwapMessage{
		ID:        uuid.New(),
		SwapID:    s.ID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.Conversation = append(s.Conversation, msg)
	return msg
}

// IsParticipant проверяет, что пользователь является стороной обмена
func (s *Swap) IsParticipant(userID uuid.UUID) bool {
	return s.RequesterID == userID || s.OwnerID == userID
}

// IsActive сообщает, что обмен ещё не завершен
func (s *Swap) IsActive() bool {
	return s.Status == SwapStatusPending || s.Status == SwapStatusAccepted
}
