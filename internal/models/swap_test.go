package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/errs"
)

func TestSwapTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{SwapStatusPending, SwapStatusAccepted, true},
		{SwapStatusPending, SwapStatusRejected, true},
		{SwapStatusPending, SwapStatusCancelled, true},
		{SwapStatusPending, SwapStatusCompleted, true},
		{SwapStatusAccepted, SwapStatusCompleted, true},
		{SwapStatusAccepted, SwapStatusPending, false},
		{SwapStatusCompleted, SwapStatusPending, false},
		{SwapStatusCompleted, SwapStatusCancelled, false},
		{SwapStatusRejected, SwapStatusAccepted, false},
		{SwapStatusCancelled, SwapStatusPending, false},
	}

	for _, tc := range cases {
		swap := Swap{Status: tc.from}
		err := swap.SetStatus(tc.to, time.Now())
		if tc.ok && err != nil {
			t.Errorf("переход %s -> %s должен быть разрешен: %v", tc.from, tc.to, err)
		}
		if !tc.ok {
			var transitionErr *errs.IllegalTransitionError
			if !errors.As(err, &transitionErr) {
				t.Errorf("переход %s -> %s должен быть запрещен", tc.from, tc.to)
			}
			if swap.Status != tc.from {
				t.Errorf("запрещенный переход изменил статус: %s", swap.Status)
			}
		}
	}
}

func TestSwapTerminalTimestamps(t *testing.T) {
	now := time.Now()

	swap := Swap{Status: SwapStatusPending}
	if err := swap.SetStatus(SwapStatusCompleted, now); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if swap.CompletedAt == nil || !swap.CompletedAt.Equal(now) {
		t.Error("completed_at не выставлен при завершении")
	}
	if swap.CancelledAt != nil || swap.RejectedAt != nil {
		t.Error("выставлены лишние отметки времени")
	}

	swap = Swap{Status: SwapStatusPending}
	swap.SetStatus(SwapStatusCancelled, now)
	if swap.CancelledAt == nil {
		t.Error("cancelled_at не выставлен при отмене")
	}

	swap = Swap{Status: SwapStatusPending}
	swap.SetStatus(SwapStatusRejected, now)
	if swap.RejectedAt == nil {
		t.Error("rejected_at не выставлен при отклонении")
	}
}

func TestSwapTimestampSetOnce(t *testing.T) {
	first := time.Now()
	stamp := first

	// Уже выставленная отметка не перезаписывается
	swap := Swap{Status: SwapStatusAccepted, CompletedAt: &stamp}
	if err := swap.SetStatus(SwapStatusCompleted, first.Add(time.Hour)); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if !swap.CompletedAt.Equal(first) {
		t.Error("отметка времени перезаписана повторным переходом")
	}
}

func TestSwapIsParticipant(t *testing.T) {
	requester := uuid.New()
	owner := uuid.New()
	swap := Swap{RequesterID: requester, OwnerID: owner}

	if !swap.IsParticipant(requester) || !swap.IsParticipant(owner) {
		t.Error("сторона обмена не распознана")
	}
	if swap.IsParticipant(uuid.New()) {
		t.Error("посторонний распознан как участник")
	}
}

func TestSwapIsActive(t *testing.T) {
	for _, status := range []string{SwapStatusPending, SwapStatusAccepted} {
		swap := Swap{Status: status}
		if !swap.IsActive() {
			t.Errorf("обмен в статусе %s должен быть активным", status)
		}
	}
	for _, status := range []string{SwapStatusCompleted, SwapStatusRejected, SwapStatusCancelled} {
		swap := Swap{Status: status}
		if swap.IsActive() {
			t.Errorf("обмен в статусе %s не должен быть активным", status)
		}
	}
}

func TestSwapAddMessage(t *testing.T) {
	swap := Swap{ID: uuid.New()}
	sender := uuid.New()

	msg := swap.AddMessage(sender, "привет")

	if msg.SwapID != swap.ID || msg.SenderID != sender {
		t.Error("сообщение привязано неверно")
	}
	if len(swap.Conversation) != 1 {
		t.Errorf("ожидалось одно сообщение, получено %d", len(swap.Conversation))
	}
}
