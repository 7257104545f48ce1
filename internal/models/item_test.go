package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/errs"
)

func validItem() Item {
	return Item{
		ID:          uuid.New(),
		Title:       "Джинсовая куртка",
		Description: "Почти не ношенная куртка, размер M",
		Category:    "Outerwear",
		Type:        "Jacket",
		Size:        "M",
		Condition:   "Excellent",
		Images:      []string{"https://example.com/1.jpg"},
		PointValue:  30,
		UploadedBy:  uuid.New(),
		Status:      ItemStatusPending,
	}
}

func TestItemValidate(t *testing.T) {
	item := validItem()
	if err := item.Validate(); err != nil {
		t.Fatalf("корректная вещь не прошла валидацию: %v", err)
	}
}

func TestItemValidateCollectsAllErrors(t *testing.T) {
	item := Item{
		Title:      strings.Repeat("x", MaxTitleLength+1),
		Category:   "Неизвестная",
		Size:       "XXXL",
		Condition:  "Terrible",
		PointValue: 0,
	}

	err := item.Validate()
	var validationErr *errs.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("ожидалась ValidationError, получено %v", err)
	}

	// Все нарушенные поля собираются за один проход
	for _, field := range []string{"title", "description", "category", "type", "size", "condition", "images", "point_value"} {
		if _, ok := validationErr.Fields[field]; !ok {
			t.Errorf("нет ошибки для поля %q", field)
		}
	}
}

func TestItemValidateBounds(t *testing.T) {
	item := validItem()
	item.PointValue = MaxPointValue + 1
	if item.Validate() == nil {
		t.Error("стоимость выше максимума прошла валидацию")
	}

	item = validItem()
	item.PointValue = MaxPointValue
	if err := item.Validate(); err != nil {
		t.Errorf("граничная стоимость не прошла валидацию: %v", err)
	}

	item = validItem()
	item.Images = make([]string, MaxImages+1)
	if item.Validate() == nil {
		t.Error("лишние изображения прошли валидацию")
	}
}

func TestItemValidateCountsRunes(t *testing.T) {
	// Лимиты считаются в символах: 60 кириллических букв занимают
	// 120 байт, но это валидное название
	item := validItem()
	item.Title = strings.Repeat("ш", 60)
	item.Description = strings.Repeat("щ", 400)
	if err := item.Validate(); err != nil {
		t.Fatalf("кириллица в пределах лимита не прошла валидацию: %v", err)
	}

	item.Title = strings.Repeat("ш", MaxTitleLength)
	if err := item.Validate(); err != nil {
		t.Errorf("название ровно в лимит не прошло валидацию: %v", err)
	}

	item.Title = strings.Repeat("ш", MaxTitleLength+1)
	if item.Validate() == nil {
		t.Error("название длиннее лимита прошло валидацию")
	}

	item = validItem()
	item.Description = strings.Repeat("щ", MaxDescriptionLength+1)
	if item.Validate() == nil {
		t.Error("описание длиннее лимита прошло валидацию")
	}
}

func TestItemTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{ItemStatusPending, ItemStatusAvailable, true},
		{ItemStatusPending, ItemStatusRejected, true},
		{ItemStatusPending, ItemStatusSwapped, false},
		{ItemStatusAvailable, ItemStatusSwapped, true},
		{ItemStatusAvailable, ItemStatusPending, false},
		{ItemStatusSwapped, ItemStatusAvailable, false},
		{ItemStatusRejected, ItemStatusAvailable, false},
	}

	for _, tc := range cases {
		item := validItem()
		item.Status = tc.from
		err := item.TransitionTo(tc.to)
		if tc.ok && err != nil {
			t.Errorf("переход %s -> %s должен быть разрешен: %v", tc.from, tc.to, err)
		}
		if !tc.ok {
			var transitionErr *errs.IllegalTransitionError
			if !errors.As(err, &transitionErr) {
				t.Errorf("переход %s -> %s должен быть запрещен", tc.from, tc.to)
			}
			if item.Status != tc.from {
				t.Errorf("запрещенный переход изменил статус: %s", item.Status)
			}
		}
	}
}

func TestAddSwapRequestDuplicate(t *testing.T) {
	item := validItem()
	requester := uuid.New()

	if err := item.AddSwapRequest(requester, "поменяемся?"); err != nil {
		t.Fatalf("первая заявка должна пройти: %v", err)
	}

	err := item.AddSwapRequest(requester, "ещё раз")
	var dupErr *errs.DuplicateRequestError
	if !errors.As(err, &dupErr) {
		t.Fatalf("ожидалась DuplicateRequestError, получено %v", err)
	}
	if item.PendingRequestCount() != 1 {
		t.Errorf("ожидалась одна активная заявка, получено %d", item.PendingRequestCount())
	}
}

func TestAddSwapRequestAfterRejection(t *testing.T) {
	item := validItem()
	requester := uuid.New()

	item.AddSwapRequest(requester, "первая")
	item.UpdateSwapRequest(item.SwapRequests[0].ID, RequestStatusRejected)

	// После отклонения можно подать заявку снова
	if err := item.AddSwapRequest(requester, "вторая попытка"); err != nil {
		t.Fatalf("заявка после отклонения должна пройти: %v", err)
	}
}

func TestIncrementViews(t *testing.T) {
	item := validItem()
	owner := item.UploadedBy
	stranger := uuid.New()

	if item.IncrementViews(&owner) {
		t.Error("просмотр владельца не должен считаться")
	}
	if item.Views != 0 {
		t.Errorf("счетчик изменился на просмотре владельца: %d", item.Views)
	}

	if !item.IncrementViews(&stranger) {
		t.Error("просмотр чужой вещи должен считаться")
	}
	if !item.IncrementViews(nil) {
		t.Error("анонимный просмотр должен считаться")
	}
	if item.Views != 2 {
		t.Errorf("ожидалось 2 просмотра, получено %d", item.Views)
	}
}

func TestHasActiveRequests(t *testing.T) {
	item := validItem()
	if item.HasActiveRequests() {
		t.Error("у новой вещи не должно быть активных заявок")
	}

	item.AddSwapRequest(uuid.New(), "")
	if !item.HasActiveRequests() {
		t.Error("активная заявка не обнаружена")
	}

	item.UpdateSwapRequest(item.SwapRequests[0].ID, RequestStatusRejected)
	if item.HasActiveRequests() {
		t.Error("отклоненная заявка считается активной")
	}
}

func TestCategoryTypesClosed(t *testing.T) {
	item := validItem()
	item.Category = "Electronics"

	err := item.Validate()
	var validationErr *errs.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("неизвестная категория прошла валидацию")
	}
	if _, ok := validationErr.Fields["category"]; !ok {
		t.Error("нет ошибки для поля category")
	}
}
