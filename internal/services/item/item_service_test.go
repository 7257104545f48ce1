package item

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rajivgeraev/rewear-api/internal/errs"
	"github.com/rajivgeraev/rewear-api/internal/models"
)

func patchOf(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var patch map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &patch); err != nil {
		t.Fatalf("неверный JSON в тесте: %v", err)
	}
	return patch
}

func TestApplyItemPatch(t *testing.T) {
	item := models.Item{Title: "Старое название", PointValue: 10}

	patch := patchOf(t, `{"title": "  Новое название  ", "point_value": 45}`)
	if err := applyItemPatch(&item, patch); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if item.Title != "Новое название" {
		t.Errorf("название не обновлено: %q", item.Title)
	}
	if item.PointValue != 45 {
		t.Errorf("стоимость не обновлена: %d", item.PointValue)
	}
}

func TestApplyItemPatchRejectsUnknownField(t *testing.T) {
	item := models.Item{}

	// Служебные поля менять нельзя, неизвестные ключи отклоняются
	for _, body := range []string{
		`{"status": "available"}`,
		`{"views": 9000}`,
		`{"uploaded_by": "00000000-0000-0000-0000-000000000000"}`,
		`{"nonsense": 1}`,
	} {
		err := applyItemPatch(&item, patchOf(t, body))
		var validationErr *errs.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("патч %s должен быть отклонен", body)
		}
	}
}

func TestApplyItemPatchRejectsWrongType(t *testing.T) {
	item := models.Item{}

	err := applyItemPatch(&item, patchOf(t, `{"point_value": "many"}`))
	var validationErr *errs.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("ожидалась ValidationError, получено %v", err)
	}
}
