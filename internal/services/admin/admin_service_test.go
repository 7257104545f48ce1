package admin

import (
	"errors"
	"testing"

	"github.com/rajivgeraev/rewear-api/internal/errs"
	"github.com/rajivgeraev/rewear-api/internal/models"
)

func TestValidateItemStatus(t *testing.T) {
	for _, status := range []string{
		models.ItemStatusPending,
		models.ItemStatusAvailable,
		models.ItemStatusSwapped,
		models.ItemStatusRejected,
	} {
		if err := validateItemStatus(status); err != nil {
			t.Errorf("статус %q должен быть принят: %v", status, err)
		}
	}

	// Опечатка в фильтре отклоняется, а не подменяется на pending
	for _, status := range []string{"pendng", "active", "verified", "Pending"} {
		err := validateItemStatus(status)
		var validationErr *errs.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("статус %q должен быть отклонен", status)
		}
	}
}
