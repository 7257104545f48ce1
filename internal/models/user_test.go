package models

import (
	"errors"
	"testing"

	"github.com/rajivgeraev/rewear-api/internal/errs"
)

func TestAddPoints(t *testing.T) {
	u := User{Points: 50}

	u.AddPoints(10)
	if u.Points != 60 {
		t.Errorf("ожидался баланс 60, получен %d", u.Points)
	}
	if u.PointsEarned != 10 {
		t.Errorf("ожидалось 10 заработанных баллов, получено %d", u.PointsEarned)
	}
}

func TestAddPointsIgnoresNonPositive(t *testing.T) {
	u := User{Points: 50}

	u.AddPoints(0)
	u.AddPoints(-25)

	if u.Points != 50 || u.PointsEarned != 0 {
		t.Errorf("баланс не должен меняться: points=%d, earned=%d", u.Points, u.PointsEarned)
	}
}

func TestDeductPoints(t *testing.T) {
	u := User{Points: 50}

	if err := u.DeductPoints(30); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if u.Points != 20 {
		t.Errorf("ожидался баланс 20, получен %d", u.Points)
	}
	if u.PointsSpent != 30 {
		t.Errorf("ожидалось 30 потраченных баллов, получено %d", u.PointsSpent)
	}
}

func TestDeductPointsInsufficient(t *testing.T) {
	u := User{Points: 20}

	err := u.DeductPoints(25)

	var insufficientErr *errs.InsufficientPointsError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("ожидалась InsufficientPointsError, получено %v", err)
	}
	if insufficientErr.Required != 25 || insufficientErr.Available != 20 {
		t.Errorf("неверные детали ошибки: required=%d, available=%d",
			insufficientErr.Required, insufficientErr.Available)
	}

	// Неудачное списание не трогает баланс
	if u.Points != 20 || u.PointsSpent != 0 {
		t.Errorf("баланс не должен меняться: points=%d, spent=%d", u.Points, u.PointsSpent)
	}
}

func TestDeductPointsExactBalance(t *testing.T) {
	u := User{Points: 20}

	if err := u.DeductPoints(20); err != nil {
		t.Fatalf("списание всего баланса должно пройти: %v", err)
	}
	if u.Points != 0 {
		t.Errorf("ожидался нулевой баланс, получен %d", u.Points)
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	u := User{Points: 10}

	// Серия произвольных операций не уводит баланс в минус
	ops := []int{5, 20, 3, 100, 2}
	for _, amount := range ops {
		u.DeductPoints(amount)
		if u.Points < 0 {
			t.Fatalf("баланс ушел в минус: %d", u.Points)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	admin := User{Role: RoleAdmin}
	regular := User{Role: RoleUser}

	if !admin.IsAdmin() {
		t.Error("администратор не распознан")
	}
	if regular.IsAdmin() {
		t.Error("обычный пользователь распознан как администратор")
	}
}
