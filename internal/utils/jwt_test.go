package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	service := NewJWTService("test-secret")
	userID := uuid.New().String()

	token, err := service.GenerateToken(userID)
	if err != nil {
		t.Fatalf("ошибка генерации токена: %v", err)
	}

	extracted, err := service.ExtractUserID(token)
	if err != nil {
		t.Fatalf("ошибка проверки токена: %v", err)
	}
	if extracted != userID {
		t.Errorf("ожидался userID %s, получен %s", userID, extracted)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-one").GenerateToken(uuid.New().String())
	if err != nil {
		t.Fatalf("ошибка генерации токена: %v", err)
	}

	if _, err := NewJWTService("secret-two").ExtractUserID(token); err == nil {
		t.Error("токен с чужой подписью прошел проверку")
	}
}

func TestJWTGarbage(t *testing.T) {
	if _, err := NewJWTService("secret").ExtractUserID("не.токен.вовсе"); err == nil {
		t.Error("мусорная строка прошла проверку")
	}
}
