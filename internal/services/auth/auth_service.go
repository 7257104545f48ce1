package auth

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/rajivgeraev/rewear-api/internal/config"
	"github.com/rajivgeraev/rewear-api/internal/db"
	"github.com/rajivgeraev/rewear-api/internal/utils"
)

// AuthService – структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewAuthService – конструктор AuthService
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService возвращает JWT сервис для middleware
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// TelegramAuthHandler проверяет initData, создает или обновляет
// пользователя и возвращает JWT
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	// Проверяем initData
	expiration := 24 * time.Hour
	if err := initdata.Validate(payload.InitData, s.cfg.TelegramBotToken, expiration); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Telegram data"})
	}

	// Парсим данные
	data, err := initdata.Parse(payload.InitData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to parse initData"})
	}

	rawUser, _ := json.Marshal(data.User)

	// Создаем или обновляем пользователя; новому начисляется стартовый баланс
	user, err := db.CreateOrUpdateTelegramUser(
		data.User.ID,
		data.User.Username,
		data.User.FirstName,
		data.User.LastName,
		data.User.PhotoURL,
		rawUser,
		s.cfg.PointsConfig.StartingBalance,
	)
	if err != nil {
		log.Printf("Ошибка создания пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	// Генерируем JWT
	jwtToken, err := s.jwtService.GenerateToken(user.ID.String())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate JWT"})
	}

	return c.JSON(fiber.Map{
		"token": jwtToken,
		"user":  user,
	})
}

// ProfileHandler возвращает профиль текущего пользователя
func (s *AuthService) ProfileHandler(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := db.GetUserByID(ctx, userUUID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
	}

	return c.JSON(fiber.Map{"user": user})
}
