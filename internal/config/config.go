package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config структура конфигурации
type Config struct {
	TelegramBotToken string
	JWTSecret        string
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	RedisConfig      RedisConfig
	CloudinaryConfig CloudinaryConfig
	PointsConfig     PointsConfig
	AppEnv           string
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig содержит конфигурацию Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
}

// PointsConfig содержит баллы, начисляемые системой.
// Размеры бонусов задаются окружением, а не числами в коде.
type PointsConfig struct {
	StartingBalance int // стартовый баланс нового пользователя
	ApprovalBonus   int // бонус владельцу за одобренную вещь
	SwapBonus       int // бонус каждой стороне за состоявшийся прямой обмен
}

// LoadConfig загружает переменные из .env
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "rewear_user"),
		Password: getEnv("PGPASSWORD", "rewear_pass"),
		Name:     getEnv("PGDATABASE", "rewear"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
		MaxConns: getEnvInt("PG_MAX_CONNS", 10),
		MinConns: getEnvInt("PG_MIN_CONNS", 2),
	}

	// Формируем строку подключения к базе данных
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	redisConfig := RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
	}

	cloudinaryConfig := CloudinaryConfig{
		CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", "rewear_items"),
	}

	pointsConfig := PointsConfig{
		StartingBalance: getEnvInt("POINTS_STARTING_BALANCE", 50),
		ApprovalBonus:   getEnvInt("POINTS_APPROVAL_BONUS", 10),
		SwapBonus:       getEnvInt("POINTS_SWAP_BONUS", 5),
	}

	cfg := &Config{
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		DatabaseURL:      dbURL,
		DatabaseConfig:   dbConfig,
		RedisConfig:      redisConfig,
		CloudinaryConfig: cloudinaryConfig,
		PointsConfig:     pointsConfig,
		AppEnv:           getEnv("APP_ENV", "production"),
	}

	if cfg.TelegramBotToken == "" || cfg.JWTSecret == "" {
		log.Fatal("❌ Ошибка: Не заданы обязательные переменные окружения")
	}

	return cfg
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt получает числовую переменную окружения или использует дефолтное значение
func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️ Неверное значение %s=%q, используем %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
