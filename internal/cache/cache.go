package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/rajivgeraev/rewear-api/internal/config"
)

// CatalogTTL задает время жизни кэша страниц витрины
const CatalogTTL = time.Minute

// Cache оборачивает клиент Redis. Используется для кэширования витрины
// и счетчиков ограничения частоты запросов.
type Cache struct {
	client *redis.Client
}

// New создает подключение к Redis и проверяет его
func New(cfg *config.Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisConfig.Host, cfg.RedisConfig.Port),
		Password: cfg.RedisConfig.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	log.Println("✅ Успешное подключение к Redis")
	return &Cache{client: client}, nil
}

// Get возвращает значение по ключу. Отсутствие ключа не считается ошибкой.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set сохраняет значение с временем жизни
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete удаляет ключ
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Incr увеличивает счетчик по ключу
func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// Expire выставляет время жизни ключа
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}

// Close закрывает подключение к Redis
func (c *Cache) Close() error {
	return c.client.Close()
}
