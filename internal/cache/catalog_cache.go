package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workhub/marketplace-backend/internal/logger"
)

// CatalogCache кеширует результаты поиска по каталогу фрилансеров в Redis.
// Клиент может быть nil — тогда все операции превращаются в no-op и каталог
// работает напрямую через базу.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient создаёт подключение к Redis и проверяет его доступность.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping redis %w", err)
	}

	return client, nil
}

// NewCatalogCache создаёт кеш каталога с заданным TTL.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// Key строит ключ кеша из параметров поиска.
func (c *CatalogCache) Key(params interface{}) string {
	raw, err := json.Marshal(params)
	if err != nil {
		return "catalog:search:invalid"
	}
	sum := sha256.Sum256(raw)
	return "catalog:search:" + hex.EncodeToString(sum[:8])
}

// Get читает закешированный результат поиска. Возвращает false при промахе.
func (c *CatalogCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).Warn("Не удалось прочитать кеш каталога")
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Log.WithError(err).Warn("Повреждённая запись кеша каталога")
		return false
	}

	return true
}

// Set сохраняет результат поиска. Ошибки записи не фатальны и только логируются.
func (c *CatalogCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		logger.Log.WithError(err).Warn("Не удалось сериализовать результат для кеша")
		return
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).Warn("Не удалось записать кеш каталога")
	}
}

// Invalidate удаляет все записи кеша каталога. Вызывается при изменении
// профилей или тарифов, чтобы поиск не отдавал устаревшие данные.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, "catalog:search:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Log.WithError(err).Warn("Не удалось удалить запись кеша каталога")
		}
	}
	if err := iter.Err(); err != nil {
		logger.Log.WithError(err).Warn("Ошибка обхода ключей кеша каталога")
	}
}
