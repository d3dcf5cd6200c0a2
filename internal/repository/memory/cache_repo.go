// Package memory содержит реализацию кеша в памяти процесса для запуска без Redis.
package memory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

// defaultCleanupInterval - период, с которым janitor go-cache удаляет просроченные ключи
const defaultCleanupInterval = time.Minute

// CacheRepo реализует repository.CacheRepository поверх go-cache.
// Строковые значения хранятся как string, счётчики Increment - как int64.
type CacheRepo struct {
	// mu сериализует составные операции (read-modify-write); чтения идут мимо него
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewCacheRepo создает пустой кеш с фоновой очисткой просроченных ключей
func NewCacheRepo() *CacheRepo {
	return newCacheRepo(defaultCleanupInterval)
}

func newCacheRepo(cleanupInterval time.Duration) *CacheRepo {
	return &CacheRepo{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// ttl переводит срок Redis-стиля (0 - без срока) в срок go-cache
func ttl(expiration time.Duration) time.Duration {
	if expiration <= 0 {
		return gocache.NoExpiration
	}
	return expiration
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// Set сохраняет значение в кеше
func (r *CacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(key, stringify(value), ttl(expiration))
	return nil
}

// Get получает значение из кеша
func (r *CacheRepo) Get(key string) (string, error) {
	v, ok := r.cache.Get(key)
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return stringify(v), nil
}

// Delete удаляет значение из кеша
func (r *CacheRepo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(key)
	return nil
}

// Increment увеличивает значение на 1, сохраняя срок жизни ключа (как INCR в Redis)
func (r *CacheRepo) Increment(key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, expiresAt, ok := r.cache.GetWithExpiration(key)
	if !ok {
		r.cache.Set(key, int64(1), gocache.NoExpiration)
		return 1, nil
	}

	switch cur := v.(type) {
	case int64:
		n, err := r.cache.IncrementInt64(key, 1)
		if err != nil {
			// Ключ истёк между чтением и инкрементом
			r.cache.Set(key, int64(1), gocache.NoExpiration)
			return 1, nil
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(cur, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value of %q is not an integer", key)
		}
		remaining := gocache.NoExpiration
		if !expiresAt.IsZero() {
			remaining = time.Until(expiresAt)
			if remaining <= 0 {
				r.cache.Set(key, int64(1), gocache.NoExpiration)
				return 1, nil
			}
		}
		r.cache.Set(key, n+1, remaining)
		return n + 1, nil
	default:
		return 0, fmt.Errorf("value of %q is not an integer", key)
	}
}

// SetJSON сохраняет структуру JSON в кеше
func (r *CacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Set(key, data, expiration)
}

// GetJSON получает структуру JSON из кеша
func (r *CacheRepo) GetJSON(key string, dest interface{}) error {
	raw, err := r.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

// Expire задаёт новое время жизни существующего ключа
func (r *CacheRepo) Expire(key string, expiration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.cache.Get(key)
	if !ok {
		return nil
	}
	r.cache.Set(key, v, ttl(expiration))
	return nil
}

// SetNX устанавливает значение ключа, только если ключ не существует.
// Возвращает true, если ключ был установлен.
func (r *CacheRepo) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.cache.Add(key, stringify(value), ttl(expiration)); err != nil {
		return false, nil
	}
	return true, nil
}

// DeleteIfEquals удаляет ключ, только если его значение равно value
func (r *CacheRepo) DeleteIfEquals(key string, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.cache.Get(key)
	if !ok || stringify(v) != value {
		return false, nil
	}
	r.cache.Delete(key)
	return true, nil
}
