package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/facturacion-dte/internal/application/billing"
	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/pkg/config"
)

const (
	defaultKeyPrefix = "dte:idempotency:"
	pendingValue     = "pending"
	// mientras la solicitud está en curso la reserva expira antes que la llave completada
	pendingTTL = 2 * time.Minute
)

// RedisIdempotencyStore llaves de idempotencia de POST /api/invoices compartidas entre instancias.
// Estados de la llave: ausente → "pending" (SETNX) → ID de la factura (TTL largo).
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient crea el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisIdempotencyStore construye el store sobre un cliente existente.
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Reserve marca la llave como en curso (SETNX). Ver billing.IdempotencyStore.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (string, error) {
	k := s.keyPrefix + key
	ok, err := s.client.SetNX(ctx, k, pendingValue, pendingTTL).Result()
	if err != nil {
		return "", fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return "", nil
	}
	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expiró entre SETNX y GET; se intenta una vez más
		return s.reserveOnce(ctx, k)
	}
	if err != nil {
		return "", fmt.Errorf("read idempotency key: %w", err)
	}
	if val == pendingValue {
		return "", domain.ErrIdempotencyInFlight
	}
	return val, nil
}

func (s *RedisIdempotencyStore) reserveOnce(ctx context.Context, k string) (string, error) {
	ok, err := s.client.SetNX(ctx, k, pendingValue, pendingTTL).Result()
	if err != nil {
		return "", fmt.Errorf("reserve idempotency key: %w", err)
	}
	if !ok {
		return "", domain.ErrIdempotencyInFlight
	}
	return "", nil
}

// Complete asocia la llave a la factura emitida.
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, invoiceID string) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, invoiceID, s.ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release borra la reserva para que el cliente pueda reintentar tras un error.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// Ensure RedisIdempotencyStore implements billing.IdempotencyStore
var _ billing.IdempotencyStore = (*RedisIdempotencyStore)(nil)
