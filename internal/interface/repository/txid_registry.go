package repository

import (
	"context"
	"fmt"
	"time"

	"dispatch-console/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const txidKeyPrefix = "dispatch:txid:"

// RedisTransactionIDRegistry reserves transaction IDs with SET NX so
// consoles importing at the same time never hand out the same ID
type RedisTransactionIDRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTransactionIDRegistry creates a registry; reservations expire after ttl
func NewRedisTransactionIDRegistry(client *redis.Client, ttl time.Duration) repository.TransactionIDRegistry {
	return &RedisTransactionIDRegistry{
		client: client,
		ttl:    ttl,
	}
}

// Reserve claims id and reports false when someone else holds it
func (r *RedisTransactionIDRegistry) Reserve(ctx context.Context, transactionID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, txidKeyPrefix+transactionID, time.Now().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve transaction id: %w", err)
	}
	return ok, nil
}
