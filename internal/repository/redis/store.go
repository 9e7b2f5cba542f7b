package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/litreads/internal/repository"
	"github.com/utafrali/litreads/pkg/breaker"
	"github.com/utafrali/litreads/pkg/database"
	apperrors "github.com/utafrali/litreads/pkg/errors"
)

// Store implements repository.Store on Redis. Every call goes through a
// circuit breaker; a missing key is not a failure.
type Store struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewStore creates a Redis-backed store. Keys expire ttl after their last
// write; zero disables expiry.
func NewStore(client *redis.Client, ttl time.Duration, cbCfg breaker.Config, logger *slog.Logger) *Store {
	return &Store{
		client:  client,
		ttl:     ttl,
		breaker: breaker.New[[]byte](cbCfg, isSuccessful, logger),
	}
}

func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, redis.Nil)
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, visitorID, key string) (_ []byte, err error) {
	k := repository.Key(visitorID, key)
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "GET", "GET "+key)
	defer func() { end(err) }()

	data, err := s.breaker.Execute(func() ([]byte, error) {
		return s.client.Get(ctx, k).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("key", k)
		}
		return nil, s.wrap("get", err)
	}
	return data, nil
}

// Set writes value under key with the configured TTL.
func (s *Store) Set(ctx context.Context, visitorID, key string, value []byte) (err error) {
	k := repository.Key(visitorID, key)
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "SET", "SET "+key)
	defer func() { end(err) }()

	_, err = s.breaker.Execute(func() ([]byte, error) {
		return nil, s.client.Set(ctx, k, value, s.ttl).Err()
	})
	if err != nil {
		return s.wrap("set", err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, visitorID, key string) (err error) {
	k := repository.Key(visitorID, key)
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "DEL", "DEL "+key)
	defer func() { end(err) }()

	_, err = s.breaker.Execute(func() ([]byte, error) {
		return nil, s.client.Del(ctx, k).Err()
	})
	if err != nil {
		return s.wrap("del", err)
	}
	return nil
}

// Ping checks connectivity. It bypasses the breaker so readiness reports the
// real backend state.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// State reports the breaker state.
func (s *Store) State() gobreaker.State {
	return s.breaker.State()
}

func (s *Store) wrap(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.Unavailable("visitor storage", err)
	}
	return fmt.Errorf("redis %s: %w", op, err)
}
