package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/infrastructure/resilience"
)

const (
	DefaultPrefix = "catalog:staging:"
	DefaultTTL    = 24 * time.Hour
)

// commands is the subset of redis.Cmdable the store needs.
type commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Options struct {
	Prefix             string
	TTL                time.Duration
	ResilienceExecutor *resilience.Executor
}

// Store keeps staged upload records as JSON blobs that expire after TTL.
type Store struct {
	client   commands
	prefix   string
	ttl      time.Duration
	executor *resilience.Executor
}

// NewClient parses a redis:// URL and checks connectivity.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func NewStore(client redis.Cmdable, options Options) *Store {
	return newStore(client, options)
}

func newStore(client commands, options Options) *Store {
	prefix := options.Prefix
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	ttl := options.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		client:   client,
		prefix:   prefix,
		ttl:      ttl,
		executor: options.ResilienceExecutor,
	}
}

func (s *Store) key(uploadID string) string {
	return s.prefix + uploadID
}

func (s *Store) Save(ctx context.Context, uploadID string, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal staged records: %w", err)
	}
	err = s.executor.Execute(ctx, "redis.staging.set", func(ctx context.Context) error {
		if err := s.client.Set(ctx, s.key(uploadID), payload, s.ttl).Err(); err != nil {
			return fmt.Errorf("redis set: %w", err)
		}
		return nil
	}, classifyRedisError)
	return resilience.WrapTemporary("save staged records", err, classifyRedisError)
}

func (s *Store) Load(ctx context.Context, uploadID string) ([]domain.Product, error) {
	payload, err := resilience.Do(ctx, s.executor, "redis.staging.get", func(ctx context.Context) ([]byte, error) {
		val, err := s.client.Get(ctx, s.key(uploadID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, domain.WrapError(domain.ErrUploadNotFound, "load staged records", fmt.Errorf("no staged records for upload %s", uploadID))
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}
		return val, nil
	}, classifyRedisError)
	if err != nil {
		return nil, resilience.WrapTemporary("load staged records", err, classifyRedisError)
	}

	var products []domain.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, fmt.Errorf("unmarshal staged records: %w", err)
	}
	return products, nil
}

func (s *Store) Delete(ctx context.Context, uploadID string) error {
	err := s.executor.Execute(ctx, "redis.staging.del", func(ctx context.Context) error {
		if err := s.client.Del(ctx, s.key(uploadID)).Err(); err != nil {
			return fmt.Errorf("redis delete: %w", err)
		}
		return nil
	}, classifyRedisError)
	return resilience.WrapTemporary("delete staged records", err, classifyRedisError)
}

var classifyRedisError = resilience.Classifier(func(err error) bool {
	if errors.Is(err, redis.ErrClosed) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "LOADING") || strings.Contains(msg, "TRYAGAIN") || strings.Contains(msg, "connection reset")
})
