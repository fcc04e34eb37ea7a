package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultKeyPrefix = "txdash"

type Config struct {
	Addr      string
	KeyPrefix string
}

// Store keeps the connected wallet address under a single redis key.
type Store struct {
	client *redis.Client
	key    string
}

func NewStore(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewStoreWithClient(client, cfg.KeyPrefix), nil
}

func NewStoreWithClient(client *redis.Client, prefix string) *Store {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultKeyPrefix
	}
	return &Store{client: client, key: prefix + ":wallet_address"}
}

func (s *Store) LoadAddress(ctx context.Context) (string, bool, error) {
	ctx, span := startSpan(ctx, "redis.LoadAddress")
	defer span.End()

	value, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SaveAddress(ctx context.Context, address string) error {
	ctx, span := startSpan(ctx, "redis.SaveAddress")
	defer span.End()

	if err := s.client.Set(ctx, s.key, address, 0).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *Store) ClearAddress(ctx context.Context) error {
	ctx, span := startSpan(ctx, "redis.ClearAddress")
	defer span.End()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("txdash/redis").Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "redis")),
	)
}
