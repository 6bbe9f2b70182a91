package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"quiz-session-service/internal/domain"
)

// ResultStore appends completed-session records to Redis as JSON values
// keyed by username and completion timestamp:
//
//	SET quiz:result:{username}:{unix-ms}
//
// SetNX keeps records append-only; a key collision (two completions in the
// same millisecond) falls back to a key suffixed with the record ID.
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func (s *ResultStore) Append(ctx context.Context, record domain.ResultRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal result record: %w", err)
	}
	key := s.resultKey(record)
	ok, err := s.client.SetNX(ctx, key, raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store result record: %w", err)
	}
	if !ok {
		if err := s.client.Set(ctx, key+":"+record.ID, raw, s.ttl).Err(); err != nil {
			return fmt.Errorf("store result record: %w", err)
		}
	}
	return nil
}

func (s *ResultStore) resultKey(record domain.ResultRecord) string {
	return fmt.Sprintf("quiz:result:%s:%d", record.Username, record.CompletedAt.UnixMilli())
}
