package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"quiz-session-service/internal/domain"
)

// ResultStore keeps completed-session records in memory, keyed by completion
// timestamp. Records are append-only and never overwritten; two completions
// in the same millisecond get distinct keys via the record ID.
type ResultStore struct {
	mu      sync.RWMutex
	records map[string]domain.ResultRecord
}

func NewResultStore() *ResultStore {
	return &ResultStore{records: make(map[string]domain.ResultRecord)}
}

func (s *ResultStore) Append(_ context.Context, record domain.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d:%s", record.CompletedAt.UnixMilli(), record.ID)
	s.records[key] = record
	return nil
}

// List returns all stored records ordered by completion time. This is for
// external consumers and tests; the session core never reads it.
func (s *ResultStore) List(_ context.Context) []domain.ResultRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ResultRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}
