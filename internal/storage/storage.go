package storage

import (
	"context"
	"sync"
	"time"

	"github.com/eugenenazirov/packing-tracker/internal/record"
)

// Store provides read and append access to packing records. Records are
// immutable once stored; there is no update or delete.
type Store interface {
	List(ctx context.Context) ([]record.PackingRecord, error)
	Append(ctx context.Context, rec record.PackingRecord) error
}

// MemoryStore keeps records in-memory and guards access with a RWMutex.
// It backs the service when no remote store endpoint is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records []record.PackingRecord
	clock   func() time.Time
}

// MemoryStoreOption configures MemoryStore behaviour.
type MemoryStoreOption func(*MemoryStore)

// WithClock overrides the timestamp source, primarily for tests.
func WithClock(clock func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.clock = clock
	}
}

// NewMemoryStore initialises the store with a copy of the seed records.
func NewMemoryStore(seed []record.PackingRecord, opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		records: cloneRecords(seed),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns a defensive copy of the stored records.
func (s *MemoryStore) List(_ context.Context) ([]record.PackingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneRecords(s.records), nil
}

// Append stamps the record with the store-assigned creation time and adds it
// to the end of the list.
func (s *MemoryStore) Append(_ context.Context, rec record.PackingRecord) error {
	stored := rec.Clone()
	stored.Timestamp = s.clock().Format(time.RFC3339)

	s.mu.Lock()
	s.records = append(s.records, stored)
	s.mu.Unlock()

	return nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneRecords(src []record.PackingRecord) []record.PackingRecord {
	out := make([]record.PackingRecord, 0, len(src))
	for _, r := range src {
		out = append(out, r.Clone())
	}
	return out
}
