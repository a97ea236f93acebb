package expiration

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Record is the tracking state of one name. A zero ExpiresAt means the
// expiry is not known yet.
type Record struct {
	Name      string          `json:"name"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Notified  []time.Duration `json:"notified"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (r Record) Known() bool {
	return !r.ExpiresAt.IsZero()
}

func (r Record) notified(threshold time.Duration) bool {
	for _, n := range r.Notified {
		if n == threshold {
			return true
		}
	}
	return false
}

func (r Record) clone() Record {
	r.Notified = append([]time.Duration{}, r.Notified...)
	return r
}

// Store persists tracked records. Load reports found=false for names that
// are not tracked.
type Store interface {
	Save(ctx context.Context, r Record) error
	Load(ctx context.Context, name string) (r Record, found bool, err error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Record, error)
}

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}}
}

func (m *MemoryStore) Save(ctx context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.Name] = r.clone()
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, name string) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, found := m.records[name]
	if !found {
		return Record{}, false, nil
	}
	return r.clone(), true, nil
}

func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, name)
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		result = append(result, r.clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
