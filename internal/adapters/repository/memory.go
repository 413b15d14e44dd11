package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenmap/candles/internal/domain/model"
	"github.com/lumenmap/candles/pkg/metrics"
)

// MemoryStore keeps candles in insertion order behind a mutex. Zero
// persistence; suited to tests and ephemeral deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	candles []model.Candle
	byID    map[string]int // id -> index in candles
	closed  bool
	now     clock
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := newSettings(opts)
	return &MemoryStore{
		byID: make(map[string]int),
		now:  s.now,
	}
}

func (m *MemoryStore) Create(_ context.Context, candle model.Candle) (model.Candle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return model.Candle{}, ErrStoreClosed
	}

	start := time.Now()
	candle.ID = uuid.NewString()
	candle.CreatedAt = m.now()

	m.byID[candle.ID] = len(m.candles)
	m.candles = append(m.candles, candle)

	metrics.RecordStoreWriteLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	return candle, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (model.Candle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return model.Candle{}, ErrStoreClosed
	}
	idx, ok := m.byID[id]
	if !ok {
		return model.Candle{}, ErrNotFound
	}
	return m.candles[idx], nil
}

func (m *MemoryStore) List(_ context.Context, afterID string, limit int) ([]model.Candle, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	start := 0
	if afterID != "" {
		idx, ok := m.byID[afterID]
		if !ok {
			return nil, ErrNotFound
		}
		start = idx + 1
	}

	end := start + limit
	if end > len(m.candles) {
		end = len(m.candles)
	}
	if start >= end {
		return []model.Candle{}, nil
	}

	page := make([]model.Candle, end-start)
	copy(page, m.candles[start:end])
	return page, nil
}

func (m *MemoryStore) Delete(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	idx, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	if m.candles[idx].OwnerID != ownerID {
		return ErrNotOwner
	}

	m.candles = append(m.candles[:idx], m.candles[idx+1:]...)
	delete(m.byID, id)
	for i := idx; i < len(m.candles); i++ {
		m.byID[m.candles[i].ID] = i
	}
	return nil
}

func (m *MemoryStore) Snapshot(_ context.Context) ([]model.Candle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	out := make([]model.Candle, len(m.candles))
	copy(out, m.candles)
	return out, nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.candles), nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
