package storage

import (
	"context"
	"sync"
)

// MemoryRepository keeps slots in process memory. Data is lost on exit.
type MemoryRepository struct {
	mu    sync.Mutex
	slots map[string]string
	// FailWrites makes every write fail, for exercising error paths.
	FailWrites error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{slots: make(map[string]string)}
}

func (m *MemoryRepository) Get(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.slots[name]
	if !ok {
		return "", ErrSlotNotFound
	}
	return data, nil
}

func (m *MemoryRepository) Put(_ context.Context, name, data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.slots[name] = data
	return nil
}

func (m *MemoryRepository) PutMany(_ context.Context, slots map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	for name, data := range slots {
		m.slots[name] = data
	}
	return nil
}

func (m *MemoryRepository) Ping(context.Context) error { return nil }

func (m *MemoryRepository) Close() error { return nil }
