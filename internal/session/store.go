package session

import (
	"context"
	"sync"

	"github.com/xaenox/school-bot/internal/models"
)

// Store persists one window per user. Load of an unknown user returns an
// empty window.
type Store interface {
	Load(ctx context.Context, userID string) (Window, error)
	Save(ctx context.Context, userID string, w Window) error
}

// MemoryStore keeps windows in process memory; they are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	windows  map[string][]models.Turn
	maxTurns int
}

func NewMemoryStore(maxTurns int) *MemoryStore {
	return &MemoryStore{
		windows:  make(map[string][]models.Turn),
		maxTurns: maxTurns,
	}
}

func (s *MemoryStore) Load(ctx context.Context, userID string) (Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return WindowOf(s.maxTurns, s.windows[userID]), nil
}

func (s *MemoryStore) Save(ctx context.Context, userID string, w Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows[userID] = w.Turns()
	return nil
}
