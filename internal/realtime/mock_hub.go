package realtime

import (
	"sync"

	"example.com/feedapp/internal/models"
)

// MockEmitter records emitted events for assertions in tests.
type MockEmitter struct {
	mu     sync.Mutex
	Events []models.MutationEvent
}

func NewMockEmitter() *MockEmitter {
	return &MockEmitter{}
}

func (m *MockEmitter) Emit(action string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, models.MutationEvent{Action: action, Post: payload})
}

// Emitted returns a snapshot of everything emitted so far.
func (m *MockEmitter) Emitted() []models.MutationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.MutationEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
