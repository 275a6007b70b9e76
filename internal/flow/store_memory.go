package flow

import (
	"context"
	"sync"

	"gatehouse/pkg/platform/sentinel"
)

// InMemory is a map-backed flow store for tests and single-node wiring.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[string]State
}

func NewInMemory() *InMemory {
	return &InMemory{sessions: map[string]State{}}
}

func (s *InMemory) Save(_ context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.Token] = *state
	return nil
}

func (s *InMemory) Find(_ context.Context, token string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &state, nil
}

func (s *InMemory) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
