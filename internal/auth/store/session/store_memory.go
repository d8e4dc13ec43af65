package session

import (
	"context"
	"fmt"
	"sync"

	"passage/internal/auth/models"
)

// InMemoryStore keeps the session slots in memory for tests and dev mode.
// It honors the same all-or-nothing contract as the durable stores: a failed
// slot write rolls the other slots back to their prior values.
type InMemoryStore struct {
	mu    sync.RWMutex
	slots map[string]string

	// failSlot simulates a write failure on one slot. Test hook; empty in
	// production use.
	failSlot string
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{slots: make(map[string]string)}
}

// FailWritesTo makes the next saves fail when writing the named slot.
func (s *InMemoryStore) FailWritesTo(slot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSlot = slot
}

func (s *InMemoryStore) Save(_ context.Context, session models.Session) error {
	token, user, associations, err := encodeSession(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prior := make(map[string]string, len(s.slots))
	for k, v := range s.slots {
		prior[k] = v
	}

	writes := []struct{ slot, value string }{
		{SlotToken, token},
		{SlotUser, user},
		{SlotAssociations, associations},
	}
	for _, w := range writes {
		if w.slot == s.failSlot {
			s.slots = prior
			return fmt.Errorf("write %s: simulated slot failure", w.slot)
		}
		s.slots[w.slot] = w.value
	}
	return nil
}

func (s *InMemoryStore) Load(_ context.Context) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, tokenOK := s.slots[SlotToken]
	user, userOK := s.slots[SlotUser]
	associations, assocOK := s.slots[SlotAssociations]

	present := 0
	for _, ok := range []bool{tokenOK, userOK, assocOK} {
		if ok {
			present++
		}
	}
	return decodeSession(token, user, associations, present)
}

func (s *InMemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, SlotToken)
	delete(s.slots, SlotUser)
	delete(s.slots, SlotAssociations)
	return nil
}

// CorruptSlot deletes a single slot to simulate torn state. Test hook.
func (s *InMemoryStore) CorruptSlot(slot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, slot)
}
