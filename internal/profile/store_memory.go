package profile

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"passage/internal/auth/models"
	"passage/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow the same pattern as the HTTP client:
// - Return ErrNotFound (wrapped) when the requested entity does not exist
// - Return nil for successful operations
// - Duplicate emails are stored as-is; FindUsersByEmail surfaces them all
//   so the reconciler can refuse to auto-resolve ambiguity.
// InMemoryStore keeps profile records in memory for tests and dev mode.
type InMemoryStore struct {
	mu           sync.RWMutex
	users        map[string]models.UserRecord
	associations map[string][]models.Association
}

// NewInMemoryStore constructs an empty in-memory profile store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:        make(map[string]models.UserRecord),
		associations: make(map[string][]models.Association),
	}
}

func (s *InMemoryStore) FindUsersByEmail(_ context.Context, email string) ([]models.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []models.UserRecord
	for _, user := range s.users {
		if user.Email == email {
			matches = append(matches, user)
		}
	}
	return matches, nil
}

func (s *InMemoryStore) CreateUser(_ context.Context, user models.UserRecord) (models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *InMemoryStore) ListAssociations(_ context.Context, userID string) ([]models.Association, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[userID]; !ok {
		return nil, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	// Copy to keep server-returned order stable against later seeds.
	out := make([]models.Association, len(s.associations[userID]))
	copy(out, s.associations[userID])
	return out, nil
}

// SeedAssociations replaces the association list for a user. Test helper.
func (s *InMemoryStore) SeedAssociations(userID string, associations []models.Association) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.associations[userID] = associations
}
