package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"passage/internal/auth/models"
	"passage/internal/profile"
	dErrors "passage/pkg/domain-errors"
)

type ReconcilerSuite struct {
	suite.Suite
	store      *profile.InMemoryStore
	reconciler *Reconciler
}

func (s *ReconcilerSuite) SetupTest() {
	s.store = profile.NewInMemoryStore()
	s.reconciler = New(s.store, nil)
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}

func (s *ReconcilerSuite) TestExistingUserReturnedAsIs() {
	existing, err := s.store.CreateUser(context.Background(), models.UserRecord{
		Email:       "guardian@example.com",
		DisplayName: "Existing Guardian",
		Role:        models.Role{ID: "guardian", Name: "Guardian"},
	})
	s.Require().NoError(err)
	s.store.SeedAssociations(existing.ID, []models.Association{
		{ID: "A1", Status: models.AssociationPending},
		{ID: "A2", Status: models.AssociationActive},
	})

	// Provider claims suggest admin, but the stored role is authoritative.
	result, err := s.reconciler.Reconcile(context.Background(), models.ProviderIdentity{
		Email:   "guardian@example.com",
		Subject: "prov-1",
		Groups:  []string{"admins"},
	})
	s.Require().NoError(err)
	s.Equal(existing.ID, result.User.ID)
	s.Equal("guardian", result.User.Role.ID)
	s.False(result.User.IsFirstLogin)
	s.Require().Len(result.Associations, 2)
	s.Equal("A1", result.Associations[0].ID)
}

func (s *ReconcilerSuite) TestMissingUserIsCreated() {
	result, err := s.reconciler.Reconcile(context.Background(), models.ProviderIdentity{
		Email:   "new@example.com",
		Subject: "prov-2",
		Groups:  []string{"guardians"},
	})
	s.Require().NoError(err)
	s.NotEmpty(result.User.ID)
	s.True(result.User.IsFirstLogin)
	s.True(result.User.OriginatedFromProvider)
	s.Equal("guardian", result.User.Role.ID)
	s.Empty(result.Associations)
	s.NotNil(result.Associations, "empty list, not nil")
}

func (s *ReconcilerSuite) TestUnknownGroupsGetPendingRole() {
	result, err := s.reconciler.Reconcile(context.Background(), models.ProviderIdentity{
		Email:   "mystery@example.com",
		Subject: "prov-3",
		Groups:  []string{"superusers", "root"},
	})
	s.Require().NoError(err)
	s.Equal("pending", result.User.Role.ID, "unknown groups never elevate privilege")
}

func (s *ReconcilerSuite) TestAmbiguousMatchIsSurfaced() {
	for range 2 {
		_, err := s.store.CreateUser(context.Background(), models.UserRecord{Email: "dup@example.com"})
		s.Require().NoError(err)
	}

	_, err := s.reconciler.Reconcile(context.Background(), models.ProviderIdentity{
		Email:   "dup@example.com",
		Subject: "prov-4",
	})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeAmbiguousMatch))
}

func TestRoleForGroups(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		want   string
	}{
		{"first recognized group wins", []string{"unknown", "staff", "admins"}, "staff"},
		{"admin group", []string{"admins"}, "admin"},
		{"no groups", nil, "pending"},
		{"only unknown groups", []string{"root"}, "pending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role := RoleForGroups(tt.groups)
			require.NotEmpty(t, role.ID)
			assert.Equal(t, tt.want, role.ID)
		})
	}
}
