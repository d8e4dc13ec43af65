//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"passage/internal/auth/models"
	"passage/internal/auth/store/session"
	"passage/pkg/platform/sentinel"
	"passage/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = session.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func integrationSession() models.Session {
	return models.NewSession(
		models.IdentityToken{
			AccessToken:  "access-1",
			IDToken:      "id-1",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		models.UserRecord{ID: "u1", Email: "guardian@example.com"},
		[]models.Association{
			{ID: "A1", Status: models.AssociationInactive},
			{ID: "A2", Status: models.AssociationActive},
		},
	)
}

func (s *RedisStoreSuite) TestSaveLoadRoundTrip() {
	ctx := context.Background()
	saved := integrationSession()
	s.Require().NoError(s.store.Save(ctx, saved))

	loaded, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(loaded)
	s.Equal(saved, *loaded)
}

func (s *RedisStoreSuite) TestLoadEmptyReturnsNil() {
	loaded, err := s.store.Load(context.Background())
	s.Require().NoError(err)
	s.Nil(loaded)
}

func (s *RedisStoreSuite) TestClearIsIdempotent() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, integrationSession()))
	s.Require().NoError(s.store.Clear(ctx))
	s.Require().NoError(s.store.Clear(ctx))

	loaded, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Nil(loaded)
}

func (s *RedisStoreSuite) TestTornSlotReportsCorrupt() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, integrationSession()))

	// Delete one slot behind the store's back to simulate torn state.
	s.Require().NoError(s.redis.Client.Del(ctx, "passage:"+session.SlotAssociations).Err())

	_, err := s.store.Load(ctx)
	s.Require().ErrorIs(err, sentinel.ErrCorrupt)
}

func (s *RedisStoreSuite) TestSaveReplacesExistingSession() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, integrationSession()))

	replacement := integrationSession()
	replacement.Token.AccessToken = "access-2"
	replacement.Associations = []models.Association{}
	replacement.ActiveAssociation = nil
	s.Require().NoError(s.store.Save(ctx, replacement))

	loaded, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(loaded)
	s.Equal("access-2", loaded.Token.AccessToken)
	s.Empty(loaded.Associations)
}
