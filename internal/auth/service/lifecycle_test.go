package service

import (
	"context"
	"time"

	"go.uber.org/mock/gomock"

	"passage/internal/audit"
	"passage/internal/auth/models"
	sessionStore "passage/internal/auth/store/session"
	dErrors "passage/pkg/domain-errors"
)

func (s *ServiceSuite) persistedSession(token models.IdentityToken) models.Session {
	session := models.NewSession(token,
		models.UserRecord{ID: "user-1", Email: "jordan@example.com"},
		[]models.Association{{ID: "assoc-1", Account: "acme", Status: models.AssociationActive}},
	)
	s.Require().NoError(s.store.Save(context.Background(), session))
	return session
}

func (s *ServiceSuite) TestRestoreSession_ColdStart() {
	result, err := s.service.RestoreSession(context.Background())
	s.Require().NoError(err)
	s.False(result.Success)
	s.Empty(result.ErrorKind)
	s.Equal(StateUnauthenticated, s.service.State())
}

func (s *ServiceSuite) TestRestoreSession_LiveTokenRestoresDirectly() {
	stored := s.persistedSession(s.providerToken())

	result, err := s.service.RestoreSession(context.Background())
	s.Require().NoError(err)
	s.Require().True(result.Success)
	s.Equal(stored.User.ID, result.Session.User.ID)
	s.Equal(StateAuthenticated, s.service.State())

	current := s.service.CurrentSession()
	s.Require().NotNil(current)
	s.Equal("user-1", current.User.ID)
}

func (s *ServiceSuite) TestRestoreSession_CorruptSlotsSelfHeal() {
	s.persistedSession(s.providerToken())
	s.store.CorruptSlot(sessionStore.SlotUser)

	result, err := s.service.RestoreSession(context.Background())
	s.Require().NoError(err)
	s.False(result.Success)
	// Self-heal presents as a cold start, not an error the caller must
	// handle.
	s.Empty(result.ErrorKind)
	s.Equal(StateUnauthenticated, s.service.State())
	s.Len(s.auditor.ByAction(audit.ActionSessionSelfHealed), 1)

	persisted, loadErr := s.store.Load(context.Background())
	s.Require().NoError(loadErr)
	s.Nil(persisted)
}

func (s *ServiceSuite) TestRestoreSession_ExpiredTokenRefreshes() {
	expired := s.providerToken()
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	s.persistedSession(expired)

	renewed := s.providerToken()
	renewed.AccessToken = "access-renewed"
	s.mockProvider.EXPECT().Refresh(gomock.Any(), "refresh-abc").Return(renewed, nil)

	result, err := s.service.RestoreSession(context.Background())
	s.Require().NoError(err)
	s.Require().True(result.Success)
	s.Equal("access-renewed", result.Session.Token.AccessToken)
	s.Equal(StateAuthenticated, s.service.State())

	persisted, loadErr := s.store.Load(context.Background())
	s.Require().NoError(loadErr)
	s.Equal("access-renewed", persisted.Token.AccessToken)
}

func (s *ServiceSuite) TestRestoreSession_ExpiredTokenRefreshFails() {
	expired := s.providerToken()
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	stored := s.persistedSession(expired)

	s.mockProvider.EXPECT().Refresh(gomock.Any(), "refresh-abc").
		Return(models.IdentityToken{}, dErrors.New(dErrors.CodeInvalidCredentials, "refresh token revoked"))

	result, err := s.service.RestoreSession(context.Background())
	s.Require().NoError(err)
	s.False(result.Success)
	s.Equal(string(dErrors.CodeInvalidCredentials), result.ErrorKind)
	s.Equal(StateRefreshFailed, s.service.State())

	// The persisted session survives so the UI can show who was signed in
	// while prompting for re-login.
	persisted, loadErr := s.store.Load(context.Background())
	s.Require().NoError(loadErr)
	s.Require().NotNil(persisted)
	s.Equal(stored.User.ID, persisted.User.ID)
	s.Len(s.auditor.ByAction(audit.ActionRefreshFailed), 1)
}

func (s *ServiceSuite) TestRefresh_NoSession() {
	result, err := s.service.Refresh(context.Background())
	s.Require().NoError(err)
	s.False(result.Success)
	s.Equal(string(dErrors.CodeInternal), result.ErrorKind)
	s.Equal(StateRefreshFailed, s.service.State())
}

func (s *ServiceSuite) TestRefresh_LegacySessionHasNothingToExchange() {
	legacyToken := models.IdentityToken{
		AccessToken: "legacy-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	stored := s.persistedSession(legacyToken)
	s.service.setState(StateAuthenticated, &stored)

	result, err := s.service.Refresh(context.Background())
	s.Require().NoError(err)
	s.False(result.Success)
	s.Equal(string(dErrors.CodeInternal), result.ErrorKind)
	s.Equal(StateRefreshFailed, s.service.State())
	// The session itself is untouched.
	s.NotNil(s.service.CurrentSession())
}

func (s *ServiceSuite) TestRefresh_PreservesRefreshTokenWhenNotRotated() {
	stored := s.persistedSession(s.providerToken())
	s.service.setState(StateAuthenticated, &stored)

	renewed := s.providerToken()
	renewed.AccessToken = "access-renewed"
	renewed.RefreshToken = ""
	s.mockProvider.EXPECT().Refresh(gomock.Any(), "refresh-abc").Return(renewed, nil)

	result, err := s.service.Refresh(context.Background())
	s.Require().NoError(err)
	s.Require().True(result.Success)
	s.Equal("refresh-abc", result.Session.Token.RefreshToken)
	s.Equal("access-renewed", result.Session.Token.AccessToken)
}

func (s *ServiceSuite) TestRefresh_RotatedTokenReplacesStored() {
	stored := s.persistedSession(s.providerToken())
	s.service.setState(StateAuthenticated, &stored)

	renewed := s.providerToken()
	renewed.RefreshToken = "refresh-rotated"
	s.mockProvider.EXPECT().Refresh(gomock.Any(), "refresh-abc").Return(renewed, nil)

	result, err := s.service.Refresh(context.Background())
	s.Require().NoError(err)
	s.Require().True(result.Success)
	s.Equal("refresh-rotated", result.Session.Token.RefreshToken)

	persisted, loadErr := s.store.Load(context.Background())
	s.Require().NoError(loadErr)
	s.Equal("refresh-rotated", persisted.Token.RefreshToken)
}

func (s *ServiceSuite) TestLogout_ClearsStoreAndState() {
	stored := s.persistedSession(s.providerToken())
	s.service.setState(StateAuthenticated, &stored)

	result, err := s.service.Logout(context.Background())
	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal(StateUnauthenticated, s.service.State())
	s.Nil(s.service.CurrentSession())

	persisted, loadErr := s.store.Load(context.Background())
	s.Require().NoError(loadErr)
	s.Nil(persisted)
	s.Len(s.auditor.ByAction(audit.ActionLogout), 1)
}

func (s *ServiceSuite) TestLogout_SucceedsEvenWhenClearFails() {
	stored := s.persistedSession(s.providerToken())
	s.service.setState(StateAuthenticated, &stored)

	failing := &failingClearStore{Store: s.store}
	s.service.sessions = failing

	result, err := s.service.Logout(context.Background())
	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal(StateUnauthenticated, s.service.State())
	s.Nil(s.service.CurrentSession())
	s.Len(s.auditor.ByAction(audit.ActionLogoutClearFailed), 1)
}

// failingClearStore wraps a store so Clear always errors.
type failingClearStore struct {
	sessionStore.Store
}

func (f *failingClearStore) Clear(context.Context) error {
	return dErrors.New(dErrors.CodeInternal, "disk on fire")
}
