package service

import (
	"context"
	"errors"
	"time"

	"passage/internal/audit"
	"passage/internal/auth/models"
	dErrors "passage/pkg/domain-errors"
	"passage/pkg/platform/sentinel"
)

// RestoreSession rehydrates the orchestrator from the durable store, used at
// process start. A live token restores directly; an expired token with a
// refresh token triggers a refresh attempt; corrupt slots are cleared and
// treated as a cold start rather than surfaced to the caller.
func (s *Service) RestoreSession(ctx context.Context) (models.AuthResult, error) {
	ctx, span := s.startSpan(ctx, "auth.restore_session")
	defer span.End()

	stored, err := s.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrCorrupt) {
			return s.selfHeal(ctx, err), nil
		}
		s.logger.ErrorContext(ctx, "session load failed", "error", err)
		s.observeRestore("load_failed")
		s.setState(StateUnauthenticated, nil)
		return failure(dErrors.Wrap(err, dErrors.CodeInternal, "load session")), nil
	}
	if stored == nil {
		s.observeRestore("cold_start")
		s.setState(StateUnauthenticated, nil)
		return noSession(), nil
	}

	if !stored.Token.Expired(time.Now()) {
		s.setState(StateAuthenticated, stored)
		s.observeRestore("restored")
		s.logger.InfoContext(ctx, "session restored", "user_id", stored.User.ID)
		return success(*stored), nil
	}

	s.logger.InfoContext(ctx, "stored token expired, attempting refresh",
		"user_id", stored.User.ID)
	s.setState(StateAuthenticating, stored)
	result, err := s.Refresh(ctx)
	if err != nil {
		return result, err
	}
	if result.Success {
		s.observeRestore("refreshed")
	} else {
		s.observeRestore("refresh_failed")
	}
	return result, nil
}

// selfHeal clears torn session slots. The user sees a cold start, not an
// error: a half-written session from a crashed save is not actionable for
// them.
func (s *Service) selfHeal(ctx context.Context, cause error) models.AuthResult {
	s.logger.WarnContext(ctx, "corrupt session slots, clearing", "error", cause)
	if clearErr := s.sessions.Clear(ctx); clearErr != nil {
		s.logger.ErrorContext(ctx, "failed to clear corrupt session", "error", clearErr)
	}
	if s.metrics != nil {
		s.metrics.StorageSelfHeals.Inc()
	}
	s.observeRestore("self_healed")
	s.emit(ctx, audit.Event{
		Action: audit.ActionSessionSelfHealed,
		Detail: cause.Error(),
	})
	s.setState(StateUnauthenticated, nil)
	return noSession()
}

// Refresh exchanges the cached refresh token for new token material. On
// failure the session stays cached and persisted so the caller can prompt
// for re-login without losing who was signed in.
func (s *Service) Refresh(ctx context.Context) (models.AuthResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return failure(dErrors.New(dErrors.CodeAlreadyInProgress,
			"an authentication operation is already in progress")), nil
	}
	defer s.inFlight.Store(false)

	ctx, span := s.startSpan(ctx, "auth.refresh")
	defer span.End()
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.OperationDuration.WithLabelValues("refresh").Observe(time.Since(start).Seconds())
		}
	}()

	current := s.cachedSession()
	if current == nil {
		return s.refreshFailed(ctx, nil, dErrors.New(dErrors.CodeInternal,
			"no session to refresh")), nil
	}
	if current.Token.RefreshToken == "" || !s.opts.ProviderEnabled {
		// Legacy sessions carry no refresh token. There is nothing to
		// exchange, so the session moves to refresh_failed and the user
		// must log in again.
		return s.refreshFailed(ctx, current, dErrors.New(dErrors.CodeInternal,
			"session has no refresh token")), nil
	}

	token, err := s.provider.Refresh(ctx, current.Token.RefreshToken)
	s.recordProviderOutcome(ctx, err)
	if err != nil {
		span.RecordError(err)
		return s.refreshFailed(ctx, current, err), nil
	}

	if token.RefreshToken == "" {
		// Providers may omit the refresh token when it is not rotated.
		token.RefreshToken = current.Token.RefreshToken
	}
	refreshed := models.NewSession(token, current.User, current.Associations)
	if err := s.sessions.Save(ctx, refreshed); err != nil {
		s.logger.ErrorContext(ctx, "refreshed session save failed", "error", err)
		return s.refreshFailed(ctx, current, dErrors.Wrap(err, dErrors.CodeInternal,
			"persist refreshed session")), nil
	}

	s.setState(StateAuthenticated, &refreshed)
	s.logger.InfoContext(ctx, "session refreshed", "user_id", refreshed.User.ID)
	return success(refreshed), nil
}

func (s *Service) refreshFailed(ctx context.Context, session *models.Session, err error) models.AuthResult {
	if s.metrics != nil {
		s.metrics.RefreshFailures.Inc()
	}
	event := audit.Event{
		Action:    audit.ActionRefreshFailed,
		Path:      pathProvider,
		ErrorKind: string(dErrors.CodeOf(err)),
	}
	if session != nil {
		event.UserID = session.User.ID
		event.Email = session.User.Email
	}
	s.emit(ctx, event)
	s.logger.WarnContext(ctx, "refresh failed", "code", dErrors.CodeOf(err), "error", err)
	s.setState(StateRefreshFailed, session)
	return failure(err)
}

// Logout clears the durable session and resets state. Clearing is best
// effort: a storage error is audited and logged but the in-memory session is
// dropped regardless, so Logout always reports success.
func (s *Service) Logout(ctx context.Context) (models.AuthResult, error) {
	ctx, span := s.startSpan(ctx, "auth.logout")
	defer span.End()

	var userID string
	if current := s.cachedSession(); current != nil {
		userID = current.User.ID
	}

	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "session clear failed on logout", "error", err)
		s.emit(ctx, audit.Event{
			Action:    audit.ActionLogoutClearFailed,
			UserID:    userID,
			ErrorKind: string(dErrors.CodeOf(err)),
			Detail:    err.Error(),
		})
	}

	s.setState(StateUnauthenticated, nil)
	s.emit(ctx, audit.Event{Action: audit.ActionLogout, UserID: userID})
	s.logger.InfoContext(ctx, "logged out", "user_id", userID)
	return models.AuthResult{Success: true}, nil
}
