package service

import (
	"context"
	"time"

	"passage/internal/audit"
	"passage/internal/auth/models"
	"passage/internal/auth/validate"
	"passage/internal/provider"
	dErrors "passage/pkg/domain-errors"
)

// Login runs the full hybrid authentication flow: validate, authenticate
// against the provider (or legacy when the provider path is down or
// disabled), reconcile the identity, and persist the session. It returns a
// normalized result; the error return is reserved for context cancellation.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (models.AuthResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return failure(dErrors.New(dErrors.CodeAlreadyInProgress,
			"an authentication operation is already in progress")), nil
	}
	defer s.inFlight.Store(false)

	ctx, span := s.startSpan(ctx, "auth.login")
	defer span.End()
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.OperationDuration.WithLabelValues("login").Observe(time.Since(start).Seconds())
		}
	}()

	creds, err := validate.Credentials(creds)
	if err != nil {
		// Validation never counts against the provider breaker and
		// never falls back.
		return failure(err), nil
	}

	prior := s.cachedSession()
	s.setState(StateAuthenticating, prior)

	session, path, err := s.authenticate(ctx, creds)
	if err != nil {
		span.RecordError(err)
		s.failLogin(prior)
		s.observeOutcome(path, err)
		s.emit(ctx, audit.Event{
			Action:    audit.ActionLoginFailed,
			Path:      path,
			Email:     creds.Email,
			ErrorKind: string(dErrors.CodeOf(err)),
		})
		s.logger.WarnContext(ctx, "login failed",
			"path", path, "code", dErrors.CodeOf(err), "error", err)
		return failure(err), nil
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		// A session that cannot be persisted is not a session: the next
		// restore would silently lose it. The durable slots still hold
		// whatever was there before the attempt.
		s.failLogin(prior)
		s.observeOutcome(path, err)
		s.logger.ErrorContext(ctx, "session save failed", "error", err)
		wrapped := dErrors.Wrap(err, dErrors.CodeInternal, "persist session")
		s.emit(ctx, audit.Event{
			Action:    audit.ActionLoginFailed,
			Path:      path,
			Email:     creds.Email,
			UserID:    session.User.ID,
			ErrorKind: string(dErrors.CodeInternal),
		})
		return failure(wrapped), nil
	}

	s.setState(StateAuthenticated, &session)
	s.observeOutcome(path, nil)
	s.emit(ctx, audit.Event{
		Action: audit.ActionLoginSucceeded,
		Path:   path,
		Email:  creds.Email,
		UserID: session.User.ID,
	})
	s.logger.InfoContext(ctx, "login succeeded", "path", path, "user_id", session.User.ID)
	return success(session), nil
}

// failLogin returns the machine to its pre-attempt position. A session that
// was authenticated before the failed attempt stays cached and current,
// matching the durable slots the attempt never replaced.
func (s *Service) failLogin(prior *models.Session) {
	if prior != nil {
		s.setState(StateAuthenticated, prior)
		return
	}
	s.setState(StateUnauthenticated, nil)
}

// authenticate picks the path and returns the assembled session plus the
// path label actually used.
func (s *Service) authenticate(ctx context.Context, creds models.Credentials) (models.Session, string, error) {
	if !s.opts.ProviderEnabled {
		session, err := s.legacyLogin(ctx, creds)
		return session, pathLegacy, err
	}

	session, err := s.providerLogin(ctx, creds)
	if err == nil {
		return session, pathProvider, nil
	}
	if !s.opts.LegacyFallback || !provider.IsFallbackEligible(err) {
		return models.Session{}, pathProvider, err
	}

	if s.metrics != nil {
		s.metrics.FallbacksTaken.Inc()
	}
	s.emit(ctx, audit.Event{
		Action:    audit.ActionFallbackUsed,
		Path:      pathLegacy,
		Email:     creds.Email,
		ErrorKind: string(dErrors.CodeOf(err)),
	})
	s.logger.WarnContext(ctx, "provider unavailable, using legacy fallback",
		"code", dErrors.CodeOf(err))

	session, legacyErr := s.legacyLogin(ctx, creds)
	return session, pathLegacy, legacyErr
}

// providerLogin signs in against the identity provider and reconciles the
// resulting identity into a full session.
func (s *Service) providerLogin(ctx context.Context, creds models.Credentials) (models.Session, error) {
	if s.breaker.IsOpen() {
		// Skip the network call entirely while the circuit is open; the
		// synthesized error is fallback-eligible like the real one.
		return models.Session{}, dErrors.New(dErrors.CodeProviderUnreachable,
			"identity provider circuit is open")
	}

	token, err := s.provider.SignIn(ctx, creds)
	s.recordProviderOutcome(ctx, err)
	if err != nil {
		return models.Session{}, err
	}

	identity, err := provider.Identity(token, s.opts.GroupsClaim)
	if err != nil {
		return models.Session{}, err
	}

	result, err := s.reconciler.Reconcile(ctx, identity)
	if err != nil {
		return models.Session{}, err
	}
	return models.NewSession(token, result.User, result.Associations), nil
}

// legacyLogin signs in against the profile service directly. Legacy sessions
// carry no associations: the association model only exists for
// provider-originated identities.
func (s *Service) legacyLogin(ctx context.Context, creds models.Credentials) (models.Session, error) {
	result, err := s.legacy.SignIn(ctx, creds)
	if err != nil {
		return models.Session{}, err
	}
	return models.NewSession(result.Token, result.User, []models.Association{}), nil
}

// recordProviderOutcome feeds the breaker. Only unreachable-class failures
// count; a wrong password is a healthy provider.
func (s *Service) recordProviderOutcome(ctx context.Context, err error) {
	if err != nil && provider.IsFallbackEligible(err) {
		_, change := s.breaker.RecordFailure()
		if change.Opened {
			s.emit(ctx, audit.Event{Action: audit.ActionBreakerOpened, Path: pathProvider})
			s.logger.WarnContext(ctx, "provider circuit opened", "breaker", s.breaker.Name())
		}
		return
	}
	if err != nil {
		return
	}
	_, change := s.breaker.RecordSuccess()
	if change.Closed {
		s.emit(ctx, audit.Event{Action: audit.ActionBreakerClosed, Path: pathProvider})
		s.logger.InfoContext(ctx, "provider circuit closed", "breaker", s.breaker.Name())
	}
}

// ResetBreaker forces the provider circuit closed. Exposed for operational
// tooling so a deploy fixing provider config can re-enable the primary path
// without a restart.
func (s *Service) ResetBreaker() {
	s.breaker.Reset()
}
