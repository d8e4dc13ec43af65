// Package service implements the auth orchestrator: the state machine tying
// validation, the identity provider, the legacy fallback, reconciliation,
// and session persistence together. It is the single entry point for login,
// logout, restore, and refresh, and the only place sub-component errors are
// mapped onto the public AuthResult kinds.
package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"passage/internal/audit"
	"passage/internal/auth/models"
	sessionstore "passage/internal/auth/store/session"
	"passage/internal/legacy"
	"passage/internal/platform/metrics"
	"passage/internal/platform/middleware"
	"passage/internal/reconcile"
	dErrors "passage/pkg/domain-errors"
	"passage/pkg/platform/circuit"
)

// State of the orchestrator. Exactly one is current at any time.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateRefreshFailed   State = "refresh_failed"
)

// Auth path labels used in metrics and audit events.
const (
	pathProvider = "provider"
	pathLegacy   = "legacy"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// ProviderClient is the boundary to the hosted-auth service.
type ProviderClient interface {
	SignIn(ctx context.Context, creds models.Credentials) (models.IdentityToken, error)
	Refresh(ctx context.Context, refreshToken string) (models.IdentityToken, error)
}

// LegacyClient is the boundary to the profile service's own login endpoint.
type LegacyClient interface {
	SignIn(ctx context.Context, creds models.Credentials) (legacy.SignInResult, error)
}

// IdentityReconciler resolves a provider identity to a profile record.
type IdentityReconciler interface {
	Reconcile(ctx context.Context, identity models.ProviderIdentity) (reconcile.Result, error)
}

// Options fix the deployment's auth behavior. Resolved once at construction
// and never re-evaluated mid-flow, which closes the check-then-act window of
// the old mutable-bypass patterns.
type Options struct {
	// ProviderEnabled selects the identity provider as the primary path.
	// When false the legacy path is primary and the provider is never
	// called.
	ProviderEnabled bool
	// LegacyFallback permits falling back to the legacy path when the
	// provider is unreachable or misconfigured. Credential failures never
	// fall back.
	LegacyFallback bool
	// GroupsClaim names the id token claim holding group membership.
	GroupsClaim string
	// BreakerThreshold is how many consecutive unreachable failures open
	// the provider circuit. Zero keeps the default.
	BreakerThreshold int
}

// Service is the auth orchestrator. Safe for concurrent use; at most one
// login or refresh is in flight at a time.
type Service struct {
	opts       Options
	provider   ProviderClient
	legacy     LegacyClient
	reconciler IdentityReconciler
	sessions   sessionstore.Store
	auditor    audit.Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	breaker    *circuit.Breaker
	tracer     trace.Tracer

	inFlight atomic.Bool

	mu      sync.RWMutex
	state   State
	current *models.Session
}

// New wires the orchestrator. Nil auditor, logger, or metrics get no-op or
// default implementations; provider and legacy clients may be nil when the
// options never route to them.
func New(
	opts Options,
	providerClient ProviderClient,
	legacyClient LegacyClient,
	reconciler IdentityReconciler,
	sessions sessionstore.Store,
	auditor audit.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	breakerOpts := []circuit.Option{}
	if opts.BreakerThreshold > 0 {
		breakerOpts = append(breakerOpts, circuit.WithFailureThreshold(opts.BreakerThreshold))
	}
	return &Service{
		opts:       opts,
		provider:   providerClient,
		legacy:     legacyClient,
		reconciler: reconciler,
		sessions:   sessions,
		auditor:    auditor,
		logger:     logger,
		metrics:    m,
		breaker:    circuit.New(pathProvider, breakerOpts...),
		tracer:     otel.Tracer("passage/auth"),
		state:      StateUnauthenticated,
	}
}

// State returns the current state machine position.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentSession is the synchronous read of the in-memory cached session.
// It never touches the store.
func (s *Service) CurrentSession() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

func (s *Service) setState(state State, session *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.current = session
}

// cachedSession returns the cached session value without copying out the
// lock twice in refresh paths.
func (s *Service) cachedSession() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// success builds the AuthResult for an authenticated session.
func success(session models.Session) models.AuthResult {
	return models.AuthResult{Success: true, Session: &session}
}

// failure maps a component error onto the public result. The orchestrator is
// the only layer doing this translation.
func failure(err error) models.AuthResult {
	return models.AuthResult{
		Success:      false,
		ErrorKind:    string(dErrors.CodeOf(err)),
		ErrorMessage: err.Error(),
	}
}

// noSession is the result of a cold restore: not an error, just nothing
// there.
func noSession() models.AuthResult {
	return models.AuthResult{Success: false}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if event.Device == "" {
		event.Device = middleware.GetDeviceLabel(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

func (s *Service) observeOutcome(path string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	}
	s.metrics.Logins.WithLabelValues(path, outcome).Inc()
}

func (s *Service) observeRestore(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.SessionsRestored.WithLabelValues(outcome).Inc()
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Bool("auth.provider_enabled", s.opts.ProviderEnabled),
	))
}
