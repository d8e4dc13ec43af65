// Package audit emits the observability events the auth flow is required to
// record: failed logout clears, corrupt-store self-heals, fallback use.
// Events are transport-agnostic so sinks can fan out.
package audit

import "time"

// Actions recorded by the auth core.
const (
	ActionLoginSucceeded    = "login_succeeded"
	ActionLoginFailed       = "login_failed"
	ActionFallbackUsed      = "fallback_used"
	ActionRefreshFailed     = "refresh_failed"
	ActionLogout            = "logout"
	ActionLogoutClearFailed = "logout_clear_failed"
	ActionSessionSelfHealed = "session_self_healed"
	ActionBreakerOpened     = "provider_breaker_opened"
	ActionBreakerClosed     = "provider_breaker_closed"
)

// Event captures one observability fact from the auth flow.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	// Path is which authentication path was in play: "provider" or "legacy".
	Path      string `json:"path,omitempty"`
	Email     string `json:"email,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Device    string `json:"device,omitempty"`
	Detail    string `json:"detail,omitempty"`
}
