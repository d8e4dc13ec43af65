package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Clients and session stores return
// these (optionally wrapped) so the orchestrator can translate them into
// coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist (profile lookup miss, empty session slot)
// - ErrCorrupt: persisted session slots are mutually inconsistent
// - ErrUnavailable: provider or profile store unreachable (includes timeouts)
//
// For input validation errors use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrCorrupt     = errors.New("corrupt")
	ErrUnavailable = errors.New("unavailable")
)
