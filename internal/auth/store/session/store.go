// Package session persists the authenticated session across process
// restarts. A session occupies three durable string-keyed slots and is only
// ever visible as a complete unit: token, user, and associations are written
// together or not at all.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"passage/internal/auth/models"
	"passage/pkg/platform/sentinel"
)

// Slot keys. No other component writes these.
const (
	SlotToken        = "auth_token"
	SlotUser         = "auth_user"
	SlotAssociations = "auth_associations"
)

// Error Contract:
// All store implementations follow this pattern:
// - Load returns (nil, nil) when no session exists; absence is not an error
// - Load returns ErrCorrupt (wrapped) when the slots are mutually
//   inconsistent, e.g. a token without a user
// - Save either commits all three slots or leaves the prior state intact
// - Clear is idempotent
// - Infrastructure failures are wrapped with ErrUnavailable where the
//   backend is known to be down
type Store interface {
	Save(ctx context.Context, session models.Session) error
	Load(ctx context.Context) (*models.Session, error)
	Clear(ctx context.Context) error
}

// encodeSession serializes a session into its three slot values.
func encodeSession(session models.Session) (token, user, associations string, err error) {
	tokenJSON, err := json.Marshal(session.Token)
	if err != nil {
		return "", "", "", fmt.Errorf("encode token slot: %w", err)
	}
	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return "", "", "", fmt.Errorf("encode user slot: %w", err)
	}
	if session.Associations == nil {
		session.Associations = []models.Association{}
	}
	assocJSON, err := json.Marshal(session.Associations)
	if err != nil {
		return "", "", "", fmt.Errorf("encode associations slot: %w", err)
	}
	return string(tokenJSON), string(userJSON), string(assocJSON), nil
}

// decodeSession rebuilds a session from slot values. All three slots must be
// present together; any other combination is corruption, not a cold start.
// The active association is recomputed from the stored order.
func decodeSession(token, user, associations string, present int) (*models.Session, error) {
	switch present {
	case 0:
		return nil, nil
	case 3:
		// fallthrough to decode
	default:
		return nil, fmt.Errorf("session slots incomplete (%d of 3 present): %w", present, sentinel.ErrCorrupt)
	}

	var tok models.IdentityToken
	if err := json.Unmarshal([]byte(token), &tok); err != nil {
		return nil, fmt.Errorf("token slot undecodable: %w", sentinel.ErrCorrupt)
	}
	var usr models.UserRecord
	if err := json.Unmarshal([]byte(user), &usr); err != nil {
		return nil, fmt.Errorf("user slot undecodable: %w", sentinel.ErrCorrupt)
	}
	if tok.AccessToken == "" || usr.ID == "" {
		return nil, fmt.Errorf("session slots missing token or user identity: %w", sentinel.ErrCorrupt)
	}
	var assoc []models.Association
	if err := json.Unmarshal([]byte(associations), &assoc); err != nil {
		return nil, fmt.Errorf("associations slot undecodable: %w", sentinel.ErrCorrupt)
	}

	session := models.NewSession(tok, usr, assoc)
	return &session, nil
}
