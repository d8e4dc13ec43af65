// Package models holds the data types of the hybrid auth flow. Credentials
// are ephemeral and never persisted; Session is the only type that crosses
// the durability boundary.
package models

import "time"

// Credentials is the email/password pair collected at login. It exists only
// for the duration of a login call.
type Credentials struct {
	Email    string
	Password string
}

// IdentityToken is the material returned by the identity provider after a
// successful password grant or refresh. The id token claims are decoded but
// never cryptographically verified client-side; the backend's verifier owns
// that.
type IdentityToken struct {
	AccessToken  string    `json:"access_token"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Groups       []string  `json:"groups,omitempty"`
}

// Expired reports whether the token has passed its expiry at the given time.
// A zero ExpiresAt counts as expired: a token without a known lifetime cannot
// be trusted to restore a session silently.
func (t IdentityToken) Expired(now time.Time) bool {
	return t.ExpiresAt.IsZero() || !now.Before(t.ExpiresAt)
}

// ProviderIdentity is the verified identity extracted from a provider token,
// handed to the reconciler.
type ProviderIdentity struct {
	Email   string
	Subject string
	Groups  []string
}

// Role is the stored role of a user in the profile store.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserRecord mirrors the profile store's user shape. The client treats it as
// read-mostly: only the profile store mutates it.
type UserRecord struct {
	ID                     string `json:"id"`
	Email                  string `json:"email"`
	DisplayName            string `json:"displayName"`
	Role                   Role   `json:"role"`
	AvatarRef              string `json:"avatarRef,omitempty"`
	IsFirstLogin           bool   `json:"isFirstLogin"`
	OriginatedFromProvider bool   `json:"originatedFromProvider"`
}

// Association status values as returned by the profile store.
const (
	AssociationActive   = "active"
	AssociationPending  = "pending"
	AssociationInactive = "inactive"
)

// Association links a user to an account/division/subject. A user may hold
// several; exactly one is considered active at a time.
type Association struct {
	ID       string `json:"id"`
	Account  string `json:"account"`
	Division string `json:"division"`
	Subject  string `json:"subject"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// ActiveAssociation applies the tie-break rule: the first association with
// status "active" in server-returned order, else the first association, else
// nil. Order sensitivity here is observable application behavior, so the
// input slice order must be preserved by every caller.
func ActiveAssociation(associations []Association) *Association {
	for i := range associations {
		if associations[i].Status == AssociationActive {
			return &associations[i]
		}
	}
	if len(associations) > 0 {
		return &associations[0]
	}
	return nil
}

// Session is the unit of persistence: token, user, and associations are
// written together or not at all.
type Session struct {
	Token             IdentityToken `json:"token"`
	User              UserRecord    `json:"user"`
	Associations      []Association `json:"associations"`
	ActiveAssociation *Association  `json:"activeAssociation,omitempty"`
}

// NewSession assembles a session and computes the active association.
func NewSession(token IdentityToken, user UserRecord, associations []Association) Session {
	return Session{
		Token:             token,
		User:              user,
		Associations:      associations,
		ActiveAssociation: ActiveAssociation(associations),
	}
}

// AuthResult is the normalized outcome of every orchestrator operation.
// Operations never panic or leak raw errors across the public boundary.
type AuthResult struct {
	Success      bool     `json:"success"`
	Session      *Session `json:"session,omitempty"`
	ErrorKind    string   `json:"errorKind,omitempty"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}
