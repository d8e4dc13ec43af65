// Package reconcile maps a provider-verified identity onto a profile store
// user record, creating one when no match exists. Provider claims are
// informational: they seed the role of a brand-new user but never overwrite
// the stored role of an existing one.
package reconcile

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"passage/internal/auth/models"
	dErrors "passage/pkg/domain-errors"
	"passage/pkg/platform/sentinel"
)

// ProfileStore is the boundary to the user/association database.
type ProfileStore interface {
	FindUsersByEmail(ctx context.Context, email string) ([]models.UserRecord, error)
	CreateUser(ctx context.Context, user models.UserRecord) (models.UserRecord, error)
	ListAssociations(ctx context.Context, userID string) ([]models.Association, error)
}

// Result is the reconciled user with their associations in server order.
type Result struct {
	User         models.UserRecord
	Associations []models.Association
}

// groupRoles is the fixed mapping from provider group claims to default
// roles for newly created users. Unknown groups map to pending: privilege is
// granted by the profile store, never inferred from an unrecognized claim.
var groupRoles = map[string]models.Role{
	"admins":    {ID: "admin", Name: "Administrator"},
	"staff":     {ID: "staff", Name: "Staff"},
	"guardians": {ID: "guardian", Name: "Guardian"},
}

var pendingRole = models.Role{ID: "pending", Name: "Pending"}

// RoleForGroups picks the default role for a new provider-originated user:
// the first recognized group in claim order wins, otherwise pending.
func RoleForGroups(groups []string) models.Role {
	for _, group := range groups {
		if role, ok := groupRoles[group]; ok {
			return role
		}
	}
	return pendingRole
}

// Reconciler resolves provider identities against the profile store.
type Reconciler struct {
	store  ProfileStore
	logger *slog.Logger
}

func New(store ProfileStore, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, logger: logger}
}

// Reconcile looks the identity up by email. Exactly one match returns that
// record untouched with its associations. No match creates a provider-
// originated user with an empty association list. More than one match is
// surfaced as AmbiguousMatch and never auto-resolved.
func (r *Reconciler) Reconcile(ctx context.Context, identity models.ProviderIdentity) (Result, error) {
	matches, err := r.store.FindUsersByEmail(ctx, identity.Email)
	if err != nil {
		return Result{}, r.translate(err, "profile lookup failed")
	}

	switch len(matches) {
	case 0:
		return r.createUser(ctx, identity)
	case 1:
		return r.existingUser(ctx, matches[0])
	default:
		r.logger.ErrorContext(ctx, "ambiguous profile match requires manual data fix",
			"email", identity.Email, "matches", len(matches))
		return Result{}, dErrors.Newf(dErrors.CodeAmbiguousMatch,
			"%d profile records share this email", len(matches))
	}
}

func (r *Reconciler) existingUser(ctx context.Context, user models.UserRecord) (Result, error) {
	// Associations are the only extra fetch for an existing user; errgroup
	// keeps the shape uniform with future parallel lookups and propagates
	// context cancellation.
	var associations []models.Association
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := r.store.ListAssociations(ctx, user.ID)
		if err != nil {
			return err
		}
		associations = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, r.translate(err, "association lookup failed")
	}
	return Result{User: user, Associations: associations}, nil
}

func (r *Reconciler) createUser(ctx context.Context, identity models.ProviderIdentity) (Result, error) {
	created, err := r.store.CreateUser(ctx, models.UserRecord{
		Email:                  identity.Email,
		DisplayName:            identity.Email,
		Role:                   RoleForGroups(identity.Groups),
		IsFirstLogin:           true,
		OriginatedFromProvider: true,
	})
	if err != nil {
		return Result{}, r.translate(err, "profile creation failed")
	}
	r.logger.InfoContext(ctx, "created provider-originated user",
		"user_id", created.ID, "role", created.Role.ID)
	// Newly created users start with no associations by definition.
	return Result{User: created, Associations: []models.Association{}}, nil
}

// translate maps store failures into the public taxonomy. Unreachability is
// the only retryable kind; everything else is terminal for the call.
func (r *Reconciler) translate(err error, msg string) error {
	if dErrors.Is(err, dErrors.CodeServerUnreachable) || errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeServerUnreachable, msg)
	}
	if code := dErrors.CodeOf(err); code != dErrors.CodeInternal && code != "" {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
