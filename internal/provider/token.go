package provider

import (
	"github.com/golang-jwt/jwt/v5"

	"passage/internal/auth/models"
	dErrors "passage/pkg/domain-errors"
	pstrings "passage/pkg/platform/strings"
)

// unverifiedParser decodes claims without checking the signature. Signature
// verification happens server-side; the client only needs the embedded
// identity and group membership.
var unverifiedParser = jwt.NewParser()

// Identity extracts the provider identity from an id token. The groupsClaim
// key must hold an array of strings; absent or empty means no groups, which
// the reconciler maps to the default pending role.
func Identity(token models.IdentityToken, groupsClaim string) (models.ProviderIdentity, error) {
	if groupsClaim == "" {
		groupsClaim = DefaultGroupsClaim
	}

	claims := jwt.MapClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(token.IDToken, claims); err != nil {
		return models.ProviderIdentity{}, dErrors.Wrap(err, dErrors.CodeInternal, "malformed id token")
	}

	email, _ := claims["email"].(string)
	subject, _ := claims["sub"].(string)
	if email == "" || subject == "" {
		return models.ProviderIdentity{}, dErrors.New(dErrors.CodeInternal, "id token missing email or subject claim")
	}

	return models.ProviderIdentity{
		Email:   email,
		Subject: subject,
		Groups:  stringSlice(claims[groupsClaim]),
	}, nil
}

func groupsFromIDToken(idToken, groupsClaim string) ([]string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(idToken, claims); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "malformed id token")
	}
	return stringSlice(claims[groupsClaim]), nil
}

// stringSlice coerces a decoded JSON claim into []string, preserving order.
// Duplicate and blank group entries are dropped; the first occurrence keeps
// its position since role mapping is order-sensitive.
func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return pstrings.DedupeAndTrim(out)
}
