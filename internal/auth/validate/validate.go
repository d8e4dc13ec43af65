// Package validate rejects malformed credentials before any network call so
// login fails fast with a deterministic message distinct from network
// failures.
package validate

import (
	"regexp"
	"strings"

	"passage/internal/auth/models"
	dErrors "passage/pkg/domain-errors"
)

// Basic address pattern: something@something.something. Real deliverability
// is the provider's problem; this only catches obvious typos and empty input.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Credentials checks the pair and returns it normalized (trimmed email) or a
// CodeValidation error. Side-effect free.
func Credentials(creds models.Credentials) (models.Credentials, error) {
	creds.Email = strings.TrimSpace(creds.Email)

	if creds.Email == "" {
		return models.Credentials{}, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if creds.Password == "" {
		return models.Credentials{}, dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if !emailPattern.MatchString(creds.Email) {
		return models.Credentials{}, dErrors.New(dErrors.CodeValidation, "email address is malformed")
	}
	return creds, nil
}
