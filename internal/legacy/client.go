// Package legacy calls the profile service's own login endpoint directly,
// bypassing the identity provider. It is selected by configuration at
// orchestrator construction, never by runtime header sniffing.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"passage/internal/auth/models"
	dErrors "passage/pkg/domain-errors"
	"passage/pkg/platform/sentinel"
)

// DefaultTimeout bounds every legacy login call. A timeout classifies as
// ServerUnreachable, never as InvalidCredentials.
const DefaultTimeout = 10 * time.Second

// DefaultTokenTTL is assumed for legacy tokens. The legacy endpoint does not
// report an expiry, so the session layer needs a conservative one to decide
// when restoreSession must re-prompt.
const DefaultTokenTTL = 24 * time.Hour

// Config locates the profile service.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	TokenTTL time.Duration
}

// Client posts credentials to POST /users/login.
type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config, httpClient *http.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// SignInResult is the user and token pair returned by the legacy endpoint.
type SignInResult struct {
	User  models.UserRecord
	Token models.IdentityToken
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool `json:"success"`
	Data    struct {
		User  models.UserRecord `json:"user"`
		Token string            `json:"token"`
	} `json:"data"`
	Message string `json:"message"`
}

// SignIn authenticates against the profile store's credential check.
func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (SignInResult, error) {
	if c.cfg.BaseURL == "" {
		return SignInResult{}, dErrors.New(dErrors.CodeInternal, "legacy endpoint not configured")
	}

	body, err := json.Marshal(loginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return SignInResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode login request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/users/login", bytes.NewReader(body))
	if err != nil {
		return SignInResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SignInResult{}, dErrors.Wrap(
			fmt.Errorf("%v: %w", err, sentinel.ErrUnavailable),
			dErrors.CodeServerUnreachable, "profile service unreachable")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return SignInResult{}, dErrors.Wrap(err, dErrors.CodeServerUnreachable, "read login response")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return SignInResult{}, dErrors.New(dErrors.CodeInvalidCredentials, "incorrect email or password")
	case resp.StatusCode >= 500:
		return SignInResult{}, dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeServerUnreachable,
			fmt.Sprintf("profile service returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return SignInResult{}, dErrors.Newf(dErrors.CodeInternal, "unexpected login status %d", resp.StatusCode)
	}

	var lr loginResponse
	if err := json.Unmarshal(payload, &lr); err != nil {
		return SignInResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode login response")
	}
	if !lr.Success {
		// Some deployments report credential failures as 200 + success:false.
		return SignInResult{}, dErrors.New(dErrors.CodeInvalidCredentials, "incorrect email or password")
	}
	if lr.Data.Token == "" || lr.Data.User.ID == "" {
		return SignInResult{}, dErrors.New(dErrors.CodeInternal, "login response missing user or token")
	}

	return SignInResult{
		User: lr.Data.User,
		Token: models.IdentityToken{
			AccessToken: lr.Data.Token,
			ExpiresAt:   time.Now().Add(c.cfg.TokenTTL),
		},
	}, nil
}
