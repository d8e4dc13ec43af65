// Package provider wraps the hosted-auth service's token endpoint. It speaks
// the documented password-grant flow and translates provider-specific
// failures into the local error taxonomy. It performs no persistence.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"passage/internal/auth/models"
	dErrors "passage/pkg/domain-errors"
	"passage/pkg/platform/sentinel"
)

// DefaultTimeout bounds every provider call. A timeout classifies as
// ProviderUnreachable, never as InvalidCredentials.
const DefaultTimeout = 10 * time.Second

// DefaultGroupsClaim is where hosted-auth providers of this shape embed
// group membership in the id token.
const DefaultGroupsClaim = "cognito:groups"

// Config identifies the provider deployment. Resolved once at construction;
// an empty TokenURL or ClientID is a misconfiguration surfaced on first use,
// not a silent no-op.
type Config struct {
	TokenURL    string
	ClientID    string
	GroupsClaim string
	Timeout     time.Duration
}

// Client calls the provider's token endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New constructs a provider client. A nil httpClient gets a default with the
// configured timeout.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.GroupsClaim == "" {
		cfg.GroupsClaim = DefaultGroupsClaim
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// SignIn exchanges credentials for tokens using the password grant.
func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (models.IdentityToken, error) {
	return c.call(ctx, tokenRequest{
		GrantType: "password",
		ClientID:  c.cfg.ClientID,
		Username:  creds.Email,
		Password:  creds.Password,
	})
}

// Refresh extends a session without re-prompting credentials. The refresh
// grant returns a fresh access/id token pair; providers that do not rotate
// the refresh token leave it empty, and the caller keeps the old one.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (models.IdentityToken, error) {
	if refreshToken == "" {
		return models.IdentityToken{}, dErrors.New(dErrors.CodeInvalidCredentials, "empty refresh token")
	}
	return c.call(ctx, tokenRequest{
		GrantType:    "refresh_token",
		ClientID:     c.cfg.ClientID,
		RefreshToken: refreshToken,
	})
}

func (c *Client) call(ctx context.Context, req tokenRequest) (models.IdentityToken, error) {
	if c.cfg.TokenURL == "" || c.cfg.ClientID == "" {
		return models.IdentityToken{}, dErrors.New(dErrors.CodeProviderMisconfigured,
			"provider token endpoint or client id not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return models.IdentityToken{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode token request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, bytes.NewReader(body))
	if err != nil {
		return models.IdentityToken{}, dErrors.Wrap(err, dErrors.CodeInternal, "build token request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return models.IdentityToken{}, dErrors.Wrap(
			fmt.Errorf("%v: %w", err, sentinel.ErrUnavailable),
			dErrors.CodeProviderUnreachable, "identity provider unreachable")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.IdentityToken{}, dErrors.Wrap(err, dErrors.CodeProviderUnreachable, "read provider response")
	}

	if resp.StatusCode != http.StatusOK {
		return models.IdentityToken{}, c.mapError(resp.StatusCode, payload)
	}

	var tr tokenResponse
	if err := json.Unmarshal(payload, &tr); err != nil {
		return models.IdentityToken{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode provider response")
	}
	if tr.AccessToken == "" || tr.IDToken == "" {
		return models.IdentityToken{}, dErrors.New(dErrors.CodeInternal, "provider response missing tokens")
	}

	groups, err := groupsFromIDToken(tr.IDToken, c.cfg.GroupsClaim)
	if err != nil {
		return models.IdentityToken{}, err
	}

	return models.IdentityToken{
		AccessToken:  tr.AccessToken,
		IDToken:      tr.IDToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
		Groups:       groups,
	}, nil
}

// mapError translates the provider's error vocabulary. Unknown shapes fall
// through to CodeInternal so a provider change never masquerades as a
// credentials failure.
func (c *Client) mapError(status int, payload []byte) error {
	var er errorResponse
	_ = json.Unmarshal(payload, &er)

	switch {
	case er.Error == "invalid_grant" || er.Error == "not_authorized":
		return dErrors.New(dErrors.CodeInvalidCredentials, "incorrect email or password")
	case er.Error == "user_not_confirmed":
		return dErrors.New(dErrors.CodeUserNotConfirmed, "account is not confirmed")
	case er.Error == "invalid_client" || status == http.StatusNotFound:
		return dErrors.Newf(dErrors.CodeProviderMisconfigured, "provider rejected client configuration (status %d)", status)
	case status >= 500:
		return dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeProviderUnreachable,
			fmt.Sprintf("provider returned status %d", status))
	default:
		c.logger.Warn("unrecognized provider error", "status", status, "error", er.Error)
		return dErrors.Newf(dErrors.CodeInternal, "unexpected provider error (status %d)", status)
	}
}

// IsFallbackEligible reports whether a sign-in failure permits the legacy
// fallback. Eligibility is decided by the domain code alone: only the
// provider-unreachable and provider-misconfigured kinds qualify. Credential
// failures and downstream outages such as ServerUnreachable are terminal for
// the call even when they wrap the same unavailability sentinel.
func IsFallbackEligible(err error) bool {
	if err == nil {
		return false
	}
	return dErrors.Is(err, dErrors.CodeProviderUnreachable) ||
		dErrors.Is(err, dErrors.CodeProviderMisconfigured)
}
