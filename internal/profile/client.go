// Package profile talks to the user/association database behind its HTTP
// API. It is a separate system from the identity provider: provider-verified
// identities are reconciled against it, never the other way around.
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"passage/internal/auth/models"
	dErrors "passage/pkg/domain-errors"
	"passage/pkg/platform/sentinel"
)

// DefaultTimeout bounds every profile store call.
const DefaultTimeout = 10 * time.Second

// Config locates the profile service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the HTTP implementation of the profile store boundary.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// FindUsersByEmail returns every user record matching the email. The caller
// decides what more than one match means; this layer never collapses them.
func (c *Client) FindUsersByEmail(ctx context.Context, email string) ([]models.UserRecord, error) {
	var out struct {
		Users []models.UserRecord `json:"users"`
	}
	query := url.Values{"email": {email}}
	if err := c.do(ctx, http.MethodGet, "/users?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// CreateUser inserts a new user record and returns it with the store-assigned
// identifier.
func (c *Client) CreateUser(ctx context.Context, user models.UserRecord) (models.UserRecord, error) {
	var out struct {
		User models.UserRecord `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/users", user, &out); err != nil {
		return models.UserRecord{}, err
	}
	if out.User.ID == "" {
		return models.UserRecord{}, dErrors.New(dErrors.CodeInternal, "profile store returned user without id")
	}
	return out.User, nil
}

// ListAssociations returns the user's associations in server order. Order is
// preserved all the way to the active-association tie-break.
func (c *Client) ListAssociations(ctx context.Context, userID string) ([]models.Association, error) {
	var out struct {
		Associations []models.Association `json:"associations"`
	}
	path := "/users/" + url.PathEscape(userID) + "/associations"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Associations, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.cfg.BaseURL == "" {
		return dErrors.New(dErrors.CodeInternal, "profile store endpoint not configured")
	}

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "encode profile request")
		}
		body = bytes.NewReader(encoded)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build profile request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(
			fmt.Errorf("%v: %w", err, sentinel.ErrUnavailable),
			dErrors.CodeServerUnreachable, "profile store unreachable")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeServerUnreachable, "read profile response")
	}

	switch {
	case resp.StatusCode >= 500:
		return dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeServerUnreachable,
			fmt.Sprintf("profile store returned status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("profile record: %w", sentinel.ErrNotFound)
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return dErrors.Newf(dErrors.CodeInternal, "unexpected profile store status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "decode profile response")
		}
	}
	return nil
}
