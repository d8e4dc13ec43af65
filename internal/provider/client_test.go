package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passage/internal/auth/models"
	dErrors "passage/pkg/domain-errors"
	"passage/pkg/platform/sentinel"
)

// signTestIDToken builds a structurally valid id token. The signature is
// irrelevant because the client never verifies it.
func signTestIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-only-key"))
	require.NoError(t, err)
	return signed
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(Config{TokenURL: srv.URL, ClientID: "mobile-client"}, srv.Client(), nil)
	return client, srv
}

func TestSignIn(t *testing.T) {
	creds := models.Credentials{Email: "guardian@example.com", Password: "correct"}

	t.Run("decodes tokens and groups on success", func(t *testing.T) {
		idToken := signTestIDToken(t, jwt.MapClaims{
			"sub":            "prov-sub-1",
			"email":          "guardian@example.com",
			"cognito:groups": []string{"guardians", "staff"},
		})
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req tokenRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "password", req.GrantType)
			assert.Equal(t, "mobile-client", req.ClientID)
			assert.Equal(t, creds.Email, req.Username)

			_ = json.NewEncoder(w).Encode(tokenResponse{
				AccessToken:  "access-1",
				IDToken:      idToken,
				RefreshToken: "refresh-1",
				ExpiresIn:    3600,
			})
		})

		token, err := client.SignIn(context.Background(), creds)
		require.NoError(t, err)
		assert.Equal(t, "access-1", token.AccessToken)
		assert.Equal(t, "refresh-1", token.RefreshToken)
		assert.Equal(t, []string{"guardians", "staff"}, token.Groups)
		assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)
	})

	t.Run("invalid_grant maps to invalid credentials", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(errorResponse{Error: "invalid_grant"})
		})

		_, err := client.SignIn(context.Background(), creds)
		assert.True(t, dErrors.Is(err, dErrors.CodeInvalidCredentials))
	})

	t.Run("user_not_confirmed maps to its own kind", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(errorResponse{Error: "user_not_confirmed"})
		})

		_, err := client.SignIn(context.Background(), creds)
		assert.True(t, dErrors.Is(err, dErrors.CodeUserNotConfirmed))
	})

	t.Run("5xx maps to provider unreachable", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.SignIn(context.Background(), creds)
		assert.True(t, dErrors.Is(err, dErrors.CodeProviderUnreachable))
		assert.True(t, IsFallbackEligible(err))
	})

	t.Run("connection failure maps to provider unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close() // nothing listening anymore
		client := New(Config{TokenURL: srv.URL, ClientID: "mobile-client"}, nil, nil)

		_, err := client.SignIn(context.Background(), creds)
		assert.True(t, dErrors.Is(err, dErrors.CodeProviderUnreachable))
		assert.True(t, IsFallbackEligible(err))
	})

	t.Run("missing configuration fails before any network call", func(t *testing.T) {
		client := New(Config{}, nil, nil)
		_, err := client.SignIn(context.Background(), creds)
		assert.True(t, dErrors.Is(err, dErrors.CodeProviderMisconfigured))
		assert.True(t, IsFallbackEligible(err))
	})

	t.Run("credential failures are never fallback eligible", func(t *testing.T) {
		err := dErrors.New(dErrors.CodeInvalidCredentials, "incorrect email or password")
		assert.False(t, IsFallbackEligible(err))
	})

	t.Run("downstream outages are never fallback eligible", func(t *testing.T) {
		// A profile-store outage wraps the same unavailability sentinel as
		// a provider outage but carries a different code; the code decides.
		err := dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeServerUnreachable, "profile store unreachable")
		assert.False(t, IsFallbackEligible(err))
	})
}

func TestRefresh(t *testing.T) {
	t.Run("uses refresh grant", func(t *testing.T) {
		idToken := signTestIDToken(t, jwt.MapClaims{"sub": "prov-sub-1", "email": "guardian@example.com"})
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req tokenRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "refresh_token", req.GrantType)
			assert.Equal(t, "refresh-1", req.RefreshToken)
			assert.Empty(t, req.Password)

			_ = json.NewEncoder(w).Encode(tokenResponse{
				AccessToken: "access-2",
				IDToken:     idToken,
				ExpiresIn:   3600,
			})
		})

		token, err := client.Refresh(context.Background(), "refresh-1")
		require.NoError(t, err)
		assert.Equal(t, "access-2", token.AccessToken)
		assert.Empty(t, token.RefreshToken, "provider did not rotate the refresh token")
	})

	t.Run("empty refresh token is rejected locally", func(t *testing.T) {
		client := New(Config{TokenURL: "http://unused", ClientID: "mobile-client"}, nil, nil)
		_, err := client.Refresh(context.Background(), "")
		assert.True(t, dErrors.Is(err, dErrors.CodeInvalidCredentials))
	})
}

func TestIdentity(t *testing.T) {
	t.Run("extracts email, subject, and ordered groups", func(t *testing.T) {
		idToken := signTestIDToken(t, jwt.MapClaims{
			"sub":            "prov-sub-9",
			"email":          "admin@example.com",
			"cognito:groups": []string{"admins", "guardians"},
		})

		identity, err := Identity(models.IdentityToken{IDToken: idToken}, "")
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", identity.Email)
		assert.Equal(t, "prov-sub-9", identity.Subject)
		assert.Equal(t, []string{"admins", "guardians"}, identity.Groups)
	})

	t.Run("duplicate groups collapse, keeping first position", func(t *testing.T) {
		idToken := signTestIDToken(t, jwt.MapClaims{
			"sub":            "prov-sub-9",
			"email":          "admin@example.com",
			"cognito:groups": []string{"staff", "admins", "staff"},
		})

		identity, err := Identity(models.IdentityToken{IDToken: idToken}, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"staff", "admins"}, identity.Groups)
	})

	t.Run("missing subject claim is an error", func(t *testing.T) {
		idToken := signTestIDToken(t, jwt.MapClaims{"email": "admin@example.com"})
		_, err := Identity(models.IdentityToken{IDToken: idToken}, "")
		require.Error(t, err)
	})

	t.Run("missing email claim is an error", func(t *testing.T) {
		// Callers rely on a returned identity always carrying an email, so
		// reconciliation never needs a backfill.
		idToken := signTestIDToken(t, jwt.MapClaims{"sub": "prov-sub-9"})
		_, err := Identity(models.IdentityToken{IDToken: idToken}, "")
		require.Error(t, err)
	})

	t.Run("garbage token is an error", func(t *testing.T) {
		_, err := Identity(models.IdentityToken{IDToken: "not-a-jwt"}, "")
		require.Error(t, err)
	})
}
