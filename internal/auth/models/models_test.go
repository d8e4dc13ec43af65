package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveAssociation(t *testing.T) {
	t.Run("first active wins over earlier non-active", func(t *testing.T) {
		associations := []Association{
			{ID: "A1", Status: AssociationPending},
			{ID: "A2", Status: AssociationActive},
			{ID: "A3", Status: AssociationActive},
		}
		active := ActiveAssociation(associations)
		require.NotNil(t, active)
		assert.Equal(t, "A2", active.ID)
	})

	t.Run("falls back to first when none active", func(t *testing.T) {
		associations := []Association{
			{ID: "A1", Status: AssociationPending},
			{ID: "A2", Status: AssociationInactive},
		}
		active := ActiveAssociation(associations)
		require.NotNil(t, active)
		assert.Equal(t, "A1", active.ID)
	})

	t.Run("nil for empty list", func(t *testing.T) {
		assert.Nil(t, ActiveAssociation(nil))
		assert.Nil(t, ActiveAssociation([]Association{}))
	})
}

func TestIdentityTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("future expiry is live", func(t *testing.T) {
		tok := IdentityToken{ExpiresAt: now.Add(time.Hour)}
		assert.False(t, tok.Expired(now))
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		tok := IdentityToken{ExpiresAt: now.Add(-time.Second)}
		assert.True(t, tok.Expired(now))
	})

	t.Run("exact expiry instant is expired", func(t *testing.T) {
		tok := IdentityToken{ExpiresAt: now}
		assert.True(t, tok.Expired(now))
	})

	t.Run("zero expiry is expired", func(t *testing.T) {
		assert.True(t, IdentityToken{}.Expired(now))
	})
}

func TestNewSessionComputesActiveAssociation(t *testing.T) {
	associations := []Association{
		{ID: "A1", Status: AssociationInactive},
		{ID: "A2", Status: AssociationActive},
	}
	session := NewSession(IdentityToken{AccessToken: "at"}, UserRecord{ID: "u1"}, associations)
	require.NotNil(t, session.ActiveAssociation)
	assert.Equal(t, "A2", session.ActiveAssociation.ID)
}
