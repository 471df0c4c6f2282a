package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantribe/fantribe/app/models"
)

func TestBanIsActive(t *testing.T) {
	now := time.Now()

	permanent := &models.Ban{Reason: "spam"}
	assert.True(t, permanent.IsActive(now))

	future := now.Add(24 * time.Hour)
	temporary := &models.Ban{Reason: "spam", ExpiresAt: &future}
	assert.True(t, temporary.IsActive(now))
	assert.False(t, temporary.IsActive(future), "ban ends exactly at expiry")
	assert.False(t, temporary.IsActive(future.Add(time.Minute)))

	lifted := &models.Ban{Reason: "spam", LiftedAt: &now}
	assert.False(t, lifted.IsActive(now.Add(time.Second)))
}

func TestBanExpiryPrecedence(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	// A lifted ban stays inactive even with a future expiry
	future := now.Add(time.Hour)
	ban := &models.Ban{Reason: "abuse", ExpiresAt: &future, LiftedAt: &past}
	require.False(t, ban.IsActive(now))
}
