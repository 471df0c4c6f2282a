package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionIsActive(t *testing.T) {
	now := time.Now()
	future := now.Add(10 * 24 * time.Hour)
	past := now.Add(-time.Hour)

	sub := &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: &future}
	assert.True(t, sub.IsActive(now))

	sub = &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: &past}
	assert.False(t, sub.IsActive(now), "lapsed period must not entitle even while status is active")

	sub = &Subscription{Status: SubscriptionStatusExpired, CurrentPeriodEnd: &future}
	assert.False(t, sub.IsActive(now))

	sub = &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: nil}
	assert.False(t, sub.IsActive(now), "missing period end must not entitle")
}

func TestSubscriptionIsActiveBoundary(t *testing.T) {
	now := time.Now()

	// Exactly at period end the entitlement is gone
	sub := &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: &now}
	assert.False(t, sub.IsActive(now))

	justBefore := now.Add(time.Second)
	sub = &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: &justBefore}
	assert.True(t, sub.IsActive(now))
}
