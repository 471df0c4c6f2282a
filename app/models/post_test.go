package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostIsVisibleTo(t *testing.T) {
	public := &Post{CreatorID: 7, Visibility: PostVisibilityPublic}
	gated := &Post{CreatorID: 7, Visibility: PostVisibilitySubscribers}

	// Public posts are visible to everybody, including anonymous viewers
	assert.True(t, public.IsVisibleTo(0, false))
	assert.True(t, public.IsVisibleTo(42, false))

	// Gated posts need a subscription
	assert.False(t, gated.IsVisibleTo(0, false))
	assert.False(t, gated.IsVisibleTo(42, false))
	assert.True(t, gated.IsVisibleTo(42, true))

	// The creator always sees their own posts
	assert.True(t, gated.IsVisibleTo(7, false))
}
