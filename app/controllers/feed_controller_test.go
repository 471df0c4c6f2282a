package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantribe/fantribe/app/models"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589000, time.UTC)

	token := encodeCursor(at, 1234)
	cur := decodeCursor(token)

	require.False(t, cur.IsZero())
	assert.Equal(t, uint(1234), cur.ID)
	assert.Equal(t, at.UnixMicro(), cur.CreatedAt.UnixMicro())
}

func TestDecodeCursorMalformed(t *testing.T) {
	// Covers empty, invalid base64, missing separator, and non-numeric fields
	cases := []string{
		"",
		"not-base64!!",
		"aGVsbG8",
		"eDoxMg",
		"MTIzNDU2Onh5",
	}
	for _, token := range cases {
		assert.True(t, decodeCursor(token).IsZero(), "token %q should fall back to the top of the feed", token)
	}
}

func TestRenderPostHidesGatedContent(t *testing.T) {
	post := &models.Post{
		UUID:       "p-1",
		CreatorID:  7,
		Content:    "subscribers only",
		MediaURL:   "https://cdn.example/p-1/playlist.m3u8",
		Visibility: models.PostVisibilitySubscribers,
	}

	locked := renderPost(post, 42, false)
	assert.Equal(t, true, locked["locked"])
	assert.NotContains(t, locked, "content")
	assert.NotContains(t, locked, "media_url")

	unlocked := renderPost(post, 42, true)
	assert.Equal(t, false, unlocked["locked"])
	assert.Equal(t, "subscribers only", unlocked["content"])
	assert.Equal(t, post.MediaURL, unlocked["media_url"])

	// The creator sees their own gated post without a subscription
	own := renderPost(post, 7, false)
	assert.Equal(t, false, own["locked"])
}
