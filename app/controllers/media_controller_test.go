package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantribe/fantribe/internal/pkg/env"
	"github.com/fantribe/fantribe/internal/pkg/media"
	"github.com/fantribe/fantribe/internal/pkg/usercontext"
)

const uploadTestSecret = "upload-secret"

func newMediaTestApp(t *testing.T, viewer usercontext.UserContext) *fiber.App {
	t.Helper()

	env.Env = map[string]string{"MEDIA_UPLOAD_SECRET": uploadTestSecret}
	t.Cleanup(func() { env.Env = nil })

	client := &media.Client{
		APIKey:     "test-key",
		LibraryID:  "42",
		APIBaseURL: "https://video.example.test",
		CDNHost:    "cdn.example.test",
		HTTPClient: &http.Client{},
	}
	gock.InterceptClient(client.HTTPClient)
	InitializeMediaControllers(client)
	t.Cleanup(func() { InitializeMediaControllers(nil) })

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", viewer)
		return c.Next()
	})
	app.Post("/media/uploads/complete", HandleCompleteMediaUpload)
	return app
}

func completeUploadRequest(t *testing.T, videoID, token string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"video_id":     videoID,
		"upload_token": token,
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/media/uploads/complete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCompleteMediaUpload_ReadyVideo(t *testing.T) {
	defer gock.Off()
	gock.New("https://video.example.test").
		Get("/library/42/videos/vid-1").
		MatchHeader("AccessKey", "test-key").
		Reply(200).
		JSON(map[string]any{"guid": "vid-1", "status": 4})

	viewer := usercontext.UserContext{UserID: 7, IsLoggedIn: true, IsCreator: true}
	app := newMediaTestApp(t, viewer)

	token, err := media.GenerateUploadToken(7, "col-1", 1<<30, time.Minute, uploadTestSecret)
	require.NoError(t, err)

	resp, err := app.Test(completeUploadRequest(t, "vid-1", token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		VideoID     string `json:"video_id"`
		Ready       bool   `json:"ready"`
		PlaybackURL string `json:"playback_url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "vid-1", result.VideoID)
	assert.True(t, result.Ready)
	assert.Equal(t, "https://cdn.example.test/vid-1/playlist.m3u8", result.PlaybackURL)
	assert.True(t, gock.IsDone())
}

func TestCompleteMediaUpload_RejectsForeignToken(t *testing.T) {
	defer gock.Off()
	// No mock registered: the provider must not be contacted.

	viewer := usercontext.UserContext{UserID: 7, IsLoggedIn: true, IsCreator: true}
	app := newMediaTestApp(t, viewer)

	// Token issued to user 9, presented by user 7.
	token, err := media.GenerateUploadToken(9, "col-1", 1<<30, time.Minute, uploadTestSecret)
	require.NoError(t, err)

	resp, err := app.Test(completeUploadRequest(t, "vid-1", token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Empty(t, gock.Pending())
}

func TestCompleteMediaUpload_RejectsTamperedToken(t *testing.T) {
	viewer := usercontext.UserContext{UserID: 7, IsLoggedIn: true, IsCreator: true}
	app := newMediaTestApp(t, viewer)

	token, err := media.GenerateUploadToken(7, "col-1", 1<<30, time.Minute, "wrong-secret")
	require.NoError(t, err)

	resp, err := app.Test(completeUploadRequest(t, "vid-1", token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCompleteMediaUpload_EncodingFailed(t *testing.T) {
	defer gock.Off()
	gock.New("https://video.example.test").
		Get("/library/42/videos/vid-2").
		Reply(200).
		JSON(map[string]any{"guid": "vid-2", "status": 5})

	viewer := usercontext.UserContext{UserID: 7, IsLoggedIn: true, IsCreator: true}
	app := newMediaTestApp(t, viewer)

	token, err := media.GenerateUploadToken(7, "col-1", 1<<30, time.Minute, uploadTestSecret)
	require.NoError(t, err)

	resp, err := app.Test(completeUploadRequest(t, "vid-2", token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.True(t, gock.IsDone())
}
