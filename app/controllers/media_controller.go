package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/fantribe/fantribe/internal/pkg/env"
	"github.com/fantribe/fantribe/internal/pkg/media"
)

const maxMediaUploadBytes = 2 << 30 // 2 GiB per clip

var mediaClient *media.Client

// InitializeMediaControllers wires the media hosting client.
func InitializeMediaControllers(client *media.Client) {
	mediaClient = client
}

// HandleCreateMediaUpload registers a video in the creator's collection and
// returns a short-lived token authorizing the direct upload.
func HandleCreateMediaUpload(c *fiber.Ctx) error {
	userCtx := mustUserContext(c)
	if userCtx == nil {
		return nil
	}
	if !userCtx.IsCreator {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "creator account required"})
	}
	if mediaClient == nil || !mediaClient.Configured() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "configuration_error", "message": "Media uploads are not configured"})
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&payload); err != nil || payload.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "A title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	collectionName := fmt.Sprintf("creator-%d", userCtx.UserID)
	collectionID, err := mediaClient.GetOrCreateCollection(ctx, collectionName)
	if err != nil {
		log.Errorf("media collection resolve failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "media_unavailable", "message": "Media provider unreachable"})
	}

	video, err := mediaClient.CreateVideo(ctx, payload.Title, collectionID)
	if err != nil {
		log.Errorf("media video create failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "media_unavailable", "message": "Media provider unreachable"})
	}

	secret := env.GetEnv("MEDIA_UPLOAD_SECRET", "")
	token, err := media.GenerateUploadToken(userCtx.UserID, collectionID, maxMediaUploadBytes, 30*time.Minute, secret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to issue upload token"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"video_id":     video.GUID,
		"upload_token": token,
		"playback_url": mediaClient.PlaybackURL(video.GUID),
		"max_bytes":    maxMediaUploadBytes,
	})
}

// HandleCompleteMediaUpload confirms a direct upload. The client hands back
// the token it uploaded with; only a token issued to this same user is
// accepted, so a leaked video id alone cannot be claimed. Returns the current
// encode state so the client knows when the clip is attachable to a post.
func HandleCompleteMediaUpload(c *fiber.Ctx) error {
	userCtx := mustUserContext(c)
	if userCtx == nil {
		return nil
	}
	if mediaClient == nil || !mediaClient.Configured() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "configuration_error", "message": "Media uploads are not configured"})
	}

	var payload struct {
		VideoID     string `json:"video_id"`
		UploadToken string `json:"upload_token"`
	}
	if err := c.BodyParser(&payload); err != nil || payload.VideoID == "" || payload.UploadToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "video_id and upload_token are required"})
	}

	secret := env.GetEnv("MEDIA_UPLOAD_SECRET", "")
	claims, err := media.VerifyUploadToken(payload.UploadToken, secret)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Invalid or expired upload token"})
	}
	if claims.UserID != userCtx.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Upload token belongs to another account"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	video, err := mediaClient.GetVideo(ctx, payload.VideoID)
	if err != nil {
		log.Errorf("media video lookup failed for %s: %v", payload.VideoID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "media_unavailable", "message": "Media provider unreachable"})
	}
	if video.Failed() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "encoding_failed", "message": "The provider could not process this upload"})
	}

	response := fiber.Map{
		"video_id": video.GUID,
		"ready":    video.Ready(),
	}
	if video.Ready() {
		response["playback_url"] = mediaClient.PlaybackURL(video.GUID)
	}
	return c.JSON(response)
}
