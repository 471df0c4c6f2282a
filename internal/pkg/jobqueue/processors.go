package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/app/repository"
	"github.com/fantribe/fantribe/internal/pkg/archive"
	"github.com/fantribe/fantribe/internal/pkg/database"
	"github.com/fantribe/fantribe/internal/pkg/media"
)

var (
	archiveClient *archive.Client
	mediaClient   *media.Client
)

// SetArchiveClient wires the cold-archive client used by media archive jobs.
// When unset, archive jobs complete as no-ops.
func SetArchiveClient(c *archive.Client) {
	archiveClient = c
}

// SetMediaClient wires the media library client used by encode status jobs.
func SetMediaClient(c *media.Client) {
	mediaClient = c
}

// processNotificationJob persists a notification row for the target user.
func (q *Queue) processNotificationJob(job *Job) error {
	payload, err := NotificationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}

	if payload.UserID == 0 {
		return fmt.Errorf("notification payload missing user_id")
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := models.CreateNotification(db, payload.UserID, payload.Kind, payload.Content, payload.ReferenceID); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// processMediaStatusJob polls the encode status of a freshly uploaded video
// and publishes the playback URL on the post once encoding finishes. A video
// still in flight returns an error so the retry schedule polls again.
func (q *Queue) processMediaStatusJob(ctx context.Context, job *Job) error {
	payload, err := MediaStatusJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid media status payload: %w", err)
	}

	if mediaClient == nil || !mediaClient.Configured() {
		log.Infof("[JobQueue] Media library not configured, skipping status check for %s", payload.MediaID)
		return nil
	}

	statusCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	video, err := mediaClient.GetVideo(statusCtx, payload.MediaID)
	if err != nil {
		return fmt.Errorf("failed to fetch video %s: %w", payload.MediaID, err)
	}

	if video.Failed() {
		return fmt.Errorf("provider failed to encode video %s", payload.MediaID)
	}
	if !video.Ready() {
		return fmt.Errorf("video %s still encoding (status %d)", payload.MediaID, video.Status)
	}

	repos := repository.GetGlobalRepositories()
	post, err := repos.Post.GetByUUID(payload.PostUUID)
	if err != nil {
		return fmt.Errorf("post %s not found for media %s: %w", payload.PostUUID, payload.MediaID, err)
	}

	post.MediaURL = mediaClient.PlaybackURL(payload.MediaID)
	if err := repos.Post.Update(post); err != nil {
		return fmt.Errorf("failed to publish playback URL on post %s: %w", payload.PostUUID, err)
	}

	log.Infof("[JobQueue] Video %s ready, playback URL published on post %s", payload.MediaID, payload.PostUUID)
	return nil
}

// EnqueueMediaStatusCheck schedules encode status polling for a video that was
// just attached to a post.
func EnqueueMediaStatusCheck(mediaID, postUUID string) error {
	payload := MediaStatusJobPayload{MediaID: mediaID, PostUUID: postUUID}
	_, err := GetManager().GetQueue().EnqueueJob(JobTypeMediaStatus, payload.ToMap())
	return err
}

// processMediaArchiveJob writes a tombstone manifest for removed media into
// cold storage so the record survives deletion from the media library.
func (q *Queue) processMediaArchiveJob(ctx context.Context, job *Job) error {
	payload, err := MediaArchiveJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid media archive payload: %w", err)
	}

	if archiveClient == nil {
		log.Infof("[JobQueue] Archive disabled, skipping media archive for %s", payload.MediaID)
		return nil
	}

	manifest := map[string]interface{}{
		"media_id":    payload.MediaID,
		"post_uuid":   payload.PostUUID,
		"archived_at": time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal archive manifest: %w", err)
	}

	contentType := payload.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	archiveCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := archiveClient.ArchiveObject(archiveCtx, payload.ObjectKey, contentType, body)
	if err != nil {
		return fmt.Errorf("failed to archive media %s: %w", payload.MediaID, err)
	}

	log.Infof("[JobQueue] Archived media %s to %s (%d bytes)", payload.MediaID, result.ObjectKey, result.Size)
	return nil
}

// processSubscriptionExpiryJob flips lapsed subscriptions to expired.
func (q *Queue) processSubscriptionExpiryJob(job *Job) error {
	repos := repository.GetGlobalRepositories()
	count, err := repos.Subscription.ExpireLapsed(time.Now())
	if err != nil {
		return fmt.Errorf("failed to expire subscriptions: %w", err)
	}

	if count > 0 {
		log.Infof("[JobQueue] Expired %d lapsed subscriptions", count)
	}
	return nil
}
