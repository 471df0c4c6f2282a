package jobqueue

import (
	"testing"
	"time"
)

func TestJobTypes(t *testing.T) {
	if JobTypeNotification != "notification" {
		t.Errorf("Expected JobTypeNotification to be 'notification', got %s", JobTypeNotification)
	}
	if JobTypeMediaStatus != "media_status" {
		t.Errorf("Expected JobTypeMediaStatus to be 'media_status', got %s", JobTypeMediaStatus)
	}
	if JobTypeMediaArchive != "media_archive" {
		t.Errorf("Expected JobTypeMediaArchive to be 'media_archive', got %s", JobTypeMediaArchive)
	}
	if JobTypeSubscriptionExpiry != "subscription_expiry" {
		t.Errorf("Expected JobTypeSubscriptionExpiry to be 'subscription_expiry', got %s", JobTypeSubscriptionExpiry)
	}
}

func TestJobStatuses(t *testing.T) {
	statuses := map[JobStatus]string{
		JobStatusPending:    "pending",
		JobStatusProcessing: "processing",
		JobStatusCompleted:  "completed",
		JobStatusFailed:     "failed",
		JobStatusRetrying:   "retrying",
	}

	for status, expected := range statuses {
		if string(status) != expected {
			t.Errorf("Expected status %s, got %s", expected, status)
		}
	}
}

func TestJobMethods(t *testing.T) {
	job := &Job{
		ID:         "test-job",
		Type:       JobTypeNotification,
		Status:     JobStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}

	// Test MarkAsProcessing
	job.MarkAsProcessing()
	if job.Status != JobStatusProcessing {
		t.Errorf("Expected status processing, got %s", job.Status)
	}
	if job.ProcessedAt == nil {
		t.Error("Expected ProcessedAt to be set")
	}

	// Test MarkAsFailed
	job.MarkAsFailed("test error")
	if job.Status != JobStatusFailed {
		t.Errorf("Expected status failed, got %s", job.Status)
	}
	if job.ErrorMsg != "test error" {
		t.Errorf("Expected error message 'test error', got %s", job.ErrorMsg)
	}
	if job.RetryCount != 1 {
		t.Errorf("Expected retry count 1, got %d", job.RetryCount)
	}

	// Test IsRetryable
	if !job.IsRetryable() {
		t.Error("Expected job to be retryable")
	}

	job.RetryCount = 3
	if job.IsRetryable() {
		t.Error("Expected job to not be retryable after max retries")
	}

	// Test MarkAsCompleted
	job.MarkAsCompleted()
	if job.Status != JobStatusCompleted {
		t.Errorf("Expected status completed, got %s", job.Status)
	}
	if job.CompletedAt == nil {
		t.Error("Expected CompletedAt to be set")
	}
	if job.ErrorMsg != "" {
		t.Errorf("Expected error message to be cleared, got %s", job.ErrorMsg)
	}
}

func TestNotificationJobPayload(t *testing.T) {
	payload := NotificationJobPayload{
		UserID:      42,
		Kind:        "tip_received",
		Content:     "You received a tip",
		ReferenceID: 7,
	}

	m := payload.ToMap()

	restored, err := NotificationJobPayloadFromMap(m)
	if err != nil {
		t.Fatalf("Failed to restore payload from map: %v", err)
	}

	if restored.UserID != payload.UserID {
		t.Errorf("Expected UserID %d, got %d", payload.UserID, restored.UserID)
	}
	if restored.Kind != payload.Kind {
		t.Errorf("Expected Kind %s, got %s", payload.Kind, restored.Kind)
	}
	if restored.Content != payload.Content {
		t.Errorf("Expected Content %s, got %s", payload.Content, restored.Content)
	}
	if restored.ReferenceID != payload.ReferenceID {
		t.Errorf("Expected ReferenceID %d, got %d", payload.ReferenceID, restored.ReferenceID)
	}
}

func TestNotificationJobPayloadFromMapInvalid(t *testing.T) {
	// Channels cannot be marshaled to JSON
	_, err := NotificationJobPayloadFromMap(map[string]interface{}{
		"user_id": make(chan int),
	})
	if err == nil {
		t.Error("Expected error for unmarshalable map value")
	}
}

func TestMediaArchiveJobPayload(t *testing.T) {
	payload := MediaArchiveJobPayload{
		MediaID:     "vid-123",
		ObjectKey:   "media/2026/09/vid-123.json",
		ContentType: "application/json",
		PostUUID:    "a1b2c3",
	}

	m := payload.ToMap()

	restored, err := MediaArchiveJobPayloadFromMap(m)
	if err != nil {
		t.Fatalf("Failed to restore payload from map: %v", err)
	}

	if restored.MediaID != payload.MediaID {
		t.Errorf("Expected MediaID %s, got %s", payload.MediaID, restored.MediaID)
	}
	if restored.ObjectKey != payload.ObjectKey {
		t.Errorf("Expected ObjectKey %s, got %s", payload.ObjectKey, restored.ObjectKey)
	}
}

func TestNewQueueDefaults(t *testing.T) {
	q := NewQueue(0)
	if q.workers != 3 {
		t.Errorf("Expected 3 default workers, got %d", q.workers)
	}

	q = NewQueue(8)
	if q.workers != 8 {
		t.Errorf("Expected 8 workers, got %d", q.workers)
	}
}

func TestQueueConstants(t *testing.T) {
	if JobKeyPrefix != "job:" {
		t.Errorf("Expected JobKeyPrefix to be 'job:', got %s", JobKeyPrefix)
	}
	if JobQueueKey != "job_queue" {
		t.Errorf("Expected JobQueueKey to be 'job_queue', got %s", JobQueueKey)
	}
	if JobProcessingKey != "job_processing" {
		t.Errorf("Expected JobProcessingKey to be 'job_processing', got %s", JobProcessingKey)
	}
	if DefaultMaxRetries != 3 {
		t.Errorf("Expected DefaultMaxRetries to be 3, got %d", DefaultMaxRetries)
	}
	if JobTTL != 24*time.Hour {
		t.Errorf("Expected JobTTL to be 24 hours, got %v", JobTTL)
	}
}
