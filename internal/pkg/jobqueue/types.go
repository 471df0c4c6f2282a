package jobqueue

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrUnknownJobType is returned when a job is submitted with an unrecognized type name.
var ErrUnknownJobType = errors.New("unknown job type")

// JobType defines the type of job
type JobType string

const (
	JobTypeNotification       JobType = "notification"
	JobTypeMediaStatus        JobType = "media_status"
	JobTypeMediaArchive       JobType = "media_archive"
	JobTypeSubscriptionExpiry JobType = "subscription_expiry"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// NotificationJobPayload contains the payload for notification fan-out jobs
type NotificationJobPayload struct {
	UserID      uint   `json:"user_id"`
	Kind        string `json:"kind"`
	Content     string `json:"content"`
	ReferenceID uint   `json:"reference_id"`
}

// ToMap converts the payload to a map for storage
func (p NotificationJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"user_id":      p.UserID,
		"kind":         p.Kind,
		"content":      p.Content,
		"reference_id": p.ReferenceID,
	}
}

// NotificationJobPayloadFromMap creates a payload from a map
func NotificationJobPayloadFromMap(data map[string]interface{}) (*NotificationJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload NotificationJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// MediaStatusJobPayload contains the payload for encode status polling
type MediaStatusJobPayload struct {
	MediaID  string `json:"media_id"`
	PostUUID string `json:"post_uuid"`
}

// ToMap converts the payload to a map for storage
func (p MediaStatusJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"media_id":  p.MediaID,
		"post_uuid": p.PostUUID,
	}
}

// MediaStatusJobPayloadFromMap creates a payload from a map
func MediaStatusJobPayloadFromMap(data map[string]interface{}) (*MediaStatusJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload MediaStatusJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// MediaArchiveJobPayload contains the payload for cold-archiving removed media
type MediaArchiveJobPayload struct {
	MediaID     string `json:"media_id"`
	ObjectKey   string `json:"object_key"`
	ContentType string `json:"content_type"`
	PostUUID    string `json:"post_uuid"`
}

// ToMap converts the payload to a map for storage
func (p MediaArchiveJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"media_id":     p.MediaID,
		"object_key":   p.ObjectKey,
		"content_type": p.ContentType,
		"post_uuid":    p.PostUUID,
	}
}

// MediaArchiveJobPayloadFromMap creates a payload from a map
func MediaArchiveJobPayloadFromMap(data map[string]interface{}) (*MediaArchiveJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload MediaArchiveJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
