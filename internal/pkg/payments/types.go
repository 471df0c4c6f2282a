package payments

import "time"

// PaymentInput is the normalized input for subscription payment processing.
// Party ids arrive as strings because they originate from checkout metadata;
// the service resolves them to local user ids.
type PaymentInput struct {
	Provider              string
	ProviderTransactionID string
	CreatorID             string
	SubscriberID          string
	Amount                int64
	Currency              string
	PaymentMethod         string
	StartedAt             time.Time
}

// TipInput is the normalized input for tip processing.
type TipInput struct {
	Provider              string
	ProviderTransactionID string
	SenderID              string
	CreatorID             string
	Amount                int64
	Currency              string
	Message               string
	Context               string
	PostID                string
	ConversationID        string
}

// ProcessResult reports the outcome of an idempotent processing call.
// AlreadyProcessed is true when a prior delivery of the same provider
// transaction already applied the effect.
type ProcessResult struct {
	AlreadyProcessed bool `json:"alreadyProcessed"`
}

// Enqueuer abstracts background-job submission so processing can fan out
// notifications without a hard dependency on the queue implementation.
type Enqueuer interface {
	Enqueue(jobType string, payload map[string]interface{}) error
}
