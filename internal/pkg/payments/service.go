package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fantribe/fantribe/app/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// subscriptionPeriod is the entitlement window bought by one payment.
const subscriptionPeriod = 30 * 24 * time.Hour

// Service applies verified payments exactly once. Both operations are keyed
// on the provider transaction id and are safe to call more than once; the
// second caller to commit observes AlreadyProcessed=true and no further
// effect is applied.
type Service struct {
	repo     Repository
	enqueuer Enqueuer
}

// NewService creates a payments service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a payments service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// WithEnqueuer attaches a background-job enqueuer for notification fan-out.
func (s *Service) WithEnqueuer(e Enqueuer) *Service {
	s.enqueuer = e
	return s
}

// ProcessPayment records a verified subscription payment and activates or
// extends the subscription. Replays return AlreadyProcessed=true.
//
// Empty or unresolvable party ids are tolerated: the marker row is still
// recorded (so later deliveries short-circuit) but no subscription is
// touched. This is the return-redirect handler's best-effort path.
func (s *Service) ProcessPayment(ctx context.Context, in PaymentInput) (*ProcessResult, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	txID := strings.TrimSpace(in.ProviderTransactionID)
	if provider == "" || txID == "" {
		return nil, errors.New("provider and provider_transaction_id are required")
	}

	startedAt := in.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	creatorID := parseUserID(in.CreatorID)
	subscriberID := parseUserID(in.SubscriberID)

	marker := &models.PaymentTransaction{
		Provider:              provider,
		ProviderTransactionID: txID,
		Kind:                  models.PaymentKindSubscription,
		CreatorID:             creatorID,
		SubscriberID:          subscriberID,
		Amount:                in.Amount,
		Currency:              currencyOrDefault(in.Currency),
		PaymentMethod:         strings.TrimSpace(in.PaymentMethod),
		PaidAt:                startedAt,
	}
	created, _, err := s.repo.CreateTransactionIfNotExists(marker)
	if err != nil {
		return nil, err
	}
	if !created {
		return &ProcessResult{AlreadyProcessed: true}, nil
	}

	if creatorID == 0 || subscriberID == 0 {
		log.Warnf("[Payments] transaction %s recorded without party ids (creator=%q subscriber=%q), skipping subscription activation",
			txID, in.CreatorID, in.SubscriberID)
		return &ProcessResult{AlreadyProcessed: false}, nil
	}

	// A renewal paid before the current period lapses appends a full
	// period to the existing end instead of restarting the window, so the
	// subscriber never loses time already paid for.
	periodEnd := startedAt.Add(subscriptionPeriod)
	existing, err := s.repo.GetSubscription(subscriberID, creatorID)
	switch {
	case err == nil:
		if existing.Status == models.SubscriptionStatusActive &&
			existing.CurrentPeriodEnd != nil && existing.CurrentPeriodEnd.After(startedAt) {
			periodEnd = existing.CurrentPeriodEnd.Add(subscriptionPeriod)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First subscription for this pair.
	default:
		return nil, fmt.Errorf("subscription lookup failed for %s: %w", txID, err)
	}
	sub := &models.Subscription{
		SubscriberID:       subscriberID,
		CreatorID:          creatorID,
		Status:             models.SubscriptionStatusActive,
		Provider:           provider,
		LastTransactionID:  txID,
		Price:              in.Amount,
		Currency:           currencyOrDefault(in.Currency),
		PaymentMethod:      strings.TrimSpace(in.PaymentMethod),
		CurrentPeriodStart: &startedAt,
		CurrentPeriodEnd:   &periodEnd,
	}
	if err := s.repo.UpsertSubscription(sub); err != nil {
		return nil, fmt.Errorf("subscription activation failed for %s: %w", txID, err)
	}

	s.enqueue("notification", map[string]interface{}{
		"user_id":      creatorID,
		"type":         models.NotificationTypeSubscription,
		"content":      "You have a new subscriber",
		"reference_id": sub.ID,
	})
	return &ProcessResult{AlreadyProcessed: false}, nil
}

// ProcessTip records a verified tip exactly once and stores its social payload.
func (s *Service) ProcessTip(ctx context.Context, in TipInput) (*ProcessResult, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	txID := strings.TrimSpace(in.ProviderTransactionID)
	if provider == "" || txID == "" {
		return nil, errors.New("provider and provider_transaction_id are required")
	}

	creatorID := parseUserID(in.CreatorID)
	senderID := parseUserID(in.SenderID)

	marker := &models.PaymentTransaction{
		Provider:              provider,
		ProviderTransactionID: txID,
		Kind:                  models.PaymentKindTip,
		CreatorID:             creatorID,
		SubscriberID:          senderID,
		Amount:                in.Amount,
		Currency:              currencyOrDefault(in.Currency),
		PaidAt:                time.Now(),
	}
	created, _, err := s.repo.CreateTransactionIfNotExists(marker)
	if err != nil {
		return nil, err
	}
	if !created {
		return &ProcessResult{AlreadyProcessed: true}, nil
	}

	if creatorID == 0 || senderID == 0 {
		log.Warnf("[Payments] tip %s recorded without party ids (creator=%q sender=%q), skipping tip payload",
			txID, in.CreatorID, in.SenderID)
		return &ProcessResult{AlreadyProcessed: false}, nil
	}

	tip := &models.Tip{
		Provider:              provider,
		ProviderTransactionID: txID,
		SenderID:              senderID,
		CreatorID:             creatorID,
		Amount:                in.Amount,
		Currency:              currencyOrDefault(in.Currency),
		Message:               in.Message,
		Context:               strings.TrimSpace(in.Context),
		PostID:                parseOptionalID(in.PostID),
		ConversationID:        parseOptionalID(in.ConversationID),
	}
	if err := s.repo.CreateTip(tip); err != nil {
		return nil, fmt.Errorf("tip payload creation failed for %s: %w", txID, err)
	}

	s.enqueue("notification", map[string]interface{}{
		"user_id":      creatorID,
		"type":         models.NotificationTypeTip,
		"content":      "You received a tip",
		"reference_id": tip.ID,
	})
	return &ProcessResult{AlreadyProcessed: false}, nil
}

// CheckTransaction reports whether a provider transaction is already recorded.
func (s *Service) CheckTransaction(ctx context.Context, provider, providerTransactionID string) (bool, error) {
	_ = ctx
	p := strings.ToLower(strings.TrimSpace(provider))
	txID := strings.TrimSpace(providerTransactionID)
	if p == "" || txID == "" {
		return false, errors.New("provider and provider_transaction_id are required")
	}
	return s.repo.TransactionExists(p, txID)
}

func (s *Service) enqueue(jobType string, payload map[string]interface{}) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.Enqueue(jobType, payload); err != nil {
		log.Errorf("[Payments] failed to enqueue %s job: %v", jobType, err)
	}
}

func parseUserID(raw string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

func parseOptionalID(raw string) *uint {
	if id := parseUserID(raw); id != 0 {
		return &id
	}
	return nil
}

func currencyOrDefault(currency string) string {
	if c := strings.TrimSpace(currency); c != "" {
		return c
	}
	return "XOF"
}
