package payments

import (
	"context"
	"testing"
	"time"

	"github.com/fantribe/fantribe/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	transactions  map[string]*models.PaymentTransaction
	subscriptions map[[2]uint]*models.Subscription
	tips          []*models.Tip
	upsertCalls   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		transactions:  make(map[string]*models.PaymentTransaction),
		subscriptions: make(map[[2]uint]*models.Subscription),
	}
}

func (f *fakeRepo) CreateTransactionIfNotExists(tx *models.PaymentTransaction) (bool, *models.PaymentTransaction, error) {
	key := tx.Provider + ":" + tx.ProviderTransactionID
	if stored, ok := f.transactions[key]; ok {
		return false, stored, nil
	}
	tx.ID = uint(len(f.transactions) + 1)
	f.transactions[key] = tx
	return true, tx, nil
}

func (f *fakeRepo) TransactionExists(provider, providerTransactionID string) (bool, error) {
	_, ok := f.transactions[provider+":"+providerTransactionID]
	return ok, nil
}

func (f *fakeRepo) UpsertSubscription(sub *models.Subscription) error {
	f.upsertCalls++
	key := [2]uint{sub.SubscriberID, sub.CreatorID}
	if existing, ok := f.subscriptions[key]; ok {
		sub.ID = existing.ID
	} else {
		sub.ID = uint(len(f.subscriptions) + 1)
	}
	f.subscriptions[key] = sub
	return nil
}

func (f *fakeRepo) GetSubscription(subscriberID, creatorID uint) (*models.Subscription, error) {
	if sub, ok := f.subscriptions[[2]uint{subscriberID, creatorID}]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateTip(tip *models.Tip) error {
	tip.ID = uint(len(f.tips) + 1)
	f.tips = append(f.tips, tip)
	return nil
}

func (f *fakeRepo) ListTransactions(limit, offset int) ([]models.PaymentTransaction, error) {
	return nil, nil
}

func (f *fakeRepo) CountTransactions() (int64, error) {
	return int64(len(f.transactions)), nil
}

type recordingEnqueuer struct {
	jobs []string
}

func (r *recordingEnqueuer) Enqueue(jobType string, payload map[string]interface{}) error {
	r.jobs = append(r.jobs, jobType)
	return nil
}

func TestProcessPayment_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	in := PaymentInput{
		Provider:              "cinetpay",
		ProviderTransactionID: "tx1",
		CreatorID:             "7",
		SubscriberID:          "3",
		Amount:                500,
		Currency:              "XOF",
		PaymentMethod:         "OM",
		StartedAt:             time.Now(),
	}

	first, err := svc.ProcessPayment(ctx, in)
	require.NoError(t, err)
	assert.False(t, first.AlreadyProcessed)

	second, err := svc.ProcessPayment(ctx, in)
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)

	// Exactly one subscription activation despite two deliveries.
	assert.Equal(t, 1, repo.upsertCalls)
	sub, err := repo.GetSubscription(3, 7)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, int64(500), sub.Price)
	assert.Equal(t, "tx1", sub.LastTransactionID)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.True(t, sub.IsActive(time.Now()))
}

func TestProcessPayment_EarlyRenewalExtendsPeriod(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	firstPaid := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := svc.ProcessPayment(ctx, PaymentInput{
		Provider:              "cinetpay",
		ProviderTransactionID: "tx1",
		CreatorID:             "7",
		SubscriberID:          "3",
		Amount:                500,
		StartedAt:             firstPaid,
	})
	require.NoError(t, err)

	sub, err := repo.GetSubscription(3, 7)
	require.NoError(t, err)
	require.NotNil(t, sub.CurrentPeriodEnd)
	firstEnd := *sub.CurrentPeriodEnd
	assert.Equal(t, firstPaid.Add(subscriptionPeriod), firstEnd)

	// Renewing 10 days in appends a full period to the existing end; the
	// 20 remaining paid days are not thrown away.
	renewedAt := firstPaid.Add(10 * 24 * time.Hour)
	_, err = svc.ProcessPayment(ctx, PaymentInput{
		Provider:              "cinetpay",
		ProviderTransactionID: "tx2",
		CreatorID:             "7",
		SubscriberID:          "3",
		Amount:                500,
		StartedAt:             renewedAt,
	})
	require.NoError(t, err)

	renewed, err := repo.GetSubscription(3, 7)
	require.NoError(t, err)
	require.NotNil(t, renewed.CurrentPeriodEnd)
	assert.Equal(t, firstEnd.Add(subscriptionPeriod), *renewed.CurrentPeriodEnd)
	assert.Equal(t, "tx2", renewed.LastTransactionID)

	// A payment after the period lapsed starts a fresh window instead.
	lateAt := firstEnd.Add(subscriptionPeriod).Add(48 * time.Hour)
	_, err = svc.ProcessPayment(ctx, PaymentInput{
		Provider:              "cinetpay",
		ProviderTransactionID: "tx3",
		CreatorID:             "7",
		SubscriberID:          "3",
		Amount:                500,
		StartedAt:             lateAt,
	})
	require.NoError(t, err)

	resumed, err := repo.GetSubscription(3, 7)
	require.NoError(t, err)
	require.NotNil(t, resumed.CurrentPeriodEnd)
	assert.Equal(t, lateAt.Add(subscriptionPeriod), *resumed.CurrentPeriodEnd)
}

func TestProcessPayment_EmptyIDsTolerated(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	result, err := svc.ProcessPayment(context.Background(), PaymentInput{
		Provider:              "cinetpay",
		ProviderTransactionID: "tx-weak",
		CreatorID:             "",
		SubscriberID:          "",
		Amount:                500,
	})
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)

	// Marker recorded so later deliveries short-circuit, no subscription touched.
	exists, err := repo.TransactionExists("cinetpay", "tx-weak")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 0, repo.upsertCalls)

	replay, err := svc.ProcessPayment(context.Background(), PaymentInput{
		Provider:              "cinetpay",
		ProviderTransactionID: "tx-weak",
	})
	require.NoError(t, err)
	assert.True(t, replay.AlreadyProcessed)
}

func TestProcessPayment_RequiredFields(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.ProcessPayment(context.Background(), PaymentInput{Provider: "cinetpay"})
	assert.Error(t, err)
	_, err = svc.ProcessPayment(context.Background(), PaymentInput{ProviderTransactionID: "tx1"})
	assert.Error(t, err)
}

func TestProcessTip_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	enq := &recordingEnqueuer{}
	svc := NewService(repo).WithEnqueuer(enq)
	ctx := context.Background()

	in := TipInput{
		Provider:              "cinetpay",
		ProviderTransactionID: "tip1",
		SenderID:              "3",
		CreatorID:             "7",
		Amount:                500,
		Currency:              "XOF",
		Message:               "bravo",
		Context:               "post",
		PostID:                "11",
	}

	first, err := svc.ProcessTip(ctx, in)
	require.NoError(t, err)
	assert.False(t, first.AlreadyProcessed)

	second, err := svc.ProcessTip(ctx, in)
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)

	require.Len(t, repo.tips, 1)
	tip := repo.tips[0]
	assert.Equal(t, uint(3), tip.SenderID)
	assert.Equal(t, uint(7), tip.CreatorID)
	assert.Equal(t, int64(500), tip.Amount)
	assert.Equal(t, "bravo", tip.Message)
	require.NotNil(t, tip.PostID)
	assert.Equal(t, uint(11), *tip.PostID)
	assert.Nil(t, tip.ConversationID)

	// One notification despite two deliveries.
	assert.Equal(t, []string{"notification"}, enq.jobs)
}

func TestCheckTransaction(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	exists, err := svc.CheckTransaction(ctx, "cinetpay", "tx1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.ProcessPayment(ctx, PaymentInput{
		Provider:              "cinetpay",
		ProviderTransactionID: "tx1",
		CreatorID:             "7",
		SubscriberID:          "3",
		Amount:                500,
	})
	require.NoError(t, err)

	exists, err = svc.CheckTransaction(ctx, "cinetpay", "tx1")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = svc.CheckTransaction(ctx, "", "tx1")
	assert.Error(t, err)
}
