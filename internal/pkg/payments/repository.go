package payments

import (
	"github.com/fantribe/fantribe/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the payments service.
type Repository interface {
	CreateTransactionIfNotExists(tx *models.PaymentTransaction) (bool, *models.PaymentTransaction, error)
	TransactionExists(provider, providerTransactionID string) (bool, error)
	UpsertSubscription(sub *models.Subscription) error
	GetSubscription(subscriberID, creatorID uint) (*models.Subscription, error)
	CreateTip(tip *models.Tip) error
	ListTransactions(limit, offset int) ([]models.PaymentTransaction, error)
	CountTransactions() (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// CreateTransactionIfNotExists inserts the idempotency marker row. The unique
// index on (provider, provider_transaction_id) is the serialization point for
// concurrent deliveries: exactly one caller observes created=true.
func (r *gormRepository) CreateTransactionIfNotExists(tx *models.PaymentTransaction) (bool, *models.PaymentTransaction, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_transaction_id"},
		},
		DoNothing: true,
	}).Create(tx)
	if res.Error != nil {
		return false, nil, res.Error
	}

	created := res.RowsAffected > 0
	var stored models.PaymentTransaction
	if err := r.db.Where("provider = ? AND provider_transaction_id = ?", tx.Provider, tx.ProviderTransactionID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) TransactionExists(provider, providerTransactionID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PaymentTransaction{}).
		Where("provider = ? AND provider_transaction_id = ?", provider, providerTransactionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) UpsertSubscription(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subscriber_id"},
			{Name: "creator_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"status",
			"provider",
			"last_transaction_id",
			"price",
			"currency",
			"payment_method",
			"current_period_start",
			"current_period_end",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("subscriber_id = ? AND creator_id = ?", sub.SubscriberID, sub.CreatorID).
		First(sub).Error
}

func (r *gormRepository) GetSubscription(subscriberID, creatorID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("subscriber_id = ? AND creator_id = ?", subscriberID, creatorID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateTip(tip *models.Tip) error {
	return r.db.Create(tip).Error
}

func (r *gormRepository) ListTransactions(limit, offset int) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&txs).Error
	return txs, err
}

func (r *gormRepository) CountTransactions() (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentTransaction{}).Count(&count).Error
	return count, err
}
