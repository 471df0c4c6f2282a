package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fantribe/fantribe/app/models"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Get retrieves the subscription row for a subscriber/creator pair
func (r *subscriptionRepository) Get(subscriberID, creatorID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("subscriber_id = ? AND creator_id = ?", subscriberID, creatorID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// HasActive reports whether the subscriber currently has access to the creator
func (r *subscriptionRepository) HasActive(subscriberID, creatorID uint, now time.Time) (bool, error) {
	sub, err := r.Get(subscriberID, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return sub.IsActive(now), nil
}

// ListBySubscriber lists all subscriptions held by a user
func (r *subscriptionRepository) ListBySubscriber(subscriberID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Preload("Creator").Where("subscriber_id = ?", subscriberID).
		Order("updated_at DESC").Find(&subs).Error
	return subs, err
}

// ListByCreator lists subscriptions to a creator with pagination
func (r *subscriptionRepository) ListByCreator(creatorID uint, offset, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Preload("Subscriber").Where("creator_id = ?", creatorID).
		Order("updated_at DESC").Offset(offset).Limit(limit).Find(&subs).Error
	return subs, err
}

// CountActiveByCreator counts currently entitling subscriptions to a creator
func (r *subscriptionRepository) CountActiveByCreator(creatorID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("creator_id = ? AND status = ? AND current_period_end > ?",
			creatorID, models.SubscriptionStatusActive, now).
		Count(&count).Error
	return count, err
}

// ExpireLapsed flips active rows whose period has ended to expired.
// Returns the number of rows updated; run periodically from the job queue.
func (r *subscriptionRepository) ExpireLapsed(now time.Time) (int64, error) {
	res := r.db.Model(&models.Subscription{}).
		Where("status = ? AND current_period_end IS NOT NULL AND current_period_end <= ?",
			models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusExpired)
	return res.RowsAffected, res.Error
}
