package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusExpired  = "expired"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription links a paying subscriber to a creator for a billing period.
// One row per (subscriber, creator) pair; renewals extend the current period.
type Subscription struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	SubscriberID       uint       `gorm:"not null;index:ux_subscriptions_subscriber_creator,unique,priority:1" json:"subscriber_id"`
	Subscriber         *User      `gorm:"foreignKey:SubscriberID" json:"subscriber,omitempty"`
	CreatorID          uint       `gorm:"not null;index:ux_subscriptions_subscriber_creator,unique,priority:2;index" json:"creator_id"`
	Creator            *User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Status             string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	Provider           string     `gorm:"type:varchar(20);not null" json:"provider"`
	LastTransactionID  string     `gorm:"type:varchar(191);not null;default:''" json:"last_transaction_id"`
	Price              int64      `gorm:"not null;default:0" json:"price"`
	Currency           string     `gorm:"type:varchar(3);not null;default:'XOF'" json:"currency"`
	PaymentMethod      string     `gorm:"type:varchar(32)" json:"payment_method"`
	CurrentPeriodStart *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the subscription currently entitles access.
// A row marked active but past its period end no longer entitles.
func (s *Subscription) IsActive(now time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	if s.CurrentPeriodEnd == nil {
		return false
	}
	return now.Before(*s.CurrentPeriodEnd)
}
