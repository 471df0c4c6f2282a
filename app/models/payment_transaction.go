package models

import "time"

const (
	PaymentProviderCinetPay = "cinetpay"

	PaymentKindSubscription = "subscription"
	PaymentKindTip          = "tip"
)

// PaymentTransaction is the append-only idempotency marker and ledger row for a
// provider payment. Existence of a (provider, provider_transaction_id) pair means
// the payment effect was already applied; rows are created once and never mutated.
type PaymentTransaction struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Provider              string    `gorm:"type:varchar(20);not null;index:ux_payment_transactions_provider_tx,unique,priority:1" json:"provider"`
	ProviderTransactionID string    `gorm:"type:varchar(191);not null;index:ux_payment_transactions_provider_tx,unique,priority:2" json:"provider_transaction_id"`
	Kind                  string    `gorm:"type:varchar(20);not null;index" json:"kind"`
	CreatorID             uint      `gorm:"index" json:"creator_id"`
	SubscriberID          uint      `gorm:"index" json:"subscriber_id"`
	Amount                int64     `gorm:"not null" json:"amount"`
	Currency              string    `gorm:"type:varchar(3);not null;default:'XOF'" json:"currency"`
	PaymentMethod         string    `gorm:"type:varchar(32)" json:"payment_method"`
	PaidAt                time.Time `gorm:"type:timestamp;not null" json:"paid_at"`
	CreatedAt             time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
