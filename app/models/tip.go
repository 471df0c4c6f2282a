package models

import "time"

// Tip is a one-off payment from a fan to a creator, optionally attached to a
// post or a conversation. The ledger effect is recorded by the matching
// PaymentTransaction row; the Tip row carries the social payload.
type Tip struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Provider              string    `gorm:"type:varchar(20);not null" json:"provider"`
	ProviderTransactionID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"provider_transaction_id"`
	SenderID              uint      `gorm:"not null;index" json:"sender_id"`
	Sender                *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	CreatorID             uint      `gorm:"not null;index" json:"creator_id"`
	Creator               *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Amount                int64     `gorm:"not null" json:"amount"`
	Currency              string    `gorm:"type:varchar(3);not null;default:'XOF'" json:"currency"`
	Message               string    `gorm:"type:text" json:"message"`
	Context               string    `gorm:"type:varchar(50)" json:"context"`
	PostID                *uint     `gorm:"index" json:"post_id,omitempty"`
	ConversationID        *uint     `gorm:"index" json:"conversation_id,omitempty"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
}
