package models

import (
	"time"

	"gorm.io/gorm"
)

type Message struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UUID           string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	ConversationID uint           `gorm:"not null;index" json:"conversation_id"`
	Conversation   *Conversation  `gorm:"foreignKey:ConversationID" json:"conversation,omitempty"`
	SenderID       uint           `gorm:"not null;index" json:"sender_id"`
	Sender         *User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Body           string         `gorm:"type:text" json:"body" validate:"required,min=1,max=5000"`
	TipID          *uint          `gorm:"index" json:"tip_id,omitempty"`
	ReadAt         *time.Time     `gorm:"type:timestamp;default:null" json:"read_at,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
