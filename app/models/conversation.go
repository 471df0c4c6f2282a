package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a private thread between a fan and a creator.
type Conversation struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UUID          string     `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	FanID         uint       `gorm:"not null;index:ux_conversations_fan_creator,unique,priority:1" json:"fan_id"`
	Fan           *User      `gorm:"foreignKey:FanID" json:"fan,omitempty"`
	CreatorID     uint       `gorm:"not null;index:ux_conversations_fan_creator,unique,priority:2;index" json:"creator_id"`
	Creator       *User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	LastMessageAt *time.Time `gorm:"type:timestamp;default:null;index" json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetOrCreateConversation returns the existing thread for the pair or creates it.
func GetOrCreateConversation(db *gorm.DB, fanID, creatorID uint, uuid string) (*Conversation, error) {
	var conv Conversation
	err := db.Where("fan_id = ? AND creator_id = ?", fanID, creatorID).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	conv = Conversation{
		UUID:      uuid,
		FanID:     fanID,
		CreatorID: creatorID,
	}
	if err := db.Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}
