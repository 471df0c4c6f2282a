package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PostVisibilityPublic      = "public"
	PostVisibilitySubscribers = "subscribers"
)

type Post struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UUID         string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	CreatorID    uint           `gorm:"not null;index" json:"creator_id"`
	Creator      *User          `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Content      string         `gorm:"type:text" json:"content" validate:"max=5000"`
	MediaID      string         `gorm:"type:varchar(64);default:''" json:"media_id"`
	MediaURL     string         `gorm:"type:varchar(255);default:''" json:"media_url"`
	Visibility   string         `gorm:"type:varchar(20);not null;default:'public';index" json:"visibility" validate:"oneof=public subscribers"`
	LikeCount    int64          `gorm:"default:0" json:"like_count"`
	CommentCount int64          `gorm:"default:0" json:"comment_count"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsVisibleTo reports whether a viewer may see the post body. Subscriber-gated
// posts require an active subscription to the creator (or being the creator).
func (p *Post) IsVisibleTo(viewerID uint, hasActiveSubscription bool) bool {
	if p.Visibility == PostVisibilityPublic {
		return true
	}
	if viewerID == p.CreatorID {
		return true
	}
	return hasActiveSubscription
}
