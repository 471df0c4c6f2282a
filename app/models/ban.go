package models

import (
	"time"

	"gorm.io/gorm"
)

// Ban blocks a user from the platform, permanently or until ExpiresAt.
// Lifting a ban sets LiftedAt; expired temporary bans are simply inactive.
type Ban struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BannedByID uint       `gorm:"not null" json:"banned_by_id"`
	BannedBy   *User      `gorm:"foreignKey:BannedByID" json:"banned_by,omitempty"`
	Reason     string     `gorm:"type:varchar(255);not null" json:"reason"`
	ExpiresAt  *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	LiftedAt   *time.Time `gorm:"type:timestamp;default:null" json:"lifted_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the ban is currently in force.
func (b *Ban) IsActive(now time.Time) bool {
	if b.LiftedAt != nil {
		return false
	}
	if b.ExpiresAt != nil && !now.Before(*b.ExpiresAt) {
		return false
	}
	return true
}

// FindActiveBan returns the active ban for a user, if any.
func FindActiveBan(db *gorm.DB, userID uint, now time.Time) (*Ban, error) {
	var bans []Ban
	if err := db.Where("user_id = ? AND lifted_at IS NULL", userID).
		Order("created_at DESC").Find(&bans).Error; err != nil {
		return nil, err
	}
	for i := range bans {
		if bans[i].IsActive(now) {
			return &bans[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
