package moderation

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fantribe/fantribe/app/models"
)

// Service applies and lifts account bans.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// BanUser suspends an account, permanently when expiresAt is nil. An
// existing active ban is left in place and returned unchanged.
func (s *Service) BanUser(userID, adminID uint, reason string, expiresAt *time.Time) (*models.Ban, error) {
	if reason == "" {
		return nil, errors.New("a ban reason is required")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if user.Role == models.ROLE_ADMIN {
		return nil, errors.New("admins cannot be banned")
	}

	now := time.Now()
	if existing, err := models.FindActiveBan(s.db, userID, now); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ban := models.Ban{
		UserID:     userID,
		BannedByID: adminID,
		Reason:     reason,
		ExpiresAt:  expiresAt,
	}
	if err := s.db.Create(&ban).Error; err != nil {
		return nil, err
	}

	_ = models.CreateNotification(s.db, userID, models.NotificationTypeSystem,
		"Your account has been suspended: "+reason, ban.ID)

	return &ban, nil
}

// LiftBan ends the user's active ban, if any.
func (s *Service) LiftBan(userID uint) error {
	ban, err := models.FindActiveBan(s.db, userID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	now := time.Now()
	return s.db.Model(ban).Update("lifted_at", now).Error
}

// IsBanned reports whether the user currently has an active ban.
func (s *Service) IsBanned(userID uint, now time.Time) (bool, error) {
	_, err := models.FindActiveBan(s.db, userID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
