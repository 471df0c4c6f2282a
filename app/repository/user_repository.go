package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/fantribe/fantribe/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByHandle retrieves a user by their public handle
func (r *userRepository) GetByHandle(handle string) (*models.User, error) {
	var user models.User
	err := r.db.Where("handle = ?", handle).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByActivationToken retrieves a user by their activation token
func (r *userRepository) GetByActivationToken(token string) (*models.User, error) {
	var user models.User
	err := r.db.Where("activation_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user by their ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List retrieves a paginated list of users
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// ListCreators retrieves a paginated list of creator accounts
func (r *userRepository) ListCreators(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("is_creator = ? AND status = ?", true, models.STATUS_ACTIVE).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// Search searches for users by name, handle or email
func (r *userRepository) Search(query string) ([]models.User, error) {
	var users []models.User
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("name LIKE ? OR handle LIKE ? OR email LIKE ?",
		searchPattern, searchPattern, searchPattern).Find(&users).Error
	return users, err
}

// GetStatsByUserID returns aggregate statistics for a creator profile
func (r *userRepository) GetStatsByUserID(userID uint) (*CreatorStats, error) {
	var stats CreatorStats

	err := r.db.Model(&models.Post{}).Where("creator_id = ?", userID).Count(&stats.PostCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	now := time.Now()
	err = r.db.Model(&models.Subscription{}).
		Where("creator_id = ? AND status = ? AND current_period_end > ?",
			userID, models.SubscriptionStatusActive, now).
		Count(&stats.SubscriberCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count subscribers: %w", err)
	}

	err = r.db.Model(&models.Tip{}).Where("creator_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.TipTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to sum tips: %w", err)
	}

	return &stats, nil
}
