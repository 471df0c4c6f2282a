package models

import (
	"time"

	"gorm.io/gorm"
)

type Like struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID    uint           `gorm:"index" json:"post_id"`
	Post      Post           `gorm:"foreignKey:PostID" json:"post,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ToggleLike creates the like if absent, removes it otherwise.
func ToggleLike(db *gorm.DB, userID, postID uint) error {
	var like Like
	result := db.Where("user_id = ? AND post_id = ?", userID, postID).First(&like)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			newLike := Like{
				UserID: userID,
				PostID: postID,
			}
			if err := db.Create(&newLike).Error; err != nil {
				return err
			}
			return db.Model(&Post{}).Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
		}
		return result.Error
	}

	if err := db.Delete(&like).Error; err != nil {
		return err
	}
	return db.Model(&Post{}).Where("id = ? AND like_count > 0", postID).
		UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
}
