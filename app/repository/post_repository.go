package repository

import (
	"github.com/fantribe/fantribe/app/models"
	"gorm.io/gorm"
)

// postRepository implements the PostRepository interface
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository instance
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create creates a new post in the database
func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetByID retrieves a post by its ID
func (r *postRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Creator").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByUUID retrieves a post by its UUID
func (r *postRepository) GetByUUID(uuid string) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Creator").Where("uuid = ?", uuid).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// paginate applies keyset pagination on (created_at, id) descending.
func paginate(q *gorm.DB, cursor Cursor, limit int) *gorm.DB {
	if !cursor.IsZero() {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	return q.Order("created_at DESC, id DESC").Limit(limit)
}

// GetByCreatorID retrieves a creator's posts, newest first
func (r *postRepository) GetByCreatorID(creatorID uint, cursor Cursor, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.Preload("Creator").Where("creator_id = ?", creatorID)
	err := paginate(q, cursor, limit).Find(&posts).Error
	return posts, err
}

// GetFeed retrieves posts from the given creators, newest first
func (r *postRepository) GetFeed(creatorIDs []uint, cursor Cursor, limit int) ([]models.Post, error) {
	if len(creatorIDs) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	q := r.db.Preload("Creator").Where("creator_id IN ?", creatorIDs)
	err := paginate(q, cursor, limit).Find(&posts).Error
	return posts, err
}

// GetDiscover retrieves recent public posts across all creators
func (r *postRepository) GetDiscover(cursor Cursor, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.Preload("Creator").Where("visibility = ?", models.PostVisibilityPublic)
	err := paginate(q, cursor, limit).Find(&posts).Error
	return posts, err
}

// Update updates an existing post in the database
func (r *postRepository) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

// Delete soft deletes a post by its ID
func (r *postRepository) Delete(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}

// Count returns the total number of posts
func (r *postRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Count(&count).Error
	return count, err
}

// CountByCreatorID returns the number of posts by a creator
func (r *postRepository) CountByCreatorID(creatorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("creator_id = ?", creatorID).Count(&count).Error
	return count, err
}

// GetComments retrieves comments on a post, oldest first
func (r *postRepository) GetComments(postID uint, offset, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("User").Where("post_id = ?", postID).
		Order("created_at ASC").Offset(offset).Limit(limit).Find(&comments).Error
	return comments, err
}

// CreateComment creates a comment and bumps the post's comment counter
func (r *postRepository) CreateComment(comment *models.Comment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			Update("comment_count", gorm.Expr("comment_count + 1")).Error
	})
}

// DeleteComment soft deletes a comment and lowers the post's comment counter
func (r *postRepository) DeleteComment(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND comment_count > 0", comment.PostID).
			Update("comment_count", gorm.Expr("comment_count - 1")).Error
	})
}
