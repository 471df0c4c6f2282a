package repository

import (
	"time"

	"github.com/fantribe/fantribe/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByHandle(handle string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	ListCreators(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	GetStatsByUserID(userID uint) (*CreatorStats, error)
}

// PostRepository defines the interface for post-related database operations.
// Listing methods use keyset pagination on (created_at, id) via the cursor
// argument: zero cursor means "from the top".
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	GetByUUID(uuid string) (*models.Post, error)
	GetByCreatorID(creatorID uint, cursor Cursor, limit int) ([]models.Post, error)
	GetFeed(creatorIDs []uint, cursor Cursor, limit int) ([]models.Post, error)
	GetDiscover(cursor Cursor, limit int) ([]models.Post, error)
	Update(post *models.Post) error
	Delete(id uint) error
	Count() (int64, error)
	CountByCreatorID(creatorID uint) (int64, error)
	GetComments(postID uint, offset, limit int) ([]models.Comment, error)
	CreateComment(comment *models.Comment) error
	DeleteComment(id uint) error
}

// MessageRepository defines the interface for conversation and message operations
type MessageRepository interface {
	GetConversationByUUID(uuid string) (*models.Conversation, error)
	GetOrCreateConversation(fanID, creatorID uint) (*models.Conversation, error)
	ListConversations(userID uint, offset, limit int) ([]models.Conversation, error)
	CreateMessage(message *models.Message) error
	GetMessages(conversationID uint, cursor Cursor, limit int) ([]models.Message, error)
	MarkRead(conversationID, readerID uint, at time.Time) error
	CountUnread(userID uint) (int64, error)
}

// SubscriptionRepository defines read access to subscription state for
// entitlement checks and profile pages. Writes go through the payments service.
type SubscriptionRepository interface {
	Get(subscriberID, creatorID uint) (*models.Subscription, error)
	HasActive(subscriberID, creatorID uint, now time.Time) (bool, error)
	ListBySubscriber(subscriberID uint) ([]models.Subscription, error)
	ListByCreator(creatorID uint, offset, limit int) ([]models.Subscription, error)
	CountActiveByCreator(creatorID uint, now time.Time) (int64, error)
	ExpireLapsed(now time.Time) (int64, error)
}

// ReportRepository defines the interface for moderation report operations
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id uint) (*models.Report, error)
	ListOpen(offset, limit int) ([]models.Report, error)
	ListByStatus(status string, offset, limit int) ([]models.Report, error)
	Resolve(id uint, resolverID uint, status string) error
	CountOpen() (int64, error)
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	ListByUser(userID uint, offset, limit int) ([]models.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkAllRead(userID uint) error
}

// Cursor is a keyset pagination position. Zero value starts from the newest row.
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

// IsZero reports whether the cursor points at the top of the listing.
func (c Cursor) IsZero() bool {
	return c.ID == 0 && c.CreatedAt.IsZero()
}

// CreatorStats provides aggregated counts for a creator profile page.
type CreatorStats struct {
	PostCount       int64
	SubscriberCount int64
	TipTotal        int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Post         PostRepository
	Message      MessageRepository
	Subscription SubscriptionRepository
	Report       ReportRepository
	Notification NotificationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Post:         NewPostRepository(db),
		Message:      NewMessageRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Report:       NewReportRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
