package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fantribe/fantribe/app/models"
)

// messageRepository implements the MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// GetConversationByUUID retrieves a conversation by its UUID
func (r *messageRepository) GetConversationByUUID(id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Preload("Fan").Preload("Creator").Where("uuid = ?", id).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetOrCreateConversation returns the thread for the fan/creator pair
func (r *messageRepository) GetOrCreateConversation(fanID, creatorID uint) (*models.Conversation, error) {
	return models.GetOrCreateConversation(r.db, fanID, creatorID, uuid.New().String())
}

// ListConversations lists a user's threads, most recently active first
func (r *messageRepository) ListConversations(userID uint, offset, limit int) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.Preload("Fan").Preload("Creator").
		Where("fan_id = ? OR creator_id = ?", userID, userID).
		Order("last_message_at DESC").Offset(offset).Limit(limit).Find(&convs).Error
	return convs, err
}

// CreateMessage stores a message and bumps the thread's activity timestamp
func (r *messageRepository) CreateMessage(message *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if message.UUID == "" {
			message.UUID = uuid.New().String()
		}
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&models.Conversation{}).Where("id = ?", message.ConversationID).
			Update("last_message_at", now).Error
	})
}

// GetMessages retrieves messages in a thread, newest first
func (r *messageRepository) GetMessages(conversationID uint, cursor Cursor, limit int) ([]models.Message, error) {
	var messages []models.Message
	q := r.db.Preload("Sender").Where("conversation_id = ?", conversationID)
	err := paginate(q, cursor, limit).Find(&messages).Error
	return messages, err
}

// MarkRead marks all messages sent to the reader in a thread as read
func (r *messageRepository) MarkRead(conversationID, readerID uint, at time.Time) error {
	return r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", at).Error
}

// CountUnread counts messages addressed to the user that are still unread
func (r *messageRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.fan_id = ? OR conversations.creator_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
