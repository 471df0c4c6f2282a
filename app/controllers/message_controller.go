package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/app/repository"
	"github.com/fantribe/fantribe/internal/pkg/database"
	"github.com/fantribe/fantribe/internal/pkg/usercontext"
)

// HandleListConversations returns the user's message threads, most recent first.
func HandleListConversations(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	convs, err := repository.GetGlobalRepositories().Message.
		ListConversations(userCtx.UserID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load conversations"})
	}

	items := make([]fiber.Map, 0, len(convs))
	for i := range convs {
		conv := &convs[i]
		other := conv.Creator
		if conv.CreatorID == userCtx.UserID {
			other = conv.Fan
		}
		item := fiber.Map{
			"uuid":            conv.UUID,
			"last_message_at": conv.LastMessageAt,
		}
		if other != nil {
			item["with"] = fiber.Map{
				"id":         other.ID,
				"name":       other.Name,
				"handle":     other.Handle,
				"avatar_url": other.AvatarURL,
			}
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"conversations": items})
}

// HandleStartConversation opens (or returns) the thread with a creator.
func HandleStartConversation(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	var payload struct {
		CreatorHandle string `json:"creator_handle"`
	}
	if err := c.BodyParser(&payload); err != nil || payload.CreatorHandle == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "creator_handle required"})
	}

	repos := repository.GetGlobalRepositories()
	creator, err := repos.User.GetByHandle(payload.CreatorHandle)
	if err != nil || !creator.IsCreator {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Creator not found"})
	}
	if creator.ID == userCtx.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Cannot message yourself"})
	}

	// Messaging a creator requires an active subscription
	subscribed, err := repos.Subscription.HasActive(userCtx.UserID, creator.ID, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check subscription"})
	}
	if !subscribed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "subscription_required", "message": "Subscribe to message this creator"})
	}

	conv, err := repos.Message.GetOrCreateConversation(userCtx.UserID, creator.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to open conversation"})
	}

	return c.JSON(fiber.Map{"uuid": conv.UUID})
}

// loadConversationForUser resolves a thread UUID and checks membership.
func loadConversationForUser(c *fiber.Ctx, userID uint) (*models.Conversation, error) {
	conv, err := repository.GetGlobalRepositories().Message.
		GetConversationByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Conversation not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load conversation"})
	}
	if conv.FanID != userID && conv.CreatorID != userID {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Not your conversation"})
	}
	return conv, nil
}

// HandleGetMessages returns messages in a thread, newest first, and marks
// messages addressed to the reader as read.
func HandleGetMessages(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	conv, errResp := loadConversationForUser(c, userCtx.UserID)
	if conv == nil {
		return errResp
	}

	repos := repository.GetGlobalRepositories()
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	messages, err := repos.Message.GetMessages(conv.ID, decodeCursor(c.Query("cursor")), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load messages"})
	}

	_ = repos.Message.MarkRead(conv.ID, userCtx.UserID, time.Now())

	items := make([]fiber.Map, 0, len(messages))
	for i := range messages {
		msg := &messages[i]
		item := fiber.Map{
			"uuid":       msg.UUID,
			"sender_id":  msg.SenderID,
			"body":       msg.Body,
			"created_at": msg.CreatedAt,
			"read_at":    msg.ReadAt,
		}
		if msg.TipID != nil {
			item["tip_id"] = *msg.TipID
		}
		items = append(items, item)
	}

	response := fiber.Map{"messages": items}
	if len(messages) == limit {
		last := messages[len(messages)-1]
		response["next_cursor"] = encodeCursor(last.CreatedAt, last.ID)
	}
	return c.JSON(response)
}

// HandleSendMessage posts a message into a thread.
func HandleSendMessage(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	conv, errResp := loadConversationForUser(c, userCtx.UserID)
	if conv == nil {
		return errResp
	}

	var payload struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&payload); err != nil || payload.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Message body required"})
	}

	message := models.Message{
		ConversationID: conv.ID,
		SenderID:       userCtx.UserID,
		Body:           payload.Body,
	}
	if err := repository.GetGlobalRepositories().Message.CreateMessage(&message); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to send message"})
	}

	recipientID := conv.CreatorID
	if conv.CreatorID == userCtx.UserID {
		recipientID = conv.FanID
	}
	_ = models.CreateNotification(database.GetDB(), recipientID,
		models.NotificationTypeMessage, userCtx.Username+" sent you a message", conv.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid":       message.UUID,
		"created_at": message.CreatedAt,
	})
}
