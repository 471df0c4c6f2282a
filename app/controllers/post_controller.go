package controllers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/app/repository"
	"github.com/fantribe/fantribe/internal/pkg/database"
	"github.com/fantribe/fantribe/internal/pkg/jobqueue"
	"github.com/fantribe/fantribe/internal/pkg/usercontext"
)

// HandleCreatePost creates a post on the authenticated creator's profile.
func HandleCreatePost(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}
	if !userCtx.IsCreator {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "creator account required"})
	}

	var payload struct {
		Content    string `json:"content" validate:"required_without=MediaID,max=5000"`
		MediaID    string `json:"media_id"`
		MediaURL   string `json:"media_url"`
		Visibility string `json:"visibility" validate:"omitempty,oneof=public subscribers"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validator.New().Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if payload.Visibility == "" {
		payload.Visibility = models.PostVisibilityPublic
	}

	post := models.Post{
		UUID:       uuid.New().String(),
		CreatorID:  userCtx.UserID,
		Content:    payload.Content,
		MediaID:    payload.MediaID,
		MediaURL:   payload.MediaURL,
		Visibility: payload.Visibility,
	}
	if err := repository.GetGlobalRepositories().Post.Create(&post); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create post"})
	}

	// Media uploads finish encoding asynchronously; the playback URL is
	// published on the post once the provider reports the video ready.
	if post.MediaID != "" && post.MediaURL == "" {
		if err := jobqueue.EnqueueMediaStatusCheck(post.MediaID, post.UUID); err != nil {
			log.Errorf("failed to enqueue media status check for %s: %v", post.MediaID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid":       post.UUID,
		"visibility": post.Visibility,
		"created_at": post.CreatedAt,
	})
}

// HandleGetPost returns a single post; gated bodies stay locked for
// viewers without an active subscription.
func HandleGetPost(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	post, err := repos.Post.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load post"})
	}

	userCtx := usercontext.GetUserContext(c)
	hasSubscription := false
	if userCtx.IsLoggedIn && userCtx.UserID != post.CreatorID {
		if ok, err := repos.Subscription.HasActive(userCtx.UserID, post.CreatorID, time.Now()); err == nil {
			hasSubscription = ok
		}
	}

	return c.JSON(renderPost(post, userCtx.UserID, hasSubscription))
}

// HandleDeletePost removes the creator's own post.
func HandleDeletePost(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	repos := repository.GetGlobalRepositories()
	post, err := repos.Post.GetByUUID(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Post not found"})
	}
	if post.CreatorID != userCtx.UserID && !userCtx.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Not your post"})
	}

	if err := repos.Post.Delete(post.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete post"})
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// HandleToggleLike likes a post, or removes the like if already present.
func HandleToggleLike(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	post, err := repository.GetGlobalRepositories().Post.GetByUUID(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Post not found"})
	}

	if err := models.ToggleLike(database.GetDB(), userCtx.UserID, post.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to toggle like"})
	}

	return c.JSON(fiber.Map{"message": "OK"})
}

// HandleGetComments lists comments on a post, oldest first.
func HandleGetComments(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	post, err := repos.Post.GetByUUID(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Post not found"})
	}

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	comments, err := repos.Post.GetComments(post.ID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load comments"})
	}

	items := make([]fiber.Map, 0, len(comments))
	for i := range comments {
		items = append(items, fiber.Map{
			"id":         comments[i].ID,
			"content":    comments[i].Content,
			"created_at": comments[i].CreatedAt,
			"user": fiber.Map{
				"id":         comments[i].User.ID,
				"name":       comments[i].User.Name,
				"handle":     comments[i].User.Handle,
				"avatar_url": comments[i].User.AvatarURL,
			},
		})
	}
	return c.JSON(fiber.Map{"comments": items})
}

// HandleCreateComment adds a comment to a post.
func HandleCreateComment(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	repos := repository.GetGlobalRepositories()
	post, err := repos.Post.GetByUUID(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Post not found"})
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&payload); err != nil || payload.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Comment content required"})
	}

	comment := models.Comment{
		UserID:  userCtx.UserID,
		PostID:  post.ID,
		Content: payload.Content,
	}
	if err := repos.Post.CreateComment(&comment); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create comment"})
	}

	// Notify the creator unless they commented on their own post
	if post.CreatorID != userCtx.UserID {
		_ = models.CreateNotification(database.GetDB(), post.CreatorID,
			models.NotificationTypeComment, userCtx.Username+" commented on your post", post.ID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         comment.ID,
		"content":    comment.Content,
		"created_at": comment.CreatedAt,
	})
}
