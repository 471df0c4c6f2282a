package controllers

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/app/repository"
	"github.com/fantribe/fantribe/internal/pkg/usercontext"
)

const defaultFeedPageSize = 20

// encodeCursor packs a keyset position into an opaque token.
func encodeCursor(createdAt time.Time, id uint) string {
	raw := fmt.Sprintf("%d:%d", createdAt.UnixMicro(), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor unpacks a cursor token; empty or malformed tokens start from the top.
func decodeCursor(token string) repository.Cursor {
	if token == "" {
		return repository.Cursor{}
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return repository.Cursor{}
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return repository.Cursor{}
	}
	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return repository.Cursor{}
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return repository.Cursor{}
	}
	return repository.Cursor{CreatedAt: time.UnixMicro(micros), ID: uint(id)}
}

func feedPageSize(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", defaultFeedPageSize)
	if limit < 1 || limit > 50 {
		limit = defaultFeedPageSize
	}
	return limit
}

// renderPost projects a post for API output, hiding gated content bodies
// from viewers without an active subscription.
func renderPost(post *models.Post, viewerID uint, hasSubscription bool) fiber.Map {
	visible := post.IsVisibleTo(viewerID, hasSubscription)

	item := fiber.Map{
		"uuid":          post.UUID,
		"creator_id":    post.CreatorID,
		"visibility":    post.Visibility,
		"like_count":    post.LikeCount,
		"comment_count": post.CommentCount,
		"created_at":    post.CreatedAt,
		"locked":        !visible,
	}
	if post.Creator != nil {
		item["creator"] = fiber.Map{
			"id":         post.Creator.ID,
			"name":       post.Creator.Name,
			"handle":     post.Creator.Handle,
			"avatar_url": post.Creator.AvatarURL,
		}
	}
	if visible {
		item["content"] = post.Content
		if post.MediaURL != "" {
			item["media_url"] = post.MediaURL
		}
	}
	return item
}

// HandleGetFeed returns posts from creators the viewer subscribes to, newest first.
func HandleGetFeed(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	repos := repository.GetGlobalRepositories()
	subs, err := repos.Subscription.ListBySubscriber(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscriptions"})
	}

	now := time.Now()
	creatorIDs := make([]uint, 0, len(subs))
	for i := range subs {
		if subs[i].IsActive(now) {
			creatorIDs = append(creatorIDs, subs[i].CreatorID)
		}
	}

	limit := feedPageSize(c)
	posts, err := repos.Post.GetFeed(creatorIDs, decodeCursor(c.Query("cursor")), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load feed"})
	}

	items := make([]fiber.Map, 0, len(posts))
	for i := range posts {
		// Feed creators are all subscribed, so content is never gated here
		items = append(items, renderPost(&posts[i], userCtx.UserID, true))
	}

	response := fiber.Map{"posts": items}
	if len(posts) == limit {
		last := posts[len(posts)-1]
		response["next_cursor"] = encodeCursor(last.CreatedAt, last.ID)
	}
	return c.JSON(response)
}

// HandleGetDiscover returns recent public posts across all creators.
func HandleGetDiscover(c *fiber.Ctx) error {
	limit := feedPageSize(c)
	posts, err := repository.GetGlobalRepositories().Post.
		GetDiscover(decodeCursor(c.Query("cursor")), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load posts"})
	}

	viewerID := usercontext.GetUserID(c)
	items := make([]fiber.Map, 0, len(posts))
	for i := range posts {
		items = append(items, renderPost(&posts[i], viewerID, false))
	}

	response := fiber.Map{"posts": items}
	if len(posts) == limit {
		last := posts[len(posts)-1]
		response["next_cursor"] = encodeCursor(last.CreatedAt, last.ID)
	}
	return c.JSON(response)
}

// HandleGetCreatorPosts returns a creator's posts; gated bodies are locked
// for viewers without an active subscription.
func HandleGetCreatorPosts(c *fiber.Ctx) error {
	handle := c.Params("handle")
	repos := repository.GetGlobalRepositories()

	creator, err := repos.User.GetByHandle(handle)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Creator not found"})
	}

	userCtx := usercontext.GetUserContext(c)
	hasSubscription := false
	if userCtx.IsLoggedIn {
		if userCtx.UserID == creator.ID {
			hasSubscription = true
		} else if ok, err := repos.Subscription.HasActive(userCtx.UserID, creator.ID, time.Now()); err == nil {
			hasSubscription = ok
		}
	}

	limit := feedPageSize(c)
	posts, err := repos.Post.GetByCreatorID(creator.ID, decodeCursor(c.Query("cursor")), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load posts"})
	}

	items := make([]fiber.Map, 0, len(posts))
	for i := range posts {
		items = append(items, renderPost(&posts[i], userCtx.UserID, hasSubscription))
	}

	response := fiber.Map{"posts": items}
	if len(posts) == limit {
		last := posts[len(posts)-1]
		response["next_cursor"] = encodeCursor(last.CreatedAt, last.ID)
	}
	return c.JSON(response)
}
