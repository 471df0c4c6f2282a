package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fantribe/fantribe/app/repository"
)

// HandleListNotifications returns the user's notifications, newest first.
func HandleListNotifications(c *fiber.Ctx) error {
	userCtx := mustUserContext(c)
	if userCtx == nil {
		return nil
	}

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	repo := repository.GetGlobalRepositories().Notification
	notifications, err := repo.ListByUser(userCtx.UserID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load notifications"})
	}

	unread, err := repo.CountUnread(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count notifications"})
	}

	items := make([]fiber.Map, 0, len(notifications))
	for i := range notifications {
		items = append(items, fiber.Map{
			"id":           notifications[i].ID,
			"type":         notifications[i].Type,
			"content":      notifications[i].Content,
			"is_read":      notifications[i].IsRead,
			"reference_id": notifications[i].ReferenceID,
			"created_at":   notifications[i].CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"notifications": items, "unread_count": unread})
}

// HandleMarkNotificationsRead marks all of the user's notifications as read.
func HandleMarkNotificationsRead(c *fiber.Ctx) error {
	userCtx := mustUserContext(c)
	if userCtx == nil {
		return nil
	}

	if err := repository.GetGlobalRepositories().Notification.MarkAllRead(userCtx.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update notifications"})
	}
	return c.JSON(fiber.Map{"message": "All notifications marked read"})
}
