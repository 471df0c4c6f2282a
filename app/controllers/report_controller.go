package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/app/repository"
	"github.com/fantribe/fantribe/internal/pkg/usercontext"
)

// HandleSubmitReport files a moderation report against a post, message or user.
func HandleSubmitReport(c *fiber.Ctx) error {
	var payload struct {
		TargetType string `json:"target_type"`
		TargetUUID string `json:"target_uuid"`
		Reason     string `json:"reason"`
		Details    string `json:"details"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if payload.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "A reason is required"})
	}
	if payload.Reason == "other" && len(payload.Details) < 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Please add a short explanation"})
	}

	repos := repository.GetGlobalRepositories()

	// Resolve the reported object to its numeric id
	var targetID uint
	switch payload.TargetType {
	case models.ReportTargetPost:
		post, err := repos.Post.GetByUUID(payload.TargetUUID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Post not found"})
		}
		targetID = post.ID
	case models.ReportTargetUser:
		user, err := repos.User.GetByHandle(payload.TargetUUID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		targetID = user.ID
	case models.ReportTargetMessage:
		conv, err := repos.Message.GetConversationByUUID(payload.TargetUUID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Conversation not found"})
		}
		targetID = conv.ID
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Unknown target type"})
	}

	userCtx := usercontext.GetUserContext(c)
	var reporterID *uint
	if userCtx.IsLoggedIn && userCtx.UserID > 0 {
		rid := userCtx.UserID
		reporterID = &rid
	}
	ipv4, ipv6 := GetClientIP(c)

	report := models.Report{
		TargetType:   payload.TargetType,
		TargetID:     targetID,
		ReporterID:   reporterID,
		Reason:       payload.Reason,
		Details:      payload.Details,
		Status:       models.ReportStatusOpen,
		ReporterIPv4: ipv4,
		ReporterIPv6: ipv6,
	}
	if err := repos.Report.Create(&report); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save report"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Thanks, your report was submitted."})
}
