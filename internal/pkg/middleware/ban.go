package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/internal/pkg/database"
	"github.com/fantribe/fantribe/internal/pkg/usercontext"
)

// BanEnforcementMiddleware blocks requests from banned accounts.
// Anonymous requests pass through; the ban check only applies once a session exists.
func BanEnforcementMiddleware(c *fiber.Ctx) error {
	ctx := usercontext.GetUserContext(c)
	if !ctx.IsLoggedIn {
		return c.Next()
	}

	db := database.GetDB()
	if db == nil {
		log.Warn("ban middleware: database unavailable, letting request pass")
		return c.Next()
	}

	ban, err := models.FindActiveBan(db, ctx.UserID, time.Now())
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("ban lookup failed for user %d: %v", ctx.UserID, err)
		}
		return c.Next()
	}

	resp := fiber.Map{
		"error":   "account_banned",
		"message": "Your account is suspended",
		"reason":  ban.Reason,
	}
	if ban.ExpiresAt != nil {
		resp["expires_at"] = ban.ExpiresAt
	}
	return c.Status(fiber.StatusForbidden).JSON(resp)
}
