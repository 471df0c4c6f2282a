package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/app/repository"
	"github.com/fantribe/fantribe/internal/pkg/session"
	"github.com/fantribe/fantribe/internal/pkg/usercontext"
)

// HandleGetUserAccount returns account information for the authenticated user.
func HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	response := fiber.Map{
		"id":         account.ID,
		"name":       account.Name,
		"handle":     account.Handle,
		"email":      account.Email,
		"bio":        account.Bio,
		"avatar_url": account.AvatarURL,
		"is_creator": account.IsCreator,
		"created_at": account.CreatedAt,
	}
	if account.IsCreator {
		response["subscription_price"] = account.SubscriptionPrice
		response["currency"] = account.Currency
	}

	return c.JSON(response)
}

// HandleGetCreatorProfile returns the public profile of a creator by handle.
func HandleGetCreatorProfile(c *fiber.Ctx) error {
	handle := c.Params("handle")
	if handle == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Missing handle"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	creator, err := repo.GetByHandle(handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Creator not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load creator"})
	}
	if !creator.IsCreator || creator.Status != models.STATUS_ACTIVE {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Creator not found"})
	}

	stats, err := repo.GetStatsByUserID(creator.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load statistics"})
	}

	response := fiber.Map{
		"id":                 creator.ID,
		"name":               creator.Name,
		"handle":             creator.Handle,
		"bio":                creator.Bio,
		"avatar_url":         creator.AvatarURL,
		"subscription_price": creator.SubscriptionPrice,
		"currency":           creator.Currency,
		"post_count":         stats.PostCount,
		"subscriber_count":   stats.SubscriberCount,
	}

	// Tell a logged-in viewer whether they already subscribe
	userCtx := usercontext.GetUserContext(c)
	if userCtx.IsLoggedIn {
		subscribed, err := repository.GetGlobalFactory().GetSubscriptionRepository().
			HasActive(userCtx.UserID, creator.ID, time.Now())
		if err == nil {
			response["is_subscribed"] = subscribed
		}
	}

	return c.JSON(response)
}

// HandleUpdateProfile updates the authenticated user's editable profile fields.
func HandleUpdateProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	var payload struct {
		Name      string `json:"name"`
		Bio       string `json:"bio"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	if payload.Name != "" {
		user.Name = payload.Name
	}
	user.Bio = payload.Bio
	if payload.AvatarURL != "" {
		user.AvatarURL = payload.AvatarURL
	}

	if err := user.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repo.Update(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"message": "Profile updated"})
}

// HandleBecomeCreator upgrades the account to a creator profile with a
// monthly subscription price in whole currency units.
func HandleBecomeCreator(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	var payload struct {
		SubscriptionPrice int64  `json:"subscription_price"`
		Currency          string `json:"currency"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if payload.SubscriptionPrice <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Subscription price must be positive"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	user.IsCreator = true
	user.SubscriptionPrice = payload.SubscriptionPrice
	if payload.Currency != "" {
		user.Currency = payload.Currency
	}
	if err := repo.Update(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update account"})
	}

	_ = session.SetSessionValue(c, usercontext.KeyIsCreator, "1")

	return c.JSON(fiber.Map{
		"message":            "You are now a creator",
		"subscription_price": user.SubscriptionPrice,
		"currency":           user.Currency,
	})
}

// HandleListCreators returns a paginated discovery listing of creators.
func HandleListCreators(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	creators, err := repository.GetGlobalFactory().GetUserRepository().ListCreators(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load creators"})
	}

	items := make([]fiber.Map, 0, len(creators))
	for _, creator := range creators {
		items = append(items, fiber.Map{
			"id":                 creator.ID,
			"name":               creator.Name,
			"handle":             creator.Handle,
			"bio":                creator.Bio,
			"avatar_url":         creator.AvatarURL,
			"subscription_price": creator.SubscriptionPrice,
			"currency":           creator.Currency,
		})
	}

	return c.JSON(fiber.Map{"creators": items, "offset": offset, "limit": limit})
}
