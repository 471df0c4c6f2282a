package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/fantribe/fantribe/app/repository"
	"github.com/fantribe/fantribe/internal/pkg/cinetpay"
	"github.com/fantribe/fantribe/internal/pkg/env"
	"github.com/fantribe/fantribe/internal/pkg/usercontext"
)

// PaymentInitiator starts a hosted-checkout session with the provider.
type PaymentInitiator interface {
	InitPayment(ctx context.Context, transactionID string, amount int64, currency, description, metadata, notifyURL, returnURL string) (*cinetpay.InitResult, error)
	Configured() bool
}

var paymentInitiator PaymentInitiator

// InitializeCheckoutControllers wires the provider client used for checkout.
func InitializeCheckoutControllers(initiator PaymentInitiator) {
	paymentInitiator = initiator
}

func checkoutURLs(c *fiber.Ctx) (notifyURL, returnURL string) {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = c.BaseURL()
	}
	return base + "/api/notification", base + "/api/return"
}

// HandleSubscriptionCheckout starts the payment flow for a monthly
// subscription to a creator. The browser is sent to the returned payment URL.
func HandleSubscriptionCheckout(c *fiber.Ctx) error {
	userCtx := mustUserContext(c)
	if userCtx == nil {
		return nil
	}

	if paymentInitiator == nil || !paymentInitiator.Configured() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "configuration_error", "message": "Payments are not configured"})
	}

	repos := repository.GetGlobalRepositories()
	creator, err := repos.User.GetByHandle(c.Params("handle"))
	if err != nil || !creator.IsCreator {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Creator not found"})
	}
	if creator.ID == userCtx.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Cannot subscribe to yourself"})
	}
	if creator.SubscriptionPrice <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Creator has no subscription price"})
	}

	metadata, err := json.Marshal(cinetpay.CustomMetadata{
		CreatorID:    strconv.FormatUint(uint64(creator.ID), 10),
		SubscriberID: strconv.FormatUint(uint64(userCtx.UserID), 10),
		Type:         "subscription",
		Action:       "subscribe",
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to build checkout"})
	}

	transactionID := uuid.New().String()
	notifyURL, returnURL := checkoutURLs(c)
	description := fmt.Sprintf("Monthly subscription to %s", creator.Handle)

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	result, err := paymentInitiator.InitPayment(ctx, transactionID,
		creator.SubscriptionPrice, creator.Currency, description,
		string(metadata), notifyURL, returnURL)
	if err != nil {
		log.Errorf("subscription checkout init failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment_init_failed", "message": "Payment provider unreachable"})
	}
	if result.Code != "201" && result.Code != cinetpay.StatusSuccess {
		log.Warnf("subscription checkout refused: code=%s message=%s", result.Code, result.Message)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment_init_refused", "code": result.Code})
	}

	return c.JSON(fiber.Map{
		"transaction_id": transactionID,
		"payment_url":    result.Data.PaymentURL,
		"amount":         creator.SubscriptionPrice,
		"currency":       creator.Currency,
	})
}

// HandleTipCheckout starts the payment flow for a one-off tip to a creator,
// optionally attached to a post or a conversation.
func HandleTipCheckout(c *fiber.Ctx) error {
	userCtx := mustUserContext(c)
	if userCtx == nil {
		return nil
	}

	if paymentInitiator == nil || !paymentInitiator.Configured() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "configuration_error", "message": "Payments are not configured"})
	}

	var payload struct {
		CreatorHandle    string `json:"creator_handle"`
		Amount           int64  `json:"amount"`
		Message          string `json:"message"`
		PostUUID         string `json:"post_uuid"`
		ConversationUUID string `json:"conversation_uuid"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if payload.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Tip amount must be positive"})
	}

	repos := repository.GetGlobalRepositories()
	creator, err := repos.User.GetByHandle(payload.CreatorHandle)
	if err != nil || !creator.IsCreator {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Creator not found"})
	}
	if creator.ID == userCtx.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Cannot tip yourself"})
	}

	meta := cinetpay.CustomMetadata{
		CreatorID:    strconv.FormatUint(uint64(creator.ID), 10),
		SubscriberID: strconv.FormatUint(uint64(userCtx.UserID), 10),
		Type:         "tip",
		SenderID:     strconv.FormatUint(uint64(userCtx.UserID), 10),
		TipMessage:   payload.Message,
	}
	if payload.PostUUID != "" {
		post, err := repos.Post.GetByUUID(payload.PostUUID)
		if err != nil || post.CreatorID != creator.ID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Post does not belong to this creator"})
		}
		meta.TipContext = "post"
		meta.PostID = strconv.FormatUint(uint64(post.ID), 10)
	} else if payload.ConversationUUID != "" {
		conv, err := repos.Message.GetConversationByUUID(payload.ConversationUUID)
		if err != nil || (conv.FanID != userCtx.UserID && conv.CreatorID != userCtx.UserID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Conversation not found"})
		}
		meta.TipContext = "message"
		meta.ConversationID = strconv.FormatUint(uint64(conv.ID), 10)
	}

	metadata, err := json.Marshal(meta)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to build checkout"})
	}

	transactionID := uuid.New().String()
	notifyURL, returnURL := checkoutURLs(c)
	description := fmt.Sprintf("Tip for %s", creator.Handle)

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	result, err := paymentInitiator.InitPayment(ctx, transactionID,
		payload.Amount, creator.Currency, description,
		string(metadata), notifyURL, returnURL)
	if err != nil {
		log.Errorf("tip checkout init failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment_init_failed", "message": "Payment provider unreachable"})
	}
	if result.Code != "201" && result.Code != cinetpay.StatusSuccess {
		log.Warnf("tip checkout refused: code=%s message=%s", result.Code, result.Message)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment_init_refused", "code": result.Code})
	}

	return c.JSON(fiber.Map{
		"transaction_id": transactionID,
		"payment_url":    result.Data.PaymentURL,
		"amount":         payload.Amount,
		"currency":       creator.Currency,
	})
}

// HandleListMySubscriptions lists the viewer's subscriptions with state.
func HandleListMySubscriptions(c *fiber.Ctx) error {
	userCtx := mustUserContext(c)
	if userCtx == nil {
		return nil
	}

	subs, err := repository.GetGlobalRepositories().Subscription.
		ListBySubscriber(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscriptions"})
	}

	now := time.Now()
	items := make([]fiber.Map, 0, len(subs))
	for i := range subs {
		sub := &subs[i]
		item := fiber.Map{
			"status":             sub.Status,
			"active":             sub.IsActive(now),
			"price":              sub.Price,
			"currency":           sub.Currency,
			"current_period_end": sub.CurrentPeriodEnd,
		}
		if sub.Creator != nil {
			item["creator"] = fiber.Map{
				"id":         sub.Creator.ID,
				"name":       sub.Creator.Name,
				"handle":     sub.Creator.Handle,
				"avatar_url": sub.Creator.AvatarURL,
			}
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"subscriptions": items})
}

// mustUserContext writes a 401 and returns nil when the viewer is anonymous.
func mustUserContext(c *fiber.Ctx) *usercontext.UserContext {
	ctx := usercontext.GetUserContext(c)
	if !ctx.IsLoggedIn {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
		return nil
	}
	return &ctx
}
