package controllers

import (
	"context"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/internal/pkg/cinetpay"
	"github.com/fantribe/fantribe/internal/pkg/env"
	"github.com/fantribe/fantribe/internal/pkg/payments"
)

// PaymentProcessor is the delegate contract for applying verified payments.
// All methods are idempotent keyed on the provider transaction id.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, in payments.PaymentInput) (*payments.ProcessResult, error)
	ProcessTip(ctx context.Context, in payments.TipInput) (*payments.ProcessResult, error)
	CheckTransaction(ctx context.Context, provider, providerTransactionID string) (bool, error)
}

var (
	paymentProcessor PaymentProcessor
	paymentChecker   *cinetpay.Client
)

// InitializePaymentControllers wires the payment handlers with their
// collaborators. Called once by the router; tests inject their own.
func InitializePaymentControllers(processor PaymentProcessor, checker *cinetpay.Client) {
	paymentProcessor = processor
	paymentChecker = checker
}

// HandlePaymentNotificationHealth answers the provider's health probe.
func HandlePaymentNotificationHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "API Notify URL is healthy and running",
	})
}

// HandlePaymentNotification receives CinetPay's server-to-server notification.
// Order matters: nothing in the payload is trusted before the HMAC check, and
// amount/currency always come from the provider's check API, never from the
// inbound fields.
func HandlePaymentNotification(c *fiber.Ctx) error {
	form, err := url.ParseQuery(string(c.Body()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	notification, err := cinetpay.ParseNotification(form)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_transaction_fields"})
	}

	token := c.Get("x-token")
	secret := env.GetEnv("CINETPAY_SECRET_KEY", "")
	if !cinetpay.VerifyNotificationSignature(notification.SignatureFields(), token, secret) {
		log.Warnf("[Payments] rejected notification for %s: invalid signature", notification.TransactionID)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	meta, err := cinetpay.ParseCustomMetadata(notification.Custom)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_metadata"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	check, err := paymentChecker.CheckPayment(ctx, notification.TransactionID)
	if err != nil {
		log.Errorf("[Payments] check API unreachable for %s: %v", notification.TransactionID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment_check_failed"})
	}

	if !check.Succeeded() {
		// A legitimate non-success payment state, not a system fault.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Payment verification failed",
			"code":    check.Code,
		})
	}

	amount, err := check.AmountValue()
	if err != nil {
		log.Errorf("[Payments] verified record for %s has invalid amount: %v", notification.TransactionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "processing_failed",
			"message": err.Error(),
		})
	}

	if meta.IsTip() {
		result, err := paymentProcessor.ProcessTip(ctx, payments.TipInput{
			Provider:              models.PaymentProviderCinetPay,
			ProviderTransactionID: notification.TransactionID,
			SenderID:              meta.EffectiveSenderID(),
			CreatorID:             meta.CreatorID,
			Amount:                amount,
			Currency:              check.CurrencyValue(),
			Message:               meta.TipMessage,
			Context:               meta.TipContext,
			PostID:                meta.PostID,
			ConversationID:        meta.ConversationID,
		})
		if err != nil {
			log.Errorf("[Payments] tip processing failed for %s: %v", notification.TransactionID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "processing_failed",
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Tip processed successfully",
			"result":  result,
		})
	}

	result, err := paymentProcessor.ProcessPayment(ctx, payments.PaymentInput{
		Provider:              models.PaymentProviderCinetPay,
		ProviderTransactionID: notification.TransactionID,
		CreatorID:             meta.CreatorID,
		SubscriberID:          meta.SubscriberID,
		Amount:                amount,
		Currency:              check.CurrencyValue(),
		PaymentMethod:         check.Data.PaymentMethod,
		StartedAt:             time.Now(),
	})
	if err != nil {
		log.Errorf("[Payments] payment processing failed for %s: %v", notification.TransactionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "processing_failed",
			"message": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Payment processed successfully",
		"result":  result,
	})
}
