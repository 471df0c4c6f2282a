package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/internal/pkg/cinetpay"
	"github.com/fantribe/fantribe/internal/pkg/payments"
)

const (
	paymentSuccessPath   = "/payment/merci"
	paymentCancelledPath = "/payment/cancelled"
)

// HandlePaymentReturn receives the browser redirect after checkout. It is a
// user-facing surface: every outcome is a redirect, never an API error. The
// webhook is the authoritative push; this handler only short-circuits on the
// recorded marker or makes a best-effort, idempotent processing attempt.
func HandlePaymentReturn(c *fiber.Ctx) (err error) {
	// Even an unclassified failure must redirect; a bare 500 would strand
	// the returning browser on a blank error page.
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Payments] unexpected failure in return handler: %v", r)
			err = c.Redirect(paymentCancelledPath+"?reason=unexpected_error", fiber.StatusFound)
		}
	}()

	transactionID := strings.TrimSpace(c.FormValue("transaction_id"))
	if transactionID == "" {
		transactionID = strings.TrimSpace(c.Query("transaction_id"))
	}
	if transactionID == "" {
		return c.Redirect(paymentCancelledPath+"?reason=missing_transaction", fiber.StatusFound)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Fast path: the webhook usually lands first. A recorded marker means the
	// effect is already applied and the provider round-trip can be skipped.
	exists, err := paymentProcessor.CheckTransaction(ctx, models.PaymentProviderCinetPay, transactionID)
	if err != nil {
		log.Errorf("[Payments] transaction lookup failed for %s: %v", transactionID, err)
	} else if exists {
		return c.Redirect(paymentSuccessPath+"?transaction="+transactionID, fiber.StatusFound)
	}

	if paymentChecker == nil || !paymentChecker.Configured() {
		log.Error("[Payments] return handler has no configured provider client")
		return c.Redirect(paymentCancelledPath+"?reason=configuration_error", fiber.StatusFound)
	}

	check, err := paymentChecker.CheckPayment(ctx, transactionID)
	if err != nil {
		log.Errorf("[Payments] check API unreachable for %s: %v", transactionID, err)
		return c.Redirect(paymentCancelledPath+"?reason=payment_check_failed", fiber.StatusFound)
	}

	if !check.Succeeded() {
		return c.Redirect(paymentCancelledPath+"?reason=payment_failed&code="+check.Code, fiber.StatusFound)
	}

	// Best-effort processing with whatever metadata the check response itself
	// carries. Weaker than the webhook path, but processing is idempotent so a
	// duplicate or partial call is safe; failure never blocks the redirect.
	processReturnedPayment(ctx, transactionID, check)

	return c.Redirect(paymentSuccessPath+"?transaction="+transactionID, fiber.StatusFound)
}

func processReturnedPayment(ctx context.Context, transactionID string, check *cinetpay.CheckResult) {
	amount, err := check.AmountValue()
	if err != nil {
		log.Errorf("[Payments] best-effort processing skipped for %s: %v", transactionID, err)
		return
	}

	creatorID, subscriberID := "", ""
	if meta, err := cinetpay.ParseCustomMetadata(check.Data.Metadata); err == nil {
		creatorID = meta.CreatorID
		subscriberID = meta.SubscriberID
	}

	if _, err := paymentProcessor.ProcessPayment(ctx, payments.PaymentInput{
		Provider:              models.PaymentProviderCinetPay,
		ProviderTransactionID: transactionID,
		CreatorID:             creatorID,
		SubscriberID:          subscriberID,
		Amount:                amount,
		Currency:              check.CurrencyValue(),
		PaymentMethod:         check.Data.PaymentMethod,
		StartedAt:             time.Now(),
	}); err != nil {
		log.Errorf("[Payments] best-effort processing failed for %s: %v", transactionID, err)
	}
}

// HandlePaymentThanks renders the success landing page.
func HandlePaymentThanks(c *fiber.Ctx) error {
	return c.Render("payment/merci", fiber.Map{
		"Transaction": c.Query("transaction"),
	})
}

// HandlePaymentCancelled renders the cancellation landing page.
func HandlePaymentCancelled(c *fiber.Ctx) error {
	return c.Render("payment/cancelled", fiber.Map{
		"Reason": c.Query("reason"),
		"Code":   c.Query("code"),
	})
}
