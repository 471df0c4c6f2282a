package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func returnRequest(transactionID string) *http.Request {
	form := url.Values{}
	if transactionID != "" {
		form.Set("transaction_id", transactionID)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/return", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// crashingProcessor blows up on the marker lookup, standing in for any
// unclassified failure inside the handler.
type crashingProcessor struct {
	fakeProcessor
}

func (c *crashingProcessor) CheckTransaction(_ context.Context, _, _ string) (bool, error) {
	panic("storage gone")
}

func TestPaymentReturn_UnexpectedFailureRedirects(t *testing.T) {
	app, _ := newPaymentTestApp(t, &crashingProcessor{})

	resp, err := app.Test(returnRequest("tx1"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/payment/cancelled?reason=unexpected_error", resp.Header.Get("Location"))
}

func TestPaymentReturn_MissingTransaction(t *testing.T) {
	app, _ := newPaymentTestApp(t, &fakeProcessor{})

	resp, err := app.Test(returnRequest(""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/payment/cancelled?reason=missing_transaction", resp.Header.Get("Location"))
}

func TestPaymentReturn_FastPathSkipsProviderCheck(t *testing.T) {
	defer gock.Off()
	// No mock registered: any outbound call would fail the test via gock.

	processor := &fakeProcessor{existing: map[string]bool{"tx1": true}}
	app, _ := newPaymentTestApp(t, processor)

	resp, err := app.Test(returnRequest("tx1"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/payment/merci?transaction=tx1", resp.Header.Get("Location"))
	assert.Empty(t, gock.Pending())
	assert.Empty(t, processor.payments)
}

func TestPaymentReturn_ConfigurationError(t *testing.T) {
	processor := &fakeProcessor{}
	app, checker := newPaymentTestApp(t, processor)
	checker.APIKey = ""

	resp, err := app.Test(returnRequest("tx1"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/payment/cancelled?reason=configuration_error", resp.Header.Get("Location"))
}

func TestPaymentReturn_ProviderUnreachable(t *testing.T) {
	defer gock.Off()
	gock.New("https://api-checkout.cinetpay.example").
		Post("/v2/payment/check").
		Reply(502).
		BodyString("bad gateway")

	app, _ := newPaymentTestApp(t, &fakeProcessor{})

	resp, err := app.Test(returnRequest("tx1"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/payment/cancelled?reason=payment_check_failed", resp.Header.Get("Location"))
	assert.True(t, gock.IsDone())
}

func TestPaymentReturn_PaymentFailed(t *testing.T) {
	defer gock.Off()
	gock.New("https://api-checkout.cinetpay.example").
		Post("/v2/payment/check").
		Reply(200).
		JSON(map[string]any{"code": "627", "message": "TRANSACTION_CANCEL"})

	app, _ := newPaymentTestApp(t, &fakeProcessor{})

	resp, err := app.Test(returnRequest("tx1"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/payment/cancelled?reason=payment_failed&code=627", resp.Header.Get("Location"))
	assert.True(t, gock.IsDone())
}

func TestPaymentReturn_SuccessWithBestEffortProcessing(t *testing.T) {
	defer gock.Off()
	gock.New("https://api-checkout.cinetpay.example").
		Post("/v2/payment/check").
		Reply(200).
		JSON(map[string]any{
			"code":    "00",
			"message": "SUCCES",
			"data": map[string]string{
				"amount":         "500",
				"currency":       "XOF",
				"payment_method": "OM",
				"metadata":       `{"creatorId":"7","subscriberId":"3"}`,
			},
		})

	processor := &fakeProcessor{}
	app, _ := newPaymentTestApp(t, processor)

	resp, err := app.Test(returnRequest("tx1"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/payment/merci?transaction=tx1", resp.Header.Get("Location"))

	require.Len(t, processor.payments, 1)
	assert.Equal(t, "7", processor.payments[0].CreatorID)
	assert.Equal(t, "3", processor.payments[0].SubscriberID)
	assert.Equal(t, int64(500), processor.payments[0].Amount)
	assert.True(t, gock.IsDone())
}

func TestPaymentReturn_BestEffortFailureStillRedirectsToSuccess(t *testing.T) {
	defer gock.Off()
	gock.New("https://api-checkout.cinetpay.example").
		Post("/v2/payment/check").
		Reply(200).
		JSON(map[string]any{
			"code": "00",
			"data": map[string]string{"amount": "500", "currency": "XOF"},
		})

	processor := &fakeProcessor{err: errors.New("delegate down")}
	app, _ := newPaymentTestApp(t, processor)

	resp, err := app.Test(returnRequest("tx1"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	// The redirect proceeds regardless: authoritative processing is expected
	// to happen (or have happened) via the webhook.
	assert.Equal(t, "/payment/merci?transaction=tx1", resp.Header.Get("Location"))
	assert.True(t, gock.IsDone())
}
