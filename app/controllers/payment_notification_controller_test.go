package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantribe/fantribe/internal/pkg/cinetpay"
	"github.com/fantribe/fantribe/internal/pkg/env"
	"github.com/fantribe/fantribe/internal/pkg/payments"
)

const testSecret = "webhook-secret"

type fakeProcessor struct {
	payments []payments.PaymentInput
	tips     []payments.TipInput
	existing map[string]bool
	err      error
}

func (f *fakeProcessor) ProcessPayment(_ context.Context, in payments.PaymentInput) (*payments.ProcessResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.payments = append(f.payments, in)
	return &payments.ProcessResult{AlreadyProcessed: false}, nil
}

func (f *fakeProcessor) ProcessTip(_ context.Context, in payments.TipInput) (*payments.ProcessResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tips = append(f.tips, in)
	return &payments.ProcessResult{AlreadyProcessed: false}, nil
}

func (f *fakeProcessor) CheckTransaction(_ context.Context, _, providerTransactionID string) (bool, error) {
	return f.existing[providerTransactionID], nil
}

func newPaymentTestApp(t *testing.T, processor PaymentProcessor) (*fiber.App, *cinetpay.Client) {
	t.Helper()

	env.Env = map[string]string{"CINETPAY_SECRET_KEY": testSecret}
	t.Cleanup(func() { env.Env = nil })

	checker := &cinetpay.Client{
		APIKey:     "test-key",
		SiteID:     "12345",
		APIBaseURL: "https://api-checkout.cinetpay.example",
		HTTPClient: &http.Client{},
	}
	gock.InterceptClient(checker.HTTPClient)
	InitializePaymentControllers(processor, checker)

	app := fiber.New()
	app.Get("/api/notification", HandlePaymentNotificationHealth)
	app.Post("/api/notification", HandlePaymentNotification)
	app.Post("/api/return", HandlePaymentReturn)
	return app, checker
}

func notificationForm(custom string) url.Values {
	form := url.Values{}
	form.Set("cpm_site_id", "12345")
	form.Set("cpm_trans_id", "tx1")
	form.Set("cpm_trans_date", "2025-06-01 10:00:00")
	form.Set("cpm_amount", "999999") // inbound amount is never trusted
	form.Set("cpm_currency", "EUR")  // inbound currency is never trusted
	form.Set("cpm_payment_config", "SINGLE")
	form.Set("cpm_page_action", "PAYMENT")
	if custom != "" {
		form.Set("cpm_custom", custom)
	}
	return form
}

func signedRequest(form url.Values) *http.Request {
	fields := map[string]string{}
	for key := range form {
		fields[key] = form.Get(key)
	}
	token := cinetpay.ComputeNotificationSignature(fields, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/notification", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-token", token)
	return req
}

func mockCheckSuccess() {
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
				"payment_date":   "2025-06-01 10:00:00",
			},
		})
}

func TestPaymentNotification_Health(t *testing.T) {
	app, _ := newPaymentTestApp(t, &fakeProcessor{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/notification", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "API Notify URL is healthy and running")
}

func TestPaymentNotification_MissingIdentifiers(t *testing.T) {
	processor := &fakeProcessor{}
	app, _ := newPaymentTestApp(t, processor)

	form := notificationForm(`{"creatorId":"7","subscriberId":"3"}`)
	form.Del("cpm_trans_id")
	req := httptest.NewRequest(http.MethodPost, "/api/notification", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, processor.payments)
	assert.Empty(t, processor.tips)
}

func TestPaymentNotification_InvalidSignature(t *testing.T) {
	processor := &fakeProcessor{}
	app, _ := newPaymentTestApp(t, processor)

	form := notificationForm(`{"creatorId":"7","subscriberId":"3"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/notification", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-token", "deadbeef")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, processor.payments)
}

func TestPaymentNotification_InvalidMetadata(t *testing.T) {
	tests := []struct {
		name   string
		custom string
	}{
		{name: "Absent", custom: ""},
		{name: "NotJSON", custom: "not json"},
		{name: "SchemaViolation", custom: `{"creatorId":"7"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := &fakeProcessor{}
			app, _ := newPaymentTestApp(t, processor)

			resp, err := app.Test(signedRequest(notificationForm(tt.custom)))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Empty(t, processor.payments)
			assert.Empty(t, processor.tips)
		})
	}
}

func TestPaymentNotification_ProviderUnreachable(t *testing.T) {
	defer gock.Off()
	gock.New("https://api-checkout.cinetpay.example").
		Post("/v2/payment/check").
		Reply(500).
		BodyString("boom")

	processor := &fakeProcessor{}
	app, _ := newPaymentTestApp(t, processor)

	resp, err := app.Test(signedRequest(notificationForm(`{"creatorId":"7","subscriberId":"3"}`)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Empty(t, processor.payments)
	assert.True(t, gock.IsDone())
}

func TestPaymentNotification_VerificationFailed(t *testing.T) {
	defer gock.Off()
	gock.New("https://api-checkout.cinetpay.example").
		Post("/v2/payment/check").
		Reply(200).
		JSON(map[string]any{"code": "627", "message": "TRANSACTION_CANCEL"})

	processor := &fakeProcessor{}
	app, _ := newPaymentTestApp(t, processor)

	resp, err := app.Test(signedRequest(notificationForm(`{"creatorId":"7","subscriberId":"3"}`)))
	require.NoError(t, err)
	// A failed payment is a legitimate state, not a system error.
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Payment verification failed")
	assert.Empty(t, processor.payments)
	assert.True(t, gock.IsDone())
}

func TestPaymentNotification_TipEndToEnd(t *testing.T) {
	defer gock.Off()
	mockCheckSuccess()

	processor := &fakeProcessor{}
	app, _ := newPaymentTestApp(t, processor)

	custom := `{"creatorId":"c1","subscriberId":"s1","type":"tip","senderId":"s1","tipMessage":"bravo"}`
	resp, err := app.Test(signedRequest(notificationForm(custom)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Message string                 `json:"message"`
		Result  payments.ProcessResult `json:"result"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Tip processed successfully", body.Message)
	assert.False(t, body.Result.AlreadyProcessed)

	require.Len(t, processor.tips, 1)
	tip := processor.tips[0]
	assert.Equal(t, "s1", tip.SenderID)
	assert.Equal(t, "c1", tip.CreatorID)
	assert.Equal(t, "bravo", tip.Message)
	// Amount and currency come from the verified record, not the inbound
	// payload (which claimed 999999 EUR).
	assert.Equal(t, int64(500), tip.Amount)
	assert.Equal(t, "XOF", tip.Currency)
	assert.True(t, gock.IsDone())
}

func TestPaymentNotification_SubscriptionAmountAuthority(t *testing.T) {
	defer gock.Off()
	mockCheckSuccess()

	processor := &fakeProcessor{}
	app, _ := newPaymentTestApp(t, processor)

	resp, err := app.Test(signedRequest(notificationForm(`{"creatorId":"7","subscriberId":"3"}`)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, processor.payments, 1)
	payment := processor.payments[0]
	assert.Equal(t, "7", payment.CreatorID)
	assert.Equal(t, "3", payment.SubscriberID)
	assert.Equal(t, int64(500), payment.Amount)
	assert.Equal(t, "XOF", payment.Currency)
	assert.Equal(t, "OM", payment.PaymentMethod)
	assert.False(t, payment.StartedAt.IsZero())
	assert.True(t, gock.IsDone())
}
