package cinetpay

import (
	"context"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{
		APIKey:     "test-key",
		SiteID:     "12345",
		APIBaseURL: "https://api-checkout.cinetpay.example",
		HTTPClient: &http.Client{},
	}
}

func TestCheckPayment(t *testing.T) {
	tests := []struct {
		name         string
		mockResponse func()
		wantErr      bool
		wantCode     string
	}{
		{
			name: "Success",
			mockResponse: func() {
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
			},
			wantCode: "00",
		},
		{
			name: "PaymentNotCompleted",
			mockResponse: func() {
				gock.New("https://api-checkout.cinetpay.example").
					Post("/v2/payment/check").
					Reply(200).
					JSON(map[string]any{"code": "627", "message": "TRANSACTION_CANCEL"})
			},
			wantCode: "627",
		},
		{
			name: "UpstreamFailure",
			mockResponse: func() {
				gock.New("https://api-checkout.cinetpay.example").
					Post("/v2/payment/check").
					Reply(500).
					BodyString("internal error")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()
			tt.mockResponse()

			client := newTestClient()
			gock.InterceptClient(client.HTTPClient)

			result, err := client.CheckPayment(context.Background(), "tx1")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCode, result.Code)
				assert.Equal(t, tt.wantCode == StatusSuccess, result.Succeeded())
			}
			assert.True(t, gock.IsDone())
		})
	}
}

func TestCheckPayment_Unconfigured(t *testing.T) {
	client := &Client{HTTPClient: &http.Client{}}
	_, err := client.CheckPayment(context.Background(), "tx1")
	assert.Error(t, err)
}

func TestCheckResult_AmountValue(t *testing.T) {
	r := &CheckResult{Code: StatusSuccess, Data: CheckData{Amount: "500", Currency: "XOF"}}
	v, err := r.AmountValue()
	require.NoError(t, err)
	assert.Equal(t, int64(500), v)

	r.Data.Amount = "nonsense"
	_, err = r.AmountValue()
	assert.Error(t, err)

	r.Data.Amount = ""
	_, err = r.AmountValue()
	assert.Error(t, err)
}

func TestCheckResult_CurrencyValue(t *testing.T) {
	r := &CheckResult{Data: CheckData{Currency: ""}}
	assert.Equal(t, DefaultCurrency, r.CurrencyValue())

	r.Data.Currency = "XAF"
	assert.Equal(t, "XAF", r.CurrencyValue())
}

func TestInitPayment(t *testing.T) {
	defer gock.Off()
	gock.New("https://api-checkout.cinetpay.example").
		Post("/v2/payment").
		Reply(200).
		JSON(map[string]any{
			"code":    "201",
			"message": "CREATED",
			"data": map[string]string{
				"payment_token": "tok",
				"payment_url":   "https://checkout.cinetpay.example/pay/tok",
			},
		})

	client := newTestClient()
	gock.InterceptClient(client.HTTPClient)

	result, err := client.InitPayment(context.Background(), "tx1", 500, "XOF",
		"subscription", `{"creatorId":"c1","subscriberId":"s1"}`,
		"https://fantribe.example/api/notification", "https://fantribe.example/api/return")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.cinetpay.example/pay/tok", result.Data.PaymentURL)
	assert.True(t, gock.IsDone())
}
