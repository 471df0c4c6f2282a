package cinetpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fantribe/fantribe/internal/pkg/env"
)

const (
	defaultAPIBaseURL = "https://api-checkout.cinetpay.com"

	// StatusSuccess is the provider code for a completed payment. Anything
	// else is a legitimate non-success state, not a transport fault.
	StatusSuccess = "00"

	DefaultCurrency = "XOF"
)

type Client struct {
	APIKey string
	SiteID string

	APIBaseURL string

	HTTPClient *http.Client
}

// CheckData carries the verified payment record. These values are the source
// of truth; the inbound notification's own amount/currency are never trusted.
type CheckData struct {
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"payment_method"`
	PaymentDate   string `json:"payment_date"`
	Metadata      string `json:"metadata"`
}

type CheckResult struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Data    CheckData `json:"data"`
}

// Succeeded reports whether the provider confirms the payment as completed.
func (r *CheckResult) Succeeded() bool {
	return r.Code == StatusSuccess
}

// AmountValue parses the verified amount into whole currency units.
// XOF/XAF are zero-decimal, so no sub-unit division applies.
func (r *CheckResult) AmountValue() (int64, error) {
	raw := strings.TrimSpace(r.Data.Amount)
	if raw == "" {
		return 0, errors.New("verified payment record has no amount")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return int64(f), nil
}

// CurrencyValue returns the verified currency, defaulting when absent.
func (r *CheckResult) CurrencyValue() string {
	if c := strings.TrimSpace(r.Data.Currency); c != "" {
		return c
	}
	return DefaultCurrency
}

func NewClientFromEnv() *Client {
	return &Client{
		APIKey:     strings.TrimSpace(env.GetEnv("CINETPAY_API_KEY", "")),
		SiteID:     strings.TrimSpace(env.GetEnv("CINETPAY_SITE_ID", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("CINETPAY_API_BASE_URL", defaultAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether the client has the credentials it needs.
func (c *Client) Configured() bool {
	return c.APIKey != "" && c.SiteID != ""
}

// CheckPayment re-verifies a transaction against the provider's synchronous
// check API. The returned record is authoritative for amount and currency.
func (c *Client) CheckPayment(ctx context.Context, transactionID string) (*CheckResult, error) {
	if !c.Configured() {
		return nil, errors.New("CINETPAY_API_KEY/CINETPAY_SITE_ID are not configured")
	}
	if strings.TrimSpace(transactionID) == "" {
		return nil, errors.New("transaction id is required")
	}

	payload, err := json.Marshal(map[string]string{
		"apikey":         c.APIKey,
		"site_id":        c.SiteID,
		"transaction_id": strings.TrimSpace(transactionID),
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/v2/payment/check"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cinetpay payment check failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out CheckResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitResult is the provider response for a checkout initialization.
type InitResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		PaymentToken string `json:"payment_token"`
		PaymentURL   string `json:"payment_url"`
	} `json:"data"`
}

// InitPayment creates a hosted-checkout session for a local transaction id and
// returns the payment URL the browser should be sent to.
func (c *Client) InitPayment(ctx context.Context, transactionID string, amount int64, currency, description, metadata, notifyURL, returnURL string) (*InitResult, error) {
	if !c.Configured() {
		return nil, errors.New("CINETPAY_API_KEY/CINETPAY_SITE_ID are not configured")
	}
	if strings.TrimSpace(transactionID) == "" {
		return nil, errors.New("transaction id is required")
	}
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}

	payload, err := json.Marshal(map[string]any{
		"apikey":         c.APIKey,
		"site_id":        c.SiteID,
		"transaction_id": strings.TrimSpace(transactionID),
		"amount":         amount,
		"currency":       currency,
		"description":    description,
		"metadata":       metadata,
		"notify_url":     notifyURL,
		"return_url":     returnURL,
		"channels":       "ALL",
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/v2/payment"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cinetpay payment init failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out InitResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Data.PaymentURL) == "" {
		return nil, fmt.Errorf("cinetpay payment init returned no payment_url: code=%s message=%s", out.Code, out.Message)
	}
	return &out, nil
}
