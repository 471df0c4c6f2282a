package cinetpay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Notification is the form-encoded payload CinetPay posts to the notify URL.
// None of its fields are trusted until the x-token HMAC has been verified, and
// amount/currency are never trusted at all (the check API is authoritative).
type Notification struct {
	SiteID        string
	TransactionID string
	TransDate     string
	Amount        string
	Currency      string
	Signature     string
	PaymentMethod string
	PhoneNumber   string
	PhonePrefix   string
	Language      string
	Version       string
	PaymentConfig string
	PageAction    string
	Custom        string
	ErrorMessage  string
}

var errMissingIdentifiers = errors.New("notification is missing cpm_trans_id or cpm_site_id")

// ParseNotification extracts the provider fields from a form body.
// It fails only when the identifying fields are absent; everything else is
// carried through for signature verification.
func ParseNotification(form url.Values) (*Notification, error) {
	n := &Notification{
		SiteID:        form.Get("cpm_site_id"),
		TransactionID: form.Get("cpm_trans_id"),
		TransDate:     form.Get("cpm_trans_date"),
		Amount:        form.Get("cpm_amount"),
		Currency:      form.Get("cpm_currency"),
		Signature:     form.Get("signature"),
		PaymentMethod: form.Get("payment_method"),
		PhoneNumber:   form.Get("cel_phone_num"),
		PhonePrefix:   form.Get("cpm_phone_prefixe"),
		Language:      form.Get("cpm_language"),
		Version:       form.Get("cpm_version"),
		PaymentConfig: form.Get("cpm_payment_config"),
		PageAction:    form.Get("cpm_page_action"),
		Custom:        form.Get("cpm_custom"),
		ErrorMessage:  form.Get("cpm_error_message"),
	}
	if strings.TrimSpace(n.TransactionID) == "" || strings.TrimSpace(n.SiteID) == "" {
		return nil, errMissingIdentifiers
	}
	return n, nil
}

// SignatureFields returns the flat mapping the HMAC scheme is computed over.
func (n *Notification) SignatureFields() map[string]string {
	return map[string]string{
		"cpm_site_id":        n.SiteID,
		"cpm_trans_id":       n.TransactionID,
		"cpm_trans_date":     n.TransDate,
		"cpm_amount":         n.Amount,
		"cpm_currency":       n.Currency,
		"signature":          n.Signature,
		"payment_method":     n.PaymentMethod,
		"cel_phone_num":      n.PhoneNumber,
		"cpm_phone_prefixe":  n.PhonePrefix,
		"cpm_language":       n.Language,
		"cpm_version":        n.Version,
		"cpm_payment_config": n.PaymentConfig,
		"cpm_page_action":    n.PageAction,
		"cpm_custom":         n.Custom,
		"cpm_error_message":  n.ErrorMessage,
	}
}

// CustomMetadata is the JSON document carried in cpm_custom. It identifies the
// parties of the payment and, for tips, the social context.
type CustomMetadata struct {
	CreatorID      string `json:"creatorId" validate:"required"`
	SubscriberID   string `json:"subscriberId" validate:"required"`
	Type           string `json:"type,omitempty"`
	Action         string `json:"action,omitempty"`
	SenderID       string `json:"senderId,omitempty"`
	TipMessage     string `json:"tipMessage,omitempty"`
	TipContext     string `json:"tipContext,omitempty"`
	PostID         string `json:"postId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

// IsTip reports whether the payment should be routed to tip processing.
func (m *CustomMetadata) IsTip() bool {
	return strings.EqualFold(strings.TrimSpace(m.Type), "tip")
}

// EffectiveSenderID prefers the explicit sender, falling back to the subscriber.
func (m *CustomMetadata) EffectiveSenderID() string {
	if s := strings.TrimSpace(m.SenderID); s != "" {
		return s
	}
	return strings.TrimSpace(m.SubscriberID)
}

// ParseCustomMetadata decodes and validates the cpm_custom JSON document.
func ParseCustomMetadata(raw string) (*CustomMetadata, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("cpm_custom is empty")
	}

	var m CustomMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("cpm_custom is not valid JSON: %w", err)
	}
	if err := validator.New().Struct(&m); err != nil {
		return nil, fmt.Errorf("cpm_custom failed schema validation: %w", err)
	}
	return &m, nil
}
