package cinetpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// signedFields is the exact concatenation order of CinetPay's x-token HMAC
// scheme. The order is load-bearing; do not sort or regroup.
var signedFields = []string{
	"cpm_site_id",
	"cpm_trans_id",
	"cpm_trans_date",
	"cpm_amount",
	"cpm_currency",
	"signature",
	"payment_method",
	"cel_phone_num",
	"cpm_phone_prefixe",
	"cpm_language",
	"cpm_version",
	"cpm_payment_config",
	"cpm_page_action",
	"cpm_custom",
	"cpm_error_message",
}

// VerifyNotificationSignature checks the x-token header of a webhook
// notification against the HMAC-SHA256 of the ordered field concatenation.
// Missing fields contribute the empty string. Returns false on missing token
// or secret and on any mismatch; it never panics.
func VerifyNotificationSignature(fields map[string]string, token, secret string) bool {
	tok := strings.TrimSpace(token)
	sec := strings.TrimSpace(secret)
	if tok == "" || sec == "" {
		return false
	}

	expected := ComputeNotificationSignature(fields, sec)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(tok)))
}

// ComputeNotificationSignature returns the hex HMAC-SHA256 token for a field
// mapping. Exposed for the checkout side and for tests.
func ComputeNotificationSignature(fields map[string]string, secret string) string {
	var sb strings.Builder
	for _, name := range signedFields {
		sb.WriteString(fields[name])
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sb.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
