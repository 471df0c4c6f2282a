package cinetpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sampleFields() map[string]string {
	return map[string]string{
		"cpm_site_id":        "1",
		"cpm_trans_id":       "tx1",
		"cpm_trans_date":     "2025-06-01 10:00:00",
		"cpm_amount":         "500",
		"cpm_currency":       "XOF",
		"signature":          "sig",
		"payment_method":     "OM",
		"cel_phone_num":      "0700000000",
		"cpm_phone_prefixe":  "225",
		"cpm_language":       "fr",
		"cpm_version":        "V2",
		"cpm_payment_config": "SINGLE",
		"cpm_page_action":    "PAYMENT",
		"cpm_custom":         `{"creatorId":"c1","subscriberId":"s1"}`,
		"cpm_error_message":  "",
	}
}

func TestVerifyNotificationSignature(t *testing.T) {
	secret := "top-secret"
	fields := sampleFields()

	token := ComputeNotificationSignature(fields, secret)
	if !VerifyNotificationSignature(fields, token, secret) {
		t.Fatalf("expected valid token to verify")
	}
	if VerifyNotificationSignature(fields, "deadbeef", secret) {
		t.Fatalf("expected invalid token to fail")
	}
	if VerifyNotificationSignature(fields, token, "other-secret") {
		t.Fatalf("expected wrong secret to fail")
	}
	if VerifyNotificationSignature(fields, "", secret) {
		t.Fatalf("expected missing token to fail")
	}
	if VerifyNotificationSignature(fields, token, "") {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestVerifyNotificationSignature_UppercaseToken(t *testing.T) {
	secret := "top-secret"
	fields := sampleFields()

	mac := hmac.New(sha256.New, []byte(secret))
	for _, name := range signedFields {
		mac.Write([]byte(fields[name]))
	}
	upper := hex.EncodeToString(mac.Sum(nil))
	for i := range upper {
		if upper[i] >= 'a' && upper[i] <= 'f' {
			upper = upper[:i] + string(upper[i]-32) + upper[i+1:]
		}
	}

	if !VerifyNotificationSignature(fields, upper, secret) {
		t.Fatalf("expected case-insensitive hex token to verify")
	}
}

func TestComputeNotificationSignature_OrderSensitive(t *testing.T) {
	secret := "top-secret"
	fields := sampleFields()
	base := ComputeNotificationSignature(fields, secret)

	// Swapping two adjacent field values must change the token: the scheme
	// concatenates in a fixed order, not commutatively.
	swapped := sampleFields()
	swapped["cpm_site_id"], swapped["cpm_trans_id"] = swapped["cpm_trans_id"], swapped["cpm_site_id"]
	if ComputeNotificationSignature(swapped, secret) == base {
		t.Fatalf("expected swapped field values to change the signature")
	}
}

func TestComputeNotificationSignature_MissingFieldsContributeEmpty(t *testing.T) {
	secret := "top-secret"
	fields := sampleFields()
	delete(fields, "cpm_error_message")

	explicit := sampleFields()
	explicit["cpm_error_message"] = ""

	if ComputeNotificationSignature(fields, secret) != ComputeNotificationSignature(explicit, secret) {
		t.Fatalf("expected missing field to contribute the empty string")
	}
}
