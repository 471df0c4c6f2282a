package cinetpay

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotification(t *testing.T) {
	form := url.Values{}
	form.Set("cpm_site_id", "1")
	form.Set("cpm_trans_id", "tx1")
	form.Set("cpm_amount", "500")
	form.Set("cpm_currency", "XOF")
	form.Set("cpm_custom", `{"creatorId":"c1","subscriberId":"s1"}`)

	n, err := ParseNotification(form)
	require.NoError(t, err)
	assert.Equal(t, "1", n.SiteID)
	assert.Equal(t, "tx1", n.TransactionID)
	assert.Equal(t, "500", n.SignatureFields()["cpm_amount"])

	form.Del("cpm_trans_id")
	_, err = ParseNotification(form)
	assert.Error(t, err)

	form.Set("cpm_trans_id", "tx1")
	form.Del("cpm_site_id")
	_, err = ParseNotification(form)
	assert.Error(t, err)
}

func TestParseCustomMetadata(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		isTip   bool
		sender  string
	}{
		{
			name:   "SubscriptionMetadata",
			raw:    `{"creatorId":"c1","subscriberId":"s1"}`,
			sender: "s1",
		},
		{
			name:   "TipWithExplicitSender",
			raw:    `{"creatorId":"c1","subscriberId":"s1","type":"tip","senderId":"s2","tipMessage":"bravo"}`,
			isTip:  true,
			sender: "s2",
		},
		{
			name:    "Empty",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "NotJSON",
			raw:     "not json",
			wantErr: true,
		},
		{
			name:    "MissingCreator",
			raw:     `{"subscriberId":"s1"}`,
			wantErr: true,
		},
		{
			name:    "MissingSubscriber",
			raw:     `{"creatorId":"c1"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseCustomMetadata(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.isTip, m.IsTip())
			assert.Equal(t, tt.sender, m.EffectiveSenderID())
		})
	}
}
