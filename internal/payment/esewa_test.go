package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/store"
)

const esewaUATSecret = "8gBm/:&EnhH.1/q"

// A real UAT callback payload, re-signed with the published test secret.
func sampleCallback() *EsewaCallback {
	cb := &EsewaCallback{
		TransactionCode:  "000AWEO",
		Status:           "COMPLETE",
		TotalAmount:      "1000",
		TransactionUUID:  "250610-162413",
		ProductCode:      "EPAYTEST",
		SignedFieldNames: "total_amount,transaction_uuid,product_code",
	}
	cb.Signature = SignEsewa(cb.SignedMessage(), esewaUATSecret)
	return cb
}

func encode(t *testing.T, cb *EsewaCallback) string {
	t.Helper()
	raw, err := json.Marshal(cb)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestDecodeEsewaCallback(t *testing.T) {
	data := encode(t, sampleCallback())

	cb, err := DecodeEsewaCallback(data)
	require.NoError(t, err)
	assert.Equal(t, "250610-162413", cb.TransactionUUID)
	assert.Equal(t, "1000", cb.TotalAmount)
	assert.Equal(t, "EPAYTEST", cb.ProductCode)
}

func TestDecodeEsewaCallbackURLSafeBase64(t *testing.T) {
	raw, err := json.Marshal(sampleCallback())
	require.NoError(t, err)
	data := base64.URLEncoding.EncodeToString(raw)

	cb, err := DecodeEsewaCallback(data)
	require.NoError(t, err)
	assert.Equal(t, "250610-162413", cb.TransactionUUID)
}

func TestDecodeEsewaCallbackErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not base64", "!!not-base64!!"},
		{"not json", base64.StdEncoding.EncodeToString([]byte("plain text"))},
		{"missing uuid", base64.StdEncoding.EncodeToString([]byte(`{"status":"COMPLETE"}`))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEsewaCallback(tt.data)
			assert.ErrorIs(t, err, ErrInvalidCallback)
		})
	}
}

func TestSignedMessageCanonicalOrder(t *testing.T) {
	cb := sampleCallback()
	assert.Equal(t,
		"total_amount=1000,transaction_uuid=250610-162413,product_code=EPAYTEST",
		cb.SignedMessage())

	// The order of signed_field_names, not struct order, drives the message.
	cb.SignedFieldNames = "product_code,total_amount,transaction_uuid"
	assert.Equal(t,
		"product_code=EPAYTEST,total_amount=1000,transaction_uuid=250610-162413",
		cb.SignedMessage())
}

func TestVerifyEsewaSignature(t *testing.T) {
	assert.NoError(t, VerifyEsewaSignature(sampleCallback(), esewaUATSecret))
}

func TestVerifyEsewaSignatureRejectsTampering(t *testing.T) {
	tamper := []struct {
		name   string
		mutate func(cb *EsewaCallback)
	}{
		{"total_amount", func(cb *EsewaCallback) { cb.TotalAmount = "1" }},
		{"transaction_uuid", func(cb *EsewaCallback) { cb.TransactionUUID = "250610-999999" }},
		{"product_code", func(cb *EsewaCallback) { cb.ProductCode = "OTHER" }},
		{"signature", func(cb *EsewaCallback) { cb.Signature = "AAAA" + cb.Signature[4:] }},
		{"empty signature", func(cb *EsewaCallback) { cb.Signature = "" }},
		{"empty field names", func(cb *EsewaCallback) { cb.SignedFieldNames = "" }},
	}
	for _, tt := range tamper {
		t.Run(tt.name, func(t *testing.T) {
			cb := sampleCallback()
			tt.mutate(cb)
			assert.ErrorIs(t, VerifyEsewaSignature(cb, esewaUATSecret), ErrInvalidSignature)
		})
	}
}

func TestVerifyEsewaSignatureWrongSecret(t *testing.T) {
	assert.ErrorIs(t, VerifyEsewaSignature(sampleCallback(), "some-other-secret"), ErrInvalidSignature)
}

func testSettings() store.PaymentSettings {
	return store.PaymentSettings{
		EsewaSecretKey:   esewaUATSecret,
		EsewaProductCode: "EPAYTEST",
		EsewaTestMode:    true,
	}
}

func esewaTestOrder() *order.Order {
	return &order.Order{
		ID:              1,
		Status:          order.StatusPending,
		PaymentMethod:   order.MethodEsewa,
		TransactionUUID: "250610-162413",
		Total:           100000,
	}
}

func newTestEsewaGateway(baseURL string) *EsewaGateway {
	cfg := &config.PaymentConfig{EsewaTestBaseURL: baseURL, HTTPTimeoutSeconds: 5}
	return NewEsewaGateway(testSettings(), cfg, nil)
}

func TestEsewaConfirmComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/epay/transaction/status/", r.URL.Path)
		assert.Equal(t, "EPAYTEST", r.URL.Query().Get("product_code"))
		assert.Equal(t, "1000", r.URL.Query().Get("total_amount"))
		assert.Equal(t, "250610-162413", r.URL.Query().Get("transaction_uuid"))
		w.Write([]byte(`{"status":"COMPLETE","ref_id":"0007XYZ"}`))
	}))
	defer srv.Close()

	res, err := newTestEsewaGateway(srv.URL).Confirm(context.Background(), esewaTestOrder())
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, res.Status)
	assert.Equal(t, "0007XYZ", res.RefID)
}

func TestEsewaConfirmNotComplete(t *testing.T) {
	for _, status := range []string{"PENDING", "CANCELED", "NOT_FOUND", "AMBIGUOUS", "FULL_REFUND"} {
		t.Run(status, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"` + status + `"}`))
			}))
			defer srv.Close()

			res, err := newTestEsewaGateway(srv.URL).Confirm(context.Background(), esewaTestOrder())
			require.NoError(t, err)
			assert.Equal(t, StatusFailed, res.Status)
		})
	}
}

func TestEsewaConfirmNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestEsewaGateway(srv.URL).Confirm(context.Background(), esewaTestOrder())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestEsewaConfirmUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestEsewaGateway(srv.URL).Confirm(context.Background(), esewaTestOrder())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestNewEsewaGatewayNilConfig(t *testing.T) {
	g := NewEsewaGateway(testSettings(), nil, nil)
	require.NotNil(t, g.client)
	assert.Positive(t, g.client.Timeout)
	assert.Equal(t, esewaTestBase, g.baseURL)

	live := testSettings()
	live.EsewaTestMode = false
	assert.Equal(t, esewaLiveBase, NewEsewaGateway(live, nil, nil).baseURL)
}

func TestEsewaRefundUnsupported(t *testing.T) {
	g := newTestEsewaGateway("http://unused")
	assert.ErrorIs(t, g.Refund(context.Background(), esewaTestOrder()), ErrRefundUnsupported)
}

func TestRupees(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{100000, "1000"},
		{100, "1"},
		{150, "1.50"},
		{105, "1.05"},
		{0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rupees(tt.minor))
	}
}
