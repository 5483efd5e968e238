package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/store"
)

const (
	esewaLiveBase = "https://epay.esewa.com.np"
	esewaTestBase = "https://rc.esewa.com.np"
)

// EsewaCallback is the decoded redirect payload eSewa appends as
// ?data=<base64 JSON>. Amounts arrive as strings and are signed as such,
// so they stay strings here.
type EsewaCallback struct {
	TransactionCode  string `json:"transaction_code"`
	Status           string `json:"status"`
	TotalAmount      string `json:"total_amount"`
	TransactionUUID  string `json:"transaction_uuid"`
	ProductCode      string `json:"product_code"`
	SignedFieldNames string `json:"signed_field_names"`
	Signature        string `json:"signature"`
}

// DecodeEsewaCallback parses the base64 JSON blob from the redirect URL.
// Malformed input or a missing transaction_uuid is ErrInvalidCallback.
func DecodeEsewaCallback(data string) (*EsewaCallback, error) {
	if data == "" {
		return nil, fmt.Errorf("%w: empty data parameter", ErrInvalidCallback)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		// Some clients re-encode the redirect URL-safe.
		raw, err = base64.URLEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64: %v", ErrInvalidCallback, err)
		}
	}
	var cb EsewaCallback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, fmt.Errorf("%w: bad json: %v", ErrInvalidCallback, err)
	}
	if cb.TransactionUUID == "" {
		return nil, fmt.Errorf("%w: missing transaction_uuid", ErrInvalidCallback)
	}
	return &cb, nil
}

// field returns the named callback field as it participates in signing.
func (c *EsewaCallback) field(name string) string {
	switch name {
	case "transaction_code":
		return c.TransactionCode
	case "status":
		return c.Status
	case "total_amount":
		return c.TotalAmount
	case "transaction_uuid":
		return c.TransactionUUID
	case "product_code":
		return c.ProductCode
	case "signed_field_names":
		return c.SignedFieldNames
	}
	return ""
}

// SignedMessage rebuilds the canonical message: the key=value pairs named
// by signed_field_names, in that exact order, joined by commas.
func (c *EsewaCallback) SignedMessage() string {
	names := strings.Split(c.SignedFieldNames, ",")
	pairs := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		pairs = append(pairs, name+"="+c.field(name))
	}
	return strings.Join(pairs, ",")
}

// SignEsewa computes the base64 HMAC-SHA256 of message with the tenant
// secret. Exported so checkout can sign outgoing payment forms with the
// same canonicalization verification uses.
func SignEsewa(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyEsewaSignature recomputes the signature over the canonical message
// and compares in constant time. Any mismatch, including a single flipped
// byte of total_amount, is ErrInvalidSignature.
func VerifyEsewaSignature(cb *EsewaCallback, secret string) error {
	if cb.Signature == "" || cb.SignedFieldNames == "" {
		return fmt.Errorf("%w: unsigned payload", ErrInvalidSignature)
	}
	want := SignEsewa(cb.SignedMessage(), secret)
	if !hmac.Equal([]byte(want), []byte(cb.Signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// EsewaGateway confirms transactions against eSewa's status-check API.
type EsewaGateway struct {
	settings store.PaymentSettings
	baseURL  string
	client   *http.Client
}

// NewEsewaGateway builds the gateway for one store. The base URL follows
// the store's test-mode flag unless the deployment overrides it.
func NewEsewaGateway(settings store.PaymentSettings, cfg *config.PaymentConfig, client *http.Client) *EsewaGateway {
	base := esewaLiveBase
	if settings.EsewaTestMode {
		base = esewaTestBase
		if cfg != nil && cfg.EsewaTestBaseURL != "" {
			base = cfg.EsewaTestBaseURL
		}
	} else if cfg != nil && cfg.EsewaBaseURL != "" {
		base = cfg.EsewaBaseURL
	}
	if client == nil {
		timeout := 10 * time.Second
		if cfg != nil {
			timeout = cfg.HTTPTimeout()
		}
		client = &http.Client{Timeout: timeout}
	}
	return &EsewaGateway{settings: settings, baseURL: base, client: client}
}

type esewaStatusResponse struct {
	Status string `json:"status"`
	RefID  string `json:"ref_id"`
}

// Confirm asks eSewa's own ledger for the transaction state. The redirect
// payload is client-observable, so this call decides, not the redirect.
func (g *EsewaGateway) Confirm(ctx context.Context, o *order.Order) (*ConfirmResult, error) {
	q := url.Values{}
	q.Set("product_code", g.settings.EsewaProductCode)
	q.Set("total_amount", rupees(o.Total))
	q.Set("transaction_uuid", o.TransactionUUID)

	endpoint := g.baseURL + "/api/epay/transaction/status/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: esewa status check returned %d", ErrNetwork, resp.StatusCode)
	}

	var body esewaStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: bad status response: %v", ErrNetwork, err)
	}
	if body.Status == "COMPLETE" {
		return &ConfirmResult{Status: StatusComplete, RefID: body.RefID}, nil
	}
	// PENDING, CANCELED, NOT_FOUND, AMBIGUOUS ... none of them confirm payment.
	return &ConfirmResult{Status: StatusFailed}, nil
}

// Refund is manual for eSewa: there is no public refund API, so the
// operator settles with the provider and forces the status afterwards.
func (g *EsewaGateway) Refund(ctx context.Context, o *order.Order) error {
	return ErrRefundUnsupported
}
