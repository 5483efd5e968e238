package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/store"
)

const (
	khaltiLiveBase = "https://khalti.com"
	khaltiTestBase = "https://dev.khalti.com"
)

// KhaltiGateway confirms transactions against Khalti's epayment lookup
// API. Khalti redirects carry no local signature; authenticity comes
// entirely from this server-to-server call.
type KhaltiGateway struct {
	settings store.PaymentSettings
	baseURL  string
	client   *http.Client
}

// NewKhaltiGateway builds the gateway for one store.
func NewKhaltiGateway(settings store.PaymentSettings, cfg *config.PaymentConfig, client *http.Client) *KhaltiGateway {
	base := khaltiLiveBase
	if settings.KhaltiTestMode {
		base = khaltiTestBase
		if cfg != nil && cfg.KhaltiTestBaseURL != "" {
			base = cfg.KhaltiTestBaseURL
		}
	} else if cfg != nil && cfg.KhaltiBaseURL != "" {
		base = cfg.KhaltiBaseURL
	}
	if client == nil {
		timeout := 10 * time.Second
		if cfg != nil {
			timeout = cfg.HTTPTimeout()
		}
		client = &http.Client{Timeout: timeout}
	}
	return &KhaltiGateway{settings: settings, baseURL: base, client: client}
}

type khaltiLookupResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Pidx          string `json:"pidx"`
	Refunded      bool   `json:"refunded"`
}

func (g *KhaltiGateway) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+g.settings.KhaltiSecretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: khalti returned %d for %s", ErrNetwork, resp.StatusCode, path)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: bad lookup response: %v", ErrNetwork, err)
		}
	}
	return nil
}

// Confirm resolves the pidx against Khalti's ledger and maps the provider
// vocabulary onto the internal status set.
func (g *KhaltiGateway) Confirm(ctx context.Context, o *order.Order) (*ConfirmResult, error) {
	var body khaltiLookupResponse
	if err := g.post(ctx, "/api/v2/epayment/lookup/", map[string]string{"pidx": o.Pidx}, &body); err != nil {
		return nil, err
	}

	res := &ConfirmResult{TransactionID: body.TransactionID}
	switch body.Status {
	case "Completed":
		res.Status = StatusComplete
	case "Pending", "Initiated":
		res.Status = StatusPending
	case "User canceled":
		res.Status = StatusUserCancelled
	case "Expired":
		res.Status = StatusExpired
	default:
		res.Status = StatusFailed
	}
	return res, nil
}

// Refund calls Khalti's merchant refund endpoint for the settled
// transaction.
func (g *KhaltiGateway) Refund(ctx context.Context, o *order.Order) error {
	if o.TransactionID == "" {
		return fmt.Errorf("%w: order %d has no khalti transaction id", ErrGatewayConfig, o.ID)
	}
	path := fmt.Sprintf("/api/merchant-transaction/%s/refund/", o.TransactionID)
	return g.post(ctx, path, map[string]string{}, nil)
}
