package payment

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/store"
)

// Status is the provider ledger state after a server-to-server check,
// normalized across gateways.
type Status string

const (
	StatusComplete      Status = "complete"
	StatusPending       Status = "pending"
	StatusUserCancelled Status = "user_cancelled"
	StatusExpired       Status = "expired"
	StatusFailed        Status = "failed"
)

// ConfirmResult is the authoritative outcome of a status confirmation.
type ConfirmResult struct {
	Status Status
	// RefID is eSewa's settlement reference, TransactionID Khalti's.
	RefID         string
	TransactionID string
}

// Gateway is the per-provider contract. The browser redirect is never
// trusted on its own: Confirm performs the mandatory round trip to the
// provider's ledger. Implementations are selected by the order's payment
// method, with per-tenant credentials baked in at construction.
type Gateway interface {
	Confirm(ctx context.Context, o *order.Order) (*ConfirmResult, error)
	Refund(ctx context.Context, o *order.Order) error
}

// ForOrder builds the gateway variant for o using the owning store's
// credentials. Missing credentials surface ErrGatewayConfig.
func ForOrder(o *order.Order, st *store.Store, cfg *config.PaymentConfig, client *http.Client) (Gateway, error) {
	switch o.PaymentMethod {
	case order.MethodEsewa:
		if st.Payment.EsewaSecretKey == "" || st.Payment.EsewaProductCode == "" {
			return nil, fmt.Errorf("%w: esewa credentials missing for store %d", ErrGatewayConfig, st.ID)
		}
		return NewEsewaGateway(st.Payment, cfg, client), nil
	case order.MethodKhalti:
		if st.Payment.KhaltiSecretKey == "" {
			return nil, fmt.Errorf("%w: khalti secret missing for store %d", ErrGatewayConfig, st.ID)
		}
		return NewKhaltiGateway(st.Payment, cfg, client), nil
	case order.MethodCOD:
		return codGateway{}, nil
	}
	return nil, fmt.Errorf("%w: unknown payment method %q", ErrGatewayConfig, o.PaymentMethod)
}

// rupees renders a minor-unit amount the way the gateways expect, without
// a trailing ".00" for whole amounts.
func rupees(minor int64) string {
	if minor%100 == 0 {
		return strconv.FormatInt(minor/100, 10)
	}
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// codGateway is the cash-on-delivery variant: no provider, no callbacks.
type codGateway struct{}

func (codGateway) Confirm(ctx context.Context, o *order.Order) (*ConfirmResult, error) {
	return nil, fmt.Errorf("%w: cash on delivery has no gateway confirmation", ErrInvalidCallback)
}

func (codGateway) Refund(ctx context.Context, o *order.Order) error {
	// Settled in cash; nothing to call.
	return nil
}
