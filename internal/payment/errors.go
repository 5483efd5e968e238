package payment

import "errors"

// Verification failure taxonomy. Services classify with errors.Is and
// convert to a result + persisted order status; none of these ever reach
// the browser as a raw error.
var (
	// ErrInvalidCallback marks a malformed payload or missing correlation field.
	ErrInvalidCallback = errors.New("invalid payment callback")
	// ErrInvalidSignature marks an HMAC mismatch on the callback payload.
	ErrInvalidSignature = errors.New("invalid callback signature")
	// ErrGatewayConfig marks a store with missing or unusable gateway credentials.
	ErrGatewayConfig = errors.New("gateway not configured for store")
	// ErrNetwork marks an unreachable provider or a non-2xx status response.
	ErrNetwork = errors.New("gateway unreachable")
	// ErrRefundUnsupported marks a gateway with no refund API; refunds are manual.
	ErrRefundUnsupported = errors.New("gateway refund not supported")
)
