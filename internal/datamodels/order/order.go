package order

import (
	"context"
	"time"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// PaymentMethod selects the gateway variant that owns verification.
type PaymentMethod string

const (
	MethodEsewa  PaymentMethod = "esewa"
	MethodKhalti PaymentMethod = "khalti"
	MethodCOD    PaymentMethod = "cod"
)

// Order is a tenant-scoped purchase. Inbound payment callbacks locate it
// exclusively through TransactionUUID (eSewa) or Pidx (Khalti); a
// client-supplied order id is never trusted.
type Order struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	StoreID int64  `gorm:"index;not null" json:"store_id"`
	Status  Status `gorm:"type:varchar(16);index;not null" json:"status"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(16);not null" json:"payment_method"`

	// Gateway correlation fields. Unique per order: they are the only safe
	// lookup keys for a browser-redirected callback.
	TransactionUUID string `gorm:"uniqueIndex;size:64" json:"transaction_uuid,omitempty"`
	Pidx            string `gorm:"uniqueIndex;size:64" json:"pidx,omitempty"`

	// Provider references filled in after a confirmed payment.
	RefID         string `gorm:"size:64" json:"ref_id,omitempty"`
	TransactionID string `gorm:"size:64" json:"transaction_id,omitempty"`

	// Total in minor units (paisa).
	Total int64 `gorm:"not null" json:"total"`

	// StockDecremented records whether checkout took stock for this order.
	// Entering failed/cancelled restocks at most once, driven by this flag
	// rather than inferred from status.
	StockDecremented bool `gorm:"not null" json:"stock_decremented"`

	CustomerName  string `gorm:"size:128" json:"customer_name"`
	CustomerPhone string `gorm:"size:32" json:"customer_phone"`

	Items []Item `gorm:"foreignKey:OrderID" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is one order line.
type Item struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	OrderID   int64 `gorm:"index;not null" json:"order_id"`
	ProductID int64 `gorm:"index;not null" json:"product_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`
	UnitPrice int64 `gorm:"not null" json:"unit_price"`
}

// transitions is the allowed lifecycle graph.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusFailed, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusFailed, StatusCancelled, StatusRefunded},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
}

// CanTransition reports whether from → to is a legal lifecycle move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// VerificationStates are the statuses a payment callback may transition out
// of. Anything else is settled as far as verification is concerned.
func VerificationStates() []Status {
	return []Status{StatusPending, StatusProcessing}
}

// TerminalForVerification reports whether a callback arriving at this
// status must be a no-op.
func TerminalForVerification(s Status) bool {
	switch s {
	case StatusFailed, StatusCancelled, StatusDelivered, StatusRefunded:
		return true
	}
	return false
}

// Repository is the order persistence contract.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByTransactionUUID(ctx context.Context, uuid string) (*Order, error)
	GetByPidx(ctx context.Context, pidx string) (*Order, error)
	ListByStore(ctx context.Context, storeID int64, limit int) ([]*Order, error)

	// UpdateStatusFrom is a compare-and-set: the row is updated only while
	// its current status is one of from. Returns false when another request
	// already moved the order on, which callers treat as a no-op rather
	// than an error.
	UpdateStatusFrom(ctx context.Context, id int64, from []Status, to Status, updates map[string]any) (bool, error)
}
