package activity

import (
	"context"
	"time"
)

// Entry is one append-only audit row. Every verification outcome and every
// guarded admin mutation writes one, so a failed or duplicated callback is
// always inspectable afterwards.
type Entry struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	EntryUID string `gorm:"uniqueIndex;size:64" json:"entry_uid"`
	StoreID  int64  `gorm:"index" json:"store_id"`
	ActorUID string `gorm:"size:64;index" json:"actor_uid"` // empty for gateway callbacks
	Action   string `gorm:"size:64;index;not null" json:"action"`
	OrderID  int64  `gorm:"index" json:"order_id,omitempty"`
	// Reference holds the gateway correlation id or mutated resource id.
	Reference string `gorm:"size:128" json:"reference,omitempty"`
	Detail    string `gorm:"size:512" json:"detail,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Repository is the audit-log persistence contract.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListByStore(ctx context.Context, storeID int64, limit int) ([]*Entry, error)
}
