package notify

import (
	"context"

	"go.uber.org/zap"
)

// Dispatcher is the notification boundary. Delivery mechanics (email,
// WhatsApp) live outside this core; implementations receive the event and
// take it from there.
type Dispatcher interface {
	OrderStatusChanged(ctx context.Context, orderID, storeID int64, status, messageKey string) error
}

// LogDispatcher records events through the structured log. It stands in
// wherever a real delivery channel is not configured.
type LogDispatcher struct{}

func (LogDispatcher) OrderStatusChanged(ctx context.Context, orderID, storeID int64, status, messageKey string) error {
	zap.L().Info("order notification",
		zap.Int64("order_id", orderID),
		zap.Int64("store_id", storeID),
		zap.String("status", status),
		zap.String("message_key", messageKey))
	return nil
}
