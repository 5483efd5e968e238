package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/activity"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/product"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/store"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/payment"
)

// ErrInvalidTransition marks a manual lifecycle move the graph forbids,
// including one another request already performed.
var ErrInvalidTransition = errors.New("invalid order transition")

// OrderService drives the manual, operator-facing lifecycle moves. The
// route layer authorizes the caller before any of these run; actorUID is
// carried only for the audit trail.
type OrderService struct {
	orderRepo    order.Repository
	storeRepo    store.Repository
	productRepo  product.Repository
	activityRepo activity.Repository
	events       EventPublisher
	payCfg       *config.PaymentConfig
	client       *http.Client
}

// NewOrderService builds the lifecycle service.
func NewOrderService(
	orderRepo order.Repository,
	storeRepo store.Repository,
	productRepo product.Repository,
	activityRepo activity.Repository,
	events EventPublisher,
	payCfg *config.PaymentConfig,
) *OrderService {
	if payCfg == nil {
		payCfg = &config.DefaultConfig().Payment
	}
	return &OrderService{
		orderRepo:    orderRepo,
		storeRepo:    storeRepo,
		productRepo:  productRepo,
		activityRepo: activityRepo,
		events:       events,
		payCfg:       payCfg,
		client:       &http.Client{Timeout: payCfg.HTTPTimeout()},
	}
}

// Get loads one order.
func (s *OrderService) Get(ctx context.Context, id int64) (*order.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// ListByStore lists a store's recent orders.
func (s *OrderService) ListByStore(ctx context.Context, storeID int64, limit int) ([]*order.Order, error) {
	return s.orderRepo.ListByStore(ctx, storeID, limit)
}

// Ship moves a paid order to shipped.
func (s *OrderService) Ship(ctx context.Context, actorUID string, orderID int64) error {
	return s.transition(ctx, actorUID, orderID,
		[]order.Status{order.StatusProcessing}, order.StatusShipped, nil)
}

// Deliver moves a shipped order to delivered.
func (s *OrderService) Deliver(ctx context.Context, actorUID string, orderID int64) error {
	return s.transition(ctx, actorUID, orderID,
		[]order.Status{order.StatusShipped}, order.StatusDelivered, nil)
}

// Cancel cancels an order that has not shipped, restocking at most once.
func (s *OrderService) Cancel(ctx context.Context, actorUID string, orderID int64) error {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	updates := map[string]any{}
	if o.StockDecremented {
		updates["stock_decremented"] = false
	}
	if err := s.transition(ctx, actorUID, orderID,
		order.VerificationStates(), order.StatusCancelled, updates); err != nil {
		return err
	}
	s.restock(ctx, o)
	return nil
}

// Refund refunds a paid or delivered order. The gateway refund call comes
// first; when the gateway has no refund API the move is rejected unless
// the operator forces it after settling with the provider manually.
func (s *OrderService) Refund(ctx context.Context, actorUID string, orderID int64, force bool) error {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	st, err := s.storeRepo.GetByID(ctx, o.StoreID)
	if err != nil {
		return err
	}
	gw, err := payment.ForOrder(o, st, s.payCfg, s.client)
	if err != nil {
		return err
	}
	if err := gw.Refund(ctx, o); err != nil {
		if !(force && errors.Is(err, payment.ErrRefundUnsupported)) {
			return fmt.Errorf("gateway refund: %w", err)
		}
		zap.L().Info("manual refund forced",
			zap.Int64("order_id", o.ID),
			zap.String("actor", actorUID))
	}
	return s.transition(ctx, actorUID, orderID,
		[]order.Status{order.StatusProcessing, order.StatusDelivered},
		order.StatusRefunded, nil)
}

func (s *OrderService) transition(ctx context.Context, actorUID string, orderID int64, from []order.Status, to order.Status, updates map[string]any) error {
	ok, err := s.orderRepo.UpdateStatusFrom(ctx, orderID, from, to, updates)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: order %d is not in %v", ErrInvalidTransition, orderID, from)
	}
	if o, err := s.orderRepo.GetByID(ctx, orderID); err == nil {
		s.audit(ctx, actorUID, o, to)
		s.publishEvent(ctx, &OrderEvent{
			OrderID:    o.ID,
			StoreID:    o.StoreID,
			Status:     to,
			Method:     o.PaymentMethod,
			MessageKey: "order." + string(to),
		})
	}
	zap.L().Info("order transitioned",
		zap.Int64("order_id", orderID),
		zap.String("to", string(to)),
		zap.String("actor", actorUID))
	return nil
}

// restock returns item stock after a cancellation, gated by the
// stock-decremented flag the winning transition just cleared.
func (s *OrderService) restock(ctx context.Context, o *order.Order) {
	if !o.StockDecremented || s.productRepo == nil {
		return
	}
	for _, item := range o.Items {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			zap.L().Error("restock failed",
				zap.Int64("order_id", o.ID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err))
		}
	}
}

func (s *OrderService) audit(ctx context.Context, actorUID string, o *order.Order, to order.Status) {
	if s.activityRepo == nil {
		return
	}
	_ = s.activityRepo.Append(ctx, &activity.Entry{
		EntryUID: uuid.NewString(),
		StoreID:  o.StoreID,
		ActorUID: actorUID,
		Action:   "order." + string(to),
		OrderID:  o.ID,
	})
}

func (s *OrderService) publishEvent(ctx context.Context, ev *OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		zap.L().Error("event publish failed", zap.Int64("order_id", ev.OrderID), zap.Error(err))
	}
}
