package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/payment"
)

func newTestOrderService(orders *fakeOrderRepo, products *fakeProductRepo, audit *fakeActivityRepo) *OrderService {
	cfg := &config.PaymentConfig{HTTPTimeoutSeconds: 5}
	return NewOrderService(orders, newFakeStoreRepo(testStore()), products, audit, nil, cfg)
}

func TestOrderShipDeliverFlow(t *testing.T) {
	o := esewaOrder()
	o.Status = order.StatusProcessing
	orders := newFakeOrderRepo(o)
	audit := &fakeActivityRepo{}
	svc := newTestOrderService(orders, newFakeProductRepo(), audit)

	require.NoError(t, svc.Ship(context.Background(), "staff-1", o.ID))
	got, _ := orders.GetByID(context.Background(), o.ID)
	assert.Equal(t, order.StatusShipped, got.Status)

	require.NoError(t, svc.Deliver(context.Background(), "staff-1", o.ID))
	got, _ = orders.GetByID(context.Background(), o.ID)
	assert.Equal(t, order.StatusDelivered, got.Status)

	assert.Equal(t, []string{"order.shipped", "order.delivered"}, audit.actions())
}

func TestOrderShipRejectsUnpaid(t *testing.T) {
	orders := newFakeOrderRepo(esewaOrder()) // still pending
	svc := newTestOrderService(orders, newFakeProductRepo(), &fakeActivityRepo{})

	err := svc.Ship(context.Background(), "staff-1", 101)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	got, _ := orders.GetByID(context.Background(), 101)
	assert.Equal(t, order.StatusPending, got.Status)
}

func TestOrderDeliverRejectsUnshipped(t *testing.T) {
	o := esewaOrder()
	o.Status = order.StatusProcessing
	svc := newTestOrderService(newFakeOrderRepo(o), newFakeProductRepo(), &fakeActivityRepo{})

	assert.ErrorIs(t, svc.Deliver(context.Background(), "staff-1", o.ID), ErrInvalidTransition)
}

func TestOrderCancelRestocksOnce(t *testing.T) {
	orders := newFakeOrderRepo(esewaOrder())
	products := newFakeProductRepo()
	svc := newTestOrderService(orders, products, &fakeActivityRepo{})

	require.NoError(t, svc.Cancel(context.Background(), "owner-1", 101))
	got, _ := orders.GetByID(context.Background(), 101)
	assert.Equal(t, order.StatusCancelled, got.Status)
	assert.False(t, got.StockDecremented)
	assert.Equal(t, int64(2), products.adjustments[31])

	// Second cancel loses the compare-and-set and must not restock again.
	err := svc.Cancel(context.Background(), "owner-1", 101)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, products.calls)
}

func TestOrderCancelRejectsShipped(t *testing.T) {
	o := esewaOrder()
	o.Status = order.StatusShipped
	products := newFakeProductRepo()
	svc := newTestOrderService(newFakeOrderRepo(o), products, &fakeActivityRepo{})

	assert.ErrorIs(t, svc.Cancel(context.Background(), "owner-1", o.ID), ErrInvalidTransition)
	assert.Zero(t, products.calls)
}

func TestOrderRefundEsewaRequiresForce(t *testing.T) {
	o := esewaOrder()
	o.Status = order.StatusDelivered
	o.RefID = "0007XYZ"
	orders := newFakeOrderRepo(o)
	svc := newTestOrderService(orders, newFakeProductRepo(), &fakeActivityRepo{})

	err := svc.Refund(context.Background(), "owner-1", o.ID, false)
	assert.ErrorIs(t, err, payment.ErrRefundUnsupported)
	got, _ := orders.GetByID(context.Background(), o.ID)
	assert.Equal(t, order.StatusDelivered, got.Status)

	require.NoError(t, svc.Refund(context.Background(), "owner-1", o.ID, true))
	got, _ = orders.GetByID(context.Background(), o.ID)
	assert.Equal(t, order.StatusRefunded, got.Status)
}

func TestOrderRefundRejectsPending(t *testing.T) {
	svc := newTestOrderService(newFakeOrderRepo(esewaOrder()), newFakeProductRepo(), &fakeActivityRepo{})

	err := svc.Refund(context.Background(), "owner-1", 101, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderTransitionsPublishEvents(t *testing.T) {
	o := esewaOrder()
	o.Status = order.StatusProcessing
	orders := newFakeOrderRepo(o)
	events := &fakeEventPublisher{}
	cfg := &config.PaymentConfig{HTTPTimeoutSeconds: 5}
	svc := NewOrderService(orders, newFakeStoreRepo(testStore()), newFakeProductRepo(), &fakeActivityRepo{}, events, cfg)

	require.NoError(t, svc.Ship(context.Background(), "staff-1", o.ID))
	require.NoError(t, svc.Deliver(context.Background(), "staff-1", o.ID))
	require.NoError(t, svc.Refund(context.Background(), "owner-1", o.ID, true))

	assert.Equal(t,
		[]order.Status{order.StatusShipped, order.StatusDelivered, order.StatusRefunded},
		events.statuses())
	for _, ev := range events.events {
		assert.Equal(t, o.ID, ev.OrderID)
		assert.Equal(t, o.StoreID, ev.StoreID)
		assert.Equal(t, order.MethodEsewa, ev.Method)
	}
	assert.Equal(t, "order.shipped", events.events[0].MessageKey)
}

func TestOrderCancelPublishesEvent(t *testing.T) {
	orders := newFakeOrderRepo(esewaOrder()) // pending
	events := &fakeEventPublisher{}
	cfg := &config.PaymentConfig{HTTPTimeoutSeconds: 5}
	svc := NewOrderService(orders, newFakeStoreRepo(testStore()), newFakeProductRepo(), &fakeActivityRepo{}, events, cfg)

	require.NoError(t, svc.Cancel(context.Background(), "owner-1", 101))
	require.Len(t, events.events, 1)
	assert.Equal(t, order.StatusCancelled, events.events[0].Status)

	// A rejected transition must not publish.
	assert.ErrorIs(t, svc.Ship(context.Background(), "staff-1", 101), ErrInvalidTransition)
	assert.Len(t, events.events, 1)
}

func TestOrderRefundCODNeedsNoGateway(t *testing.T) {
	o := esewaOrder()
	o.PaymentMethod = order.MethodCOD
	o.Status = order.StatusDelivered
	orders := newFakeOrderRepo(o)
	svc := newTestOrderService(orders, newFakeProductRepo(), &fakeActivityRepo{})

	require.NoError(t, svc.Refund(context.Background(), "owner-1", o.ID, false))
	got, _ := orders.GetByID(context.Background(), o.ID)
	assert.Equal(t, order.StatusRefunded, got.Status)
}
