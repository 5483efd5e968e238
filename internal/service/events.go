package service

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
)

// OrderEventsQueue carries status-change events to the notify worker.
const OrderEventsQueue = "order_events"

// OrderEvent is published on every lifecycle transition, whether a
// payment callback or an operator drove it.
type OrderEvent struct {
	OrderID    int64               `json:"order_id"`
	StoreID    int64               `json:"store_id"`
	Status     order.Status        `json:"status"`
	Method     order.PaymentMethod `json:"payment_method"`
	MessageKey string              `json:"message_key"`
}

// EventPublisher hands order events to the broker. Services treat a nil
// publisher as "no broker configured" and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, ev *OrderEvent) error
}

// MQPublisher publishes order events on a durable RabbitMQ queue, one
// channel per publish. Safe to call with a nil receiver or connection.
type MQPublisher struct {
	conn *amqp.Connection
}

// NewMQPublisher wraps conn.
func NewMQPublisher(conn *amqp.Connection) *MQPublisher {
	return &MQPublisher{conn: conn}
}

// Publish declares the queue and hands ev to the broker.
func (p *MQPublisher) Publish(ctx context.Context, ev *OrderEvent) error {
	if p == nil || p.conn == nil {
		return nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(OrderEventsQueue, true, false, false, false, nil); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", OrderEventsQueue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return err
	}
	GetMonitor().RecordEventPublished()
	return nil
}
