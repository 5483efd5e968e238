package main

import (
	"context"
	"encoding/json"
	"log"

	"go.uber.org/zap"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/infra/mq"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/logging"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/notify"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/service"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Init(false)
	defer logger.Sync()

	mqConn := mq.Init(&cfg.RabbitMQ)

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(service.OrderEventsQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// Manual ack: an event is only gone once the dispatcher took it.
	msgs, err := ch.Consume(service.OrderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	var dispatcher notify.Dispatcher = notify.LogDispatcher{}

	zap.L().Info("notify worker started", zap.String("queue", service.OrderEventsQueue))

	for d := range msgs {
		var ev service.OrderEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			zap.L().Warn("dropping malformed event", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		err := dispatcher.OrderStatusChanged(context.Background(),
			ev.OrderID, ev.StoreID, string(ev.Status), ev.MessageKey)
		if err != nil {
			zap.L().Error("dispatch failed, requeueing",
				zap.Int64("order_id", ev.OrderID), zap.Error(err))
			_ = d.Nack(false, true)
			continue
		}
		_ = d.Ack(false)
	}
}
