package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"payment-service/models"
)

// PaymentEventProducer publishes terminal payment transitions to Kafka,
// keyed by merchant order id so per-order ordering is preserved.
type PaymentEventProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewPaymentEventProducer(brokers []string, topic string, logger *zap.Logger) *PaymentEventProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	logger.Info("payment event producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return &PaymentEventProducer{writer: w, logger: logger}
}

func (p *PaymentEventProducer) Publish(ctx context.Context, event models.PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.MerchantOrderID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish payment event",
			zap.String("type", event.Type),
			zap.String("merchant_order_id", event.MerchantOrderID),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("payment event published",
		zap.String("type", event.Type),
		zap.String("merchant_order_id", event.MerchantOrderID),
	)
	return nil
}

func (p *PaymentEventProducer) Close() {
	_ = p.writer.Close()
}
