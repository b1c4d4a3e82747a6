// Package events is the seam between reconciliation and the event transport.
// Kafka is the default backend; SNS is available for AWS deployments.
package events

import (
	"context"
	"encoding/json"

	"payment-service/models"
	awspkg "payment-service/pkg/aws"
)

// Publisher delivers a terminal payment event downstream. Failures are the
// caller's to log; they never change a webhook response.
type Publisher interface {
	Publish(ctx context.Context, event models.PaymentEvent) error
}

// SNSEventPublisher adapts the SNS client to the Publisher seam.
type SNSEventPublisher struct {
	sns      awspkg.SNSPublisher
	topicArn string
}

func NewSNSEventPublisher(sns awspkg.SNSPublisher, topicArn string) *SNSEventPublisher {
	return &SNSEventPublisher{sns: sns, topicArn: topicArn}
}

func (p *SNSEventPublisher) Publish(ctx context.Context, event models.PaymentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.sns.Publish(ctx, p.topicArn, payload)
}
