package order

import (
	"encoding/json"
	"fmt"
	"time"

	"garage-client-api/internal/config"
	"garage-client-api/internal/kafka"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
	"garage-client-api/internal/utils"
)

// EventPublisher streams order lifecycle events to Kafka. Publish failures
// are logged and never fail the originating operation.
type EventPublisher struct {
	Publisher kafka.Publisher
	Topics    config.TopicConfig
	Logger    *logger.Logger
}

func NewEventPublisher(publisher kafka.Publisher, topics config.TopicConfig, log *logger.Logger) *EventPublisher {
	return &EventPublisher{Publisher: publisher, Topics: topics, Logger: log}
}

func (p *EventPublisher) OrderCreated(owner models.OwnerKind, order models.PaymentOrder) {
	p.publish(p.Topics.OrderCreated, "order.created", owner, order)
}

func (p *EventPublisher) OrderProcessed(owner models.OwnerKind, order models.PaymentOrder) {
	p.publish(p.Topics.OrderProcessed, "order.processed", owner, order)
}

func (p *EventPublisher) OrderFailed(owner models.OwnerKind, order models.PaymentOrder) {
	p.publish(p.Topics.OrderFailed, "order.failed", owner, order)
}

func (p *EventPublisher) publish(topic, eventType string, owner models.OwnerKind, order models.PaymentOrder) {
	event := models.OrderEvent{
		EventID:     utils.GenerateCorrelationID(),
		Type:        eventType,
		OwnerKind:   owner,
		OrderID:     order.GetID(),
		OrderNumber: order.OrderNo(),
		Status:      order.StatusValue(),
		Amount:      order.AmountValue(),
		Timestamp:   time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.Logger.Error("KAFKA", fmt.Sprintf("Failed to marshal %s event for order %s: %v", eventType, order.OrderNo(), err))
		return
	}

	if err := p.Publisher.Publish(topic, order.OrderNo(), payload); err != nil {
		p.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s event for order %s: %v", eventType, order.OrderNo(), err))
		return
	}
	p.Logger.LogKafka("publish", topic, fmt.Sprintf("%s %s", eventType, order.OrderNo()))
}
