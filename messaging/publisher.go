package messaging

import (
	"context"
	"fmt"
	"strings"
	"tableside_server/structs"
	"time"

	"github.com/MonkyMars/gecho"
)

// Event types consumed by the reporting side
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventInventoryAdjusted  = "inventory.adjusted"
	EventInventoryLowStock  = "inventory.low_stock"
)

const (
	defaultPublishTimeout   = 5 * time.Second
	defaultKafkaTopic       = "tableside.events"
	defaultRabbitMQExchange = "tableside_events"
	contentTypeJSON         = "application/json"
	headerEventType         = "event-type"
)

// Event is the envelope written to the broker
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// NewEvent stamps an event with the current time
func NewEvent(eventType, key string, payload any) Event {
	return Event{
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers domain events to a broker
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NewPublisher builds the publisher selected by EVENTS_BROKER
func NewPublisher(cfg *structs.EventsConfig, logger *gecho.Logger) (Publisher, error) {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}

	switch strings.ToLower(cfg.Broker) {
	case "", "none":
		return NoopPublisher{}, nil
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka publisher requires at least one broker")
		}
		topic := cfg.KafkaTopic
		if topic == "" {
			topic = defaultKafkaTopic
		}
		logger.Info("Publishing events to kafka", gecho.Field("topic", topic))
		return NewKafkaPublisher(cfg.KafkaBrokers, topic, timeout), nil
	case "rabbitmq":
		exchange := cfg.RabbitMQExchange
		if exchange == "" {
			exchange = defaultRabbitMQExchange
		}
		logger.Info("Publishing events to rabbitmq", gecho.Field("exchange", exchange))
		return NewRabbitMQPublisher(cfg.RabbitMQURL, exchange, timeout)
	default:
		return nil, fmt.Errorf("unsupported events broker %q", cfg.Broker)
	}
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
