package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventType names a kind of event published on the bus
type EventType string

const (
	EventForecastGenerated  EventType = "forecast.generated"
	EventRestockRecommended EventType = "restock.recommended"
)

// Event is the envelope delivered to handlers
type Event struct {
	ID            string
	Type          EventType
	SourceService string
	Timestamp     time.Time
	Payload       interface{}
}

// ForecastGenerated is published once per product forecast
type ForecastGenerated struct {
	ProductID   string
	ProductName string
	PeriodType  string
	Horizon     int
	Forecast    []float64
}

// RestockRecommended is published for every product that needs restocking
type RestockRecommended struct {
	ProductID          string
	ProductName        string
	Urgency            string
	TotalRestockNeeded int64
}

// EventHandler defines the interface for handling events
type EventHandler func(ctx context.Context, event *Event) error

// Publisher is the narrow interface services publish through
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, payload interface{}) error
}

// EventBus provides in-memory pub/sub functionality
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]EventHandler
	serviceName string
	logger      logrus.FieldLogger
}

// NewEventBus creates a new event bus for a service
func NewEventBus(serviceName string, logger logrus.FieldLogger) *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]EventHandler),
		serviceName: serviceName,
		logger:      logger,
	}
}

// Subscribe registers a handler for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
}

// Publish sends an event to all registered handlers
func (eb *EventBus) Publish(ctx context.Context, eventType EventType, payload interface{}) error {
	eb.mu.RLock()
	handlers := eb.subscribers[eventType]
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return nil // No subscribers, which is fine
	}

	event := &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		SourceService: eb.serviceName,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
	}

	// Handlers run asynchronously so publishing never blocks a forecast
	for _, handler := range handlers {
		go func(h EventHandler) {
			if err := h(ctx, event); err != nil {
				eb.logger.WithError(err).WithFields(logrus.Fields{
					"event_id":   event.ID,
					"event_type": event.Type,
				}).Error("Event handler error")
			}
		}(handler)
	}

	return nil
}
