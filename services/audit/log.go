// Package audit records an append-only event trail for every state mutation
// and periodically re-verifies the ledger's global invariants.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kpango/fastime"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
)

// EventType classifies audit events.
type EventType string

const (
	EventTransaction EventType = "transaction"
	EventGovernance  EventType = "governance"
	EventRejection   EventType = "rejection"
	EventViolation   EventType = "violation"
)

// Event is one immutable audit record.
type Event struct {
	EventID   string            `json:"event_id"`
	Type      EventType         `json:"type"`
	Actor     string            `json:"actor"`
	Target    string            `json:"target"`
	Amount    uint64            `json:"amount"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// Log is the append-only audit log. Events are kept in memory and, when a
// kafka producer is configured, published to the audit topic as well.
type Log struct {
	logger   ulogger.Logger
	mu       sync.Mutex
	events   []Event
	producer *Producer
}

func NewLog(logger ulogger.Logger, tSettings *settings.Settings) *Log {
	initPrometheusMetrics()

	l := &Log{
		logger: logger,
		events: make([]Event, 0),
	}

	if tSettings.Kafka.Hosts != "" {
		producer, err := NewProducer(logger, tSettings)
		if err != nil {
			logger.Errorf("audit log running without kafka: %v", err)
		} else {
			l.producer = producer
		}
	}

	return l
}

// Close flushes the kafka producer when one is attached.
func (l *Log) Close() error {
	if l.producer != nil {
		return l.producer.Close()
	}

	return nil
}

// Record appends an event. The event id and timestamp are assigned here so
// callers cannot forge them.
func (l *Log) Record(_ context.Context, eventType EventType, actor, target string, amount uint64, details map[string]string) Event {
	event := Event{
		EventID:   uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Target:    target,
		Amount:    amount,
		Timestamp: fastime.Now().UTC(),
		Details:   details,
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	prometheusAuditEvents.WithLabelValues(string(eventType)).Inc()

	if l.producer != nil {
		l.producer.Publish(event)
	}

	return event
}

// Events returns a snapshot of all recorded events in append order.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Event, len(l.events))
	copy(out, l.events)

	return out
}

// EventsByTarget returns all events touching target, in append order.
func (l *Log) EventsByTarget(target string) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Event, 0)

	for _, event := range l.events {
		if event.Target == target {
			out = append(out, event)
		}
	}

	return out
}
