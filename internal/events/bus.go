// Package events provides the in-process bus that decouples the envelope
// state machine from its consumers (webhook dispatcher, future audit sinks).
//
// Publishing never blocks the request path: events go into a buffered channel
// and a single goroutine fans them out to registered handlers in order. When
// the buffer is full the event is dropped and counted; webhook consumers can
// recover dropped envelope history through historical republishing.
package events

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "esign_events_dropped_total",
	Help: "Lifecycle events dropped because the bus buffer was full.",
})

// Handler consumes one lifecycle event. Handlers run on the bus goroutine and
// should hand long work off to their own workers.
type Handler interface {
	HandleEvent(ctx context.Context, ev domain.Event)
}

// Bus is a buffered, single-consumer-loop event fan-out.
type Bus struct {
	ch       chan domain.Event
	handlers []Handler
	log      zerolog.Logger
}

// NewBus builds a bus with the given buffer size (minimum 1).
func NewBus(buffer int, log zerolog.Logger) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{
		ch:  make(chan domain.Event, buffer),
		log: log,
	}
}

// Register adds a handler. Call before Run; registration is not synchronized
// with a running loop.
func (b *Bus) Register(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Publish enqueues an event without blocking. A full buffer drops the event.
func (b *Bus) Publish(ev domain.Event) {
	select {
	case b.ch <- ev:
	default:
		droppedEvents.Inc()
		b.log.Warn().
			Str("event_type", ev.EventType()).
			Str("envelope_id", ev.EventEnvelopeID()).
			Msg("event bus full, event dropped")
	}
}

// Run dispatches events to handlers until the context is cancelled. Events
// already buffered when cancellation hits are abandoned.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.ch:
			for _, h := range b.handlers {
				h.HandleEvent(ctx, ev)
			}
		}
	}
}
