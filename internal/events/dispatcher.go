package events

import (
	"go.uber.org/zap"
)

type message struct {
	topic   string
	payload map[string]any
}

// Sink is where the dispatcher drains queued events to (Redis in
// production, an in-memory collector in tests).
type Sink interface {
	Send(topic string, payload map[string]any) error
}

// Dispatcher decouples event emission from delivery: Publish enqueues
// and returns immediately, a single worker goroutine drains the queue.
// When the queue is full the event is dropped, never blocking the API.
type Dispatcher struct {
	sink   Sink
	logger *zap.Logger
	queue  chan message
}

func NewDispatcher(sink Sink, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		sink:   sink,
		logger: logger,
		queue:  make(chan message, 256),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for msg := range d.queue {
		if err := d.sink.Send(msg.topic, msg.payload); err != nil {
			d.logger.Warn("event publish failed",
				zap.String("topic", msg.topic),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) Publish(topic string, payload map[string]any) {
	select {
	case d.queue <- message{topic: topic, payload: payload}:
		// enqueued
	default:
		d.logger.Warn("event queue full, dropping event",
			zap.String("topic", topic),
		)
	}
}

// Close stops the worker after the queue drains.
func (d *Dispatcher) Close() {
	close(d.queue)
}

var _ Publisher = (*Dispatcher)(nil)
