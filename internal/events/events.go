package events

// Publisher is the narrow port the core emits lifecycle events through.
// Publishing is fire-and-forget: a failed publish never fails the
// operation that triggered it.
type Publisher interface {
	Publish(topic string, payload map[string]any)
}

// NopPublisher discards every event. Used in tests and when no broker
// is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(string, map[string]any) {}
