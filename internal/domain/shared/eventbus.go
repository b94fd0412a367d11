package shared

import "context"

// EventHandler consumes inventory events after the mutation that raised them
// has committed. A returned error is logged by the bus and never undoes the
// mutation.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types subscribed when Subscribe is given none
	EventTypes() []string
}

// EventPublisher is what the ledger, alert engine and forecast engine publish to
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is started by the server before the first mutation and stopped
// during shutdown. Publishing to a stopped bus drops the events.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
