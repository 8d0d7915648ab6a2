package messaging

import "context"

// Broker publishes notification events to interested consumers. The
// reminder due-check loop publishes through it; a UI or mobile push
// gateway subscribes on the other side.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
