package rabbitmq

import "context"

// PublisherInterface is what the service layer sees of the broker: one
// fire-and-forget publish per committed order operation. The AMQP-backed
// Publisher satisfies it in production, a testify mock in tests.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var _ PublisherInterface = (*Publisher)(nil)
