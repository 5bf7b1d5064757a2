package workerqueue

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/altsource-combiner/shared/middleware"
)

const (
	componentName        = "Queue Producer"
	publishTimeout       = 5 * time.Second
	connectRetries       = 5
	connectRetryInterval = 2 * time.Second
)

// QueueMiddleware wraps the middleware.MessageMiddlewareQueue with additional methods
type QueueMiddleware struct {
	*middleware.MessageMiddlewareQueue
	conn *amqp.Connection
}

// NewMessageMiddlewareQueue creates a new QueueMiddleware instance on its own connection,
// retrying while the broker comes up.
func NewMessageMiddlewareQueue(queueName string, config *middleware.ConnectionConfig) (*QueueMiddleware, error) {
	conn, err := middleware.WaitForConnection(config, connectRetries, connectRetryInterval)
	if err != nil {
		return nil, err
	}

	channel, err := middleware.CreateChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	qm := NewQueueOnChannel(queueName, channel)
	qm.conn = conn
	return qm, nil
}

// NewQueueOnChannel wraps an already open channel
func NewQueueOnChannel(queueName string, channel middleware.AmqpChannel) *QueueMiddleware {
	return &QueueMiddleware{
		MessageMiddlewareQueue: &middleware.MessageMiddlewareQueue{
			QueueName: queueName,
			Channel:   channel,
		},
	}
}

// DeclareQueue declares the queue on the RabbitMQ server.
// Parameters:
//   - durable: If true, the queue will survive server restarts
//   - autoDelete: If true, the queue will be deleted when no longer used
//   - exclusive: If true, the queue can only be used by one connection
//   - noWait: If true, don't wait for a server response
func (m *QueueMiddleware) DeclareQueue(
	durable bool,
	autoDelete bool,
	exclusive bool,
	noWait bool,
) middleware.MessageMiddlewareError {
	if m.Channel == nil {
		return middleware.MessageMiddlewareDisconnectedError
	}

	_, err := m.Channel.QueueDeclare(
		m.QueueName,
		durable,
		autoDelete,
		exclusive,
		noWait,
		nil, // arguments
	)
	if err != nil {
		middleware.LogError(componentName, "queue '%s': failed to declare queue: %v", m.QueueName, err)
		return middleware.MessageMiddlewareMessageError
	}

	middleware.LogDebug(componentName, "queue '%s': declared (durable: %t)", m.QueueName, durable)
	return 0
}

// Send publishes a persistent message on the default exchange routed to the queue.
func (m *QueueMiddleware) Send(
	message []byte,
) middleware.MessageMiddlewareError {
	if m.Channel == nil {
		return middleware.MessageMiddlewareDisconnectedError
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := m.Channel.PublishWithContext(
		ctx,
		"",          // exchange (empty for default queue)
		m.QueueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/octet-stream",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         message,
		},
	)
	if err != nil {
		middleware.LogError(componentName, "queue '%s': send error: %v", m.QueueName, err)
		return middleware.MessageMiddlewareMessageError
	}
	middleware.LogDebug(componentName, "queue '%s': message sent (%d bytes)", m.QueueName, len(message))

	return 0
}

// Close disconnects the channel and, when owned, the connection.
func (m *QueueMiddleware) Close() middleware.MessageMiddlewareError {
	if m.Channel == nil {
		return 0 // Already closed
	}

	err := m.Channel.Close()
	m.Channel = nil
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	if err != nil {
		middleware.LogError(componentName, "queue '%s': close error: %v", m.QueueName, err)
		return middleware.MessageMiddlewareCloseError
	}

	return 0
}
