package middleware

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageMiddlewareError is the error code returned by queue operations. Zero means success.
type MessageMiddlewareError int

const (
	MessageMiddlewareMessageError MessageMiddlewareError = iota + 1
	MessageMiddlewareDisconnectedError
	MessageMiddlewareCloseError
	MessageMiddlewareDeleteError
)

func (e MessageMiddlewareError) String() string {
	switch e {
	case 0:
		return "ok"
	case MessageMiddlewareMessageError:
		return "message error"
	case MessageMiddlewareDisconnectedError:
		return "disconnected"
	case MessageMiddlewareCloseError:
		return "close error"
	case MessageMiddlewareDeleteError:
		return "delete error"
	default:
		return "unknown middleware error"
	}
}

// AmqpChannel is the subset of *amqp.Channel used by producers.
type AmqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// MessageMiddlewareQueue binds a queue name to an open channel.
type MessageMiddlewareQueue struct {
	QueueName string
	Channel   AmqpChannel
}
