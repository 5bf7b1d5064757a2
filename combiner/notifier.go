package main

import (
	"fmt"

	"github.com/altsource-combiner/protocol/signals"
	"github.com/altsource-combiner/shared/middleware"
	"github.com/altsource-combiner/shared/middleware/workerqueue"
)

// Notifier announces written catalog files
type Notifier interface {
	Notify(msg *signals.CatalogPublished) error
	Close()
}

// QueueNotifier publishes CatalogPublished signals on a durable RabbitMQ queue
type QueueNotifier struct {
	queue *workerqueue.QueueMiddleware
}

// NewQueueNotifier connects to RabbitMQ and declares the publish queue
func NewQueueNotifier(queueName string, config *middleware.ConnectionConfig) (*QueueNotifier, error) {
	queue, err := workerqueue.NewMessageMiddlewareQueue(queueName, config)
	if err != nil {
		return nil, err
	}
	if errCode := queue.DeclareQueue(true, false, false, false); errCode != 0 {
		queue.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %v", queueName, errCode)
	}

	return newQueueNotifier(queue), nil
}

func newQueueNotifier(queue *workerqueue.QueueMiddleware) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

// Notify implements Notifier
func (n *QueueNotifier) Notify(msg *signals.CatalogPublished) error {
	data, err := signals.SerializeCatalogPublished(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize notification for %s: %w", msg.FileName, err)
	}
	if errCode := n.queue.Send(data); errCode != 0 {
		return fmt.Errorf("failed to publish notification for %s: %v", msg.FileName, errCode)
	}
	return nil
}

// Close implements Notifier
func (n *QueueNotifier) Close() {
	n.queue.Close()
}
