package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

//go:generate mockery --name RabbitMQPublisher --filename rabbitmqpublisher.go

// ErrNoRoutingKey is returned when RabbitMQ sender is built without routing key.
var ErrNoRoutingKey = errors.New("routing key not set")

// RabbitMQPublisher publishes message bodies to exchange under routing key.
type RabbitMQPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// RabbitMQSender publishes event messages under a single routing key.
type RabbitMQSender struct {
	publisher  RabbitMQPublisher
	routingKey string
}

// NewRabbitMQSender returns RabbitMQSender publishing with publisher to routingKey.
func NewRabbitMQSender(publisher RabbitMQPublisher, routingKey string) (RabbitMQSender, error) {
	routingKey = strings.TrimSpace(routingKey)
	if routingKey == "" {
		return RabbitMQSender{}, ErrNoRoutingKey
	}

	return RabbitMQSender{
		publisher:  publisher,
		routingKey: routingKey,
	}, nil
}

// NewDataUpdatedRabbitMQPublisher returns DataUpdatedPublisher announcing data updates to routingKey.
func NewDataUpdatedRabbitMQPublisher(publisher RabbitMQPublisher, routingKey string) (DataUpdatedPublisher, error) {
	sender, err := NewRabbitMQSender(publisher, routingKey)
	if err != nil {
		return DataUpdatedPublisher{}, fmt.Errorf("can't create data updated publisher: %w", err)
	}

	return NewDataUpdatedPublisher(sender), nil
}

// RoutingKey returns routing key messages are published to.
func (s RabbitMQSender) RoutingKey() string {
	return s.routingKey
}

// Send publishes msg to sender's routing key.
func (s RabbitMQSender) Send(ctx context.Context, msg []byte) error {
	if err := s.publisher.Publish(ctx, s.routingKey, msg); err != nil {
		return fmt.Errorf("can't publish event to %q: %w", s.routingKey, err)
	}

	return nil
}
