package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// HandlerFunc is function which handles messages.
type HandlerFunc func(ctx context.Context, message []byte) error

// RabbitMQ publishes events to a topic exchange and consumes them from bound queues.
type RabbitMQ struct {
	channel   *amqp.Channel
	exchange  string
	isRunning chan struct{}
}

// NewRabbitMQ opens channel on connection and declares the durable topic exchange.
func NewRabbitMQ(connection *amqp.Connection, exchange string) (*RabbitMQ, error) {
	channel, err := connection.Channel()
	if err != nil {
		return nil, fmt.Errorf("can't open channel: %w", err)
	}

	err = channel.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil)
	if err != nil {
		_ = channel.Close()
		return nil, fmt.Errorf("can't declare exchange %q: %w", exchange, err)
	}

	mq := RabbitMQ{
		channel:  channel,
		exchange: exchange,
	}

	return &mq, nil
}

// BindQueue declares queue and binds it to routing key of the exchange.
// Empty queue name declares an exclusive queue named by the server. Returns queue name.
func (mq *RabbitMQ) BindQueue(queue, routingKey string) (string, error) {
	exclusive := queue == ""
	q, err := mq.channel.QueueDeclare(queue, !exclusive, exclusive, exclusive, false, nil)
	if err != nil {
		return "", fmt.Errorf("can't declare queue %q: %w", queue, err)
	}

	if err := mq.channel.QueueBind(q.Name, routingKey, mq.exchange, false, nil); err != nil {
		return "", fmt.Errorf("can't bind queue %q to %q: %w", q.Name, routingKey, err)
	}

	return q.Name, nil
}

// Publish publishes message to routing key.
func (mq *RabbitMQ) Publish(ctx context.Context, routingKey string, message []byte) error {
	messageID, err := uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("can't create message ID: %w", err)
	}

	msg := amqp.Publishing{
		ContentType: "application/json",
		MessageId:   messageID.String(),
		Timestamp:   time.Now().UTC(),
		Body:        message,
	}

	err = mq.channel.PublishWithContext(
		ctx,
		mq.exchange,
		routingKey,
		false,
		false,
		msg,
	)
	if err != nil {
		return fmt.Errorf("can't publish to %q: %w", routingKey, err)
	}

	return nil
}

// Consume consumes messages from queue and passes deliveries to provided handler function.
// It returns channel with errors from handler function and consuming process.
// Function works asynchronously, it consumes messages in background as long as context is not closed.
func (mq *RabbitMQ) Consume(ctx context.Context, queue string, handler HandlerFunc) (<-chan error, error) {
	consumerID, err := uuid.NewUUID()
	if err != nil {
		return nil, fmt.Errorf("can't create consumer ID: %w", err)
	}

	deliveries, err := mq.channel.ConsumeWithContext(
		ctx,
		queue,
		consumerID.String(),
		false, // auto acknowledge
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("can't start consuming: %w", err)
	}

	consumingErrors := make(chan error)
	mq.isRunning = make(chan struct{})
	go func() {
		defer close(mq.isRunning)
		defer close(consumingErrors)
		consumeMessages(ctx, deliveries, consumingErrors, handler)
	}()

	return consumingErrors, nil
}

// Done returns channel which will be closed when consuming will be finished.
func (mq *RabbitMQ) Done() chan struct{} {
	return mq.isRunning
}

// Close closes the channel.
func (mq *RabbitMQ) Close() error {
	if err := mq.channel.Close(); err != nil {
		return fmt.Errorf("can't close channel: %w", err)
	}
	return nil
}

// Acknowledger settles delivered messages.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Delivery is a consumed message.
type Delivery struct {
	Acknowledger
	Body []byte
}

func consumeMessages(
	ctx context.Context,
	deliveries <-chan amqp.Delivery,
	consumingErrors chan error,
	handler HandlerFunc,
) {
	for delivery := range deliveries {
		msg := Delivery{Acknowledger: &delivery, Body: delivery.Body}
		if err := handleDelivery(ctx, msg, consumingErrors, handler); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// handleDelivery acks handled messages and nacks failed ones without requeueing.
// Returns error only when the context is done.
func handleDelivery(ctx context.Context, delivery Delivery, consumingErrors chan error, handler HandlerFunc) error {
	if err := handler(ctx, delivery.Body); err != nil {
		if pushErr := pushError(ctx, err, consumingErrors); pushErr != nil {
			return pushErr
		}
		if err := delivery.Nack(false, false); err != nil {
			return pushError(ctx, fmt.Errorf("can't nack message: %w", err), consumingErrors)
		}
		return nil
	}

	if err := delivery.Ack(false); err != nil {
		return pushError(ctx, fmt.Errorf("can't ack message: %w", err), consumingErrors)
	}

	return nil
}

func pushError(ctx context.Context, err error, errChan chan error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case errChan <- err:
	}
	return nil
}
