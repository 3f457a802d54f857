package handler

import (
	"context"
	"fmt"

	"github.com/MichalMitros/flyer-shopper/internal/platform/rabbitmq"
	"github.com/MichalMitros/flyer-shopper/pkg/v1/events"
	"github.com/rs/zerolog"
)

//go:generate mockery --name Consumer --filename consumer.go
//go:generate mockery --name Refresher --filename refresher.go

// Consumer consumes messages from queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler rabbitmq.HandlerFunc) (<-chan error, error)
}

// Refresher refetches flyer catalog.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RMQHandler refreshes catalog when data updated events arrive.
type RMQHandler struct {
	consumer  Consumer
	refresher Refresher
	logger    *zerolog.Logger
	onEvent   func(events.DataUpdated)
}

// NewHandler returns new RMQHandler. onEvent, when not nil, is called after each successful refresh.
func NewHandler(consumer Consumer, refresher Refresher, logger *zerolog.Logger, onEvent func(events.DataUpdated)) *RMQHandler {
	return &RMQHandler{
		consumer:  consumer,
		refresher: refresher,
		logger:    logger,
		onEvent:   onEvent,
	}
}

// Start starts consuming and handling data updated events from RMQ.
// Returned channel is closed when consuming stops.
func (h *RMQHandler) Start(ctx context.Context, queue string) (<-chan struct{}, error) {
	errorsChan, err := h.consumer.Consume(ctx, queue, h.Handle)
	if err != nil {
		return nil, fmt.Errorf("can't consume %q: %w", queue, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for err := range errorsChan {
			h.logger.Error().
				Err(err).
				Msg("can't handle message")
		}
	}()

	return done, nil
}

// Handle decodes data updated event and refreshes catalog.
func (h *RMQHandler) Handle(ctx context.Context, message []byte) error {
	event, err := events.DecodeDataUpdated(message)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Str("lastUpdated", event.LastUpdated).
		Msg("refreshing catalog after data update")

	if err := h.refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	if h.onEvent != nil {
		h.onEvent(event)
	}

	return nil
}
