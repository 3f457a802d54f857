package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

//go:generate mockery --name Sender --filename sender.go

// ErrEmptyEvent is returned when decoded event carries no update time.
var ErrEmptyEvent = errors.New("event has no update time")

// DataUpdated announces that the backend finished refreshing flyer data.
type DataUpdated struct {
	LastUpdated   string `json:"lastUpdated"`
	HumanReadable string `json:"humanReadable,omitempty"`
}

// Sender sends messages.
type Sender interface {
	Send(context.Context, []byte) error
}

// DataUpdatedPublisher sends DataUpdated events.
type DataUpdatedPublisher struct {
	sender Sender
}

// NewDataUpdatedPublisher returns new DataUpdatedPublisher using provided sender for sending messages.
func NewDataUpdatedPublisher(sender Sender) DataUpdatedPublisher {
	return DataUpdatedPublisher{
		sender: sender,
	}
}

// SendDataUpdated sends event with provided update time.
func (p DataUpdatedPublisher) SendDataUpdated(ctx context.Context, lastUpdated, humanReadable string) error {
	event := DataUpdated{
		LastUpdated:   lastUpdated,
		HumanReadable: humanReadable,
	}

	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("can't marshal data updated event: %w", err)
	}

	return p.sender.Send(ctx, msg)
}

// DecodeDataUpdated decodes DataUpdated event from message body.
func DecodeDataUpdated(msg []byte) (DataUpdated, error) {
	var event DataUpdated
	if err := json.Unmarshal(msg, &event); err != nil {
		return DataUpdated{}, fmt.Errorf("can't decode data updated event: %w", err)
	}
	if event.LastUpdated == "" {
		return DataUpdated{}, ErrEmptyEvent
	}

	return event, nil
}
