package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/couplobby/internal/model"
	"github.com/mcoot/couplobby/internal/pubsub"
)

// ErrorReport is the payload published on a room's error topic
type ErrorReport struct {
	Destination string `json:"destination"`
	Error       string `json:"error"`
	Message     string `json:"message"`
}

// ErrorPublisher reports failed inbound requests on the room's error topic
type ErrorPublisher struct {
	broker pubsub.Broker
}

// NewErrorPublisher creates a new ErrorPublisher
func NewErrorPublisher(broker pubsub.Broker) *ErrorPublisher {
	return &ErrorPublisher{broker: broker}
}

func (p *ErrorPublisher) PublishError(ctx context.Context, token model.RoomToken, destination string, cause error) error {
	payload, err := json.Marshal(ErrorReport{
		Destination: destination,
		Error:       ErrorKind(cause),
		Message:     cause.Error(),
	})
	if err != nil {
		return err
	}
	topic := ErrorTopic(token)
	if err := p.broker.Publish(ctx, topic, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// ErrorKind classifies an error for clients
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, model.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, model.ErrEncodingFailure):
		return "encoding_failure"
	default:
		return "internal"
	}
}
