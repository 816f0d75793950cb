// Package messaging routes inbound client messages to the room coordinator
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/couplobby/internal/model"
)

const (
	// StateGameDestination asks for the current state of the room named in the body
	StateGameDestination = "/app/state-game"

	// JoinGamePrefix is followed by the room token; the body is the player name
	JoinGamePrefix = "/app/join-game/"
)

// ErrUnknownDestination is returned for messages no route accepts
var ErrUnknownDestination = errors.New("unknown destination")

// Rooms is the subset of the coordinator inbound messages drive
type Rooms interface {
	RequestState(ctx context.Context, token model.RoomToken) (model.RoomSnapshot, error)
	JoinRoom(ctx context.Context, token model.RoomToken, playerName string) (model.RoomSnapshot, error)
}

// ErrorReporter publishes a failed request back to the room's observers
type ErrorReporter interface {
	PublishError(ctx context.Context, token model.RoomToken, destination string, cause error) error
}

// Router dispatches messages by destination. Results are broadcast by the
// coordinator, so a successful dispatch has nothing to return.
type Router struct {
	rooms    Rooms
	reporter ErrorReporter
	logger   *slog.Logger
}

// NewRouter creates a new Router. reporter may be nil, in which case
// failures are only logged.
func NewRouter(rooms Rooms, reporter ErrorReporter, logger *slog.Logger) *Router {
	return &Router{
		rooms:    rooms,
		reporter: reporter,
		logger:   logger.With(slog.String("component", "messaging")),
	}
}

// Dispatch handles one inbound message
func (r *Router) Dispatch(ctx context.Context, destination string, body []byte) error {
	token, err := r.route(ctx, destination, body)
	if err != nil {
		r.fail(ctx, token, destination, err)
	}
	return err
}

func (r *Router) route(ctx context.Context, destination string, body []byte) (model.RoomToken, error) {
	switch {
	case destination == StateGameDestination:
		token := model.RoomToken(strings.TrimSpace(string(body)))
		if token == "" {
			return "", fmt.Errorf("%w: room token is required", model.ErrInvalidRequest)
		}
		_, err := r.rooms.RequestState(ctx, token)
		return token, err

	case strings.HasPrefix(destination, JoinGamePrefix):
		token := model.RoomToken(strings.TrimPrefix(destination, JoinGamePrefix))
		if token == "" || strings.Contains(string(token), "/") {
			return "", fmt.Errorf("%w: %s", ErrUnknownDestination, destination)
		}
		_, err := r.rooms.JoinRoom(ctx, token, string(body))
		return token, err

	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownDestination, destination)
	}
}

func (r *Router) fail(ctx context.Context, token model.RoomToken, destination string, cause error) {
	r.logger.Warn("inbound message failed",
		slog.String("destination", destination),
		slog.String("token", string(token)),
		slog.String("error", cause.Error()),
	)
	if r.reporter == nil || token == "" {
		return
	}
	if err := r.reporter.PublishError(ctx, token, destination, cause); err != nil {
		r.logger.Warn("failed to report inbound error",
			slog.String("token", string(token)),
			slog.String("error", err.Error()),
		)
	}
}
