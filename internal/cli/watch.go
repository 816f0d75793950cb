package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/couplobby/internal/messaging"
	"github.com/mcoot/couplobby/internal/model"
	"github.com/mcoot/couplobby/internal/publisher"
	"github.com/mcoot/couplobby/internal/pubsub"
	natsbroker "github.com/mcoot/couplobby/internal/pubsub/nats"
	"github.com/mcoot/couplobby/internal/wire"
)

// stateRequestTopic carries state requests; over NATS it is app.state-game
var stateRequestTopic = strings.TrimPrefix(messaging.StateGameDestination, "/")

func newRoomWatchCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch <token>",
		Short: "Stream membership snapshots of a room over NATS",
		Long: `Subscribe to the room's state topic on NATS and print every snapshot as it
is published. The current state is requested on connect.

A snapshot that cannot be decoded is reported together with its raw payload,
and the last valid state is kept.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := model.RoomToken(args[0])

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			natsCfg := natsbroker.DefaultConfig()
			natsCfg.URL = cfg.NATSURL
			natsCfg.Name = "couplobby-cli"
			broker, err := natsbroker.Connect(natsCfg, logger)
			if err != nil {
				return fmt.Errorf("connection failed: %w", err)
			}
			defer func() { _ = broker.Close() }()

			out := newCmdOutput(cmd)
			if cfg.Output != "json" {
				out.PrintMessage(fmt.Sprintf("Watching room %s", token))
			}
			return watchRoom(ctx, broker, token, count, out)
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many snapshots (0 streams until interrupted)")

	return cmd
}

// watchRoom prints snapshots of token until ctx ends or limit payloads
// have been received. A limit of zero or less means no limit.
func watchRoom(ctx context.Context, broker pubsub.Broker, token model.RoomToken, limit int, out *Output) error {
	payloads := make(chan []byte, 64)
	done := make(chan struct{})

	sub, err := broker.Subscribe(publisher.StateTopic(token), func(msg pubsub.Message) {
		select {
		case payloads <- msg.Payload:
		case <-done:
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}
	defer func() { _ = sub.Unsubscribe() }()
	defer close(done)

	// Ask for the current state so the view starts populated
	if err := broker.Publish(ctx, stateRequestTopic, []byte(token)); err != nil {
		return fmt.Errorf("state request failed: %w", err)
	}

	view := NewRoomView(wire.Legacy{})
	for received := 0; limit <= 0 || received < limit; received++ {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-payloads:
			out.Print(view.event(payload, time.Now()))
		}
	}
	return nil
}
