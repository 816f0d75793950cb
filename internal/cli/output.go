package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

func newCmdOutput(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errOut, string(data))
	} else {
		fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.out, string(data))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	if _, ok := data.(WatchEvent); !ok {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case WatchEvent:
		o.printWatchEvent(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Room response type (matches API)
type Room struct {
	Token    string   `json:"token"`
	RoomName string   `json:"roomName"`
	Players  []Player `json:"players"`
}

// Player response type
type Player struct {
	PlayerID   string   `json:"playerId"`
	PlayerName string   `json:"playerName"`
	Cards      []string `json:"cards"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r Room) {
	fmt.Fprintf(o.out, "Room: %s\n", r.RoomName)
	fmt.Fprintf(o.out, "Token: %s\n", r.Token)
	o.printPlayers(r.Players)
}

func (o *Output) printPlayers(players []Player) {
	fmt.Fprintf(o.out, "Players (%d):\n", len(players))
	for _, p := range players {
		fmt.Fprintf(o.out, "  - %s [%s] (%s)\n", p.PlayerName, strings.Join(p.Cards, ", "), p.PlayerID)
	}
}

func (o *Output) printWatchEvent(e WatchEvent) {
	timestamp := e.Time.Format("2006-01-02 15:04:05")
	if e.Error != "" {
		// Truncate data if it's too long for display
		raw := e.Raw
		if len(raw) > 100 {
			raw = raw[:100] + "..."
		}
		fmt.Fprintf(o.out, "[%s] undecodable snapshot (%s): %s\n", timestamp, e.Error, raw)
		return
	}
	fmt.Fprintf(o.out, "[%s] %s\n", timestamp, e.Room.RoomName)
	o.printPlayers(e.Room.Players)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.out, "Status: %s\n", h.Status)
}
