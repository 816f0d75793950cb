package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomWatchCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"roomName": args[0]}
			var result Room

			if err := client.Post("/create-room", req, &result); err != nil {
				return err
			}

			out := newCmdOutput(cmd)
			out.Print(result)
			return nil
		},
	}
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <token>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]

			var result Room

			if err := client.Get(fmt.Sprintf("/rooms/%s", url.PathEscape(token)), &result); err != nil {
				return err
			}

			out := newCmdOutput(cmd)
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <token> <player-name>",
		Short: "Join a room and receive two cards",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]
			req := map[string]string{"playerName": args[1]}

			var result Room

			if err := client.Post(fmt.Sprintf("/rooms/%s/players", url.PathEscape(token)), req, &result); err != nil {
				return err
			}

			out := newCmdOutput(cmd)
			out.Print(result)
			return nil
		},
	}
}
