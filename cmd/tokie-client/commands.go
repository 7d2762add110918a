package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/chess10kp/tokie/internal/ipc"
	"github.com/spf13/cobra"
)

// ErrShellRefused is returned when the shell answers with an error reply
var ErrShellRefused = errors.New("shell refused request")

var openURL string

var openCmd = &cobra.Command{
	Use:   "open [service]",
	Short: "Show the view for a service, creating it if needed",
	Long: `Makes the view for a service the only visible view besides the main window.

The service is matched against the configured services. With --url any name
may be opened and the url is used for a newly created view.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, ipc.Request{Command: ipc.CmdOpen, Service: args[0], URL: openURL})
	},
}

var hideCmd = &cobra.Command{
	Use:   "hide [service]",
	Short: "Hide the view for a service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, ipc.Request{Command: ipc.CmdHide, Service: args[0]})
	},
}

var exclusiveCmd = &cobra.Command{
	Use:   "exclusive [service]",
	Short: "Hide every view except the one for a service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, ipc.Request{Command: ipc.CmdExclusive, Service: args[0]})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List views and their visibility",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reply, err := ipc.Send(socketPath, ipc.Request{Command: ipc.CmdList}, timeout)
		if err != nil {
			return err
		}
		if !reply.OK {
			return refused(reply)
		}
		cmd.Print(renderViews(reply.Lines))
		return nil
	},
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List configured services",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reply, err := ipc.Send(socketPath, ipc.Request{Command: ipc.CmdServices}, timeout)
		if err != nil {
			return err
		}
		if !reply.OK {
			return refused(reply)
		}
		for _, name := range reply.Lines {
			cmd.Println(name)
		}
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the shell is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd, ipc.Request{Command: ipc.CmdPing})
	},
}

var libraryCmd = &cobra.Command{
	Use:   "library [path]",
	Short: "List the video files of a media folder",
	Long: `Scans a media folder and prints its folders and video files.

Without a path the shell scans the folder chosen in the sidebar, or the
library root from its config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := ipc.Request{Command: ipc.CmdLibrary}
		if len(args) == 1 {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			req.Path = path
		}
		return run(cmd, req)
	},
}

func init() {
	openCmd.Flags().StringVar(&openURL, "url", "", "url to load when the view is created")

	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(exclusiveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(libraryCmd)
}

func run(cmd *cobra.Command, req ipc.Request) error {
	reply, err := ipc.Send(socketPath, req, timeout)
	if err != nil {
		return err
	}
	if !reply.OK {
		return refused(reply)
	}
	cmd.Print(renderReply(reply))
	return nil
}

func refused(reply ipc.Reply) error {
	if reply.Label != "" {
		return fmt.Errorf("%w: %s: %s", ErrShellRefused, reply.Label, reply.Message)
	}
	return fmt.Errorf("%w: %s", ErrShellRefused, reply.Message)
}
