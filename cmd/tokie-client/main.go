package main

import (
	"os"
	"time"

	"github.com/chess10kp/tokie/internal/config"
	"github.com/spf13/cobra"
)

var (
	socketPath string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "tokie-client",
	Short: "Control a running tokie shell",
	Long: `Send commands to the tokie shell over its unix socket.

The socket defaults to $TOKIE_SOCKET, then the socket_path of the shell config.`,
	SilenceUsage: true,
}

func defaultSocketPath() string {
	if env := os.Getenv("TOKIE_SOCKET"); env != "" {
		return env
	}
	cfg, err := config.LoadConfig(configPath())
	if err == nil && cfg.SocketPath != "" {
		return cfg.SocketPath
	}
	return config.DefaultConfig.SocketPath
}

func configPath() string {
	if env := os.Getenv("TOKIE_CONFIG"); env != "" {
		return env
	}
	return "~/.config/tokie/config.toml"
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", defaultSocketPath(), "path to the tokie socket")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Second, "how long to wait for the shell")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
