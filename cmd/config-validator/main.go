package main

import (
	"fmt"
	"os"

	"github.com/chess10kp/tokie/internal/config"
)

func main() {
	configPath := "~/.config/tokie/config.toml"
	args := os.Args[1:]

	// --init writes the default config before validating it
	initDefault := len(args) > 0 && args[0] == "--init"
	if initDefault {
		args = args[1:]
	}
	if len(args) > 0 {
		configPath = args[0]
	}

	if initDefault {
		if _, err := os.Stat(config.ExpandPath(configPath)); err == nil {
			fmt.Printf("❌ %s already exists, not overwriting\n", configPath)
			os.Exit(1)
		}
		if err := config.SaveConfig(config.Default(), configPath); err != nil {
			fmt.Printf("❌ Failed to write default config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default config to %s\n", configPath)
	}

	fmt.Printf("Validating config: %s\n", configPath)

	cfg, err := config.LoadAndValidateConfig(configPath)
	if err != nil {
		fmt.Printf("❌ Config validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Config is valid! (%d services, socket %s)\n", len(cfg.Services), cfg.SocketPath)
	for _, s := range cfg.Services {
		fmt.Printf("  %-20s %s\n", s.Name, s.URL)
	}
}
