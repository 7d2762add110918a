package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chess10kp/tokie/internal/config"
	"github.com/chess10kp/tokie/internal/core"
	"github.com/chess10kp/tokie/internal/pidfile"
)

const defaultConfigPath = "~/.config/tokie/config.toml"

func configPath() string {
	if env := os.Getenv("TOKIE_CONFIG"); env != "" {
		return env
	}
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return defaultConfigPath
}

func main() {
	path := configPath()

	cfg, err := config.LoadAndValidateConfig(path)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		cfg = config.Default()
	}

	// Set up logging to file
	logPath := config.ExpandPath(cfg.LogFile)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.SetOutput(logFile)
			defer logFile.Close()
		}
	}

	// Ensure single instance
	pidFile := config.ExpandPath(cfg.PIDFile)
	if err := pidfile.Claim(pidFile, 3*time.Second); err != nil {
		log.Fatalf("Failed to ensure single instance: %v", err)
	}
	defer pidfile.Release(pidFile)

	app, err := core.NewApp(cfg, path)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
