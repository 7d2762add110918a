package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	AppName    string          `toml:"app_name"`
	AppID      string          `toml:"app_id"`
	SocketPath string          `toml:"socket_path"`
	PIDFile    string          `toml:"pid_file"`
	LogFile    string          `toml:"log_file"`
	ConfigDir  string          `toml:"config_dir"`
	Window     WindowConfig    `toml:"window"`
	Views      ViewsConfig     `toml:"views"`
	IPC        IPCConfig       `toml:"ipc"`
	WM         WMConfig        `toml:"wm"`
	Bus        BusConfig       `toml:"bus"`
	Library    LibraryConfig   `toml:"library"`
	Styling    StylingConfig   `toml:"styling"`
	Services   []ServiceConfig `toml:"services"`
}

type WindowConfig struct {
	Title        string `toml:"title"`
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	Resizable    bool   `toml:"resizable"`
	Decorated    bool   `toml:"decorated"`
	SidebarWidth int    `toml:"sidebar_width"`
	IconSize     int    `toml:"icon_size"`
	FallbackIcon string `toml:"fallback_icon"`
	IconCache    int    `toml:"icon_cache_size"`
	LayerShell   bool   `toml:"layer_shell"`
	Anchor       string `toml:"anchor"` // left, right, top, bottom, fill
}

type ViewsConfig struct {
	CommandTimeout int  `toml:"command_timeout_ms"`
	RequestTimeout int  `toml:"request_timeout_ms"`
	DedupeRequests bool `toml:"dedupe_requests"`
}

type IPCConfig struct {
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`
	ReadTimeout   int     `toml:"read_timeout_ms"`
}

type WMConfig struct {
	FocusOnOpen bool `toml:"focus_on_open"`
}

// BusConfig controls the D-Bus control interface
type BusConfig struct {
	Enabled bool   `toml:"enabled"`
	Name    string `toml:"name"`
}

// LibraryConfig points at the local media folder
type LibraryConfig struct {
	Root string `toml:"root"`
}

type StylingConfig struct {
	BackgroundColor string `toml:"background_color"`
	ForegroundColor string `toml:"foreground_color"`
	SidebarColor    string `toml:"sidebar_color"`
	AccentColor     string `toml:"accent_color"`
	ButtonHover     string `toml:"button_hover"`
	FontFamily      string `toml:"font_family"`
	FontSize        int    `toml:"font_size"`
	CustomCSS       string `toml:"custom_css"`
}

// ServiceConfig is one entry of the sidebar
type ServiceConfig struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
	Icon string `toml:"icon"`
}

var DefaultConfig = Config{
	AppName:    "tokie",
	AppID:      "com.github.chess10kp.tokie",
	SocketPath: "/tmp/tokie_socket",
	PIDFile:    "/tmp/tokie.pid",
	LogFile:    "~/.cache/tokie/tokie.log",
	ConfigDir:  "~/.config/tokie",
	Window: WindowConfig{
		Title:        "tokie",
		Width:        1280,
		Height:       800,
		Resizable:    true,
		Decorated:    true,
		SidebarWidth: 60,
		IconSize:     32,
		FallbackIcon: "applications-internet",
		IconCache:    100,
		LayerShell:   false,
		Anchor:       "fill",
	},
	Views: ViewsConfig{
		CommandTimeout: 2000,
		RequestTimeout: 10000,
		DedupeRequests: true,
	},
	IPC: IPCConfig{
		RatePerSecond: 20,
		Burst:         10,
		ReadTimeout:   1000,
	},
	WM: WMConfig{
		FocusOnOpen: true,
	},
	Bus: BusConfig{
		Enabled: false,
		Name:    "com.github.chess10kp.tokie",
	},
	Library: LibraryConfig{
		Root: "~/Videos",
	},
	Styling: StylingConfig{
		BackgroundColor: "#0e1419",
		ForegroundColor: "#ebdbb2",
		SidebarColor:    "#181825",
		AccentColor:     "#89b4fa",
		ButtonHover:     "#313244",
		FontFamily:      "Iosevka, monospace",
		FontSize:        14,
		CustomCSS:       "~/.config/tokie/style.css",
	},
	Services: []ServiceConfig{
		{Name: "anilist", URL: "https://anilist.co", Icon: "applications-multimedia"},
		{Name: "myanimelist", URL: "https://myanimelist.net", Icon: "view-list"},
	},
}

// Default returns a copy of DefaultConfig that is safe to mutate
func Default() *Config {
	cfg := DefaultConfig
	cfg.Services = append([]ServiceConfig(nil), DefaultConfig.Services...)
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	expandedPath := ExpandPath(path)

	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, err
	}

	// Start from defaults so a partial file only overrides what it names
	cfg := Default()
	cfg.Services = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.SocketPath = ExpandPath(cfg.SocketPath)
	cfg.PIDFile = ExpandPath(cfg.PIDFile)
	cfg.LogFile = ExpandPath(cfg.LogFile)
	cfg.ConfigDir = ExpandPath(cfg.ConfigDir)
	cfg.Styling.CustomCSS = ExpandPath(cfg.Styling.CustomCSS)
	cfg.Library.Root = ExpandPath(cfg.Library.Root)

	return cfg, nil
}

func LoadAndValidateConfig(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ExpandPath replaces a leading ~ with the current user's home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		usr, err := user.Current()
		if err == nil {
			return filepath.Join(usr.HomeDir, path[1:])
		}
	}
	return path
}

func SaveConfig(cfg *Config, path string) error {
	expandedPath := ExpandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(expandedPath, data, 0644)
}

func (c *Config) Validate() error {
	if c.SocketPath == "" {
		return fmt.Errorf("socket_path must not be empty")
	}
	if err := c.validateWindow(); err != nil {
		return err
	}
	if err := c.validateViews(); err != nil {
		return err
	}
	if err := c.validateIPC(); err != nil {
		return err
	}
	if c.Bus.Enabled && !strings.Contains(c.Bus.Name, ".") {
		return fmt.Errorf("invalid bus name: %q (must be a dotted well-known name)", c.Bus.Name)
	}
	if err := c.validateServices(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWindow() error {
	w := c.Window
	if w.Width < 200 || w.Width > 8000 {
		return fmt.Errorf("invalid window width: %d (must be 200-8000)", w.Width)
	}
	if w.Height < 200 || w.Height > 8000 {
		return fmt.Errorf("invalid window height: %d (must be 200-8000)", w.Height)
	}
	if w.SidebarWidth < 0 || w.SidebarWidth >= w.Width {
		return fmt.Errorf("invalid sidebar_width: %d (must be 0-%d)", w.SidebarWidth, w.Width-1)
	}
	if w.IconSize < 16 || w.IconSize > 256 {
		return fmt.Errorf("invalid icon_size: %d (must be 16-256)", w.IconSize)
	}
	if w.IconCache < 10 || w.IconCache > 10000 {
		return fmt.Errorf("invalid icon_cache_size: %d (must be 10-10000)", w.IconCache)
	}
	if w.Anchor != "" {
		validAnchors := map[string]bool{
			"left": true, "right": true, "top": true, "bottom": true, "fill": true,
		}
		if !validAnchors[w.Anchor] {
			return fmt.Errorf("invalid window anchor: %s (must be one of: left, right, top, bottom, fill)", w.Anchor)
		}
	}
	return nil
}

func (c *Config) validateViews() error {
	if c.Views.CommandTimeout < 0 || c.Views.CommandTimeout > 60000 {
		return fmt.Errorf("invalid command_timeout_ms: %d (must be 0-60000)", c.Views.CommandTimeout)
	}
	if c.Views.RequestTimeout < 0 || c.Views.RequestTimeout > 300000 {
		return fmt.Errorf("invalid request_timeout_ms: %d (must be 0-300000)", c.Views.RequestTimeout)
	}
	return nil
}

func (c *Config) validateIPC() error {
	if c.IPC.RatePerSecond < 0 || c.IPC.RatePerSecond > 10000 {
		return fmt.Errorf("invalid rate_per_second: %v (must be 0-10000, 0 disables limiting)", c.IPC.RatePerSecond)
	}
	if c.IPC.RatePerSecond > 0 && c.IPC.Burst < 1 {
		return fmt.Errorf("invalid burst: %d (must be >= 1 when rate limiting is enabled)", c.IPC.Burst)
	}
	if c.IPC.ReadTimeout < 0 || c.IPC.ReadTimeout > 60000 {
		return fmt.Errorf("invalid read_timeout_ms: %d (must be 0-60000)", c.IPC.ReadTimeout)
	}
	return nil
}

func (c *Config) validateServices() error {
	seen := make(map[string]bool)
	for i, s := range c.Services {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("service %d: name must not be empty", i)
		}
		if strings.ContainsAny(s.Name, " \t\n") {
			return fmt.Errorf("service %q: name must not contain whitespace", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("service %q defined more than once", s.Name)
		}
		seen[s.Name] = true

		if _, err := ParseServiceURL(s.URL); err != nil {
			return fmt.Errorf("service %q: %w", s.Name, err)
		}
	}
	return nil
}
