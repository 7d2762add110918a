package core

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/chess10kp/tokie/internal/bus"
	"github.com/chess10kp/tokie/internal/catalog"
	"github.com/chess10kp/tokie/internal/config"
	"github.com/chess10kp/tokie/internal/ipc"
	"github.com/chess10kp/tokie/internal/shell"
	"github.com/chess10kp/tokie/internal/views"
	"github.com/chess10kp/tokie/internal/wm"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
)

// App is main application
type App struct {
	config     *config.Config
	configPath string
	running    bool
	mu         sync.Mutex
	sigChan    chan os.Signal
	cancel     context.CancelFunc

	registry   *shell.Registry
	host       *shell.Host
	sidebar    *shell.Sidebar
	icons      *shell.IconCache
	manager    *views.Manager
	catalog    *catalog.Catalog
	controller *Controller
	ipc        *ipc.Server
	focuser    *wm.Focuser
	bus        *bus.Service
}

// NewApp creates a new application. configPath is watched for changes; it
// may be empty to disable reloading.
func NewApp(cfg *config.Config, configPath string) (*App, error) {
	return &App{
		config:     cfg,
		configPath: configPath,
		sigChan:    make(chan os.Signal, 1),
	}, nil
}

// Run starts the application and blocks until the GTK loop exits
func (a *App) Run() error {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()

	signal.Notify(a.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-a.sigChan
		log.Printf("Received signal: %v", sig)
		a.Quit()
	}()

	log.Println("tokie starting...")

	if err := a.initialize(); err != nil {
		a.shutdown()
		return err
	}

	gtk.Main()
	a.shutdown()
	return nil
}

func (a *App) initialize() error {
	log.Println("Initializing components...")

	glib.SetPrgname(a.config.AppID)
	gtk.Init(nil)

	shell.SetupStyles(a.config.Styling)
	shell.LoadCustomCSS(a.config.Styling.CustomCSS)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go a.monitorGTKMainLoop(ctx)

	a.registry = shell.NewRegistry()
	host, err := shell.NewHost(a.config, a.registry)
	if err != nil {
		return err
	}
	a.host = host
	host.Window().Connect("destroy", func() {
		a.Quit()
	})

	opts := []views.Option{
		views.WithTimeout(time.Duration(a.config.Views.RequestTimeout) * time.Millisecond),
	}
	if !a.config.Views.DedupeRequests {
		opts = append(opts, views.WithoutDedup())
	}
	a.manager = views.NewManager(host, opts...)
	a.catalog = catalog.New(a.config.Services)
	a.controller = NewController(a.catalog, a.manager, host)
	a.controller.SetLibraryRoot(a.config.Library.Root)

	icons, err := shell.NewIconCache(a.config)
	if err != nil {
		log.Printf("Failed to create icon cache: %v", err)
		icons = nil
	}
	a.icons = icons

	sidebar, err := shell.NewSidebar(icons, a.config.Window.IconSize, a.openFromSidebar)
	if err != nil {
		log.Printf("Failed to create sidebar: %v", err)
	} else {
		a.sidebar = sidebar
		sidebar.SetServices(a.catalog.All())
		if err := sidebar.SetLibraryAction(a.pickLibrary); err != nil {
			log.Printf("Failed to add library button: %v", err)
		}
		host.AttachSidebar(sidebar)
	}

	a.focuser = wm.NewFocuser(a.config.AppID, a.config.WM.FocusOnOpen)

	server := ipc.NewServer(a.config, a.controller)
	server.OnOpen(func(result views.Result) {
		go a.focus(ctx)
	})
	if err := server.Start(); err != nil {
		log.Printf("Failed to start IPC server: %v", err)
	} else {
		a.ipc = server
		log.Printf("IPC server ready at %s", server.Addr())
	}

	if a.config.Bus.Enabled {
		a.startBus()
	}

	if a.configPath != "" {
		go func() {
			if err := config.Watch(ctx, a.configPath, a.applyConfig); err != nil {
				log.Printf("[CONFIG] Reloading disabled: %v", err)
			}
		}()
	}

	log.Println("Initialization complete")
	return nil
}

func (a *App) startBus() {
	if !bus.ValidName(a.config.Bus.Name) {
		log.Printf("[BUS] Invalid bus name %q, D-Bus interface disabled", a.config.Bus.Name)
		return
	}
	timeout := 2 * time.Duration(a.config.Views.CommandTimeout) * time.Millisecond
	svc := bus.NewService(a.config.Bus.Name, a.controller, timeout)
	if err := svc.Start(); err != nil {
		log.Printf("Failed to start D-Bus interface: %v", err)
		return
	}
	a.bus = svc
}

// openFromSidebar runs on the GTK loop, so the view sequence is moved off it
func (a *App) openFromSidebar(svc catalog.Service) {
	go a.controller.Open(context.Background(), svc.Name, svc.URL)
}

// pickLibrary runs on the GTK loop from the sidebar's library button
func (a *App) pickLibrary() {
	start := config.ExpandPath(a.config.Library.Root)
	path, ok, err := shell.PickDirectory(a.host.Window(), start)
	if err != nil {
		log.Printf("[SHELL] %v", err)
		return
	}
	if !ok {
		return
	}
	a.controller.SetLibraryRoot(path)
	go func() {
		if _, err := a.controller.Library(context.Background(), ""); err != nil {
			log.Printf("[CORE] Failed to scan library: %v", err)
		}
	}()
}

func (a *App) focus(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.focuser.Focus(ctx); err != nil && !errors.Is(err, wm.ErrNotSway) {
		log.Printf("[WM] Failed to focus window: %v", err)
	}
}

// applyConfig picks up service and styling changes. Window geometry, the
// socket and the rest of the config only change on restart.
func (a *App) applyConfig(cfg *config.Config) {
	log.Printf("[CONFIG] Applying %d services", len(cfg.Services))
	a.catalog.Replace(cfg.Services)
	services := a.catalog.All()

	glib.IdleAdd(func() {
		if a.icons != nil {
			a.icons.Clear()
		}
		shell.SetupStyles(cfg.Styling)
		shell.LoadCustomCSS(cfg.Styling.CustomCSS)
		if a.sidebar != nil {
			a.sidebar.SetServices(services)
		}
	})
}

// Quit stops the GTK loop; cleanup happens once Run returns
func (a *App) Quit() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	a.mu.Unlock()

	log.Println("Shutting down...")
	glib.IdleAdd(gtk.MainQuit)
}

func (a *App) shutdown() {
	signal.Stop(a.sigChan)
	if a.cancel != nil {
		a.cancel()
	}
	if a.ipc != nil {
		if err := a.ipc.Stop(); err != nil {
			log.Printf("Failed to stop IPC server: %v", err)
		}
	}
	if a.bus != nil {
		a.bus.Stop()
	}
	if a.icons != nil {
		hits, misses, size := a.icons.Stats()
		log.Printf("[ICON-CACHE] hits=%d misses=%d size=%d", hits, misses, size)
	}
}

// monitorGTKMainLoop warns when queued callbacks stop running
func (a *App) monitorGTKMainLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		testDone := make(chan bool, 1)
		glib.IdleAdd(func() {
			testDone <- true
		})

		select {
		case <-testDone:
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			log.Printf("[MONITOR] WARNING: GTK main loop appears to be BLOCKED (goroutines: %d, alloc: %d MB)",
				runtime.NumGoroutine(), m.Alloc/1024/1024)
		}
	}
}
