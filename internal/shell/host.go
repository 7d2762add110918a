package shell

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"unsafe"

	"github.com/chess10kp/tokie/internal/config"
	"github.com/chess10kp/tokie/internal/layer"
	"github.com/chess10kp/tokie/internal/views"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
)

// Host is the GTK side of the view contract. It owns the main window and
// one content box per service. Methods may be called from any goroutine
// except the GTK main loop itself; widget work is queued onto the loop and
// awaited.
type Host struct {
	config   *config.Config
	registry *Registry
	window   *gtk.Window
	sidebar  *Sidebar
	slot     *gtk.Box
	content  *gtk.Box
	timeout  time.Duration

	// widgets is only touched on the GTK main loop
	widgets map[string]*gtk.Box
}

// NewHost builds and shows the main window. It must run on the GTK main
// loop after gtk.Init.
func NewHost(cfg *config.Config, registry *Registry) (*Host, error) {
	h := &Host{
		config:   cfg,
		registry: registry,
		timeout:  time.Duration(cfg.Views.CommandTimeout) * time.Millisecond,
		widgets:  make(map[string]*gtk.Box),
	}

	if err := h.buildWindow(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Host) buildWindow() error {
	w := h.config.Window

	win, err := gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return fmt.Errorf("failed to create main window: %w", err)
	}
	win.SetName("main-window")
	win.SetTitle(w.Title)
	win.SetDefaultSize(w.Width, w.Height)
	win.SetResizable(w.Resizable)
	win.SetDecorated(w.Decorated)

	if w.LayerShell {
		obj := unsafe.Pointer(win.GObject)
		layer.InitForWindow(obj)
		layer.Place(obj, w.Anchor)
	}

	root, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 0)
	if err != nil {
		return fmt.Errorf("failed to create root box: %w", err)
	}

	slot, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 0)
	if err != nil {
		return fmt.Errorf("failed to create sidebar slot: %w", err)
	}
	slot.SetSizeRequest(w.SidebarWidth, -1)

	content, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 0)
	if err != nil {
		return fmt.Errorf("failed to create content box: %w", err)
	}
	content.SetName("content")

	root.PackStart(slot, false, false, 0)
	root.PackStart(content, true, true, 0)
	win.Add(root)

	h.window = win
	h.slot = slot
	h.content = content

	win.ShowAll()
	return nil
}

// Window returns the main window
func (h *Host) Window() *gtk.Window {
	return h.window
}

// AttachSidebar places the sidebar in the strip left of the content area.
// Must run on the GTK main loop.
func (h *Host) AttachSidebar(s *Sidebar) {
	if h.sidebar != nil {
		h.slot.Remove(h.sidebar.Widget())
	}
	h.sidebar = s
	h.slot.PackStart(s.Widget(), true, true, 0)
	s.Widget().ShowAll()
}

// ListViews reports the registry; it does not need the main loop
func (h *Host) ListViews(ctx context.Context) ([]views.View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.registry.Snapshot(), nil
}

// CreateView adds a view for serviceName and makes it the only visible
// secondary view. An existing view is left untouched.
func (h *Host) CreateView(ctx context.Context, serviceName, serviceURL string) error {
	u, err := config.ParseServiceURL(serviceURL)
	if err != nil {
		return err
	}
	return h.onMain(ctx, func() error {
		return h.createView(serviceName, u.String())
	})
}

// ToggleView shows or hides a view. The main window can be presented but
// never hidden.
func (h *Host) ToggleView(ctx context.Context, label string, mode views.ToggleMode) error {
	if mode != views.ToggleShow && mode != views.ToggleHide {
		return fmt.Errorf("%w: %q", views.ErrUnknownToggleMode, mode)
	}
	if label == views.MainLabel && mode == views.ToggleHide {
		return ErrMainWindow
	}
	if _, ok := h.registry.Get(label); !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, label)
	}
	return h.onMain(ctx, func() error {
		return h.toggleView(label, mode)
	})
}

func (h *Host) createView(serviceName, serviceURL string) error {
	label := views.Label(serviceName)
	if _, exists := h.widgets[label]; exists {
		log.Printf("[SHELL] View %s already exists", label)
		return nil
	}

	box, err := buildServiceView(serviceName, serviceURL)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", label, err)
	}

	if _, added := h.registry.Add(serviceName, serviceURL); !added {
		log.Printf("[SHELL] %s was already registered without a widget", label)
	}
	hidden, err := h.registry.Activate(label)
	if err != nil {
		log.Printf("[SHELL] Failed to activate %s: %v", label, err)
		return err
	}
	for _, other := range hidden {
		if w, ok := h.widgets[other]; ok {
			w.Hide()
		}
	}

	h.content.PackStart(box, true, true, 0)
	h.widgets[label] = box
	box.ShowAll()

	h.markActive(label)
	log.Printf("[SHELL] Created %s for %s", label, serviceURL)
	return nil
}

func (h *Host) toggleView(label string, mode views.ToggleMode) error {
	if label == views.MainLabel {
		h.window.Present()
		return nil
	}

	box, ok := h.widgets[label]
	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, label)
	}

	if mode == views.ToggleShow {
		box.ShowAll()
		h.markActive(label)
	} else {
		box.Hide()
	}
	return h.registry.SetVisible(label, mode == views.ToggleShow)
}

func (h *Host) markActive(label string) {
	if h.sidebar == nil {
		return
	}
	if name, ok := views.ServiceName(label); ok {
		h.sidebar.SetActive(name)
	}
}

// onMain runs fn on the GTK main loop and waits for it, bounded by ctx and
// the configured command timeout. A timed out fn still runs; its result is
// dropped.
func (h *Host) onMain(ctx context.Context, fn func() error) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	glib.IdleAdd(func() {
		done <- fn()
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %v", ErrCommandTimeout, h.timeout)
		}
		return ctx.Err()
	}
}

func buildServiceView(serviceName, serviceURL string) (*gtk.Box, error) {
	box, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 12)
	if err != nil {
		return nil, err
	}
	if styleCtx, err := box.GetStyleContext(); err == nil {
		styleCtx.AddClass("service-view")
	}

	title, err := gtk.LabelNew(serviceName)
	if err != nil {
		return nil, err
	}
	title.SetXAlign(0)
	if styleCtx, err := title.GetStyleContext(); err == nil {
		styleCtx.AddClass("service-title")
	}

	link, err := gtk.LinkButtonNewWithLabel(serviceURL, serviceURL)
	if err != nil {
		return nil, err
	}
	link.SetHAlign(gtk.ALIGN_START)
	if styleCtx, err := link.GetStyleContext(); err == nil {
		styleCtx.AddClass("service-url")
	}

	box.PackStart(title, false, false, 0)
	box.PackStart(link, false, false, 0)
	return box, nil
}
