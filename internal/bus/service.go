// Package bus exposes the view controls on the D-Bus session bus so desktop
// tooling can drive the shell without the unix socket.
package bus

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/chess10kp/tokie/internal/ipc"
	"github.com/chess10kp/tokie/internal/views"
	"github.com/godbus/dbus/v5"
)

const (
	Interface  = "com.github.chess10kp.tokie.Shell"
	ObjectPath = dbus.ObjectPath("/com/github/chess10kp/tokie/Shell")
)

// Service is the object exported on the bus. Its exported methods are the
// D-Bus methods; each one runs on a godbus goroutine.
type Service struct {
	conn       *dbus.Conn
	name       string
	controller ipc.Controller
	timeout    time.Duration
	mu         sync.Mutex
	running    bool
}

// NewService creates a service that will own name once started
func NewService(name string, controller ipc.Controller, timeout time.Duration) *Service {
	return &Service{
		name:       name,
		controller: controller,
		timeout:    timeout,
	}
}

func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("bus service already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, ObjectPath, Interface); err != nil {
		conn.Close()
		return fmt.Errorf("failed to export interface: %w", err)
	}

	reply, err := conn.RequestName(s.name, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return fmt.Errorf("name %s already owned by another process", s.name)
	}

	s.conn = conn
	s.running = true
	log.Printf("[BUS] Serving %s on %s", Interface, s.name)
	return nil
}

func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		s.conn.ReleaseName(s.name)
		s.conn.Close()
		s.conn = nil
	}

	log.Println("[BUS] Stopped")
	return nil
}

func (s *Service) context() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.timeout)
}

// Open makes the view for service visible and returns its label and the
// action taken
func (s *Service) Open(service, serviceURL string) (string, string, *dbus.Error) {
	ctx, cancel := s.context()
	defer cancel()

	result := s.controller.Open(ctx, service, serviceURL)
	if result.Err != nil {
		return result.Label, string(result.Action), dbus.MakeFailedError(result.Err)
	}
	s.emitViewShown(result.Label, result.Action)
	return result.Label, string(result.Action), nil
}

// Hide hides the view for service
func (s *Service) Hide(service string) (string, *dbus.Error) {
	ctx, cancel := s.context()
	defer cancel()

	label, err := s.controller.Hide(ctx, service)
	if err != nil {
		return label, dbus.MakeFailedError(err)
	}
	return label, nil
}

// Toggle shows or hides the view for service. Showing goes through Open so
// the view stays the only visible one.
func (s *Service) Toggle(service, mode string) (string, *dbus.Error) {
	m, err := views.ParseToggleMode(mode)
	if err != nil {
		return views.Label(service), dbus.MakeFailedError(err)
	}
	if m == views.ToggleShow {
		label, _, derr := s.Open(service, "")
		return label, derr
	}
	return s.Hide(service)
}

// Exclusive hides every view except the one for service and returns the
// labels it hid
func (s *Service) Exclusive(service string) ([]string, *dbus.Error) {
	ctx, cancel := s.context()
	defer cancel()

	_, hidden, err := s.controller.Exclusive(ctx, service)
	if hidden == nil {
		hidden = []string{}
	}
	if err != nil {
		return hidden, dbus.MakeFailedError(err)
	}
	return hidden, nil
}

// ListViews returns a label to visibility map
func (s *Service) ListViews() (map[string]bool, *dbus.Error) {
	ctx, cancel := s.context()
	defer cancel()

	list, err := s.controller.Views(ctx)
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	out := make(map[string]bool, len(list))
	for _, v := range list {
		out[v.Label] = v.Visible
	}
	return out, nil
}

func (s *Service) Services() ([]string, *dbus.Error) {
	names := s.controller.Services()
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Library returns the media library under root, or under the configured
// folder when root is empty, as an indented outline
func (s *Service) Library(root string) ([]string, *dbus.Error) {
	ctx, cancel := s.context()
	defer cancel()

	dir, err := s.controller.Library(ctx, root)
	if err != nil {
		return []string{}, dbus.MakeFailedError(err)
	}
	return dir.Lines(), nil
}

func (s *Service) emitViewShown(label string, action views.Action) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	if err := conn.Emit(ObjectPath, Interface+".ViewShown", label, string(action)); err != nil {
		log.Printf("[BUS] Failed to emit ViewShown for %s: %v", label, err)
	}
}

// ValidName reports whether name can be requested on the bus
func ValidName(name string) bool {
	parts := strings.Split(name, ".")
	if len(parts) < 2 || len(name) > 255 {
		return false
	}
	for _, p := range parts {
		if p == "" || (p[0] >= '0' && p[0] <= '9') {
			return false
		}
		for _, r := range p {
			if !(r == '_' || r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				return false
			}
		}
	}
	return true
}
