package views

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

// Action is what EnsureVisible asked the host to do
type Action string

const (
	ActionNone    Action = "none"
	ActionCreated Action = "created"
	ActionShown   Action = "shown"
)

// Result describes one EnsureVisible call. Callers may inspect it but are
// not required to; failures are already logged.
type Result struct {
	Label  string
	Action Action
	// Hidden lists the views hidden to keep Label the only visible one
	Hidden []string
	// Shared is set when the call joined an in-flight request for the same label
	Shared bool
	Err    error
}

// OK reports whether the call completed without any failure
func (r Result) OK() bool {
	return r.Err == nil
}

// Manager keeps at most one secondary view visible besides the main window.
// It holds no view state of its own and is safe for concurrent use.
type Manager struct {
	host     Host
	dedupe   bool
	timeout  time.Duration
	inflight singleflight.Group
}

// Option configures a Manager
type Option func(*Manager)

// WithoutDedup disables coalescing of concurrent requests for the same label
func WithoutDedup() Option {
	return func(m *Manager) {
		m.dedupe = false
	}
}

// WithTimeout bounds a coalesced request sequence. Coalesced work does not
// follow any single caller's context, so without a bound it runs until the
// host answers.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.timeout = d
	}
}

// NewManager creates a manager driving host
func NewManager(host Host, opts ...Option) *Manager {
	m := &Manager{
		host:   host,
		dedupe: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureVisible creates the view for serviceName on first request and shows
// it on later ones, hiding every other secondary view first. It never
// returns an error to the caller: every failure is logged with the view
// label and recorded in Result.Err.
//
// Concurrent calls for the same label share one host sequence. That
// sequence is detached from the callers' contexts; each caller stops
// waiting when its own ctx is done.
func (m *Manager) EnsureVisible(ctx context.Context, serviceName, serviceURL string) Result {
	label := Label(serviceName)
	if serviceName == "" {
		log.Printf("[VIEWS] Refusing request with empty service name")
		return Result{Label: label, Action: ActionNone, Err: ErrEmptyServiceName}
	}

	if !m.dedupe {
		return m.ensureVisible(ctx, label, serviceName, serviceURL)
	}

	var started atomic.Bool
	ch := m.inflight.DoChan(label, func() (interface{}, error) {
		started.Store(true)
		work, cancel := m.detach(ctx)
		defer cancel()
		return m.ensureVisible(work, label, serviceName, serviceURL), nil
	})

	select {
	case res := <-ch:
		result := res.Val.(Result)
		if !started.Load() {
			log.Printf("[VIEWS] Joined in-flight request for %s", label)
			result.Shared = true
			result.Hidden = append([]string(nil), result.Hidden...)
		}
		return result
	case <-ctx.Done():
		err := fmt.Errorf("wait for %s: %w", label, ctx.Err())
		log.Printf("[VIEWS] Stopped waiting: %v", err)
		return Result{Label: label, Action: ActionNone, Err: err}
	}
}

func (m *Manager) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	work := context.WithoutCancel(ctx)
	if m.timeout > 0 {
		return context.WithTimeout(work, m.timeout)
	}
	return context.WithCancel(work)
}

func (m *Manager) ensureVisible(ctx context.Context, label, serviceName, serviceURL string) (result Result) {
	start := time.Now()
	result = Result{Label: label, Action: ActionNone}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("host panicked: %v", r)
		}
		if result.Err != nil {
			log.Printf("[VIEWS] Failed to make %s visible: %v", label, result.Err)
			return
		}
		log.Printf("[VIEWS] %s %s in %v (hid %d)", label, result.Action, time.Since(start), len(result.Hidden))
	}()

	existing, err := m.host.ListViews(ctx)
	if err != nil {
		result.Err = fmt.Errorf("list views: %w", err)
		return result
	}

	if !containsLabel(existing, label) {
		if err := m.host.CreateView(ctx, serviceName, serviceURL); err != nil {
			result.Err = fmt.Errorf("create view: %w", err)
			return result
		}
		result.Action = ActionCreated
		return result
	}

	hidden, hideErr := m.EnforceExclusivity(ctx, label)
	result.Hidden = hidden

	if err := m.host.ToggleView(ctx, label, ToggleShow); err != nil {
		result.Err = multierr.Append(hideErr, fmt.Errorf("show view: %w", err))
		return result
	}
	result.Action = ActionShown
	result.Err = hideErr
	return result
}

// EnforceExclusivity hides every visible view other than MainLabel and
// keepLabel, one at a time in listing order. A failed hide does not stop the
// loop; the failures are returned together along with the labels that were
// hidden.
//
// Only views the host lists with Visible set are hidden, so a host that
// under-reports visibility leaves those views on screen. Hosts that cannot
// tell must report every view as visible.
func (m *Manager) EnforceExclusivity(ctx context.Context, keepLabel string) ([]string, error) {
	existing, err := m.host.ListViews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}

	var (
		hidden []string
		errs   error
	)
	for _, v := range existing {
		if v.Label == MainLabel || v.Label == keepLabel || !v.Visible {
			continue
		}
		if err := m.host.ToggleView(ctx, v.Label, ToggleHide); err != nil {
			log.Printf("[VIEWS] Failed to hide %s: %v", v.Label, err)
			errs = multierr.Append(errs, fmt.Errorf("hide %s: %w", v.Label, err))
			continue
		}
		hidden = append(hidden, v.Label)
	}

	return hidden, errs
}

func containsLabel(list []View, label string) bool {
	for _, v := range list {
		if v.Label == label {
			return true
		}
	}
	return false
}
