package shell

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chess10kp/tokie/internal/config"
	"github.com/chess10kp/tokie/internal/views"
)

var (
	ErrViewNotFound   = errors.New("view not found")
	ErrMainWindow     = errors.New("the main window cannot be hidden")
	ErrInvalidURL     = config.ErrInvalidURL
	ErrCommandTimeout = errors.New("view command timed out")
)

// Entry is the shell's record of one view
type Entry struct {
	Label       string
	ServiceName string
	URL         string
	Visible     bool
}

// Registry tracks every view the shell owns in creation order. The main
// window is always the first entry and is always visible.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*Entry
}

// NewRegistry creates a registry holding only the main window
func NewRegistry() *Registry {
	return &Registry{
		order: []string{views.MainLabel},
		entries: map[string]*Entry{
			views.MainLabel: {Label: views.MainLabel, Visible: true},
		},
	}
}

// Add records a hidden view for serviceName. It returns false when the label
// is already registered.
func (r *Registry) Add(serviceName, serviceURL string) (Entry, bool) {
	label := views.Label(serviceName)

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, exists := r.entries[label]; exists {
		return *e, false
	}
	e := &Entry{Label: label, ServiceName: serviceName, URL: serviceURL}
	r.entries[label] = e
	r.order = append(r.order, label)
	return *e, true
}

// Get returns the entry for label
func (r *Registry) Get(label string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[label]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// SetVisible records a visibility change
func (r *Registry) SetVisible(label string, visible bool) error {
	if label == views.MainLabel && !visible {
		return ErrMainWindow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[label]
	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, label)
	}
	e.Visible = visible
	return nil
}

// Snapshot lists every view in creation order
func (r *Registry) Snapshot() []views.View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]views.View, 0, len(r.order))
	for _, label := range r.order {
		out = append(out, views.View{Label: label, Visible: r.entries[label].Visible})
	}
	return out
}

// Activate marks label visible and hides every other visible secondary
// view, returning the labels it hid in creation order. The main window keeps
// its visibility.
func (r *Registry) Activate(label string) ([]string, error) {
	if label == views.MainLabel {
		return nil, fmt.Errorf("%w: main is always visible", ErrMainWindow)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.entries[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, label)
	}

	var hidden []string
	for _, other := range r.order {
		e := r.entries[other]
		if other == views.MainLabel || other == label || !e.Visible {
			continue
		}
		e.Visible = false
		hidden = append(hidden, other)
	}
	target.Visible = true
	return hidden, nil
}
