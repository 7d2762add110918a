package views

import (
	"context"
	"fmt"
	"strings"
)

// MainLabel is the label of the primary window. It is never created or
// hidden by the Manager.
const MainLabel = "main"

const labelSuffix = "_webview"

// Label returns the view label for a service name.
func Label(serviceName string) string {
	return serviceName + labelSuffix
}

// ServiceName reverses Label. ok is false for labels that were not derived
// from a service name, including MainLabel.
func ServiceName(label string) (string, bool) {
	name := strings.TrimSuffix(label, labelSuffix)
	if name == label || name == "" {
		return "", false
	}
	return name, true
}

// ToggleMode selects the visibility a toggle command requests
type ToggleMode string

const (
	ToggleShow ToggleMode = "show"
	ToggleHide ToggleMode = "hide"
)

// ParseToggleMode parses "show" or "hide"
func ParseToggleMode(s string) (ToggleMode, error) {
	switch ToggleMode(strings.ToLower(strings.TrimSpace(s))) {
	case ToggleShow:
		return ToggleShow, nil
	case ToggleHide:
		return ToggleHide, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownToggleMode, s)
}

// View is one entry of the host's view listing. Hosts that cannot tell
// whether a view is on screen report it as visible.
type View struct {
	Label   string
	Visible bool
}

// Host is the view registry owned by the shell. All view state lives behind
// it; the Manager only queries it and issues commands.
//
// CreateView derives the label with Label(serviceName). Creating a label
// that already exists succeeds without doing anything. A freshly created view
// is visible and is the only visible view besides MainLabel.
//
// ToggleView must be idempotent: showing a visible view or hiding a hidden
// one succeeds.
type Host interface {
	ListViews(ctx context.Context) ([]View, error)
	CreateView(ctx context.Context, serviceName, serviceURL string) error
	ToggleView(ctx context.Context, label string, mode ToggleMode) error
}
