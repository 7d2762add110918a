package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/chess10kp/tokie/internal/catalog"
	"github.com/chess10kp/tokie/internal/config"
	"github.com/chess10kp/tokie/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryHost is a minimal views.Host keeping state in a slice
type memoryHost struct {
	mu      sync.Mutex
	views   []views.View
	urls    map[string]string
	toggled []string
}

func newMemoryHost() *memoryHost {
	return &memoryHost{
		views: []views.View{{Label: views.MainLabel, Visible: true}},
		urls:  make(map[string]string),
	}
}

func (h *memoryHost) ListViews(ctx context.Context) ([]views.View, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]views.View(nil), h.views...), nil
}

func (h *memoryHost) CreateView(ctx context.Context, serviceName, serviceURL string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	label := views.Label(serviceName)
	for i := range h.views {
		if h.views[i].Label != views.MainLabel {
			h.views[i].Visible = false
		}
	}
	h.views = append(h.views, views.View{Label: label, Visible: true})
	h.urls[label] = serviceURL
	return nil
}

func (h *memoryHost) ToggleView(ctx context.Context, label string, mode views.ToggleMode) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toggled = append(h.toggled, label+":"+string(mode))
	for i := range h.views {
		if h.views[i].Label == label {
			h.views[i].Visible = mode == views.ToggleShow
			return nil
		}
	}
	return fmt.Errorf("view %s not found", label)
}

func newTestController(host views.Host) *Controller {
	cat := catalog.New([]config.ServiceConfig{
		{Name: "anilist", URL: "https://anilist.co"},
		{Name: "kitsu", URL: "https://kitsu.app"},
	})
	return NewController(cat, views.NewManager(host), host)
}

func TestControllerOpenResolvesCatalog(t *testing.T) {
	host := newMemoryHost()
	c := newTestController(host)

	result := c.Open(context.Background(), "ani", "")

	require.True(t, result.OK())
	assert.Equal(t, "anilist_webview", result.Label)
	assert.Equal(t, views.ActionCreated, result.Action)
	assert.Equal(t, "https://anilist.co", host.urls["anilist_webview"])
	assert.Equal(t, 1, c.catalog.Usage().Count("anilist"))
}

func TestControllerOpenWithURLOverride(t *testing.T) {
	host := newMemoryHost()
	c := newTestController(host)

	result := c.Open(context.Background(), "kitsu", "https://kitsu.app/anime")
	require.True(t, result.OK())
	assert.Equal(t, "https://kitsu.app/anime", host.urls["kitsu_webview"])

	// Unconfigured services may be opened when a URL is supplied
	result = c.Open(context.Background(), "shikimori", "https://shikimori.one")
	require.True(t, result.OK())
	assert.Equal(t, "shikimori_webview", result.Label)
}

func TestControllerOpenUnknownService(t *testing.T) {
	host := newMemoryHost()
	c := newTestController(host)

	result := c.Open(context.Background(), "zzz", "")

	assert.ErrorIs(t, result.Err, ErrUnknownService)
	assert.Equal(t, "zzz_webview", result.Label)
	assert.Len(t, host.views, 1)
}

func TestControllerHideAndExclusive(t *testing.T) {
	host := newMemoryHost()
	c := newTestController(host)
	ctx := context.Background()

	c.Open(ctx, "anilist", "")
	c.Open(ctx, "kitsu", "")
	c.Open(ctx, "anilist", "")

	label, err := c.Hide(ctx, "anilist")
	require.NoError(t, err)
	assert.Equal(t, "anilist_webview", label)

	_, err = c.Hide(ctx, "missing")
	assert.Error(t, err)

	require.NoError(t, host.ToggleView(ctx, "kitsu_webview", views.ToggleShow))
	require.NoError(t, host.ToggleView(ctx, "anilist_webview", views.ToggleShow))

	label, hidden, err := c.Exclusive(ctx, "kitsu")
	require.NoError(t, err)
	assert.Equal(t, "kitsu_webview", label)
	assert.Equal(t, []string{"anilist_webview"}, hidden)

	list, err := c.Views(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, []string{"anilist", "kitsu"}, c.Services())
}

func TestControllerLibrary(t *testing.T) {
	c := newTestController(newMemoryHost())

	_, err := c.Library(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoLibrary)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Show"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Show", "e01.mkv"), nil, 0644))
	c.SetLibraryRoot(root)

	dir, err := c.Library(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, dir.Count())

	_, err = c.Library(context.Background(), filepath.Join(root, "missing"))
	assert.Error(t, err)
}
