package shell

import (
	"fmt"
	"log"
	"sync"

	"github.com/chess10kp/tokie/internal/config"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
	"github.com/hashicorp/golang-lru/v2"
)

// IconCache keeps sidebar icons loaded from the GTK icon theme
type IconCache struct {
	cache     *lru.Cache[string, *gdk.Pixbuf]
	theme     *gtk.IconTheme
	mu        sync.Mutex
	fallback  string
	cacheHits int64
	cacheMiss int64
}

// NewIconCache must be called after gtk.Init
func NewIconCache(cfg *config.Config) (*IconCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	maxSize := cfg.Window.IconCache
	if maxSize <= 0 {
		maxSize = 100
	}

	cache, err := lru.New[string, *gdk.Pixbuf](maxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}

	iconTheme, err := gtk.IconThemeGetDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to get default icon theme: %w", err)
	}

	fallback := cfg.Window.FallbackIcon
	if fallback == "" {
		fallback = "applications-internet"
	}

	return &IconCache{
		cache:    cache,
		theme:    iconTheme,
		fallback: fallback,
	}, nil
}

// GetIcon returns the named icon at size, falling back to the configured
// fallback icon when the theme lacks it
func (ic *IconCache) GetIcon(name string, size int) (*gdk.Pixbuf, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.load(name, size, true)
}

func (ic *IconCache) load(name string, size int, allowFallback bool) (*gdk.Pixbuf, error) {
	if name == "" {
		name = ic.fallback
	}
	key := fmt.Sprintf("%s@%d", name, size)

	if pixbuf, ok := ic.cache.Get(key); ok && pixbuf != nil {
		ic.cacheHits++
		return pixbuf, nil
	}
	ic.cacheMiss++

	var (
		pixbuf *gdk.Pixbuf
		err    error
	)
	if ic.theme.HasIcon(name) {
		pixbuf, err = ic.theme.LoadIcon(name, size, gtk.ICON_LOOKUP_USE_BUILTIN)
	} else {
		err = fmt.Errorf("icon '%s' not found in theme", name)
	}

	if err != nil || pixbuf == nil {
		if allowFallback && name != ic.fallback {
			log.Printf("[ICON-CACHE] Failed to load '%s' (%v), trying fallback '%s'", name, err, ic.fallback)
			return ic.load(ic.fallback, size, false)
		}
		return nil, fmt.Errorf("failed to load icon '%s': %v", name, err)
	}

	ic.cache.Add(key, pixbuf)
	log.Printf("[ICON-CACHE] STORED: %s (cache size: %d)", key, ic.cache.Len())
	return pixbuf, nil
}

// Stats returns hit and miss counts and the current size
func (ic *IconCache) Stats() (hits, misses int64, size int) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.cacheHits, ic.cacheMiss, ic.cache.Len()
}

// Clear drops every cached icon, used when the theme or config changes
func (ic *IconCache) Clear() {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.cache.Purge()
	log.Printf("[ICON-CACHE] Cache cleared")
}
