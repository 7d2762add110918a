package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/chess10kp/tokie/internal/catalog"
	"github.com/chess10kp/tokie/internal/config"
	"github.com/chess10kp/tokie/internal/library"
	"github.com/chess10kp/tokie/internal/views"
)

var (
	ErrUnknownService = errors.New("unknown service")
	ErrNoLibrary      = errors.New("no library folder configured")
)

// Controller turns loosely named requests from the sidebar and IPC into
// view manager calls
type Controller struct {
	catalog *catalog.Catalog
	manager *views.Manager
	host    views.Host

	mu          sync.Mutex
	libraryRoot string
}

func NewController(cat *catalog.Catalog, manager *views.Manager, host views.Host) *Controller {
	return &Controller{
		catalog: cat,
		manager: manager,
		host:    host,
	}
}

// SetLibraryRoot changes the folder Library scans when given no root
func (c *Controller) SetLibraryRoot(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.libraryRoot = config.ExpandPath(root)
	log.Printf("[CORE] Library root is %s", c.libraryRoot)
}

// Library scans root, or the configured library root when root is empty
func (c *Controller) Library(ctx context.Context, root string) (library.Directory, error) {
	if root == "" {
		c.mu.Lock()
		root = c.libraryRoot
		c.mu.Unlock()
	}
	if root == "" {
		return library.Directory{}, ErrNoLibrary
	}

	type scanResult struct {
		dir library.Directory
		err error
	}
	done := make(chan scanResult, 1)
	go func() {
		dir, err := library.Scan(config.ExpandPath(root))
		done <- scanResult{dir, err}
	}()

	select {
	case r := <-done:
		if r.err == nil {
			log.Printf("[CORE] Library %s holds %d videos", root, r.dir.Count())
		}
		return r.dir, r.err
	case <-ctx.Done():
		return library.Directory{}, ctx.Err()
	}
}

// Open makes the view for service visible. With an explicit serviceURL the
// name is used as given unless it names a configured service exactly;
// without one the name must resolve through the catalog.
func (c *Controller) Open(ctx context.Context, service, serviceURL string) views.Result {
	name, target, err := c.resolve(service, serviceURL)
	if err != nil {
		log.Printf("[CORE] Cannot open %s: %v", views.Label(service), err)
		return views.Result{Label: views.Label(service), Action: views.ActionNone, Err: err}
	}
	result := c.manager.EnsureVisible(ctx, name, target)
	if result.OK() {
		c.catalog.RecordOpen(name)
		log.Printf("[CORE] %s opened %d times this session", name, c.catalog.Usage().Count(name))
	}
	return result
}

func (c *Controller) resolve(service, serviceURL string) (name, target string, err error) {
	if serviceURL != "" {
		if svc, ok := c.catalog.Get(service); ok {
			return svc.Name, serviceURL, nil
		}
		return service, serviceURL, nil
	}

	svc, ok := c.catalog.Resolve(service)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownService, service)
	}
	return svc.Name, svc.URL, nil
}

// Hide hides the view for service
func (c *Controller) Hide(ctx context.Context, service string) (string, error) {
	label := views.Label(c.name(service))
	if err := c.host.ToggleView(ctx, label, views.ToggleHide); err != nil {
		return label, fmt.Errorf("hide view: %w", err)
	}
	return label, nil
}

// Exclusive hides every view except the one for service
func (c *Controller) Exclusive(ctx context.Context, service string) (string, []string, error) {
	label := views.Label(c.name(service))
	hidden, err := c.manager.EnforceExclusivity(ctx, label)
	return label, hidden, err
}

// Views lists every view the host knows about
func (c *Controller) Views(ctx context.Context) ([]views.View, error) {
	return c.host.ListViews(ctx)
}

// Services lists configured service names
func (c *Controller) Services() []string {
	return c.catalog.Names()
}

func (c *Controller) name(service string) string {
	if svc, ok := c.catalog.Resolve(service); ok {
		return svc.Name
	}
	return service
}
