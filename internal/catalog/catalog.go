// Package catalog holds the services the shell knows how to open and maps
// loosely typed names onto them.
package catalog

import (
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/chess10kp/tokie/internal/config"
	"github.com/sahilm/fuzzy"
)

// Service is a named content source with its own view
type Service struct {
	Name string
	URL  string
	Icon string
}

// Catalog is a goroutine-safe, ordered set of services
type Catalog struct {
	mu       sync.RWMutex
	services []Service
	byName   map[string]int
	usage    *Usage
}

// New builds a catalog from configured services
func New(services []config.ServiceConfig) *Catalog {
	c := &Catalog{usage: NewUsage()}
	c.Replace(services)
	return c
}

// Replace swaps the whole service list, keeping config order
func (c *Catalog) Replace(services []config.ServiceConfig) {
	list := make([]Service, 0, len(services))
	byName := make(map[string]int, len(services))
	for _, s := range services {
		if _, dup := byName[s.Name]; dup || s.Name == "" {
			log.Printf("[CATALOG] Skipping duplicate or unnamed service %q", s.Name)
			continue
		}
		byName[s.Name] = len(list)
		list = append(list, Service{Name: s.Name, URL: s.URL, Icon: s.Icon})
	}

	c.mu.Lock()
	c.services = list
	c.byName = byName
	c.mu.Unlock()

	log.Printf("[CATALOG] Loaded %d services", len(list))
}

// All returns the services in configured order
func (c *Catalog) All() []Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Service(nil), c.services...)
}

// Names returns the service names in configured order
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.services))
	for i, s := range c.services {
		names[i] = s.Name
	}
	return names
}

// Get looks a service up by exact name
func (c *Catalog) Get(name string) (Service, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byName[name]
	if !ok {
		return Service{}, false
	}
	return c.services[i], true
}

// RecordOpen marks name as recently used
func (c *Catalog) RecordOpen(name string) {
	c.usage.Record(name)
}

// Usage returns the catalog's usage tracker
func (c *Catalog) Usage() *Usage {
	return c.usage
}

// Resolve finds the service a query refers to. An exact name wins;
// otherwise the best fuzzy match is used, preferring prefix matches, then
// match score, then recent use.
func (c *Catalog) Resolve(query string) (Service, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Service{}, false
	}
	if s, ok := c.Get(query); ok {
		return s, true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.services))
	for i, s := range c.services {
		names[i] = s.Name
	}

	filtered := fuzzy.Find(query, names)
	if len(filtered) == 0 {
		log.Printf("[CATALOG] No service matches %q", query)
		return Service{}, false
	}

	lower := strings.ToLower(query)
	sort.SliceStable(filtered, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(filtered[i].Str), lower)
		pj := strings.HasPrefix(strings.ToLower(filtered[j].Str), lower)
		if pi != pj {
			return pi
		}
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		return c.usage.Score(filtered[i].Str) > c.usage.Score(filtered[j].Str)
	})

	best := c.services[filtered[0].Index]
	log.Printf("[CATALOG] Resolved %q to %s (score %d)", query, best.Name, filtered[0].Score)
	return best, true
}
