package catalog

import (
	"math"
	"sync"
	"time"
)

// usageRecord tracks how often and how recently a service was opened
type usageRecord struct {
	OpenCount  int
	LastOpened time.Time
	Recent     []time.Time
}

// Usage is an in-memory frecency tracker. Scores only break ties between
// equally good matches; they never outrank an exact or prefix match.
type Usage struct {
	mu        sync.RWMutex
	records   map[string]*usageRecord
	maxRecent int
	halfLife  time.Duration
	now       func() time.Time
}

func NewUsage() *Usage {
	return &Usage{
		records:   make(map[string]*usageRecord),
		maxRecent: 10,
		halfLife:  24 * time.Hour,
		now:       time.Now,
	}
}

// Record notes one successful open of name
func (u *Usage) Record(name string) {
	if name == "" {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.now()
	r, ok := u.records[name]
	if !ok {
		r = &usageRecord{}
		u.records[name] = r
	}
	r.OpenCount++
	r.LastOpened = now
	r.Recent = append(r.Recent, now)
	if len(r.Recent) > u.maxRecent {
		r.Recent = r.Recent[1:]
	}
}

// Score blends open count with an exponential recency decay
func (u *Usage) Score(name string) float64 {
	u.mu.RLock()
	defer u.mu.RUnlock()

	r, ok := u.records[name]
	if !ok {
		return 0
	}

	age := u.now().Sub(r.LastOpened)
	recency := 100 * math.Pow(0.5, float64(age)/float64(u.halfLife))
	frequency := float64(len(r.Recent))

	return frequency*0.4 + recency*0.6
}

func (u *Usage) Count(name string) int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if r, ok := u.records[name]; ok {
		return r.OpenCount
	}
	return 0
}
