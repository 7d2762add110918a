package catalog

import (
	"testing"
	"time"

	"github.com/chess10kp/tokie/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageScoreDecays(t *testing.T) {
	u := NewUsage()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	u.now = func() time.Time { return clock }

	u.Record("anilist")
	u.Record("anilist")
	u.Record("")
	fresh := u.Score("anilist")

	clock = clock.Add(48 * time.Hour)
	stale := u.Score("anilist")

	assert.Equal(t, 2, u.Count("anilist"))
	assert.Greater(t, fresh, stale)
	assert.Zero(t, u.Score("kitsu"))
	assert.Zero(t, u.Count(""))
}

func TestUsageKeepsBoundedHistory(t *testing.T) {
	u := NewUsage()
	for i := 0; i < 25; i++ {
		u.Record("kitsu")
	}
	assert.Equal(t, 25, u.Count("kitsu"))
	assert.Len(t, u.records["kitsu"].Recent, u.maxRecent)
}

func TestResolveBreaksTiesByUsage(t *testing.T) {
	c := New([]config.ServiceConfig{
		{Name: "animea", URL: "https://a.example"},
		{Name: "animeb", URL: "https://b.example"},
	})

	s, ok := c.Resolve("anime")
	require.True(t, ok)
	assert.Equal(t, "animea", s.Name)

	c.RecordOpen("animeb")

	s, ok = c.Resolve("anime")
	require.True(t, ok)
	assert.Equal(t, "animeb", s.Name)

	// An exact name is never overridden by usage
	s, ok = c.Resolve("animea")
	require.True(t, ok)
	assert.Equal(t, "animea", s.Name)
}
