package shell

import (
	"sync"
	"testing"

	"github.com/chess10kp/tokie/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryHoldsMain(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []views.View{{Label: views.MainLabel, Visible: true}}, r.Snapshot())
	assert.Empty(t, visibleSecondary(r))
}

func visibleSecondary(r *Registry) []string {
	var out []string
	for _, v := range r.Snapshot() {
		if v.Label != views.MainLabel && v.Visible {
			out = append(out, v.Label)
		}
	}
	return out
}

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry()

	e, added := r.Add("anilist", "https://anilist.co")
	require.True(t, added)
	assert.Equal(t, "anilist_webview", e.Label)
	assert.False(t, e.Visible)

	_, added = r.Add("anilist", "https://elsewhere.example")
	assert.False(t, added)

	got, ok := r.Get("anilist_webview")
	require.True(t, ok)
	assert.Equal(t, "https://anilist.co", got.URL)
	assert.Len(t, r.Snapshot(), 2)
}

func TestRegistrySetVisible(t *testing.T) {
	r := NewRegistry()
	r.Add("a", "https://a.example")
	r.Add("b", "https://b.example")

	require.NoError(t, r.SetVisible("b_webview", true))
	assert.Equal(t, []string{"b_webview"}, visibleSecondary(r))

	// Idempotent
	require.NoError(t, r.SetVisible("b_webview", true))
	require.NoError(t, r.SetVisible("a_webview", false))

	assert.ErrorIs(t, r.SetVisible("missing_webview", true), ErrViewNotFound)
	assert.ErrorIs(t, r.SetVisible(views.MainLabel, false), ErrMainWindow)
	assert.NoError(t, r.SetVisible(views.MainLabel, true))

	assert.Equal(t, []views.View{
		{Label: views.MainLabel, Visible: true},
		{Label: "a_webview", Visible: false},
		{Label: "b_webview", Visible: true},
	}, r.Snapshot())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c", "a", "b", "c"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			r.Add(name, "https://"+name+".example")
			r.SetVisible(views.Label(name), true)
			r.Snapshot()
		}(name)
	}
	wg.Wait()

	assert.Len(t, r.Snapshot(), 4)
}

func TestRegistryActivateLeavesOneVisibleView(t *testing.T) {
	r := NewRegistry()
	r.Add("a", "https://a.example")
	r.Add("b", "https://b.example")
	r.Add("c", "https://c.example")
	require.NoError(t, r.SetVisible("a_webview", true))
	require.NoError(t, r.SetVisible("b_webview", true))

	hidden, err := r.Activate("c_webview")

	require.NoError(t, err)
	assert.Equal(t, []string{"a_webview", "b_webview"}, hidden)
	assert.Equal(t, []string{"c_webview"}, visibleSecondary(r))

	main, ok := r.Get(views.MainLabel)
	require.True(t, ok)
	assert.True(t, main.Visible)

	// Already the only visible view
	hidden, err = r.Activate("c_webview")
	require.NoError(t, err)
	assert.Empty(t, hidden)
}

func TestRegistryActivateRejectsUnknownAndMain(t *testing.T) {
	r := NewRegistry()

	_, err := r.Activate("missing_webview")
	assert.ErrorIs(t, err, ErrViewNotFound)

	_, err = r.Activate(views.MainLabel)
	assert.ErrorIs(t, err, ErrMainWindow)
}
