package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/chess10kp/tokie/internal/config"
	"github.com/chess10kp/tokie/internal/library"
	"github.com/chess10kp/tokie/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeController records calls and answers from canned state
type fakeController struct {
	mu        sync.Mutex
	opened    []string
	openErr   error
	hideErr   error
	listed    []views.View
	services  []string
	exclusive []string
}

func (c *fakeController) Open(ctx context.Context, service, serviceURL string) views.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = append(c.opened, service+"|"+serviceURL)
	label := views.Label(service)
	if c.openErr != nil {
		return views.Result{Label: label, Action: views.ActionNone, Err: c.openErr}
	}
	return views.Result{Label: label, Action: views.ActionShown, Hidden: []string{"other_webview"}}
}

func (c *fakeController) Hide(ctx context.Context, service string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return views.Label(service), c.hideErr
}

func (c *fakeController) Exclusive(ctx context.Context, service string) (string, []string, error) {
	return views.Label(service), c.exclusive, nil
}

func (c *fakeController) Views(ctx context.Context) ([]views.View, error) {
	return c.listed, nil
}

func (c *fakeController) Services() []string {
	return c.services
}

func (c *fakeController) Library(ctx context.Context, root string) (library.Directory, error) {
	if root == "" {
		return library.Directory{}, errors.New("no library folder configured")
	}
	return library.Directory{
		Name:           "anime",
		Path:           root,
		Subdirectories: []library.Directory{{Name: "Show", Files: []string{"e01.mkv", "e02.mkv"}}},
	}, nil
}

func startServer(t *testing.T, ctrl Controller, mutate func(*config.Config)) *Server {
	t.Helper()

	// Unix socket paths are length limited, so avoid the long t.TempDir names
	dir, err := os.MkdirTemp("", "tokie")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := config.Default()
	cfg.SocketPath = filepath.Join(dir, "sock")
	cfg.IPC.RatePerSecond = 0
	if mutate != nil {
		mutate(cfg)
	}

	s := NewServer(cfg, ctrl)
	require.NoError(t, s.Start())
	t.Cleanup(func() { s.Stop() })
	return s
}

func send(t *testing.T, s *Server, req Request) Reply {
	t.Helper()
	reply, err := Send(s.Addr(), req, 2*time.Second)
	require.NoError(t, err)
	return reply
}

func TestServerPing(t *testing.T) {
	s := startServer(t, &fakeController{}, nil)

	reply := send(t, s, Request{Command: CmdPing})
	assert.True(t, reply.OK)
	assert.Equal(t, "pong", reply.Message)
}

func TestServerOpen(t *testing.T) {
	ctrl := &fakeController{}
	s := startServer(t, ctrl, nil)

	opened := make(chan views.Result, 1)
	s.OnOpen(func(r views.Result) { opened <- r })

	reply := send(t, s, Request{Command: CmdOpen, Service: "kitsu", URL: "https://kitsu.app"})

	assert.True(t, reply.OK)
	assert.Equal(t, "kitsu_webview", reply.Label)
	assert.Equal(t, "shown", reply.Message)
	assert.Equal(t, []string{"other_webview"}, reply.Lines)
	ctrl.mu.Lock()
	assert.Equal(t, []string{"kitsu|https://kitsu.app"}, ctrl.opened)
	ctrl.mu.Unlock()
	assert.Len(t, opened, 1)
}

func TestServerOpenFailureIsReported(t *testing.T) {
	ctrl := &fakeController{openErr: errors.New("registry unavailable")}
	s := startServer(t, ctrl, nil)

	called := make(chan struct{}, 1)
	s.OnOpen(func(views.Result) { called <- struct{}{} })

	reply := send(t, s, Request{Command: CmdOpen, Service: "kitsu"})

	assert.False(t, reply.OK)
	assert.Equal(t, "kitsu_webview", reply.Label)
	assert.Contains(t, reply.Message, "registry unavailable")
	assert.Empty(t, called)
}

func TestServerHide(t *testing.T) {
	ctrl := &fakeController{}
	s := startServer(t, ctrl, nil)

	reply := send(t, s, Request{Command: CmdHide, Service: "anilist"})
	assert.True(t, reply.OK)
	assert.Equal(t, "anilist_webview", reply.Label)

	ctrl.mu.Lock()
	ctrl.hideErr = errors.New("view not found")
	ctrl.mu.Unlock()
	reply = send(t, s, Request{Command: CmdHide, Service: "anilist"})
	assert.False(t, reply.OK)
}

func TestServerExclusive(t *testing.T) {
	ctrl := &fakeController{exclusive: []string{"a_webview", "b_webview"}}
	s := startServer(t, ctrl, nil)

	reply := send(t, s, Request{Command: CmdExclusive, Service: "c"})
	assert.True(t, reply.OK)
	assert.Equal(t, "hid 2", reply.Message)
	assert.Equal(t, []string{"a_webview", "b_webview"}, reply.Lines)
}

func TestServerListAndServices(t *testing.T) {
	ctrl := &fakeController{
		listed: []views.View{
			{Label: views.MainLabel, Visible: true},
			{Label: "a_webview", Visible: false},
		},
		services: []string{"anilist", "kitsu"},
	}
	s := startServer(t, ctrl, nil)

	reply := send(t, s, Request{Command: CmdList})
	assert.True(t, reply.OK)
	assert.Equal(t, []string{"main visible", "a_webview hidden"}, reply.Lines)

	reply = send(t, s, Request{Command: CmdServices})
	assert.True(t, reply.OK)
	assert.Equal(t, []string{"anilist", "kitsu"}, reply.Lines)
}

func TestServerLibrary(t *testing.T) {
	s := startServer(t, &fakeController{}, nil)

	reply := send(t, s, Request{Command: CmdLibrary, Path: "/media/My Anime"})
	require.True(t, reply.OK)
	assert.Equal(t, "2 videos", reply.Message)
	assert.Equal(t, []string{"anime/", "  Show/", "    e01.mkv", "    e02.mkv"}, reply.Lines)

	reply = send(t, s, Request{Command: CmdLibrary})
	assert.False(t, reply.OK)
	assert.Contains(t, reply.Message, "no library")
}

func TestServerRejectsUnknownCommand(t *testing.T) {
	s := startServer(t, &fakeController{}, nil)

	reply := send(t, s, Request{Command: "launch", Service: "x"})
	assert.False(t, reply.OK)
	assert.Contains(t, reply.Message, "unknown command")
}

func TestServerRateLimits(t *testing.T) {
	s := startServer(t, &fakeController{}, func(c *config.Config) {
		c.IPC.RatePerSecond = 0.001
		c.IPC.Burst = 2
	})

	var limited int
	for i := 0; i < 4; i++ {
		reply := send(t, s, Request{Command: CmdList})
		if !reply.OK && reply.Message == ErrRateLimited.Error() {
			limited++
		}
	}
	assert.Equal(t, 2, limited)

	// ping bypasses admission control
	assert.True(t, send(t, s, Request{Command: CmdPing}).OK)
}

func TestServerStopRemovesSocket(t *testing.T) {
	s := startServer(t, &fakeController{}, nil)

	require.NoError(t, s.Stop())
	_, err := os.Stat(s.Addr())
	assert.True(t, os.IsNotExist(err))

	// Stopping twice is harmless
	assert.NoError(t, s.Stop())
}

func TestServerStopKeepsReplacementSocket(t *testing.T) {
	old := startServer(t, &fakeController{}, nil)
	replacement := startServer(t, &fakeController{}, func(c *config.Config) {
		c.SocketPath = old.Addr()
	})

	require.NoError(t, old.Stop())

	_, err := os.Stat(replacement.Addr())
	require.NoError(t, err, "replacement socket was removed")
	assert.True(t, send(t, replacement, Request{Command: CmdPing}).OK)

	require.NoError(t, replacement.Stop())
	_, err = os.Stat(replacement.Addr())
	assert.True(t, os.IsNotExist(err))
}

func TestServerStartTwiceFails(t *testing.T) {
	s := startServer(t, &fakeController{}, nil)
	assert.Error(t, s.Start())
}
