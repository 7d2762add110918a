package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chess10kp/tokie/internal/config"
	"github.com/chess10kp/tokie/internal/library"
	"github.com/chess10kp/tokie/internal/views"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxRequestSize = 4096

var ErrRateLimited = errors.New("rate limited")

// Controller is what the server drives. Implementations must be safe to
// call from the server's connection goroutines.
type Controller interface {
	Open(ctx context.Context, service, serviceURL string) views.Result
	Hide(ctx context.Context, service string) (label string, err error)
	Exclusive(ctx context.Context, service string) (label string, hidden []string, err error)
	Views(ctx context.Context) ([]views.View, error)
	Services() []string
	Library(ctx context.Context, root string) (library.Directory, error)
}

type Server struct {
	socketPath  string
	controller  Controller
	limiter     *rate.Limiter
	readTimeout time.Duration
	onOpen      func(views.Result)

	mu         sync.Mutex
	listener   net.Listener
	socketInfo os.FileInfo
	running    bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewServer(cfg *config.Config, controller Controller) *Server {
	s := &Server{
		socketPath:  cfg.SocketPath,
		controller:  controller,
		readTimeout: time.Duration(cfg.IPC.ReadTimeout) * time.Millisecond,
	}
	if cfg.IPC.RatePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.IPC.RatePerSecond), cfg.IPC.Burst)
	}
	return s
}

// OnOpen registers a callback run after every successful open request
func (s *Server) OnOpen(fn func(views.Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpen = fn
}

func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("IPC server already running")
	}

	// Remove existing socket file if it exists
	if _, err := os.Stat(s.socketPath); err == nil {
		os.Remove(s.socketPath)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	// The socket file is removed in Stop, and only while it is still ours
	if ul, ok := listener.(*net.UnixListener); ok {
		ul.SetUnlinkOnClose(false)
	}
	if info, err := os.Stat(s.socketPath); err == nil {
		s.socketInfo = info
	}

	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	log.Printf("[IPC] Server listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptConnections()

	return nil
}

func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			log.Printf("[IPC] Error accepting connection: %v", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	id := uuid.NewString()
	if s.readTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}

	line, err := bufio.NewReader(io.LimitReader(conn, maxRequestSize)).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		log.Printf("[IPC] %s Error reading request: %v", id, err)
		return
	}
	line = strings.TrimSpace(line)
	log.Printf("[IPC] %s Received: %s", id, line)

	reply := s.handle(line)
	if !reply.OK {
		log.Printf("[IPC] %s Failed: %s %s", id, reply.Label, reply.Message)
	}

	if _, err := io.WriteString(conn, reply.String()); err != nil {
		log.Printf("[IPC] %s Error writing reply: %v", id, err)
	}
}

func (s *Server) handle(line string) Reply {
	req, err := ParseRequest(line)
	if err != nil {
		return errorReply(noLabel, err)
	}

	if s.limiter != nil && req.Command != CmdPing && !s.limiter.Allow() {
		return errorReply(noLabel, ErrRateLimited)
	}

	ctx := s.ctx
	switch req.Command {
	case CmdPing:
		return okReply(noLabel, "pong")

	case CmdOpen:
		result := s.controller.Open(ctx, req.Service, req.URL)
		if result.Err != nil {
			return errorReply(result.Label, result.Err)
		}
		s.mu.Lock()
		onOpen := s.onOpen
		s.mu.Unlock()
		if onOpen != nil {
			onOpen(result)
		}
		return okReply(result.Label, string(result.Action), result.Hidden...)

	case CmdHide:
		label, err := s.controller.Hide(ctx, req.Service)
		if err != nil {
			return errorReply(label, err)
		}
		return okReply(label, "hidden")

	case CmdExclusive:
		label, hidden, err := s.controller.Exclusive(ctx, req.Service)
		if err != nil {
			return Reply{OK: false, Label: label, Message: err.Error(), Lines: hidden}
		}
		return okReply(label, fmt.Sprintf("hid %d", len(hidden)), hidden...)

	case CmdList:
		list, err := s.controller.Views(ctx)
		if err != nil {
			return errorReply(noLabel, err)
		}
		lines := make([]string, len(list))
		for i, v := range list {
			state := "hidden"
			if v.Visible {
				state = "visible"
			}
			lines[i] = v.Label + " " + state
		}
		return okReply(noLabel, fmt.Sprintf("%d views", len(list)), lines...)

	case CmdServices:
		names := s.controller.Services()
		return okReply(noLabel, fmt.Sprintf("%d services", len(names)), names...)

	case CmdLibrary:
		dir, err := s.controller.Library(ctx, req.Path)
		if err != nil {
			return errorReply(noLabel, err)
		}
		return okReply(noLabel, fmt.Sprintf("%d videos", dir.Count()), dir.Lines()...)
	}

	return errorReply(noLabel, fmt.Errorf("%w: %s", ErrUnknownCommand, req.Command))
}

// Addr returns the socket path
func (s *Server) Addr() string {
	return s.socketPath
}

func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	owned := s.socketInfo
	s.mu.Unlock()

	s.wg.Wait()

	// A newer instance may have replaced the socket; leave its file alone
	if info, err := os.Stat(s.socketPath); err == nil {
		if owned != nil && os.SameFile(info, owned) {
			os.Remove(s.socketPath)
		} else {
			log.Printf("[IPC] %s now belongs to another server, not removing it", s.socketPath)
		}
	}

	log.Println("[IPC] Server stopped")
	return nil
}
