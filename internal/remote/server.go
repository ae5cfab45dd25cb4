// Package remote accepts player commands over a websocket or plain HTTP and
// hands them to the control loop.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"termplay/internal/logger"
)

// DefaultReplyTimeout bounds how long a request waits for the control loop.
const DefaultReplyTimeout = 10 * time.Second

// ErrBusy is returned when the control loop does not pick a command up or
// answer it in time.
var ErrBusy = errors.New("player did not respond")

// Reply is the control loop's answer to a command.
type Reply struct {
	Message string `json:"message"`
	Playing string `json:"playing,omitempty"`
	Quit    bool   `json:"quit,omitempty"`
}

// Command is one command line received from a client. The control loop must
// answer every command with Reply.
type Command struct {
	Line  string
	reply chan Reply
}

// Reply sends r back to the client. It never blocks.
func (c Command) Reply(r Reply) {
	select {
	case c.reply <- r:
	default:
	}
}

type Server struct {
	// ReplyTimeout bounds the wait for the control loop. Set before serving.
	ReplyTimeout time.Duration

	addr     string
	logger   *logger.Logger
	commands chan Command
}

func New(addr string, log *logger.Logger) *Server {
	return &Server{
		ReplyTimeout: DefaultReplyTimeout,
		addr:         addr,
		logger:       log,
		commands:     make(chan Command),
	}
}

// Commands delivers received commands to the control loop.
func (s *Server) Commands() <-chan Command {
	return s.commands
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/command", s.handleCommand)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return s.loggingMiddleware(mux)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// Serve listens on the configured address until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Debug("Remote control listening on %s", s.addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("remote control server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// submit hands line to the control loop and waits for its reply.
func (s *Server) submit(ctx context.Context, line string) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, s.ReplyTimeout)
	defer cancel()

	cmd := Command{Line: line, reply: make(chan Reply, 1)}
	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return Reply{}, ErrBusy
	}
	select {
	case r := <-cmd.reply:
		return r, nil
	case <-ctx.Done():
		return Reply{}, ErrBusy
	}
}
