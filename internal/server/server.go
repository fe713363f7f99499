// Package server runs the SSH endpoint of the housekeeping board.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"estada-feliz/internal/config"
	"estada-feliz/internal/hotel"
	"estada-feliz/internal/ratelimit"
	"estada-feliz/internal/router"
	"estada-feliz/internal/tui"
)

const version = "dev"

// Desk is what the SSH endpoint needs from the hotel service.
type Desk interface {
	Authenticate(ctx context.Context, email, password string) (hotel.User, error)
	tui.Board
}

// Runtime wires config, middleware and the Wish server as a testable unit.
type Runtime struct {
	cfg           config.Config
	desk          Desk
	logger        *log.Logger
	middlewareIDs []string
	authLimiter   *ratelimit.Limiter
	server        *ssh.Server
	now           func() time.Time
}

// Option customises a Runtime.
type Option func(*Runtime)

// WithAuthLimiter sets the per-IP limiter consulted before every password
// check. By default one is built from the SSH rate limit settings.
func WithAuthLimiter(l *ratelimit.Limiter) Option {
	return func(r *Runtime) {
		if l != nil {
			r.authLimiter = l
		}
	}
}

// New builds the SSH runtime. chain runs in order after connection logging
// and before the board itself.
func New(cfg config.Config, desk Desk, logger *log.Logger, chain []router.Descriptor, opts ...Option) (*Runtime, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("create host key directory: %w", err)
	}

	r := &Runtime{
		cfg:           cfg,
		desk:          desk,
		logger:        logger,
		middlewareIDs: router.Names(chain),
		authLimiter:   ratelimit.New(cfg.SSHRateLimitPerMinute, cfg.SSHRateLimitBurst),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	// wish composes middleware so the last element runs first.
	middleware := []wish.Middleware{r.boardMiddleware()}
	middleware = append(middleware, router.MiddlewareFromDescriptors(chain)...)
	middleware = append(middleware, logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel))

	server, err := wish.NewServer(
		wish.WithAddress(cfg.SSHAddress()),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithPasswordAuth(r.authenticate),
		wish.WithMiddleware(middleware...),
	)
	if err != nil {
		return nil, fmt.Errorf("build ssh server: %w", err)
	}
	r.server = server
	return r, nil
}

// MiddlewareIDs lists the guarding middleware in execution order.
func (r *Runtime) MiddlewareIDs() []string {
	out := make([]string, len(r.middlewareIDs))
	copy(out, r.middlewareIDs)
	return out
}

func (r *Runtime) Address() string {
	return r.server.Addr
}

// Run serves until ctx is done, then shuts the server down.
func (r *Runtime) Run(ctx context.Context) error {
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.server.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("ssh shutdown incomplete", "event", "shutdown", "err", err)
		}
	}()

	r.logger.Info("ssh board listening",
		"event", "startup",
		"version", version,
		"addr", r.Address(),
		"middleware", r.middlewareIDs,
		"host_key_path", r.cfg.HostKeyPath,
		"idle_timeout", r.cfg.IdleTimeout,
		"max_sessions", r.cfg.MaxSessions,
	)
	err := r.server.ListenAndServe()
	if err == nil || errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

// authenticate treats the SSH user name as the account e-mail.
func (r *Runtime) authenticate(ctx ssh.Context, password string) bool {
	if !r.authLimiter.Allow(ratelimit.HostKey(ctx.RemoteAddr())) {
		r.logger.Warn("ssh login throttled", "event", "ssh_auth_throttled", "user", ctx.User(), "remote_addr", ctx.RemoteAddr())
		return false
	}
	user, err := r.desk.Authenticate(ctx, ctx.User(), password)
	if err != nil {
		r.logger.Warn("ssh login rejected", "event", "ssh_auth_failed", "user", ctx.User(), "remote_addr", ctx.RemoteAddr(), "err", err)
		return false
	}
	router.SetUser(ctx, user)
	r.logger.Info("ssh login", "event", "ssh_auth", "user_id", user.ID, "profile", user.Profile)
	return true
}

// boardMiddleware starts the interactive board on a PTY and falls back to a
// plain snapshot otherwise.
func (r *Runtime) boardMiddleware() wish.Middleware {
	interactive := bm.Middleware(r.program)
	return func(next ssh.Handler) ssh.Handler {
		withTea := interactive(next)
		return func(s ssh.Session) {
			if _, _, ok := s.Pty(); !ok {
				r.snapshot(s)
				return
			}
			withTea(s)
		}
	}
}

func (r *Runtime) program(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	md, _ := router.MetadataFromContext(s.Context())
	pty, _, _ := s.Pty()
	model := tui.NewModel(s.Context(), r.desk, md.User, tui.Options{
		Theme:    md.Theme,
		Width:    pty.Window.Width,
		Height:   pty.Window.Height,
		Renderer: bm.MakeRenderer(s),
	})
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

func (r *Runtime) snapshot(s ssh.Session) {
	rooms, err := r.desk.Rooms(s.Context())
	if err != nil {
		r.logger.Error("board snapshot failed", "event", "snapshot_failed", "user", s.User(), "err", err)
		_, _ = io.WriteString(s, hotel.UserMessage(err)+"\n")
		_ = s.Exit(1)
		return
	}
	_, _ = io.WriteString(s, tui.Snapshot(rooms, r.now()))
	_ = s.Exit(0)
}
