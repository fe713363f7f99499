package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"estada-feliz/internal/config"
	"estada-feliz/internal/hotel"
	"estada-feliz/internal/ratelimit"
	"estada-feliz/internal/router"
	"estada-feliz/internal/server"
	"estada-feliz/internal/store"
	"estada-feliz/internal/web"
)

const pruneInterval = 10 * time.Minute

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.LogfmtFormatter,
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", "err", err)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.EphemeralSecret {
		logger.Warn("HOTEL_SESSION_SECRET not set; sessions will not survive a restart", "event", "ephemeral_secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("desk stopped", "err", err)
	}
	logger.Info("desk stopped", "event", "shutdown")
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	st, err := store.Open(ctx, cfg.DatabasePath, store.Options{
		Seed:   cfg.SeedDemo,
		Logger: logger.WithPrefix("store"),
	})
	if err != nil {
		return err
	}
	defer st.Close()

	desk := hotel.NewService(st, hotel.WithLogger(logger.WithPrefix("desk")))

	handler := web.NewHandler(desk, st, web.Options{
		SessionSecret:  cfg.SessionSecret,
		SessionTTL:     cfg.SessionTTL,
		ThemeCookieTTL: cfg.ThemeCookieTTL,
		SecureCookies:  cfg.Production(),
		LoginLimiter:   ratelimit.New(cfg.LoginRateLimitPerMinute, cfg.LoginRateLimitBurst),
		Metrics:        web.NewMetrics(),
		Pinger:         st,
		Logger:         logger.WithPrefix("http"),
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http desk listening", "event", "startup", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.SSHEnabled {
		sshLogger := logger.WithPrefix("ssh")
		chain := router.DefaultChain(router.ChainConfig{
			Limiter:     ratelimit.New(cfg.SSHRateLimitPerMinute, cfg.SSHRateLimitBurst),
			MaxSessions: cfg.MaxSessions,
			Logger:      sshLogger,
		})
		runtime, err := server.New(cfg, desk, sshLogger, chain)
		if err != nil {
			return err
		}
		g.Go(func() error { return runtime.Run(ctx) })
	}

	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-ticker.C:
				n, err := st.PruneSessions(ctx, now)
				if err != nil {
					logger.Warn("session prune failed", "event", "session_prune_failed", "err", err)
					continue
				}
				if n > 0 {
					logger.Debug("sessions pruned", "event", "session_prune", "removed", n)
				}
			}
		}
	})

	return g.Wait()
}
