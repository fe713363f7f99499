// Package router holds the SSH middleware chain that guards the
// housekeeping board.
package router

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"

	"estada-feliz/internal/hotel"
	"estada-feliz/internal/ratelimit"
	"estada-feliz/internal/theme"
)

const (
	msgRateLimited  = "rate limit exceeded\n"
	msgTooMany      = "too many sessions\n"
	msgAccessDenied = "ACCESS DENIED: profile not allowed on the housekeeping board.\n"
)

// BoardProfiles may open the housekeeping board.
var BoardProfiles = []hotel.Profile{hotel.ProfileAdministrator, hotel.ProfileHousekeeper}

// Descriptor names one middleware in the chain.
type Descriptor struct {
	Name       string
	Middleware wish.Middleware
}

// ChainConfig carries the collaborators of DefaultChain.
type ChainConfig struct {
	Limiter     *ratelimit.Limiter
	MaxSessions int
	Logger      *log.Logger
	Now         func() time.Time
}

// DefaultChain returns the chain in execution order: rate limiting, the
// session cap, profile routing, then session metadata.
func DefaultChain(cfg ChainConfig) []Descriptor {
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.New(0, 0)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return []Descriptor{
		{Name: "rate-limit", Middleware: rateLimiting(cfg.Limiter, cfg.Logger)},
		{Name: "max-sessions", Middleware: maxSessions(cfg.MaxSessions, cfg.Logger)},
		{Name: "profile-routing", Middleware: profileRouting(cfg.Logger)},
		{Name: "session-metadata", Middleware: sessionMetadata(cfg.Now)},
	}
}

// Names lists the descriptor names in order.
func Names(chain []Descriptor) []string {
	out := make([]string, 0, len(chain))
	for _, d := range chain {
		out = append(out, d.Name)
	}
	return out
}

// MiddlewareFromDescriptors returns the chain in the order wish.WithMiddleware
// composes it, where the last element runs first.
func MiddlewareFromDescriptors(chain []Descriptor) []wish.Middleware {
	out := make([]wish.Middleware, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].Middleware)
	}
	return out
}

// Handler wraps final with the chain so chain[0] runs first.
func Handler(chain []Descriptor, final ssh.Handler) ssh.Handler {
	h := final
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i].Middleware(h)
	}
	return h
}

func rateLimiting(limiter *ratelimit.Limiter, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			ip := ratelimit.HostKey(s.RemoteAddr())
			if !limiter.Allow(ip) {
				logger.Warn("ssh session throttled", "event", "rate_limit_throttled", "remote_ip", ip)
				_, _ = io.WriteString(s, msgRateLimited)
				return
			}
			next(s)
		}
	}
}

func profileRouting(logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			user, ok := UserFromContext(s.Context())
			if !ok || !user.Profile.In(BoardProfiles...) {
				logger.Warn("board access denied", "event", "profile_denied", "user", s.User(), "profile", user.Profile)
				_, _ = io.WriteString(s, msgAccessDenied)
				return
			}
			next(s)
		}
	}
}

func sessionMetadata(now func() time.Time) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			user, _ := UserFromContext(s.Context())
			s.Context().SetValue(metadataKey, Metadata{
				User:      user,
				RemoteIP:  ratelimit.HostKey(s.RemoteAddr()),
				StartedAt: now().UTC(),
				Theme:     themeFromEnviron(s.Environ()),
			})
			next(s)
		}
	}
}

// themeFromEnviron reads THEME from the client environment. Unset means the
// default theme; any other value is kept so callers can fall back themselves.
func themeFromEnviron(environ []string) string {
	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, "THEME="); ok {
			return strings.TrimSpace(v)
		}
	}
	return theme.DefaultValue
}
