package router

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

const defaultMaxSessions = 32

// maxSessions caps concurrent sessions. A slot is released when the handler
// returns, panics, or the connection context ends, whichever happens first.
func maxSessions(limit int, logger *log.Logger) wish.Middleware {
	if limit <= 0 {
		limit = defaultMaxSessions
	}
	slots := make(chan struct{}, limit)

	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			select {
			case slots <- struct{}{}:
			default:
				logger.Warn("ssh session rejected", "event", "max_sessions_exceeded", "limit", limit, "user", s.User())
				_, _ = io.WriteString(s, msgTooMany)
				return
			}

			var once sync.Once
			release := func() { once.Do(func() { <-slots }) }
			done := make(chan struct{})
			defer close(done)

			if ctx := s.Context(); ctx != nil {
				go func() {
					select {
					case <-ctx.Done():
						release()
					case <-done:
					}
				}()
			}

			defer func() {
				if r := recover(); r != nil {
					logger.Error("ssh handler panic", "event", "session_panic", "user", s.User(), "panic", r)
				}
				release()
			}()
			next(s)
		}
	}
}
