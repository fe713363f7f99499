package router

import (
	"time"

	"github.com/charmbracelet/ssh"

	"estada-feliz/internal/hotel"
)

type contextKey string

const (
	userKey     contextKey = "hotel-user"
	metadataKey contextKey = "session-metadata"
)

// Metadata describes an admitted board session.
type Metadata struct {
	User      hotel.User
	RemoteIP  string
	StartedAt time.Time
	Theme     string
}

// SetUser records the authenticated account on the connection context.
func SetUser(ctx ssh.Context, user hotel.User) {
	ctx.SetValue(userKey, user)
}

// UserFromContext returns the account stored by SetUser.
func UserFromContext(ctx ssh.Context) (hotel.User, bool) {
	if ctx == nil {
		return hotel.User{}, false
	}
	user, ok := ctx.Value(userKey).(hotel.User)
	return user, ok
}

// MetadataFromContext returns the metadata stored by the session-metadata
// middleware.
func MetadataFromContext(ctx ssh.Context) (Metadata, bool) {
	if ctx == nil {
		return Metadata{}, false
	}
	md, ok := ctx.Value(metadataKey).(Metadata)
	return md, ok
}
