package router

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/ssh"

	"estada-feliz/internal/hotel"
	"estada-feliz/internal/ratelimit"
)

type fakeContext struct {
	context.Context
	mu     sync.Mutex
	values map[any]any
	remote net.Addr
}

func newFakeContext(ctx context.Context, remote net.Addr) *fakeContext {
	return &fakeContext{Context: ctx, values: map[any]any{}, remote: remote}
}

func (f *fakeContext) Lock()                 { f.mu.Lock() }
func (f *fakeContext) Unlock()               { f.mu.Unlock() }
func (f *fakeContext) User() string          { return "housekeeping@hotel.com" }
func (f *fakeContext) SessionID() string     { return "test-session" }
func (f *fakeContext) ClientVersion() string { return "ssh-test-client" }
func (f *fakeContext) ServerVersion() string { return "ssh-test-server" }
func (f *fakeContext) RemoteAddr() net.Addr  { return f.remote }
func (f *fakeContext) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 2222}
}
func (f *fakeContext) Permissions() *ssh.Permissions { return &ssh.Permissions{} }
func (f *fakeContext) SetValue(key, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}
func (f *fakeContext) Value(key interface{}) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[key]; ok {
		return v
	}
	return f.Context.Value(key)
}

// fakeSession implements the ssh.Session methods the middleware touches.
type fakeSession struct {
	ssh.Session
	ctx     *fakeContext
	user    string
	environ []string

	mu     sync.Mutex
	writes []string
}

func newFakeSession(ctx context.Context, ip string, user *hotel.User) *fakeSession {
	fc := newFakeContext(ctx, &net.TCPAddr{IP: net.ParseIP(ip), Port: 50022})
	s := &fakeSession{ctx: fc, user: "someone@hotel.com"}
	if user != nil {
		SetUser(fc, *user)
		s.user = user.Email
	}
	return s
}

func (f *fakeSession) User() string         { return f.user }
func (f *fakeSession) Context() ssh.Context { return f.ctx }
func (f *fakeSession) RemoteAddr() net.Addr { return f.ctx.remote }
func (f *fakeSession) Environ() []string    { return f.environ }
func (f *fakeSession) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, string(p))
	return len(p), nil
}

func (f *fakeSession) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

var (
	housekeeper  = hotel.User{ID: 3, Name: "Housekeeper", Email: "housekeeping@hotel.com", Profile: hotel.ProfileHousekeeper}
	admin        = hotel.User{ID: 1, Name: "Hotel Admin", Email: "admin@hotel.com", Profile: hotel.ProfileAdministrator}
	receptionist = hotel.User{ID: 4, Name: "Receptionist", Email: "reception@hotel.com", Profile: hotel.ProfileReceptionist}
	guest        = hotel.User{ID: 2, Name: "Guest", Email: "guest@hotel.com", Profile: hotel.ProfileGuest}
)

func TestDefaultChainOrder(t *testing.T) {
	chain := DefaultChain(ChainConfig{MaxSessions: 2})
	want := []string{"rate-limit", "max-sessions", "profile-routing", "session-metadata"}
	got := Names(chain)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	wishOrder := MiddlewareFromDescriptors(chain)
	if len(wishOrder) != len(chain) {
		t.Fatalf("MiddlewareFromDescriptors() length = %d", len(wishOrder))
	}
}

func TestChainAdmitsBoardProfiles(t *testing.T) {
	start := time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC)
	chain := DefaultChain(ChainConfig{MaxSessions: 4, Now: func() time.Time { return start }})

	for _, user := range []hotel.User{housekeeper, admin} {
		t.Run(user.Profile.String(), func(t *testing.T) {
			s := newFakeSession(context.Background(), "198.51.100.7", &user)
			s.environ = []string{"LANG=C", "THEME=dark"}
			called := false

			Handler(chain, func(sess ssh.Session) {
				called = true
				md, ok := MetadataFromContext(sess.Context())
				if !ok {
					t.Fatal("metadata missing before handler")
				}
				if md.User != user || md.RemoteIP != "198.51.100.7" || !md.StartedAt.Equal(start) || md.Theme != "dark" {
					t.Fatalf("metadata = %+v", md)
				}
			})(s)

			if !called {
				t.Fatal("expected handler to run")
			}
			if w := s.written(); len(w) != 0 {
				t.Fatalf("writes = %#v", w)
			}
		})
	}
}

func TestProfileRoutingDeniesOtherProfiles(t *testing.T) {
	tests := []struct {
		name string
		user *hotel.User
	}{
		{name: "receptionist", user: &receptionist},
		{name: "guest", user: &guest},
		{name: "unauthenticated", user: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeSession(context.Background(), "198.51.100.8", tt.user)
			called := false
			Handler(DefaultChain(ChainConfig{}), func(ssh.Session) { called = true })(s)

			if called {
				t.Fatal("handler should not run")
			}
			if w := s.written(); len(w) != 1 || w[0] != msgAccessDenied {
				t.Fatalf("writes = %#v", w)
			}
			if _, ok := MetadataFromContext(s.Context()); ok {
				t.Fatal("metadata should not be stored for denied sessions")
			}
		})
	}
}

func TestRateLimitingThrottlesByIP(t *testing.T) {
	chain := DefaultChain(ChainConfig{Limiter: ratelimit.New(60, 2)})
	calls := 0
	h := Handler(chain, func(ssh.Session) { calls++ })

	s := newFakeSession(context.Background(), "203.0.113.10", &housekeeper)
	h(s)
	h(s)
	h(s)

	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
	if w := s.written(); len(w) != 1 || w[0] != msgRateLimited {
		t.Fatalf("writes = %#v", w)
	}

	other := newFakeSession(context.Background(), "203.0.113.11", &housekeeper)
	h(other)
	if calls != 3 {
		t.Fatalf("other IP should have its own bucket, calls = %d", calls)
	}
}

func TestThemeFromEnviron(t *testing.T) {
	tests := []struct {
		name    string
		environ []string
		want    string
	}{
		{name: "unset", environ: nil, want: "light"},
		{name: "dark", environ: []string{"THEME=dark"}, want: "dark"},
		{name: "custom kept", environ: []string{"THEME=solarized"}, want: "solarized"},
		{name: "first wins", environ: []string{"THEME=contrast", "THEME=dark"}, want: "contrast"},
		{name: "empty value", environ: []string{"THEME="}, want: ""},
		{name: "prefix only", environ: []string{"THEMES=dark"}, want: "light"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := themeFromEnviron(tt.environ); got != tt.want {
				t.Fatalf("themeFromEnviron() = %q, want %q", got, tt.want)
			}
		})
	}
}
