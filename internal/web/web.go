// Package web serves the front-desk HTML application, its JSON endpoints and
// the metrics surface.
package web

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"estada-feliz/internal/hotel"
	"estada-feliz/internal/ratelimit"
	"estada-feliz/internal/store"
)

// Desk is the hotel service as used by the web handlers.
type Desk interface {
	Now() time.Time
	Authenticate(ctx context.Context, email, password string) (hotel.User, error)
	User(ctx context.Context, id int64) (hotel.User, error)
	CreateReservation(ctx context.Context, req hotel.ReservationRequest) (hotel.Reservation, error)
	Reservations(ctx context.Context) ([]hotel.Reservation, error)
	GuestReservations(ctx context.Context, guest string) ([]hotel.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
	AvailableRooms(ctx context.Context, checkIn, checkOut string) ([]hotel.Room, error)
	Rooms(ctx context.Context) ([]hotel.Room, error)
	UpdateRoomStatus(ctx context.Context, number string, status hotel.RoomStatus) error
}

// Sessions stores login sessions.
type Sessions interface {
	CreateSession(ctx context.Context, userID int64, now time.Time, ttl time.Duration) (store.Session, error)
	Session(ctx context.Context, id string, now time.Time) (store.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Handler.
type Options struct {
	SessionSecret  []byte
	SessionTTL     time.Duration
	ThemeCookieTTL time.Duration
	// SecureCookies marks every cookie Secure; enable behind TLS.
	SecureCookies bool
	LoginLimiter  *ratelimit.Limiter
	Metrics       *Metrics
	Pinger        Pinger
	Logger        *log.Logger
}

// Handler holds the desk web application.
type Handler struct {
	desk          Desk
	sessions      Sessions
	pinger        Pinger
	signer        signer
	sessionTTL    time.Duration
	themeTTL      time.Duration
	secureCookies bool
	loginLimiter  *ratelimit.Limiter
	metrics       *Metrics
	logger        *log.Logger
}

func NewHandler(desk Desk, sessions Sessions, opts Options) *Handler {
	h := &Handler{
		desk:          desk,
		sessions:      sessions,
		pinger:        opts.Pinger,
		signer:        signer{secret: opts.SessionSecret},
		sessionTTL:    opts.SessionTTL,
		themeTTL:      opts.ThemeCookieTTL,
		secureCookies: opts.SecureCookies,
		loginLimiter:  opts.LoginLimiter,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
	}
	if h.sessionTTL <= 0 {
		h.sessionTTL = time.Hour
	}
	if h.themeTTL <= 0 {
		h.themeTTL = 30 * 24 * time.Hour
	}
	if h.loginLimiter == nil {
		h.loginLimiter = ratelimit.New(10, 5)
	}
	if h.metrics == nil {
		h.metrics = NewMetrics()
	}
	if h.logger == nil {
		h.logger = log.New(io.Discard)
	}
	return h
}

// Routes builds the application router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(instrumentRequests(h.logger, h.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	r.Get("/static/theme.css", h.stylesheet)
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.With(h.apiLoginRequired).Get("/api/availability", h.apiAvailability)

	r.Group(func(r chi.Router) {
		r.Use(h.loginRequired)
		r.Get("/", h.home)
		r.Get("/logout", h.logout)
		r.Get("/theme/{theme}", h.setTheme)

		r.Group(func(r chi.Router) {
			r.Use(h.profileRequired(hotel.ProfileAdministrator, hotel.ProfileReceptionist))
			r.Get("/reservations", h.reservations)
			r.Post("/reservations", h.createReservation)
			r.Post("/reservations/{id}/delete", h.deleteReservation)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.profileRequired(hotel.ProfileAdministrator, hotel.ProfileHousekeeper))
			r.Get("/rooms", h.rooms)
			r.Post("/rooms", h.updateRoom)
		})
		r.With(h.profileRequired(hotel.ProfileGuest)).Get("/my-reservations", h.myReservations)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusNotFound, "Not found", nil, nil, notFoundContent())
	})
	return r
}
