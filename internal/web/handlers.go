package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"estada-feliz/internal/hotel"
	"estada-feliz/internal/ratelimit"
	"estada-feliz/internal/theme"
)

const maxFormBytes = 16 * 1024

func (h *Handler) stylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(theme.Stylesheet()))
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if user, ok := h.loadUser(r); ok {
		h.logger.Debug("already logged in", "event", "login_redirect", "user_id", user.ID)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "Log in", nil, nil, loginContent(""))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.HostFromString(r.RemoteAddr)
	if !h.loginLimiter.Allow(ip) {
		h.metrics.loginAttempt("throttled")
		logRejection(h.logger, r, "login", "rate_limited")
		h.render(w, r, http.StatusTooManyRequests, "Log in", nil,
			[]Flash{{Category: flashDanger, Message: "Too many login attempts. Try again in a minute."}}, loginContent(""))
		return
	}

	if err := parseForm(w, r); err != nil {
		h.render(w, r, http.StatusBadRequest, "Log in", nil,
			[]Flash{{Category: flashDanger, Message: hotel.UserMessage(hotel.ErrInvalidRequest)}}, loginContent(""))
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))

	user, err := h.desk.Authenticate(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		status := http.StatusOK
		result := "failure"
		if !errors.Is(err, hotel.ErrInvalidCredentials) {
			status = http.StatusServiceUnavailable
			result = "error"
		}
		h.metrics.loginAttempt(result)
		h.logger.Warn("login failed", "event", "login_failed", "remote_ip", ip, "err", err)
		h.render(w, r, status, "Log in", nil,
			[]Flash{{Category: flashDanger, Message: hotel.UserMessage(err)}}, loginContent(email))
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.metrics.loginAttempt("error")
		h.logger.Error("session start failed", "event", "session_create_failed", "user_id", user.ID, "err", err)
		h.render(w, r, http.StatusServiceUnavailable, "Log in", nil,
			[]Flash{{Category: flashDanger, Message: "Could not start a session. Try again."}}, loginContent(email))
		return
	}

	h.metrics.loginAttempt("success")
	h.logger.Info("login", "event", "login", "user_id", user.ID, "profile", user.Profile)
	h.setFlash(w, flashSuccess, "Welcome, "+user.Name+"!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	h.setFlash(w, flashInfo, "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	h.render(w, r, http.StatusOK, "Home", &user, nil, homeContent(user))
}

// setTheme stores any token verbatim; the applier decides nothing beyond
// reading it back.
func (h *Handler) setTheme(w http.ResponseWriter, r *http.Request) {
	value := chi.URLParam(r, "theme")
	if r.URL.RawPath != "" {
		// chi matched against the escaped path.
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     theme.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  h.desk.Now().Add(h.themeTTL),
		MaxAge:   int(h.themeTTL.Seconds()),
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, sameOriginReferer(r), http.StatusSeeOther)
}

// sameOriginReferer returns the Referer path when it points back at this
// host, and "/" otherwise.
func sameOriginReferer(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return "/"
	}
	target := u.RequestURI()
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/theme/") {
		return "/"
	}
	return target
}

// stayParams reads checkin/checkout from the query or form, defaulting to a
// one-night stay starting today.
func (h *Handler) stayParams(r *http.Request) (string, string) {
	today := h.desk.Now()
	checkIn := strings.TrimSpace(r.FormValue("checkin"))
	checkOut := strings.TrimSpace(r.FormValue("checkout"))
	if checkIn == "" {
		checkIn = today.Format(hotel.DateLayout)
	}
	if checkOut == "" {
		if in, err := time.Parse(hotel.DateLayout, checkIn); err == nil {
			checkOut = in.AddDate(0, 0, 1).Format(hotel.DateLayout)
		} else {
			checkOut = today.AddDate(0, 0, 1).Format(hotel.DateLayout)
		}
	}
	return checkIn, checkOut
}

func (h *Handler) reservations(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	checkIn, checkOut := h.stayParams(r)

	var flashes []Flash
	available, err := h.desk.AvailableRooms(r.Context(), checkIn, checkOut)
	if err != nil {
		flashes = append(flashes, Flash{Category: flashDanger, Message: hotel.UserMessage(err)})
	}
	rows, err := h.desk.Reservations(r.Context())
	if err != nil {
		flashes = append(flashes, Flash{Category: flashDanger, Message: hotel.UserMessage(err)})
	}
	h.render(w, r, http.StatusOK, "Reservations", &user, flashes, reservationsContent(checkIn, checkOut, available, rows))
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.setFlash(w, flashDanger, hotel.UserMessage(hotel.ErrInvalidRequest))
		http.Redirect(w, r, "/reservations", http.StatusSeeOther)
		return
	}
	checkIn, checkOut := h.stayParams(r)
	back := "/reservations?" + url.Values{"checkin": {checkIn}, "checkout": {checkOut}}.Encode()

	res, err := h.desk.CreateReservation(r.Context(), hotel.ReservationRequest{
		Room:     r.PostFormValue("room"),
		Guest:    r.PostFormValue("guest"),
		CheckIn:  checkIn,
		CheckOut: checkOut,
	})
	if err != nil {
		logRejection(h.logger, r, "create_reservation", err.Error())
		h.setFlash(w, flashDanger, hotel.UserMessage(err))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	h.setFlash(w, flashSuccess, fmt.Sprintf("Reservation #%d booked for room %s: %s (%s).", res.ID, res.Room, nights(res.Nights()), money(res.Total)))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *Handler) deleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		id = 0
	}
	if err := h.desk.DeleteReservation(r.Context(), id); err != nil {
		logRejection(h.logger, r, "delete_reservation", err.Error())
		h.setFlash(w, flashDanger, hotel.UserMessage(err))
	} else {
		h.setFlash(w, flashSuccess, "Reservation deleted.")
	}
	http.Redirect(w, r, "/reservations", http.StatusSeeOther)
}

func (h *Handler) rooms(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	rooms, err := h.desk.Rooms(r.Context())
	var flashes []Flash
	if err != nil {
		flashes = append(flashes, Flash{Category: flashDanger, Message: hotel.UserMessage(err)})
	}
	h.render(w, r, http.StatusOK, "Rooms", &user, flashes, roomsContent(rooms))
}

func (h *Handler) updateRoom(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.setFlash(w, flashDanger, hotel.UserMessage(hotel.ErrInvalidRequest))
		http.Redirect(w, r, "/rooms", http.StatusSeeOther)
		return
	}
	number := r.PostFormValue("room")
	status := hotel.RoomStatus(strings.TrimSpace(r.PostFormValue("status")))
	if err := h.desk.UpdateRoomStatus(r.Context(), number, status); err != nil {
		logRejection(h.logger, r, "update_room", err.Error())
		h.setFlash(w, flashDanger, hotel.UserMessage(err))
	} else {
		h.setFlash(w, flashSuccess, "Room "+number+" marked "+string(status)+".")
	}
	http.Redirect(w, r, "/rooms", http.StatusSeeOther)
}

func (h *Handler) myReservations(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	rows, err := h.desk.GuestReservations(r.Context(), user.Name)
	var flashes []Flash
	if err != nil {
		flashes = append(flashes, Flash{Category: flashDanger, Message: hotel.UserMessage(err)})
	}
	h.render(w, r, http.StatusOK, "My reservations", &user, flashes, myReservationsContent(rows))
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return r.ParseForm()
}

func nights(n int) string {
	if n == 1 {
		return "1 night"
	}
	return strconv.Itoa(n) + " nights"
}
