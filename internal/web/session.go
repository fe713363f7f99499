package web

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"estada-feliz/internal/hotel"
	"estada-feliz/internal/store"
)

const sessionCookieName = "session"

var errBadSignature = errors.New("bad cookie signature")

type userContextKey struct{}

// signer authenticates cookie payloads with HMAC-SHA256.
type signer struct {
	secret []byte
}

func (s signer) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return payload + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s signer) verify(value string) (string, error) {
	idx := strings.LastIndexByte(value, '.')
	if idx <= 0 {
		return "", errBadSignature
	}
	payload, sig := value[:idx], value[idx+1:]
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", errBadSignature
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	if !hmac.Equal(got, mac.Sum(nil)) {
		return "", errBadSignature
	}
	return payload, nil
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user hotel.User) error {
	sess, err := h.sessions.CreateSession(r.Context(), user.ID, h.desk.Now(), h.sessionTTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    h.signer.sign(sess.ID),
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.sessionID(r); ok {
		if err := h.sessions.DeleteSession(r.Context(), id); err != nil {
			h.logger.Warn("session delete failed", "event", "logout_cleanup_failed", "err", err)
		}
	}
	h.clearCookie(w, sessionCookieName, true)
}

func (h *Handler) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	id, err := h.signer.verify(c.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

// loadUser resolves the session cookie into an account, or reports false.
func (h *Handler) loadUser(r *http.Request) (hotel.User, bool) {
	id, ok := h.sessionID(r)
	if !ok {
		return hotel.User{}, false
	}
	sess, err := h.sessions.Session(r.Context(), id, h.desk.Now())
	if err != nil {
		if !errors.Is(err, store.ErrSessionNotFound) && !errors.Is(err, store.ErrSessionExpired) {
			h.logger.Error("session lookup failed", "event", "session_lookup_failed", "err", err)
		}
		return hotel.User{}, false
	}
	user, err := h.desk.User(r.Context(), sess.UserID)
	if err != nil {
		return hotel.User{}, false
	}
	return user, true
}

func (h *Handler) loginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.loadUser(r)
		if !ok {
			h.clearCookie(w, sessionCookieName, true)
			h.setFlash(w, flashWarning, "Please log in to access this page.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, user)))
	})
}

// apiLoginRequired is loginRequired for JSON endpoints.
func (h *Handler) apiLoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.loadUser(r)
		if !ok {
			writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "login required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, user)))
	})
}

func (h *Handler) profileRequired(allowed ...hotel.Profile) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r)
			if !user.Profile.In(allowed...) {
				logRejection(h.logger, r, "profile_required", user.Profile.String())
				h.setFlash(w, flashDanger, "You do not have permission to access this page.")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func currentUser(r *http.Request) hotel.User {
	user, _ := r.Context().Value(userContextKey{}).(hotel.User)
	return user
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: httpOnly,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
