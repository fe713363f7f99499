package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookieName = "flash"

const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashWarning = "warning"
	flashDanger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (h *Handler) setFlash(w http.ResponseWriter, category, message string) {
	raw, err := json.Marshal([]Flash{{Category: category, Message: message}})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    h.signer.sign(base64.RawURLEncoding.EncodeToString(raw)),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlashes returns the pending flashes and clears the cookie. Tampered
// cookies are dropped silently.
func (h *Handler) takeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	h.clearCookie(w, flashCookieName, true)

	payload, err := h.signer.verify(c.Value)
	if err != nil {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
