package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"estada-feliz/internal/hotel"
)

type availabilityResponse struct {
	CheckIn  string       `json:"checkin"`
	CheckOut string       `json:"checkout"`
	Rooms    []hotel.Room `json:"rooms"`
}

func (h *Handler) apiAvailability(w http.ResponseWriter, r *http.Request) {
	checkIn, checkOut := h.stayParams(r)
	rooms, err := h.desk.AvailableRooms(r.Context(), checkIn, checkOut)
	if err != nil {
		logRejection(h.logger, r, "api_availability", err.Error())
		writeMappedErr(w, err)
		return
	}
	if rooms == nil {
		rooms = []hotel.Room{}
	}
	writeJSON(w, http.StatusOK, availabilityResponse{CheckIn: checkIn, CheckOut: checkOut, Rooms: rooms})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Error("health check failed", "event", "healthz_failed", "err", err)
			writeErr(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "database is not reachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeMappedErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hotel.ErrInvalidDates):
		writeErr(w, http.StatusBadRequest, "INVALID_DATES", hotel.UserMessage(err))
		return
	case errors.Is(err, hotel.ErrInvalidRequest):
		writeErr(w, http.StatusBadRequest, "INVALID_REQUEST", hotel.UserMessage(err))
		return
	case errors.Is(err, hotel.ErrRoomNotFound), errors.Is(err, hotel.ErrReservationNotFound):
		writeErr(w, http.StatusNotFound, "NOT_FOUND", hotel.UserMessage(err))
		return
	case errors.Is(err, hotel.ErrRoomUnavailable):
		writeErr(w, http.StatusConflict, "ROOM_UNAVAILABLE", hotel.UserMessage(err))
		return
	case errors.Is(err, hotel.ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", hotel.UserMessage(err))
		return
	}
	var friendly *hotel.FriendlyError
	if errors.As(err, &friendly) {
		writeErr(w, http.StatusServiceUnavailable, friendly.Code, friendly.Message)
		return
	}
	writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "hotel desk internal error")
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message, "status": strconv.Itoa(status)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
