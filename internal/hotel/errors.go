package hotel

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidDates        = errors.New("invalid stay dates")
	ErrUserNotFound        = errors.New("user not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomUnavailable     = errors.New("room unavailable for the requested dates")
	ErrReservationNotFound = errors.New("reservation not found")
)

// FriendlyError carries a stable code and a message that is safe to show.
type FriendlyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *FriendlyError) Error() string {
	return e.Message
}

func (e *FriendlyError) Unwrap() error { return e.Cause }

var domainErrors = []error{
	ErrInvalidCredentials,
	ErrInvalidRequest,
	ErrInvalidDates,
	ErrUserNotFound,
	ErrRoomNotFound,
	ErrRoomUnavailable,
	ErrReservationNotFound,
}

// mapStoreError keeps domain and cancellation errors and hides everything
// else behind a FriendlyError.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var friendly *FriendlyError
	if errors.As(err, &friendly) {
		return err
	}
	return &FriendlyError{Code: "STORAGE_UNAVAILABLE", Message: "The reservation ledger is unavailable. Try again shortly.", Cause: err}
}

// UserMessage renders err as a sentence for the desk's flash messages.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Login failed. Check your e-mail and password."
	case errors.Is(err, ErrInvalidDates):
		return "Check-out must be after check-in and dates must use YYYY-MM-DD."
	case errors.Is(err, ErrRoomNotFound):
		return "Room not found or it has no nightly rate."
	case errors.Is(err, ErrRoomUnavailable):
		return "The room is already booked for those dates."
	case errors.Is(err, ErrReservationNotFound):
		return "Reservation not found."
	case errors.Is(err, ErrInvalidRequest):
		return "Some fields are missing or use values that are not allowed."
	}
	var friendly *FriendlyError
	if errors.As(err, &friendly) {
		return friendly.Message
	}
	return "An unexpected error occurred while processing the request."
}
