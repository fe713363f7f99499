// Package hotel implements the reservation desk: authentication, bookings,
// availability search and housekeeping status.
package hotel

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of reservation dates.
const DateLayout = "2006-01-02"

// Profile is the access profile attached to every account.
type Profile int

const (
	ProfileAdministrator Profile = 1
	ProfileReceptionist  Profile = 2
	ProfileHousekeeper   Profile = 3
	ProfileGuest         Profile = 4
)

var profileNames = map[Profile]string{
	ProfileAdministrator: "Administrator",
	ProfileReceptionist:  "Receptionist",
	ProfileHousekeeper:   "Housekeeper",
	ProfileGuest:         "Guest",
}

func (p Profile) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether p is one of the known profiles.
func (p Profile) Valid() bool {
	_, ok := profileNames[p]
	return ok
}

// In reports whether p is listed in allowed.
func (p Profile) In(allowed ...Profile) bool {
	for _, a := range allowed {
		if p == a {
			return true
		}
	}
	return false
}

// Profiles lists every profile in id order.
func Profiles() []Profile {
	return []Profile{ProfileAdministrator, ProfileReceptionist, ProfileHousekeeper, ProfileGuest}
}

// User is an authenticated desk account.
type User struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Profile Profile `json:"profile"`
}

// Account is a User together with its stored password hash.
type Account struct {
	User
	PasswordHash string
}

// RoomStatus is the housekeeping state of a room.
type RoomStatus string

const (
	RoomClean    RoomStatus = "clean"
	RoomDirty    RoomStatus = "dirty"
	RoomCleaning RoomStatus = "cleaning"
)

var roomCycle = map[RoomStatus]RoomStatus{
	RoomClean:    RoomDirty,
	RoomDirty:    RoomCleaning,
	RoomCleaning: RoomClean,
}

// Valid reports whether s is a known housekeeping state.
func (s RoomStatus) Valid() bool {
	_, ok := roomCycle[s]
	return ok
}

// Next returns the state that follows s on the housekeeping board.
func (s RoomStatus) Next() RoomStatus {
	if next, ok := roomCycle[s]; ok {
		return next
	}
	return RoomDirty
}

// RoomStatuses lists the housekeeping states in board order.
func RoomStatuses() []RoomStatus {
	return []RoomStatus{RoomClean, RoomDirty, RoomCleaning}
}

// Room is a bookable unit.
type Room struct {
	Number      string     `json:"number"`
	Capacity    int        `json:"capacity"`
	NightlyRate float64    `json:"nightly_rate"`
	Status      RoomStatus `json:"status"`
}

// ReservationStatus tracks whether a booking still holds its room.
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a booked stay. CheckIn and CheckOut use DateLayout.
type Reservation struct {
	ID       int64             `json:"id"`
	Room     string            `json:"room"`
	Guest    string            `json:"guest"`
	CheckIn  string            `json:"check_in"`
	CheckOut string            `json:"check_out"`
	Status   ReservationStatus `json:"status"`
	Total    float64           `json:"total"`
}

// Nights returns the length of the stay.
func (r Reservation) Nights() int {
	in, out, err := ParseStay(r.CheckIn, r.CheckOut)
	if err != nil {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}

// ReservationRequest is the form input for a new booking.
type ReservationRequest struct {
	Room     string
	Guest    string
	CheckIn  string
	CheckOut string
}

// ParseStay parses and orders a check-in/check-out pair.
func ParseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-in %q", ErrInvalidDates, checkIn)
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-out %q", ErrInvalidDates, checkOut)
	}
	if !in.Before(out) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-out must follow check-in", ErrInvalidDates)
	}
	return in, out, nil
}
