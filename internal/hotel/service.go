package hotel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"
)

const maxGuestNameLength = 150

// Store is the persistence contract the desk runs on.
type Store interface {
	AccountByEmail(ctx context.Context, email string) (Account, error)
	UserByID(ctx context.Context, id int64) (User, error)
	Rooms(ctx context.Context) ([]Room, error)
	Room(ctx context.Context, number string) (Room, error)
	SetRoomStatus(ctx context.Context, number string, status RoomStatus) error
	Reservations(ctx context.Context) ([]Reservation, error)
	ReservationsByGuest(ctx context.Context, guest string) ([]Reservation, error)
	// InsertReservation stores r unless a non-cancelled booking of the same
	// room overlaps it, in which case it returns ErrRoomUnavailable.
	InsertReservation(ctx context.Context, r Reservation) (Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
	// BookedRooms lists rooms holding a non-cancelled booking that overlaps
	// the half-open stay [checkIn, checkOut).
	BookedRooms(ctx context.Context, checkIn, checkOut string) ([]string, error)
}

// Service implements the desk operations on top of a Store.
type Service struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Authenticate checks an e-mail/password pair. Unknown accounts and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	account, err := s.store.AccountByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, s.fail("authenticate", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Warn("password hash rejected", "event", "auth_hash_invalid", "user_id", account.ID, "err", err)
		}
		return User{}, ErrInvalidCredentials
	}

	return account.User, nil
}

// User reloads the account behind a session.
func (s *Service) User(ctx context.Context, id int64) (User, error) {
	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return User{}, s.fail("load user", err)
	}
	return user, nil
}

// CreateReservation validates req, prices the stay and books it.
func (s *Service) CreateReservation(ctx context.Context, req ReservationRequest) (Reservation, error) {
	req.Room = strings.TrimSpace(req.Room)
	req.Guest = strings.TrimSpace(req.Guest)
	if req.Room == "" || req.Guest == "" || len(req.Guest) > maxGuestNameLength {
		return Reservation{}, ErrInvalidRequest
	}

	in, out, err := ParseStay(strings.TrimSpace(req.CheckIn), strings.TrimSpace(req.CheckOut))
	if err != nil {
		return Reservation{}, err
	}

	room, err := s.store.Room(ctx, req.Room)
	if err != nil {
		return Reservation{}, s.fail("price room", err)
	}
	if room.NightlyRate <= 0 {
		return Reservation{}, fmt.Errorf("%w: room %s has no nightly rate", ErrRoomNotFound, room.Number)
	}

	nights := int(math.Round(out.Sub(in).Hours() / 24))
	booking := Reservation{
		Room:     room.Number,
		Guest:    req.Guest,
		CheckIn:  in.Format(DateLayout),
		CheckOut: out.Format(DateLayout),
		Status:   ReservationConfirmed,
		Total:    room.NightlyRate * float64(nights),
	}

	saved, err := s.store.InsertReservation(ctx, booking)
	if err != nil {
		return Reservation{}, s.fail("create reservation", err)
	}

	s.logger.Info("reservation created", "event", "reservation_created", "id", saved.ID, "room", saved.Room, "nights", nights, "total", saved.Total)
	return saved, nil
}

// Reservations lists every booking, latest check-in first.
func (s *Service) Reservations(ctx context.Context) ([]Reservation, error) {
	rows, err := s.store.Reservations(ctx)
	if err != nil {
		return nil, s.fail("list reservations", err)
	}
	return rows, nil
}

// GuestReservations lists the bookings made under a guest name.
func (s *Service) GuestReservations(ctx context.Context, guest string) ([]Reservation, error) {
	guest = strings.TrimSpace(guest)
	if guest == "" {
		return nil, ErrInvalidRequest
	}
	rows, err := s.store.ReservationsByGuest(ctx, guest)
	if err != nil {
		return nil, s.fail("list guest reservations", err)
	}
	return rows, nil
}

// DeleteReservation removes a booking.
func (s *Service) DeleteReservation(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrReservationNotFound
	}
	if err := s.store.DeleteReservation(ctx, id); err != nil {
		return s.fail("delete reservation", err)
	}
	s.logger.Info("reservation deleted", "event", "reservation_deleted", "id", id)
	return nil
}

// AvailableRooms lists rooms free for the whole stay.
func (s *Service) AvailableRooms(ctx context.Context, checkIn, checkOut string) ([]Room, error) {
	in, out, err := ParseStay(strings.TrimSpace(checkIn), strings.TrimSpace(checkOut))
	if err != nil {
		return nil, err
	}

	booked, err := s.store.BookedRooms(ctx, in.Format(DateLayout), out.Format(DateLayout))
	if err != nil {
		return nil, s.fail("search availability", err)
	}
	rooms, err := s.store.Rooms(ctx)
	if err != nil {
		return nil, s.fail("search availability", err)
	}

	taken := make(map[string]struct{}, len(booked))
	for _, number := range booked {
		taken[number] = struct{}{}
	}

	free := make([]Room, 0, len(rooms))
	for _, room := range rooms {
		if _, ok := taken[room.Number]; !ok {
			free = append(free, room)
		}
	}
	return free, nil
}

// Rooms lists every room with its housekeeping state.
func (s *Service) Rooms(ctx context.Context) ([]Room, error) {
	rooms, err := s.store.Rooms(ctx)
	if err != nil {
		return nil, s.fail("list rooms", err)
	}
	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].Number < rooms[j].Number })
	return rooms, nil
}

// UpdateRoomStatus sets the housekeeping state of a room.
func (s *Service) UpdateRoomStatus(ctx context.Context, number string, status RoomStatus) error {
	number = strings.TrimSpace(number)
	if number == "" || !status.Valid() {
		return ErrInvalidRequest
	}
	if err := s.store.SetRoomStatus(ctx, number, status); err != nil {
		return s.fail("update room status", err)
	}
	s.logger.Info("room status updated", "event", "room_status_updated", "room", number, "status", status)
	return nil
}

func (s *Service) fail(operation string, err error) error {
	mapped := mapStoreError(err)
	var friendly *FriendlyError
	if errors.As(mapped, &friendly) {
		s.logger.Error("storage failure", "event", "storage_failure", "operation", operation, "err", err)
	}
	return mapped
}
