package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"estada-feliz/internal/hotel"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "estada.db"), Options{
		Seed:       true,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSeedsDemoData(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	account, err := s.AccountByEmail(ctx, "housekeeping@hotel.com")
	require.NoError(t, err)
	assert.Equal(t, hotel.ProfileHousekeeper, account.Profile)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("housekeeping123")))

	user, err := s.UserByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.User, user)

	rooms, err := s.Rooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, len(seedRooms))
	assert.Equal(t, "101", rooms[0].Number)
	assert.Equal(t, hotel.RoomDirty, rooms[len(rooms)-1].Status)
}

func TestOpenSeedIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estada.db")
	ctx := context.Background()
	opts := Options{Seed: true, BcryptCost: bcrypt.MinCost}

	first, err := Open(ctx, path, opts)
	require.NoError(t, err)
	before, err := first.AccountByEmail(ctx, "admin@hotel.com")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(ctx, path, opts)
	require.NoError(t, err)
	defer second.Close()
	after, err := second.AccountByEmail(ctx, "admin@hotel.com")
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestLookupMisses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.AccountByEmail(ctx, "nobody@hotel.com")
	assert.ErrorIs(t, err, hotel.ErrUserNotFound)
	_, err = s.UserByID(ctx, 9999)
	assert.ErrorIs(t, err, hotel.ErrUserNotFound)
	_, err = s.Room(ctx, "999")
	assert.ErrorIs(t, err, hotel.ErrRoomNotFound)
	assert.ErrorIs(t, s.SetRoomStatus(ctx, "999", hotel.RoomClean), hotel.ErrRoomNotFound)
	assert.ErrorIs(t, s.DeleteReservation(ctx, 9999), hotel.ErrReservationNotFound)
}

func TestSetRoomStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetRoomStatus(ctx, "305", hotel.RoomCleaning))
	room, err := s.Room(ctx, "305")
	require.NoError(t, err)
	assert.Equal(t, hotel.RoomCleaning, room.Status)
}

func TestInsertReservationRejectsOverlap(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.InsertReservation(ctx, hotel.Reservation{
		Room: "101", Guest: "Ana", CheckIn: "2026-03-01", CheckOut: "2026-03-04",
		Status: hotel.ReservationConfirmed, Total: 450,
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	_, err = s.InsertReservation(ctx, hotel.Reservation{
		Room: "101", Guest: "Bruno", CheckIn: "2026-03-03", CheckOut: "2026-03-05",
		Status: hotel.ReservationConfirmed, Total: 300,
	})
	assert.ErrorIs(t, err, hotel.ErrRoomUnavailable)

	// Check-out day is free for the next arrival.
	_, err = s.InsertReservation(ctx, hotel.Reservation{
		Room: "101", Guest: "Bruno", CheckIn: "2026-03-04", CheckOut: "2026-03-05",
		Status: hotel.ReservationConfirmed, Total: 150,
	})
	require.NoError(t, err)

	all, err := s.Reservations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026-03-04", all[0].CheckIn)

	mine, err := s.ReservationsByGuest(ctx, "Ana")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first, mine[0])
}

func TestBookedRoomsIgnoresCancelled(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertReservation(ctx, hotel.Reservation{
		Room: "201", Guest: "Carla", CheckIn: "2026-05-10", CheckOut: "2026-05-12",
		Status: hotel.ReservationCancelled, Total: 500,
	})
	require.NoError(t, err)
	kept, err := s.InsertReservation(ctx, hotel.Reservation{
		Room: "102", Guest: "Davi", CheckIn: "2026-05-11", CheckOut: "2026-05-13",
		Status: hotel.ReservationConfirmed, Total: 300,
	})
	require.NoError(t, err)

	booked, err := s.BookedRooms(ctx, "2026-05-10", "2026-05-12")
	require.NoError(t, err)
	assert.Equal(t, []string{"102"}, booked)

	require.NoError(t, s.DeleteReservation(ctx, kept.ID))
	booked, err = s.BookedRooms(ctx, "2026-05-10", "2026-05-12")
	require.NoError(t, err)
	assert.Empty(t, booked)
}

func TestSessionsLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	account, err := s.AccountByEmail(ctx, "guest@hotel.com")
	require.NoError(t, err)

	sess, err := s.CreateSession(ctx, account.ID, now, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := s.Session(ctx, sess.ID, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.UserID)
	assert.Equal(t, now.Add(time.Hour), got.ExpiresAt)

	_, err = s.Session(ctx, sess.ID, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, err = s.Session(ctx, sess.ID, now)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	other, err := s.CreateSession(ctx, account.ID, now, time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.DeleteSession(ctx, other.ID))
	_, err = s.Session(ctx, other.ID, now)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, s.DeleteSession(ctx, "unknown"))
}

func TestPruneSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	account, err := s.AccountByEmail(ctx, "admin@hotel.com")
	require.NoError(t, err)
	_, err = s.CreateSession(ctx, account.ID, now, time.Minute)
	require.NoError(t, err)
	live, err := s.CreateSession(ctx, account.ID, now, time.Hour)
	require.NoError(t, err)

	n, err := s.PruneSessions(ctx, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.Session(ctx, live.ID, now.Add(5*time.Minute))
	assert.NoError(t, err)
}

func TestUserEmailIsUnique(t *testing.T) {
	s := openTestStore(t)

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO users (full_name, email, password_hash, profile_id) VALUES (?, ?, ?, ?)`,
		"Another Admin", "admin@hotel.com", "x", int(hotel.ProfileAdministrator))
	assert.Error(t, err)
}
