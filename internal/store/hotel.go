package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"estada-feliz/internal/hotel"
)

var _ hotel.Store = (*Store)(nil)

func (s *Store) AccountByEmail(ctx context.Context, email string) (hotel.Account, error) {
	var (
		a       hotel.Account
		profile int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, password_hash, profile_id FROM users WHERE email = ?`, email,
	).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &profile)
	if errors.Is(err, sql.ErrNoRows) {
		return hotel.Account{}, hotel.ErrUserNotFound
	}
	if err != nil {
		return hotel.Account{}, fmt.Errorf("select account: %w", err)
	}
	a.Profile = hotel.Profile(profile)
	return a, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (hotel.User, error) {
	var (
		u       hotel.User
		profile int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, profile_id FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &profile)
	if errors.Is(err, sql.ErrNoRows) {
		return hotel.User{}, hotel.ErrUserNotFound
	}
	if err != nil {
		return hotel.User{}, fmt.Errorf("select user: %w", err)
	}
	u.Profile = hotel.Profile(profile)
	return u, nil
}

func (s *Store) Rooms(ctx context.Context) ([]hotel.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT number, capacity, nightly_rate, status FROM rooms ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("select rooms: %w", err)
	}
	defer rows.Close()

	var out []hotel.Room
	for rows.Next() {
		var (
			r      hotel.Room
			status string
		)
		if err := rows.Scan(&r.Number, &r.Capacity, &r.NightlyRate, &status); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		r.Status = hotel.RoomStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Room(ctx context.Context, number string) (hotel.Room, error) {
	var (
		r      hotel.Room
		status string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT number, capacity, nightly_rate, status FROM rooms WHERE number = ?`, number,
	).Scan(&r.Number, &r.Capacity, &r.NightlyRate, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return hotel.Room{}, hotel.ErrRoomNotFound
	}
	if err != nil {
		return hotel.Room{}, fmt.Errorf("select room: %w", err)
	}
	r.Status = hotel.RoomStatus(status)
	return r, nil
}

func (s *Store) SetRoomStatus(ctx context.Context, number string, status hotel.RoomStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE rooms SET status = ? WHERE number = ?`, string(status), number)
	if err != nil {
		return fmt.Errorf("update room status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update room status: %w", err)
	}
	if n == 0 {
		return hotel.ErrRoomNotFound
	}
	return nil
}

const reservationColumns = `id, room_number, guest_name, check_in, check_out, status, total`

func (s *Store) Reservations(ctx context.Context) ([]hotel.Reservation, error) {
	return s.queryReservations(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY check_in DESC, id DESC`)
}

func (s *Store) ReservationsByGuest(ctx context.Context, guest string) ([]hotel.Reservation, error) {
	return s.queryReservations(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE guest_name = ? ORDER BY check_in DESC, id DESC`, guest)
}

func (s *Store) queryReservations(ctx context.Context, query string, args ...any) ([]hotel.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select reservations: %w", err)
	}
	defer rows.Close()

	var out []hotel.Reservation
	for rows.Next() {
		var (
			r      hotel.Reservation
			status string
		)
		if err := rows.Scan(&r.ID, &r.Room, &r.Guest, &r.CheckIn, &r.CheckOut, &status, &r.Total); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		r.Status = hotel.ReservationStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) InsertReservation(ctx context.Context, r hotel.Reservation) (hotel.Reservation, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var conflicts int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM reservations
			WHERE room_number = ? AND status != ? AND check_in < ? AND check_out > ?`,
			r.Room, string(hotel.ReservationCancelled), r.CheckOut, r.CheckIn,
		).Scan(&conflicts)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if conflicts > 0 {
			return hotel.ErrRoomUnavailable
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (room_number, guest_name, check_in, check_out, status, total)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.Room, r.Guest, r.CheckIn, r.CheckOut, string(r.Status), r.Total)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		r.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert reservation id: %w", err)
		}
		return nil
	})
	if err != nil {
		return hotel.Reservation{}, err
	}
	return r, nil
}

func (s *Store) DeleteReservation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if n == 0 {
		return hotel.ErrReservationNotFound
	}
	return nil
}

func (s *Store) BookedRooms(ctx context.Context, checkIn, checkOut string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT room_number FROM reservations
		WHERE status != ? AND check_in < ? AND check_out > ?`,
		string(hotel.ReservationCancelled), checkOut, checkIn)
	if err != nil {
		return nil, fmt.Errorf("select booked rooms: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("scan booked room: %w", err)
		}
		out = append(out, number)
	}
	return out, rows.Err()
}
