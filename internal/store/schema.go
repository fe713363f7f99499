package store

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"estada-feliz/internal/hotel"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id   INTEGER PRIMARY KEY,
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY,
		full_name     TEXT NOT NULL,
		email         TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		profile_id    INTEGER NOT NULL REFERENCES profiles(id)
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		number       TEXT PRIMARY KEY,
		capacity     INTEGER NOT NULL,
		nightly_rate REAL NOT NULL,
		status       TEXT NOT NULL DEFAULT 'clean'
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id          INTEGER PRIMARY KEY,
		room_number TEXT NOT NULL REFERENCES rooms(number),
		guest_name  TEXT NOT NULL,
		check_in    TEXT NOT NULL,
		check_out   TEXT NOT NULL,
		status      TEXT NOT NULL,
		total       REAL NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS reservations_room_stay ON reservations (room_number, check_in, check_out)`,
	`CREATE INDEX IF NOT EXISTS reservations_guest ON reservations (guest_name)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	)`,
}

type seedUser struct {
	name     string
	email    string
	password string
	profile  hotel.Profile
}

var seedUsers = []seedUser{
	{name: "Hotel Admin", email: "admin@hotel.com", password: "admin123", profile: hotel.ProfileAdministrator},
	{name: "Guest", email: "guest@hotel.com", password: "guest123", profile: hotel.ProfileGuest},
	{name: "Housekeeper", email: "housekeeping@hotel.com", password: "housekeeping123", profile: hotel.ProfileHousekeeper},
	{name: "Receptionist", email: "reception@hotel.com", password: "reception123", profile: hotel.ProfileReceptionist},
}

var seedRooms = []hotel.Room{
	{Number: "101", Capacity: 2, NightlyRate: 150, Status: hotel.RoomClean},
	{Number: "102", Capacity: 2, NightlyRate: 150, Status: hotel.RoomClean},
	{Number: "201", Capacity: 4, NightlyRate: 250, Status: hotel.RoomClean},
	{Number: "305", Capacity: 1, NightlyRate: 100, Status: hotel.RoomDirty},
}

func (s *Store) migrate(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		for _, p := range hotel.Profiles() {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO profiles (id, name) VALUES (?, ?)`, int(p), p.String()); err != nil {
				return fmt.Errorf("insert profile %s: %w", p, err)
			}
		}
		return nil
	})
}

func (s *Store) seed(ctx context.Context, cost int) error {
	hashes := make([]string, len(seedUsers))
	for i, u := range seedUsers {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, u.email).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check seed user %s: %w", u.email, err)
		}
		if exists > 0 {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), cost)
		if err != nil {
			return fmt.Errorf("hash seed password for %s: %w", u.email, err)
		}
		hashes[i] = string(hash)
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i, u := range seedUsers {
			if hashes[i] == "" {
				continue
			}
			res, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO users (full_name, email, password_hash, profile_id) VALUES (?, ?, ?, ?)`,
				u.name, u.email, hashes[i], int(u.profile))
			if err != nil {
				return fmt.Errorf("seed user %s: %w", u.email, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		for _, r := range seedRooms {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO rooms (number, capacity, nightly_rate, status) VALUES (?, ?, ?, ?)`,
				r.Number, r.Capacity, r.NightlyRate, string(r.Status)); err != nil {
				return fmt.Errorf("seed room %s: %w", r.Number, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("demo data seeded", "event", "seed", "users_inserted", inserted, "rooms", len(seedRooms))
	return nil
}
