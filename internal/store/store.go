// Package store persists users, sessions, credentials, enrollment profiles
// and custodied wallet records in SQLite.
package store

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle. All methods are safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens/creates a SQLite database at path and ensures the schema.
// Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids "database is locked" under concurrent writers and
	// keeps :memory: databases from silently sharding per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS user (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  email_verified INTEGER NOT NULL DEFAULT 0,
  image TEXT,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session (
  id TEXT PRIMARY KEY,
  token TEXT NOT NULL UNIQUE,
  expires_at INTEGER NOT NULL,
  ip_address TEXT,
  user_agent TEXT,
  user_id TEXT NOT NULL REFERENCES user(id) ON DELETE CASCADE,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS account (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  provider_id TEXT NOT NULL,
  user_id TEXT NOT NULL REFERENCES user(id) ON DELETE CASCADE,
  password TEXT,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_info (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE REFERENCES user(id) ON DELETE CASCADE,
  verified INTEGER NOT NULL DEFAULT 0,
  first_name TEXT NOT NULL,
  middle_name TEXT,
  last_name TEXT NOT NULL,
  second_last_name TEXT,
  sex INTEGER NOT NULL,
  phone_number TEXT NOT NULL,
  birth_date TEXT NOT NULL,
  birth_country TEXT NOT NULL,
  birth_state TEXT NOT NULL,
  birth_city TEXT NOT NULL,
  address TEXT NOT NULL,
  campus_id TEXT NOT NULL,
  career_id TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS info_review (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES user(id) ON DELETE CASCADE,
  admin_id TEXT NOT NULL REFERENCES user(id) ON DELETE CASCADE,
  approved INTEGER NOT NULL,
  comments TEXT,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS wallet (
  id TEXT PRIMARY KEY,
  address TEXT NOT NULL UNIQUE,
  phrase TEXT NOT NULL,
  salt TEXT NOT NULL,
  iv TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  user_id TEXT NOT NULL REFERENCES user(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS wallet_active_per_user
  ON wallet(user_id) WHERE active = 1;
`)
	return err
}
