// Package sessionstore persists session snapshots so a client process can
// resume an authenticated session without logging in again. Snapshots live
// in a local SQLite database; the session metadata, which includes the auth
// token, is encrypted at rest under a key derived from a caller-supplied
// passphrase.
package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yorch/koast/pkg/koast"

	_ "modernc.org/sqlite"
)

// ErrNotFound reports that no snapshot is stored under the requested name.
var ErrNotFound = errors.New("sessionstore: session not found")

// Snapshot is one persisted session state: the authentication flag, the
// user profile and the session metadata, plus when it was saved.
type Snapshot struct {
	Authenticated bool
	Data          map[string]any
	Meta          koast.Meta
	SavedAt       time.Time
}

// Store is a SQLite-backed session snapshot store. It is safe for
// concurrent use within one process.
type Store struct {
	db  *sql.DB
	key []byte
	dsn string
}

// NewStore opens (or creates) the store at dsn and derives the sealing key
// from passphrase. Call ApplyMigrations before first use of a new store.
func NewStore(dsn string, passphrase []byte) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db, dsn: dsn}

	salt, err := store.loadOrCreateSalt(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.key = deriveKey(passphrase, salt)

	return store, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// loadOrCreateSalt reads the store's key derivation salt, creating it on
// first open. The salt lives beside the data it protects; the secrecy is in
// the passphrase.
func (s *Store) loadOrCreateSalt(ctx context.Context) ([]byte, error) {
	// The meta table may not exist yet on a fresh database.
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS store_meta (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);`); err != nil {
		return nil, err
	}

	var salt []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM store_meta WHERE key = 'kdf_salt'`).Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	salt, err = newSalt()
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO store_meta (key, value) VALUES ('kdf_salt', ?)`, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Save writes a snapshot under name, replacing any previous one.
func (s *Store) Save(ctx context.Context, name string, snap Snapshot) error {
	profile, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("sessionstore: failed to encode profile: %w", err)
	}

	meta, err := json.Marshal(snap.Meta)
	if err != nil {
		return fmt.Errorf("sessionstore: failed to encode meta: %w", err)
	}

	sealed, err := seal(s.key, meta)
	if err != nil {
		return err
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (name, authenticated, profile, meta_enc, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			authenticated = excluded.authenticated,
			profile       = excluded.profile,
			meta_enc      = excluded.meta_enc,
			saved_at      = excluded.saved_at`,
		name, boolToInt(snap.Authenticated), string(profile), sealed,
		savedAt.Format(time.RFC3339))
	return err
}

// Load reads the snapshot stored under name. Returns ErrNotFound when no
// snapshot exists, and fails when the sealing key cannot open the metadata
// (wrong passphrase or tampered data).
func (s *Store) Load(ctx context.Context, name string) (*Snapshot, error) {
	var (
		authenticated int
		profile       string
		sealed        []byte
		savedAt       string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT authenticated, profile, meta_enc, saved_at
		FROM sessions WHERE name = ?`, name).
		Scan(&authenticated, &profile, &sealed, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	meta, err := open(s.key, sealed)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Authenticated: authenticated != 0}
	if err := json.Unmarshal([]byte(profile), &snap.Data); err != nil {
		return nil, fmt.Errorf("sessionstore: failed to decode profile: %w", err)
	}
	if err := json.Unmarshal(meta, &snap.Meta); err != nil {
		return nil, fmt.Errorf("sessionstore: failed to decode meta: %w", err)
	}
	if at, err := time.Parse(time.RFC3339, savedAt); err == nil {
		snap.SavedAt = at
	}
	return snap, nil
}

// Clear removes the snapshot stored under name. Clearing a name that was
// never saved is not an error.
func (s *Store) Clear(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
