package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrConfigEntryNotFound = errors.New("config entry not found")

// ConfigEntry identifies one configured account of an integration domain.
// The id is stable across restarts.
type ConfigEntry struct {
	ID        string
	ProfileID int64
	Domain    string
	Title     string
	CreatedAt time.Time
}

// ConfigEntryStore provides config entry operations.
type ConfigEntryStore interface {
	Ensure(ctx context.Context, profileID int64, domain, title string) (*ConfigEntry, error)
	Get(ctx context.Context, id string) (*ConfigEntry, error)
	List(ctx context.Context, profileID int64, domain string) ([]*ConfigEntry, error)
	Delete(ctx context.Context, id string) error
}

func (db *DB) ConfigEntries() ConfigEntryStore {
	return &configEntryStore{db: db}
}

type configEntryStore struct {
	db *DB
}

const configEntryColumns = `id, profile_id, domain, title, created_at`

func scanConfigEntry(row rowScanner) (*ConfigEntry, error) {
	e := &ConfigEntry{}
	var createdAt string
	err := row.Scan(&e.ID, &e.ProfileID, &e.Domain, &e.Title, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	e.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return e, nil
}

// Ensure returns the entry for (profileID, domain, title), creating it with a
// fresh UUID on first use.
func (s *configEntryStore) Ensure(ctx context.Context, profileID int64, domain, title string) (*ConfigEntry, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config_entries (id, profile_id, domain, title) VALUES (?, ?, ?, ?)
		ON CONFLICT (profile_id, domain, title) DO NOTHING
	`, uuid.NewString(), profileID, domain, title)
	if err != nil {
		return nil, fmt.Errorf("ensure config entry: %w", err)
	}

	return scanConfigEntry(s.db.QueryRowContext(ctx, `
		SELECT `+configEntryColumns+` FROM config_entries
		WHERE profile_id = ? AND domain = ? AND title = ?
	`, profileID, domain, title))
}

func (s *configEntryStore) Get(ctx context.Context, id string) (*ConfigEntry, error) {
	return scanConfigEntry(s.db.QueryRowContext(ctx,
		`SELECT `+configEntryColumns+` FROM config_entries WHERE id = ?`, id))
}

func (s *configEntryStore) List(ctx context.Context, profileID int64, domain string) ([]*ConfigEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+configEntryColumns+` FROM config_entries
		WHERE profile_id = ? AND domain = ? ORDER BY created_at, id
	`, profileID, domain)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []*ConfigEntry
	for rows.Next() {
		e, err := scanConfigEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *configEntryStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM config_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrConfigEntryNotFound
	}
	return nil
}
