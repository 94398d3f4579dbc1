package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
)

// Bootstrap creates the default profile and API server row on first run.
func (db *DB) Bootstrap(ctx context.Context) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return fmt.Errorf("check profiles: %w", err)
	}
	if count > 0 {
		return nil
	}

	return db.Tx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO profiles (name, timezone, is_active) VALUES (?, ?, 1)`,
			"default", detectTimezone())
		if err != nil {
			return fmt.Errorf("create default profile: %w", err)
		}
		profileID, err := result.LastInsertId()
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO api_servers (profile_id, host, port) VALUES (?, '0.0.0.0', 8080)`,
			profileID); err != nil {
			return fmt.Errorf("create default API server: %w", err)
		}
		return nil
	})
}

// detectTimezone reads $TZ, /etc/timezone, then the /etc/localtime link.
func detectTimezone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return strings.TrimPrefix(tz, ":")
	}
	if data, err := os.ReadFile("/etc/timezone"); err == nil {
		if tz := strings.TrimSpace(string(data)); tz != "" {
			return tz
		}
	}
	if link, err := os.Readlink("/etc/localtime"); err == nil {
		if _, tz, ok := strings.Cut(link, "zoneinfo/"); ok {
			return tz
		}
	}
	return "UTC"
}
