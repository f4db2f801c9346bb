package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/salammuloh/fca00c-asteroids/galaxy"
)

// DB wraps the SQLite database connection. Besides pilot accounts it is
// the default world store: parameters live in world_settings and expiry
// markers in expired_points.
type DB struct {
	conn *sql.DB
}

// PilotRow represents a pilot account in the database
type PilotRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pilots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_settings (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS expired_points (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (x, y)
	);

	CREATE TABLE IF NOT EXISTS collections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pilot_id INTEGER NOT NULL REFERENCES pilots(id),
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		kind TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		pilot_id INTEGER,
		data TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_collections_pilot ON collections(pilot_id);
	CREATE INDEX IF NOT EXISTS idx_analytics_type ON analytics_events(event_type, created_at);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// --- world storage ---

// Get reads a world parameter, or 1 for an expired cell
func (db *DB) Get(ctx context.Context, key galaxy.DataKey) (int64, bool, error) {
	var (
		v   int64
		err error
	)
	if key.Kind == galaxy.KeyExpired {
		err = db.conn.QueryRowContext(ctx,
			"SELECT 1 FROM expired_points WHERE x = ? AND y = ?",
			key.Point.X, key.Point.Y,
		).Scan(&v)
	} else {
		err = db.conn.QueryRowContext(ctx,
			"SELECT value FROM world_settings WHERE key = ?",
			key.String(),
		).Scan(&v)
	}
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// Has reports whether key holds a value
func (db *DB) Has(ctx context.Context, key galaxy.DataKey) (bool, error) {
	_, ok, err := db.Get(ctx, key)
	return ok, err
}

// Set writes a world parameter. Setting an expiry key marks the cell.
func (db *DB) Set(ctx context.Context, key galaxy.DataKey, value int64) error {
	if key.Kind == galaxy.KeyExpired {
		_, err := db.Expire(ctx, key.Point)
		return err
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO world_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key.String(), value,
	)
	return err
}

// Expire marks p as consumed
func (db *DB) Expire(ctx context.Context, p galaxy.Point) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		"INSERT OR IGNORE INTO expired_points (x, y) VALUES (?, ?)",
		p.X, p.Y,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// --- collections ---

// RecordCollect credits a pilot with a collected cell
func (db *DB) RecordCollect(ctx context.Context, pilotID int64, p galaxy.Point, e galaxy.MapElement) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO collections (pilot_id, x, y, kind) VALUES (?, ?, ?, ?)",
		pilotID, p.X, p.Y, e.String(),
	)
	return err
}

// CollectedCount returns how many cells a pilot has collected
func (db *DB) CollectedCount(ctx context.Context, pilotID int64) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM collections WHERE pilot_id = ?", pilotID,
	).Scan(&count)
	return count, err
}

// CollectedByKind returns a pilot's collections grouped by element kind
func (db *DB) CollectedByKind(ctx context.Context, pilotID int64) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT kind, COUNT(*) FROM collections WHERE pilot_id = ? GROUP BY kind", pilotID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// --- settings ---

// GetSetting returns a server setting, or "" if unset
func (db *DB) GetSetting(key string) string {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil {
		return ""
	}
	return v
}

// SetSetting stores a server setting
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// --- pilots ---

// CreatePilot creates a new pilot account (returns pilot ID)
func (db *DB) CreatePilot(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO pilots (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetPilotByUsername returns a pilot by username
func (db *DB) GetPilotByUsername(username string) (*PilotRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM pilots WHERE username = ?",
		username,
	)
	p := &PilotRow{}
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM pilots WHERE username = ?", username).Scan(&count)
	return count > 0, err
}
