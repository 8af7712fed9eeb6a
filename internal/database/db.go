package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jgoulah/usagegrid/pkg/models"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored times sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrSnapshotNotFound is returned when a snapshot id does not exist
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot describes one stored fetch of the feed
type Snapshot struct {
	ID        string
	Source    string
	FetchedAt time.Time
	Records   int
}

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS usage_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		device_id INTEGER NOT NULL,
		usage REAL NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		timestamp TEXT NOT NULL,
		UNIQUE(snapshot_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_records_snapshot ON usage_records(snapshot_id);
	CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON snapshots(fetched_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// InsertSnapshot stores one fetch and its records in feed order, returning the
// new snapshot id
func (db *DB) InsertSnapshot(source string, fetchedAt time.Time, records []models.UsageRecord) (string, error) {
	id := uuid.NewString()

	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO snapshots (id, source, fetched_at) VALUES (?, ?, ?)`,
		id, source, fetchedAt.UTC().Format(timeLayout),
	); err != nil {
		return "", fmt.Errorf("inserting snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO usage_records (snapshot_id, seq, device_id, usage, x, y, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(id, i, r.DeviceID, r.Usage, r.X, r.Y, r.Timestamp.Format(timeLayout)); err != nil {
			return "", fmt.Errorf("inserting usage record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing snapshot: %w", err)
	}
	return id, nil
}

// ListSnapshots returns stored snapshots, newest first
func (db *DB) ListSnapshots() ([]Snapshot, error) {
	query := `
	SELECT s.id, s.source, s.fetched_at, COUNT(r.id)
	FROM snapshots s
	LEFT JOIN usage_records r ON r.snapshot_id = s.id
	GROUP BY s.id
	ORDER BY s.fetched_at DESC
	`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var results []Snapshot
	for rows.Next() {
		var s Snapshot
		var fetchedAt string
		if err := rows.Scan(&s.ID, &s.Source, &fetchedAt, &s.Records); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		s.FetchedAt, err = time.Parse(timeLayout, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing fetched_at: %w", err)
		}
		results = append(results, s)
	}

	return results, rows.Err()
}

// LatestSnapshotID returns the id of the newest snapshot
func (db *DB) LatestSnapshotID() (string, error) {
	var id string
	err := db.conn.QueryRow(`SELECT id FROM snapshots ORDER BY fetched_at DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", ErrSnapshotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying latest snapshot: %w", err)
	}
	return id, nil
}

// GetSnapshot returns a snapshot and its records in feed order
func (db *DB) GetSnapshot(id string) (*Snapshot, []models.UsageRecord, error) {
	var s Snapshot
	var fetchedAt string
	err := db.conn.QueryRow(`SELECT id, source, fetched_at FROM snapshots WHERE id = ?`, id).
		Scan(&s.ID, &s.Source, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying snapshot: %w", err)
	}
	if s.FetchedAt, err = time.Parse(timeLayout, fetchedAt); err != nil {
		return nil, nil, fmt.Errorf("parsing fetched_at: %w", err)
	}

	rows, err := db.conn.Query(`
	SELECT device_id, usage, x, y, timestamp
	FROM usage_records
	WHERE snapshot_id = ?
	ORDER BY seq
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("querying usage records: %w", err)
	}
	defer rows.Close()

	var records []models.UsageRecord
	for rows.Next() {
		var r models.UsageRecord
		var ts string
		if err := rows.Scan(&r.DeviceID, &r.Usage, &r.X, &r.Y, &ts); err != nil {
			return nil, nil, fmt.Errorf("scanning row: %w", err)
		}
		if r.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	s.Records = len(records)
	return &s, records, nil
}
