package market

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// snapshotKey is the single row holding the latest quote snapshot.
const snapshotKey = "latest_quotes"

// SnapshotRepository persists the most recent quote map into the cache
// database so the price fallback survives restarts. The payload is a
// msgpack-encoded map[symbol]price.
type SnapshotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSnapshotRepository creates a snapshot repository.
func NewSnapshotRepository(db *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		log: log.With().Str("repository", "quote_snapshots").Logger(),
	}
}

// Init creates the snapshot table if absent.
func (r *SnapshotRepository) Init() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS quote_snapshots (
			key TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create quote_snapshots table: %w", err)
	}
	return nil
}

// Save stores the quote map, replacing any previous snapshot.
func (r *SnapshotRepository) Save(quotes map[string]float64) error {
	data, err := msgpack.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("failed to encode quote snapshot: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO quote_snapshots (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, snapshotKey, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save quote snapshot: %w", err)
	}

	return nil
}

// Load returns the persisted quote map, or nil when no snapshot exists.
func (r *SnapshotRepository) Load() (map[string]float64, error) {
	var data []byte
	err := r.db.QueryRow("SELECT data FROM quote_snapshots WHERE key = ?", snapshotKey).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quote snapshot: %w", err)
	}

	var quotes map[string]float64
	if err := msgpack.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode quote snapshot: %w", err)
	}

	return quotes, nil
}
