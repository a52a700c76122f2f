package game

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/masteringmarket/server/internal/database"
)

// LeaderboardEntry is one row of the displayed leaderboard: a user reduced
// to their best recorded score.
type LeaderboardEntry struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}

// LeaderboardRepository persists score snapshots. The table is append-only;
// ranking reduces each user to their maximum score.
//
// The leaderboard is the one piece of state shared across sessions, so every
// write runs in its own transaction and readers rely on WAL snapshot reads.
type LeaderboardRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewLeaderboardRepository creates a leaderboard repository.
func NewLeaderboardRepository(db *sql.DB, log zerolog.Logger) *LeaderboardRepository {
	return &LeaderboardRepository{
		db:  db,
		log: log.With().Str("repository", "leaderboard").Logger(),
	}
}

// Init creates the scores table if absent.
func (r *LeaderboardRepository) Init() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS game_scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_email TEXT NOT NULL,
			score REAL NOT NULL,
			date TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create game_scores table: %w", err)
	}
	return nil
}

// RecordScore appends a score snapshot for a user. No uniqueness constraint,
// no overwrite.
func (r *LeaderboardRepository) RecordScore(userID string, score float64) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO game_scores (user_email, score, date) VALUES (?, ?, ?)",
			userID, score, time.Now().Format("2006-01-02 15:04:05"),
		)
		return err
	})
}

// TopN returns the best score per user, descending, limited to n entries.
// Ties keep insertion order of each user's first appearance.
func (r *LeaderboardRepository) TopN(n int) ([]LeaderboardEntry, error) {
	rows, err := r.db.Query(`
		SELECT user_email, MAX(score) AS max_score
		FROM game_scores
		GROUP BY user_email
		ORDER BY max_score DESC, MIN(id) ASC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Score); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan leaderboard row")
			continue
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
