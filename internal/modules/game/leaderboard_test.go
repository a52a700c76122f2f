package game

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupLeaderboard(t *testing.T) *LeaderboardRepository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.New(nil).Level(zerolog.Disabled)
	repo := NewLeaderboardRepository(db, log)
	require.NoError(t, repo.Init())

	return repo
}

func TestLeaderboard_Empty(t *testing.T) {
	repo := setupLeaderboard(t)

	entries, err := repo.TopN(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLeaderboard_BestScorePerUser(t *testing.T) {
	repo := setupLeaderboard(t)

	require.NoError(t, repo.RecordScore("a@example.com", 100))
	require.NoError(t, repo.RecordScore("a@example.com", 150))
	require.NoError(t, repo.RecordScore("b@example.com", 120))

	entries, err := repo.TopN(2)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "a@example.com", entries[0].UserID)
	assert.Equal(t, 150.0, entries[0].Score)
	assert.Equal(t, "b@example.com", entries[1].UserID)
	assert.Equal(t, 120.0, entries[1].Score)
}

func TestLeaderboard_LowerScoreDoesNotReplaceBest(t *testing.T) {
	repo := setupLeaderboard(t)

	require.NoError(t, repo.RecordScore("a@example.com", 200))
	require.NoError(t, repo.RecordScore("a@example.com", 50))

	entries, err := repo.TopN(10)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, 200.0, entries[0].Score)
}

func TestLeaderboard_LimitApplied(t *testing.T) {
	repo := setupLeaderboard(t)

	users := []string{"a", "b", "c", "d", "e"}
	for i, u := range users {
		require.NoError(t, repo.RecordScore(u+"@example.com", float64(100+i)))
	}

	entries, err := repo.TopN(3)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, "e@example.com", entries[0].UserID)
	assert.Equal(t, 104.0, entries[0].Score)
}
