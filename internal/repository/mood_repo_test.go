package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/moodfriends/internal/db"
	"github.com/oggyb/moodfriends/internal/db/dbtest"
	"github.com/oggyb/moodfriends/internal/repository"
)

func TestMoodRepository_LatestAndLatestForUsers(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	repo := repository.NewMoodRepository(database)
	users := createUsers(t, database, "a", "b", "c", "d")

	now := time.Now().UTC().Truncate(time.Second)
	entries := []db.MoodEntry{
		{UserID: users[0].ID, Score: 30, Category: "x", RecordedAt: now.Add(-48 * time.Hour)},
		{UserID: users[0].ID, Score: 75, Category: "x", RecordedAt: now.Add(-time.Hour)},
		{UserID: users[1].ID, Score: 90, Category: "x", RecordedAt: now.Add(-2 * time.Hour)},
		// same timestamp: higher id wins
		{UserID: users[2].ID, Score: 10, Category: "x", RecordedAt: now},
		{UserID: users[2].ID, Score: 55, Category: "x", RecordedAt: now},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	latest, err := repo.Latest(ctx, users[0].ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 75, latest.Score)

	none, err := repo.Latest(ctx, users[3].ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	all, err := repo.LatestForUsers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{75, 90, 55}, []int{all[0].Score, all[1].Score, all[2].Score})

	filtered, err := repo.LatestForUsers(ctx, []uint64{users[0].ID, users[2].ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, users[1].ID, filtered[0].UserID)
}

func TestMoodRepository_HistoryAndTags(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	repo := repository.NewMoodRepository(database)
	users := createUsers(t, database, "a")

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &db.MoodEntry{
			UserID: users[0].ID, Score: 50 + i, Category: "x",
			Tags: []string{"calm"}, RecordedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	hist, err := repo.History(ctx, users[0].ID, 2)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 52, hist[0].Score)
	assert.Equal(t, []string{"calm"}, hist[0].Tags)
}
