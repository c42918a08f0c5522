package seed_test

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/moodfriends/internal/db"
	"github.com/oggyb/moodfriends/internal/db/dbtest"
	"github.com/oggyb/moodfriends/internal/logger"
	"github.com/oggyb/moodfriends/internal/metrics"
	"github.com/oggyb/moodfriends/internal/seed"
)

var fixedNow = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func newLoader(database *gorm.DB, opts seed.Options) *seed.Loader {
	if opts.Credentials.Password == "" {
		opts.Credentials = seed.Credentials{Password: "password123", Cost: bcrypt.MinCost}
	}
	opts.Now = func() time.Time { return fixedNow }
	opts.Rand = rand.New(rand.NewSource(1))
	return seed.NewLoader(database, opts, logger.Discard())
}

func count(t *testing.T, database *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, database.Model(model).Count(&n).Error)
	return n
}

func TestLoader_FirstRunCreatesEverything(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	before := testutil.ToFloat64(metrics.SeedEntities.WithLabelValues(seed.CategoryUsers, "created"))

	summary, err := newLoader(database, seed.Options{}).Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)

	assert.Equal(t, seed.Counts{Created: 8}, summary.Get(seed.CategoryUsers))
	assert.Equal(t, seed.Counts{Created: 32}, summary.Get(seed.CategoryMoods))
	assert.Equal(t, seed.Counts{Created: 5}, summary.Get(seed.CategoryFriendships))
	assert.Equal(t, seed.Counts{Created: 3}, summary.Get(seed.CategoryRequests))
	assert.Equal(t, seed.Counts{Created: 11}, summary.Get(seed.CategoryMessages))

	assert.EqualValues(t, 8, count(t, database, &db.User{}))
	assert.EqualValues(t, 32, count(t, database, &db.MoodEntry{}))
	assert.EqualValues(t, 5, count(t, database, &db.Friendship{}))
	assert.EqualValues(t, 3, count(t, database, &db.FriendRequest{}))
	assert.EqualValues(t, 11, count(t, database, &db.Message{}))

	after := testutil.ToFloat64(metrics.SeedEntities.WithLabelValues(seed.CategoryUsers, "created"))
	assert.Equal(t, 8.0, after-before)
}

func TestLoader_PasswordIsHashed(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	_, err := newLoader(database, seed.Options{}).Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)

	var u db.User
	require.NoError(t, database.Where("username = ?", "emma_r").First(&u).Error)
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
}

func TestLoader_RerunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	loader := newLoader(database, seed.Options{})

	_, err := loader.Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)

	summary, err := loader.Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)

	assert.Equal(t, seed.Counts{Skipped: 8}, summary.Get(seed.CategoryUsers))
	assert.Equal(t, seed.Counts{Skipped: 32}, summary.Get(seed.CategoryMoods))
	assert.Equal(t, seed.Counts{Skipped: 5}, summary.Get(seed.CategoryFriendships))
	assert.Equal(t, seed.Counts{Skipped: 3}, summary.Get(seed.CategoryRequests))

	assert.EqualValues(t, 8, count(t, database, &db.User{}))
	assert.EqualValues(t, 32, count(t, database, &db.MoodEntry{}))
	assert.EqualValues(t, 5, count(t, database, &db.Friendship{}))
	assert.EqualValues(t, 3, count(t, database, &db.FriendRequest{}))

	// messages have no natural key and are written again
	assert.Equal(t, seed.Counts{Created: 11}, summary.Get(seed.CategoryMessages))
	assert.EqualValues(t, 22, count(t, database, &db.Message{}))
}

func TestLoader_DedupMessages(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	loader := newLoader(database, seed.Options{DedupMessages: true})

	_, err := loader.Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)
	summary, err := loader.Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)

	assert.Equal(t, seed.Counts{Skipped: 11}, summary.Get(seed.CategoryMessages))
	assert.EqualValues(t, 11, count(t, database, &db.Message{}))
}

func TestLoader_MoodsAlways(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	_, err := newLoader(database, seed.Options{}).Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)

	summary, err := newLoader(database, seed.Options{MoodsAlways: true}).Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)

	assert.Equal(t, seed.Counts{Created: 32}, summary.Get(seed.CategoryMoods))
	assert.EqualValues(t, 64, count(t, database, &db.MoodEntry{}))
}

func TestLoader_Timestamps(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	_, err := newLoader(database, seed.Options{}).Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)

	var moods []db.MoodEntry
	require.NoError(t, database.Order("recorded_at DESC").Find(&moods).Error)
	require.NotEmpty(t, moods)
	assert.True(t, moods[0].RecordedAt.Equal(fixedNow.AddDate(0, 0, -1)), "newest mood is one day old: %v", moods[0].RecordedAt)
	assert.True(t, moods[len(moods)-1].RecordedAt.Equal(fixedNow.AddDate(0, 0, -7)))

	var msgs []db.Message
	require.NoError(t, database.Find(&msgs).Error)
	for _, m := range msgs {
		assert.False(t, m.CreatedAt.After(fixedNow), "message %d in the future", m.ID)
		assert.False(t, m.CreatedAt.Before(fixedNow.AddDate(0, 0, -3).Truncate(24*time.Hour)), "message %d too old", m.ID)
	}
}

func TestLoader_SkipsRequestBetweenFriends(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	m := seed.DefaultManifest()
	m.Requests = append(m.Requests, seed.PairSeed{From: "marcus_c", To: "emma_r"})

	summary, err := newLoader(database, seed.Options{}).Run(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, seed.Counts{Created: 3, Skipped: 1}, summary.Get(seed.CategoryRequests))
}

func TestLoader_SkipsMessageBetweenStrangers(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	m := seed.DefaultManifest()
	m.Messages = append(m.Messages, seed.MessageSeed{From: "aisha_p", To: "liam_o", Body: "hi", DaysAgo: 1})

	summary, err := newLoader(database, seed.Options{}).Run(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, seed.Counts{Created: 11, Skipped: 1}, summary.Get(seed.CategoryMessages))
}

func TestLoader_FailingCategoryDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	loader := newLoader(database, seed.Options{})

	_, err := loader.Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)

	require.NoError(t, database.Migrator().DropTable(&db.FriendRequest{}))

	summary, err := loader.Run(ctx, seed.DefaultManifest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), seed.CategoryRequests)

	assert.True(t, summary.Get(seed.CategoryRequests).Failed)
	assert.False(t, summary.Get(seed.CategoryUsers).Failed)
	assert.False(t, summary.Get(seed.CategoryFriendships).Failed)

	// messages still ran after the failed category
	assert.Equal(t, seed.Counts{Created: 11}, summary.Get(seed.CategoryMessages))
	assert.EqualValues(t, 8, count(t, database, &db.User{}))
}

func TestLoader_MissingPassword(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	opts := seed.Options{Credentials: seed.Credentials{}}
	opts.Now = func() time.Time { return fixedNow }
	loader := seed.NewLoader(database, opts, logger.Discard())

	summary, err := loader.Run(ctx, seed.DefaultManifest())
	require.ErrorIs(t, err, seed.ErrNoSeedPassword)
	assert.True(t, summary.Get(seed.CategoryUsers).Failed)
	assert.EqualValues(t, 0, count(t, database, &db.User{}))
}

func TestLoader_InvalidManifest(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	m := seed.DefaultManifest()
	m.Friendships = append(m.Friendships, seed.PairSeed{From: "emma_r", To: "nobody"})

	_, err := newLoader(database, seed.Options{}).Run(ctx, m)
	require.Error(t, err)
	assert.EqualValues(t, 0, count(t, database, &db.User{}))
}

func TestSummary_String(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	summary, err := newLoader(database, seed.Options{}).Run(ctx, seed.DefaultManifest())
	require.NoError(t, err)

	out := summary.String()
	for _, want := range []string{"CATEGORY", "users", "moods", "friendships", "requests", "messages", "total"} {
		assert.Contains(t, out, want)
	}
	created, skipped := summary.Total()
	assert.Equal(t, 59, created)
	assert.Equal(t, 0, skipped)
	assert.True(t, strings.HasSuffix(out, "\n"))
}
