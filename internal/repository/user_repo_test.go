package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/moodfriends/internal/db"
	"github.com/oggyb/moodfriends/internal/db/dbtest"
	svcErr "github.com/oggyb/moodfriends/internal/errors"
	"github.com/oggyb/moodfriends/internal/repository"
)

// createUsers inserts users named after the given usernames and returns
// them in order.
func createUsers(t *testing.T, database *gorm.DB, usernames ...string) []db.User {
	t.Helper()
	users := make([]db.User, len(usernames))
	for i, name := range usernames {
		users[i] = db.User{Username: name, DisplayName: name, PasswordHash: "x"}
	}
	require.NoError(t, database.Create(&users).Error)
	return users
}

func TestUserRepository_FindByUsername(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	repo := repository.NewUserRepository(database)

	u, err := repo.FindByUsername(ctx, "emma_r")
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, repo.Create(ctx, &db.User{Username: "emma_r", DisplayName: "Emma", PasswordHash: "x"}))

	u, err = repo.FindByUsername(ctx, "emma_r")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Emma", u.DisplayName)
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	repo := repository.NewUserRepository(database)
	users := createUsers(t, database, "a", "b")

	u, err := repo.GetByID(ctx, users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "b", u.Username)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	byID, err := repo.GetByIDs(ctx, []uint64{users[0].ID, 999})
	require.NoError(t, err)
	assert.Len(t, byID, 1)
	assert.Equal(t, "a", byID[users[0].ID].Username)
}

func TestUserRepository_Search(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	repo := repository.NewUserRepository(database)

	users := []db.User{
		{Username: "emma_r", DisplayName: "Emma Rodriguez", School: "Del Norte High School", PasswordHash: "x"},
		{Username: "sophia_k", DisplayName: "Sophia Kim", School: "Del Norte High School", PasswordHash: "x"},
		{Username: "ryan_m", DisplayName: "Ryan Martinez", School: "Mt Carmel High School", PasswordHash: "x"},
	}
	require.NoError(t, database.Create(&users).Error)

	got, err := repo.Search(ctx, "del norte", users[0].ID, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sophia_k", got[0].Username)

	got, err = repo.Search(ctx, "MARTINEZ", 0, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ryan_m", got[0].Username)

	// underscore is literal, not a wildcard
	got, err = repo.Search(ctx, "emm_", 0, 20)
	require.NoError(t, err)
	assert.Empty(t, got)
}
