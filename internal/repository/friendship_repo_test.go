package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/moodfriends/internal/db/dbtest"
	svcErr "github.com/oggyb/moodfriends/internal/errors"
	"github.com/oggyb/moodfriends/internal/repository"
)

func TestFriendshipRepository_EitherOrder(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	repo := repository.NewFriendshipRepository(database)
	users := createUsers(t, database, "a", "b", "c")
	a, b, c := users[0].ID, users[1].ID, users[2].ID

	f, err := repo.Create(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, a, f.UserAID)
	assert.Equal(t, b, f.UserBID)

	ok, err := repo.AreFriends(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AreFriends(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AreFriends(ctx, a, c)
	require.NoError(t, err)
	assert.False(t, ok)

	// the unique pair index catches a reversed duplicate
	_, err = repo.Create(ctx, a, b)
	assert.Error(t, err)

	_, err = repo.Create(ctx, c, c)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState)
}

func TestFriendshipRepository_FriendIDsAndDelete(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	repo := repository.NewFriendshipRepository(database)
	users := createUsers(t, database, "a", "b", "c")
	a, b, c := users[0].ID, users[1].ID, users[2].ID

	_, err := repo.Create(ctx, a, c)
	require.NoError(t, err)
	_, err = repo.Create(ctx, b, a)
	require.NoError(t, err)

	ids, err := repo.FriendIDs(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []uint64{b, c}, ids)

	require.NoError(t, repo.Delete(ctx, c, a))
	ids, err = repo.FriendIDs(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []uint64{b}, ids)

	assert.ErrorIs(t, repo.Delete(ctx, a, c), svcErr.ErrNotFound)
}
