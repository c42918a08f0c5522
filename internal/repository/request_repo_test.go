package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/moodfriends/internal/db"
	"github.com/oggyb/moodfriends/internal/db/dbtest"
	svcErr "github.com/oggyb/moodfriends/internal/errors"
	"github.com/oggyb/moodfriends/internal/repository"
)

func TestFriendRequestRepository_PendingLookups(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	repo := repository.NewFriendRequestRepository(database)
	users := createUsers(t, database, "a", "b", "c")
	a, b, c := users[0].ID, users[1].ID, users[2].ID

	_, err := repo.Create(ctx, a, b)
	require.NoError(t, err)
	_, err = repo.Create(ctx, c, a)
	require.NoError(t, err)

	pending, err := repo.FindPending(ctx, a, b)
	require.NoError(t, err)
	require.NotNil(t, pending)

	// ordered pair: b -> a is a different key
	pending, err = repo.FindPending(ctx, b, a)
	require.NoError(t, err)
	assert.Nil(t, pending)

	has, err := repo.HasPendingBetween(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, has)

	peers, err := repo.PendingPeerIDs(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []uint64{b, c}, peers)

	received, err := repo.Received(ctx, a)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, c, received[0].SenderID)

	_, err = repo.Create(ctx, a, a)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState)
}

func TestFriendRequestRepository_AcceptCreatesFriendship(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	repo := repository.NewFriendRequestRepository(database)
	friends := repository.NewFriendshipRepository(database)
	users := createUsers(t, database, "a", "b")
	a, b := users[0].ID, users[1].ID

	req, err := repo.Create(ctx, b, a)
	require.NoError(t, err)

	f, err := repo.Accept(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, a, f.UserAID)
	assert.Equal(t, b, f.UserBID)

	ok, err := friends.AreFriends(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, db.RequestAccepted, stored.Status)

	// closed requests cannot be answered again
	_, err = repo.Accept(ctx, req.ID)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState)
	assert.ErrorIs(t, repo.Reject(ctx, req.ID), svcErr.ErrInvalidState)

	has, err := repo.HasPendingBetween(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestFriendRequestRepository_RejectAndDelete(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	repo := repository.NewFriendRequestRepository(database)
	users := createUsers(t, database, "a", "b")
	a, b := users[0].ID, users[1].ID

	req, err := repo.Create(ctx, a, b)
	require.NoError(t, err)
	require.NoError(t, repo.Reject(ctx, req.ID))

	sent, err := repo.Sent(ctx, a)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, db.RequestRejected, sent[0].Status)

	// a rejected request does not block a new one
	again, err := repo.FindPending(ctx, a, b)
	require.NoError(t, err)
	assert.Nil(t, again)

	require.NoError(t, repo.Delete(ctx, req.ID))
	assert.ErrorIs(t, repo.Delete(ctx, req.ID), svcErr.ErrNotFound)
	_, err = repo.Accept(ctx, 12345)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}
