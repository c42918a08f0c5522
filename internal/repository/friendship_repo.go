package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/moodfriends/internal/db"
	svcErr "github.com/oggyb/moodfriends/internal/errors"
)

// FriendshipRepository provides data access for undirected friendships.
// Pairs are always stored as (min, max) so either argument order works.
type FriendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(database *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: database}
}

// orderedPair returns (a, b) sorted ascending.
func orderedPair(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Create inserts the friendship between a and b.
//
// Behavior:
//   - a == b is rejected with ErrInvalidState.
//   - The caller checks Get first; a duplicate pair surfaces as the
//     driver's unique constraint error.
func (r *FriendshipRepository) Create(ctx context.Context, a, b uint64) (*db.Friendship, error) {
	return createFriendship(r.db.WithContext(ctx), a, b)
}

func createFriendship(tx *gorm.DB, a, b uint64) (*db.Friendship, error) {
	if a == b {
		return nil, fmt.Errorf("user %d cannot befriend themselves: %w", a, svcErr.ErrInvalidState)
	}
	lo, hi := orderedPair(a, b)
	f := &db.Friendship{UserAID: lo, UserBID: hi}
	if err := tx.Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

// Get returns the friendship between a and b in either order,
// or (nil, nil) if they are not friends.
func (r *FriendshipRepository) Get(ctx context.Context, a, b uint64) (*db.Friendship, error) {
	return findFriendship(r.db.WithContext(ctx), a, b)
}

func findFriendship(tx *gorm.DB, a, b uint64) (*db.Friendship, error) {
	lo, hi := orderedPair(a, b)
	var f db.Friendship
	err := tx.Where("user_a_id = ? AND user_b_id = ?", lo, hi).Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FriendshipRepository) AreFriends(ctx context.Context, a, b uint64) (bool, error) {
	f, err := r.Get(ctx, a, b)
	return f != nil, err
}

// FriendIDs returns the ids of everyone userID is friends with, ascending.
func (r *FriendshipRepository) FriendIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var rows []db.Friendship
	if err := r.db.WithContext(ctx).
		Where("(user_a_id = ? OR user_b_id = ?)", userID, userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(rows))
	for _, f := range rows {
		if f.UserAID == userID {
			ids = append(ids, f.UserBID)
		} else {
			ids = append(ids, f.UserAID)
		}
	}
	sortIDs(ids)
	return ids, nil
}

// Delete removes the friendship between a and b; ErrNotFound if none.
func (r *FriendshipRepository) Delete(ctx context.Context, a, b uint64) error {
	lo, hi := orderedPair(a, b)
	res := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", lo, hi).
		Delete(&db.Friendship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("friendship %d-%d: %w", lo, hi, svcErr.ErrNotFound)
	}
	return nil
}
