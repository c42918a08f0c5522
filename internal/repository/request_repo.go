package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/moodfriends/internal/db"
	svcErr "github.com/oggyb/moodfriends/internal/errors"
)

// FriendRequestRepository provides data access for friend requests.
type FriendRequestRepository struct {
	db *gorm.DB
}

func NewFriendRequestRepository(database *gorm.DB) *FriendRequestRepository {
	return &FriendRequestRepository{db: database}
}

// Create inserts a pending request from sender to receiver.
// Callers check FindPending / HasPendingBetween first.
func (r *FriendRequestRepository) Create(ctx context.Context, senderID, receiverID uint64) (*db.FriendRequest, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("user %d cannot send a request to themselves: %w", senderID, svcErr.ErrInvalidState)
	}
	req := &db.FriendRequest{SenderID: senderID, ReceiverID: receiverID, Status: db.RequestPending}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (r *FriendRequestRepository) GetByID(ctx context.Context, id uint64) (*db.FriendRequest, error) {
	var req db.FriendRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("friend request %d: %w", id, svcErr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindPending returns the pending request for the ordered pair
// (sender, receiver), or (nil, nil).
func (r *FriendRequestRepository) FindPending(ctx context.Context, senderID, receiverID uint64) (*db.FriendRequest, error) {
	var req db.FriendRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, db.RequestPending).
		Take(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// HasPendingBetween reports a pending request in either direction.
func (r *FriendRequestRepository) HasPendingBetween(ctx context.Context, a, b uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.FriendRequest{}).
		Where("status = ?", db.RequestPending).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

// Received lists pending requests addressed to userID, newest first.
func (r *FriendRequestRepository) Received(ctx context.Context, userID uint64) ([]db.FriendRequest, error) {
	var reqs []db.FriendRequest
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", userID, db.RequestPending).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	return reqs, err
}

// Sent lists every request userID sent, any status, newest first.
func (r *FriendRequestRepository) Sent(ctx context.Context, userID uint64) ([]db.FriendRequest, error) {
	var reqs []db.FriendRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	return reqs, err
}

// PendingPeerIDs returns the users on the other end of any pending request
// involving userID, in either direction.
func (r *FriendRequestRepository) PendingPeerIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var reqs []db.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("status = ? AND (sender_id = ? OR receiver_id = ?)", db.RequestPending, userID, userID).
		Find(&reqs).Error; err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(reqs))
	for _, q := range reqs {
		if q.SenderID == userID {
			ids = append(ids, q.ReceiverID)
		} else {
			ids = append(ids, q.SenderID)
		}
	}
	sortIDs(ids)
	return ids, nil
}

// Accept closes a pending request and creates the friendship in one
// transaction.
//
// Behavior:
//   - Only a pending request can be accepted; otherwise ErrInvalidState.
//   - If the two users are already friends the existing row is returned.
func (r *FriendRequestRepository) Accept(ctx context.Context, requestID uint64) (*db.Friendship, error) {
	var friendship *db.Friendship
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := closePending(tx, requestID, db.RequestAccepted)
		if err != nil {
			return err
		}

		existing, err := findFriendship(tx, req.SenderID, req.ReceiverID)
		if err != nil {
			return err
		}
		if existing != nil {
			friendship = existing
			return nil
		}

		friendship, err = createFriendship(tx, req.SenderID, req.ReceiverID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return friendship, nil
}

// Reject closes a pending request without creating a friendship.
func (r *FriendRequestRepository) Reject(ctx context.Context, requestID uint64) error {
	_, err := closePending(r.db.WithContext(ctx), requestID, db.RequestRejected)
	return err
}

// Delete removes a request row (sender cancelling).
func (r *FriendRequestRepository) Delete(ctx context.Context, requestID uint64) error {
	res := r.db.WithContext(ctx).Delete(&db.FriendRequest{}, requestID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("friend request %d: %w", requestID, svcErr.ErrNotFound)
	}
	return nil
}

// closePending moves a pending request to status. The status guard in the
// UPDATE makes concurrent responders race safely: only one wins.
func closePending(tx *gorm.DB, requestID uint64, status db.RequestStatus) (*db.FriendRequest, error) {
	var req db.FriendRequest
	err := tx.First(&req, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("friend request %d: %w", requestID, svcErr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	res := tx.Model(&db.FriendRequest{}).
		Where("id = ? AND status = ?", requestID, db.RequestPending).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("friend request %d is %s: %w", requestID, req.Status, svcErr.ErrInvalidState)
	}

	req.Status = status
	return &req, nil
}
