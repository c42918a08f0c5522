package friends

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/moodfriends/internal/db"
	svcErr "github.com/oggyb/moodfriends/internal/errors"
)

const (
	searchLimit    = 20
	minQueryLength = 2
)

// SendFriendRequest creates a pending request from sender to receiver.
//
// Behavior:
//   - Sending to yourself is InvalidArgument; an unknown receiver is NotFound.
//   - Already being friends, or a pending request in either direction, is
//     FailedPrecondition.
func (s *Service) SendFriendRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("SendFriendRequest called", "sender", a.str("sender_id"), "receiver", a.str("receiver_id"))

	senderID, err := a.id("sender_id")
	if err != nil {
		return nil, err
	}
	receiverID, err := a.id("receiver_id")
	if err != nil {
		return nil, err
	}
	if senderID == receiverID {
		return nil, svcErr.InvalidArgument("cannot send a friend request to yourself")
	}

	for _, id := range []uint64{senderID, receiverID} {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			return nil, svcErr.Map(err)
		}
	}

	friends, err := s.friendships.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if friends {
		return nil, svcErr.FailedPrecondition("users are already friends")
	}
	pending, err := s.requests.HasPendingBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if pending {
		return nil, svcErr.FailedPrecondition("a pending friend request already exists")
	}

	fr, err := s.requests.Create(ctx, senderID, receiverID)
	if err != nil {
		s.appCtx.Logger.Error("failed to create friend request", "sender", senderID, "receiver", receiverID, "err", err)
		return nil, svcErr.Map(err)
	}
	s.invalidateRecommendations(ctx, senderID, receiverID)

	return respond(fields{"request": requestFields(fr)})
}

// RespondFriendRequest accepts or rejects a pending request.
// Only the receiver may respond; accepting creates the friendship.
func (s *Service) RespondFriendRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("RespondFriendRequest called", "user", a.str("user_id"), "request", a.str("request_id"), "action", a.str("action"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}
	requestID, err := a.id("request_id")
	if err != nil {
		return nil, err
	}
	action := strings.ToLower(strings.TrimSpace(a.str("action")))
	if action != "accept" && action != "reject" {
		return nil, svcErr.InvalidArgument("action must be accept or reject")
	}

	fr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if fr.ReceiverID != userID {
		return nil, svcErr.Map(fmt.Errorf("request %d: only the receiver can respond: %w", requestID, svcErr.ErrForbidden))
	}

	resp := fields{"request_id": formatID(fr.ID)}
	if action == "accept" {
		friendship, err := s.requests.Accept(ctx, requestID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		resp["status"] = string(db.RequestAccepted)
		resp["friendship_id"] = formatID(friendship.ID)
	} else {
		if err := s.requests.Reject(ctx, requestID); err != nil {
			return nil, svcErr.Map(err)
		}
		resp["status"] = string(db.RequestRejected)
	}
	s.invalidateRecommendations(ctx, fr.SenderID, fr.ReceiverID)

	s.appCtx.Logger.Info("friend request answered", "request", requestID, "status", resp["status"])
	return respond(resp)
}

// CancelFriendRequest withdraws a pending request. Only the sender may cancel.
func (s *Service) CancelFriendRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("CancelFriendRequest called", "user", a.str("user_id"), "request", a.str("request_id"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}
	requestID, err := a.id("request_id")
	if err != nil {
		return nil, err
	}

	fr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if fr.SenderID != userID {
		return nil, svcErr.Map(fmt.Errorf("request %d: only the sender can cancel: %w", requestID, svcErr.ErrForbidden))
	}
	if fr.Status != db.RequestPending {
		return nil, svcErr.FailedPrecondition("only pending requests can be canceled")
	}

	if err := s.requests.Delete(ctx, requestID); err != nil {
		return nil, svcErr.Map(err)
	}
	s.invalidateRecommendations(ctx, fr.SenderID, fr.ReceiverID)

	return respond(fields{"request_id": formatID(requestID), "canceled": true})
}

// ListFriendRequests returns pending requests received by the user and
// every request the user sent, newest first.
func (s *Service) ListFriendRequests(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("ListFriendRequests called", "user", a.str("user_id"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}

	received, err := s.requests.Received(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	sent, err := s.requests.Sent(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	peerIDs := make([]uint64, 0, len(received)+len(sent))
	for _, r := range received {
		peerIDs = append(peerIDs, r.SenderID)
	}
	for _, r := range sent {
		peerIDs = append(peerIDs, r.ReceiverID)
	}
	peers, err := s.users.GetByIDs(ctx, peerIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	withPeer := func(reqs []db.FriendRequest, peerOf func(db.FriendRequest) uint64) []any {
		out := make([]any, 0, len(reqs))
		for i := range reqs {
			item := requestFields(&reqs[i])
			if u, ok := peers[peerOf(reqs[i])]; ok {
				item["user"] = userFields(u)
			}
			out = append(out, item)
		}
		return out
	}

	return respond(fields{
		"received": withPeer(received, func(r db.FriendRequest) uint64 { return r.SenderID }),
		"sent":     withPeer(sent, func(r db.FriendRequest) uint64 { return r.ReceiverID }),
	})
}

// ListFriends returns the user's friends with their current mood, if any.
func (s *Service) ListFriends(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("ListFriends called", "user", a.str("user_id"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}

	friendIDs, err := s.friendships.FriendIDs(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	users, err := s.users.GetByIDs(ctx, friendIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	list := make([]any, 0, len(friendIDs))
	for _, id := range friendIDs {
		u, ok := users[id]
		if !ok {
			continue
		}
		item := userFields(u)
		current, err := s.moods.Latest(ctx, id)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		if current != nil {
			item["mood"] = moodFields(current)
		}
		list = append(list, item)
	}

	return respond(fields{"friends": list})
}

// RemoveFriend deletes the friendship between user and friend.
// NotFound when they are not friends.
func (s *Service) RemoveFriend(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("RemoveFriend called", "user", a.str("user_id"), "friend", a.str("friend_id"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}
	friendID, err := a.id("friend_id")
	if err != nil {
		return nil, err
	}
	if userID == friendID {
		return nil, svcErr.InvalidArgument("friend_id must differ from user_id")
	}

	if err := s.friendships.Delete(ctx, userID, friendID); err != nil {
		return nil, svcErr.Map(err)
	}
	s.invalidateRecommendations(ctx, userID, friendID)

	s.appCtx.Logger.Info("friendship removed", "user", userID, "friend", friendID)
	return respond(fields{"removed": true})
}

// SearchUsers finds users by username or display name.
//
// Behavior:
//   - query must have at least two characters.
//   - The caller is never part of the result; at most 20 users are returned.
//   - Each user carries is_friend and has_pending_request for the caller.
func (s *Service) SearchUsers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("SearchUsers called", "user", a.str("user_id"), "query", a.str("query"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}
	query := strings.TrimSpace(a.str("query"))
	if utf8.RuneCountInString(query) < minQueryLength {
		return nil, svcErr.InvalidArgument(fmt.Sprintf("query must be at least %d characters", minQueryLength))
	}

	users, err := s.users.Search(ctx, query, userID, searchLimit)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	friendIDs, err := s.friendships.FriendIDs(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	pendingIDs, err := s.requests.PendingPeerIDs(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	isFriend := toSet(friendIDs)
	isPending := toSet(pendingIDs)

	list := make([]any, 0, len(users))
	for _, u := range users {
		item := userFields(u)
		item["is_friend"] = isFriend[u.ID]
		item["has_pending_request"] = isPending[u.ID]
		list = append(list, item)
	}
	return respond(fields{"users": list})
}

func requestFields(r *db.FriendRequest) fields {
	return fields{
		"request_id":  formatID(r.ID),
		"sender_id":   formatID(r.SenderID),
		"receiver_id": formatID(r.ReceiverID),
		"status":      string(r.Status),
		"created_at":  r.CreatedAt.UnixMilli(),
	}
}

func toSet(ids []uint64) map[uint64]bool {
	set := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
