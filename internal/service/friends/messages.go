package friends

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/moodfriends/internal/db"
	svcErr "github.com/oggyb/moodfriends/internal/errors"
	"github.com/oggyb/moodfriends/internal/metrics"
	"github.com/oggyb/moodfriends/internal/utils/pagination"
	"github.com/oggyb/moodfriends/internal/validation"
)

const (
	conversationDefaultLimit = 50
	conversationMaxLimit     = 100
)

type messageInput struct {
	Body string `validate:"required,max=2000"`
}

// SendMessage delivers a message between two friends.
//
// Behavior:
//   - body is trimmed and must not be empty.
//   - Sender and receiver must be friends, otherwise PermissionDenied.
//   - The receiver's cached unread total is dropped.
func (s *Service) SendMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("SendMessage called", "sender", a.str("sender_id"), "receiver", a.str("receiver_id"))

	senderID, err := a.id("sender_id")
	if err != nil {
		return nil, err
	}
	receiverID, err := a.id("receiver_id")
	if err != nil {
		return nil, err
	}
	if senderID == receiverID {
		return nil, svcErr.InvalidArgument("cannot message yourself")
	}
	in := messageInput{Body: strings.TrimSpace(a.str("body"))}
	if err := validation.Struct(in); err != nil {
		return nil, svcErr.InvalidArgument(err.Error())
	}

	if err := s.requireFriends(ctx, senderID, receiverID); err != nil {
		return nil, err
	}

	msg := &db.Message{SenderID: senderID, ReceiverID: receiverID, Body: in.Body}
	if err := s.messages.Create(ctx, msg); err != nil {
		s.appCtx.Logger.Error("failed to send message", "sender", senderID, "receiver", receiverID, "err", err)
		return nil, svcErr.Map(err)
	}
	s.invalidateUnread(ctx, receiverID)

	return respond(fields{"message": messageFields(msg)})
}

// GetConversation returns one page of messages between user and friend,
// oldest first within the page. Pages walk backwards in time: pass
// next_pagination_token to fetch older messages.
//
// Every unread message the friend sent to the user is marked read; the
// returned messages show their state before that.
func (s *Service) GetConversation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("GetConversation called", "user", a.str("user_id"), "friend", a.str("friend_id"), "token", a.str("pagination_token"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}
	friendID, err := a.id("friend_id")
	if err != nil {
		return nil, err
	}
	limit, err := a.limit("limit", conversationDefaultLimit, conversationMaxLimit)
	if err != nil {
		return nil, err
	}

	if err := s.requireFriends(ctx, userID, friendID); err != nil {
		return nil, err
	}

	msgs, nextToken, err := s.messages.Conversation(ctx, userID, friendID, a.optStr("pagination_token"), limit)
	if errors.Is(err, pagination.ErrInvalidToken) {
		return nil, svcErr.InvalidArgument("pagination_token is invalid")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	slices.Reverse(msgs)

	marked, err := s.messages.MarkConversationRead(ctx, userID, friendID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if marked > 0 {
		s.invalidateUnread(ctx, userID)
	}

	list := make([]any, len(msgs))
	for i := range msgs {
		list[i] = messageFields(&msgs[i])
	}
	resp := fields{
		"messages":    list,
		"marked_read": marked,
	}
	if nextToken != nil {
		resp["next_pagination_token"] = *nextToken
	}
	return respond(resp)
}

// ListConversations returns one entry per conversation partner, most
// recent first, with the last message and unread/total counts.
func (s *Service) ListConversations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("ListConversations called", "user", a.str("user_id"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}

	summaries, err := s.messages.Summaries(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	partnerIDs := make([]uint64, len(summaries))
	for i, c := range summaries {
		partnerIDs[i] = c.PartnerID
	}
	partners, err := s.users.GetByIDs(ctx, partnerIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	list := make([]any, 0, len(summaries))
	for _, c := range summaries {
		item := fields{
			"partner_id":         formatID(c.PartnerID),
			"last_message":       c.LastMessage,
			"last_message_at":    c.LastMessageAt.UnixMilli(),
			"last_message_by_me": c.LastMessageByMe,
			"unread_count":       c.UnreadCount,
			"total_messages":     c.TotalMessages,
		}
		if u, ok := partners[c.PartnerID]; ok {
			item["user"] = userFields(u)
		}
		list = append(list, item)
	}
	return respond(fields{"conversations": list})
}

// GetUnreadCount returns how many messages the user has not read.
// Cache-first strategy:
//  1. Attempts to read from Redis (messages:unread:userID).
//  2. If cache miss, falls back to DB via MessageRepository.UnreadCount.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) GetUnreadCount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("GetUnreadCount called", "user", a.str("user_id"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}

	// try cache first
	n, ok, err := s.appCtx.RedisCache.GetUnread(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Warn("unread cache read failed", "user", userID, "err", err)
	}
	metrics.CacheResult("unread", ok)
	if ok {
		return respond(fields{"count": n})
	}

	// fallback: DB
	n, err = s.messages.UnreadCount(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if err := s.appCtx.RedisCache.SetUnread(ctx, userID, n); err != nil {
		s.appCtx.Logger.Warn("failed to update unread cache", "user", userID, "err", err)
	}
	return respond(fields{"count": n})
}

// DeleteMessage removes a message. Only its sender may delete it.
func (s *Service) DeleteMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("DeleteMessage called", "user", a.str("user_id"), "message", a.str("message_id"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}
	messageID, err := a.id("message_id")
	if err != nil {
		return nil, err
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if msg.SenderID != userID {
		return nil, svcErr.Map(fmt.Errorf("message %d: only the sender can delete: %w", messageID, svcErr.ErrForbidden))
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		return nil, svcErr.Map(err)
	}
	if !msg.IsRead {
		s.invalidateUnread(ctx, msg.ReceiverID)
	}
	return respond(fields{"deleted": true})
}

func (s *Service) requireFriends(ctx context.Context, a, b uint64) error {
	friends, err := s.friendships.AreFriends(ctx, a, b)
	if err != nil {
		return svcErr.Map(err)
	}
	if !friends {
		return svcErr.Map(fmt.Errorf("users %d and %d: %w", a, b, svcErr.ErrNotFriends))
	}
	return nil
}

func (s *Service) invalidateUnread(ctx context.Context, userIDs ...uint64) {
	if err := s.appCtx.RedisCache.InvalidateUnread(ctx, userIDs...); err != nil {
		s.appCtx.Logger.Warn("failed to invalidate unread count", "users", userIDs, "err", err)
	}
}

func messageFields(m *db.Message) fields {
	return fields{
		"message_id":  formatID(m.ID),
		"sender_id":   formatID(m.SenderID),
		"receiver_id": formatID(m.ReceiverID),
		"body":        m.Body,
		"is_read":     m.IsRead,
		"created_at":  m.CreatedAt.UnixMilli(),
	}
}
