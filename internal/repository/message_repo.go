package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/moodfriends/internal/db"
	svcErr "github.com/oggyb/moodfriends/internal/errors"
	"github.com/oggyb/moodfriends/internal/utils/pagination"
)

// MessageRepository provides data access methods for direct messages.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// ConversationSummary aggregates all messages between a user and one partner.
type ConversationSummary struct {
	PartnerID       uint64
	LastMessage     string
	LastMessageAt   time.Time
	UnreadCount     int
	TotalMessages   int
	LastMessageByMe bool
}

// Create inserts a message. A non-zero CreatedAt is kept as is.
func (r *MessageRepository) Create(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) GetByID(ctx context.Context, id uint64) (*db.Message, error) {
	var m db.Message
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("message %d: %w", id, svcErr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ExistsOnDay reports whether sender already sent body to receiver during
// the UTC calendar day containing day.
func (r *MessageRepository) ExistsOnDay(
	ctx context.Context,
	senderID, receiverID uint64,
	body string,
	day time.Time,
) (bool, error) {
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND body = ?", senderID, receiverID, body).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count > 0, err
}

// Conversation returns messages exchanged between a and b.
//
// Behavior:
//   - Newest first: created_at DESC, id DESC.
//   - Cursor-based pagination via paginationToken; a next token is
//     returned only when more rows exist.
//
// Example:
//
//	repo.Conversation(ctx, 1, 2, nil, 50) // latest 50 messages between 1 and 2
func (r *MessageRepository) Conversation(
	ctx context.Context,
	a, b uint64,
	paginationToken *string,
	limit int,
) ([]db.Message, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))", a, b, b, a).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if !cursor.IsZero() {
		ts := cursor.Time()
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var msgs []db.Message
	if err := query.Find(&msgs).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(msgs) > limit {
		last := msgs[limit-1]
		token, _ := pagination.Encode(pagination.After(last.ID, last.CreatedAt))
		nextToken = &token
		msgs = msgs[:limit]
	}
	return msgs, nextToken, nil
}

// MarkConversationRead flags every unread message from partnerID to userID
// as read and returns how many changed.
func (r *MessageRepository) MarkConversationRead(ctx context.Context, userID, partnerID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", partnerID, userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// UnreadCount counts unread messages addressed to userID.
func (r *MessageRepository) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// Summaries groups userID's messages by partner, most recent conversation
// first.
func (r *MessageRepository) Summaries(ctx context.Context, userID uint64) ([]ConversationSummary, error) {
	var msgs []db.Message
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? OR receiver_id = ?)", userID, userID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}

	byPartner := make(map[uint64]*ConversationSummary)
	for _, m := range msgs {
		partner := m.SenderID
		if partner == userID {
			partner = m.ReceiverID
		}

		s, ok := byPartner[partner]
		if !ok {
			s = &ConversationSummary{PartnerID: partner}
			byPartner[partner] = s
		}
		s.TotalMessages++
		if m.ReceiverID == userID && !m.IsRead {
			s.UnreadCount++
		}
		// rows are ascending, so the last one seen wins
		s.LastMessage = m.Body
		s.LastMessageAt = m.CreatedAt
		s.LastMessageByMe = m.SenderID == userID
	}

	out := make([]ConversationSummary, 0, len(byPartner))
	for _, s := range byPartner {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].PartnerID < out[j].PartnerID
	})
	return out, nil
}

// Delete removes a message by id.
func (r *MessageRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&db.Message{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("message %d: %w", id, svcErr.ErrNotFound)
	}
	return nil
}
