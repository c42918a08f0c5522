package db

import (
	"time"
)

// User table. Username is the natural key used by the seed loader.
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	DisplayName  string    `gorm:"size:128;not null"`
	Email        string    `gorm:"size:128"`
	School       string    `gorm:"size:128"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// MoodEntry is one self-reported mood sample.
//
// The newest entry per user (RecordedAt DESC, ID DESC) is that user's
// current mood; idx_mood_user_recorded serves that lookup.
// Category is derived from Score when the entry is written.
type MoodEntry struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	UserID     uint64    `gorm:"not null;index:idx_mood_user_recorded,priority:1"`
	Score      int       `gorm:"not null"`
	Category   string    `gorm:"size:32;not null"`
	Tags       []string  `gorm:"serializer:json;type:text"`
	RecordedAt time.Time `gorm:"not null;index:idx_mood_user_recorded,priority:2,sort:desc"`
}

// Friendship is an undirected edge stored with UserAID < UserBID, so the
// unique index covers both orders.
type Friendship struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserAID   uint64    `gorm:"not null;uniqueIndex:idx_friendship_pair,priority:1"`
	UserBID   uint64    `gorm:"not null;uniqueIndex:idx_friendship_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// FriendRequest from Sender to Receiver. Only one pending row per ordered
// pair may exist; that is enforced by lookup, closed requests stay as history.
type FriendRequest struct {
	ID         uint64        `gorm:"primaryKey;autoIncrement"`
	SenderID   uint64        `gorm:"not null;index:idx_request_sender_receiver_status,priority:1"`
	ReceiverID uint64        `gorm:"not null;index:idx_request_sender_receiver_status,priority:2;index:idx_request_receiver_status,priority:1"`
	Status     RequestStatus `gorm:"size:16;not null;default:pending;index:idx_request_sender_receiver_status,priority:3;index:idx_request_receiver_status,priority:2"`
	CreatedAt  time.Time     `gorm:"autoCreateTime"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime"`
}

// Message is a direct message between two friends.
//
// Indexes:
//   - idx_message_pair_created(sender_id, receiver_id, created_at DESC)
//     serves conversation paging in both directions.
//   - idx_message_receiver_read(receiver_id, is_read) serves unread counts.
type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	SenderID   uint64    `gorm:"not null;index:idx_message_pair_created,priority:1"`
	ReceiverID uint64    `gorm:"not null;index:idx_message_pair_created,priority:2;index:idx_message_receiver_read,priority:1"`
	Body       string    `gorm:"type:text;not null"`
	IsRead     bool      `gorm:"not null;default:false;index:idx_message_receiver_read,priority:2"`
	CreatedAt  time.Time `gorm:"index:idx_message_pair_created,priority:3,sort:desc"`
}

// Models lists every table for migrations.
func Models() []any {
	return []any{&User{}, &MoodEntry{}, &Friendship{}, &FriendRequest{}, &Message{}}
}
