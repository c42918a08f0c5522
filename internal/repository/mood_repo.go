package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/moodfriends/internal/db"
)

// MoodRepository stores mood entries and answers "current mood" queries.
type MoodRepository struct {
	db *gorm.DB
}

func NewMoodRepository(database *gorm.DB) *MoodRepository {
	return &MoodRepository{db: database}
}

// Create inserts a mood entry. Category must already be derived.
func (r *MoodRepository) Create(ctx context.Context, entry *db.MoodEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Latest returns the user's current mood, or (nil, nil) if they never
// recorded one.
func (r *MoodRepository) Latest(ctx context.Context, userID uint64) (*db.MoodEntry, error) {
	var m db.MoodEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC, id DESC").
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LatestForUsers returns the current mood of every user that has one,
// skipping excludeIDs. Users without any entry do not appear.
//
// Behavior:
//   - "Current" is the newest row by (recorded_at DESC, id DESC).
//   - One row per user, ordered by user_id.
func (r *MoodRepository) LatestForUsers(ctx context.Context, excludeIDs []uint64) ([]db.MoodEntry, error) {
	newest := r.db.
		Table("mood_entries m2").
		Select("m2.id").
		Where("m2.user_id = mood_entries.user_id").
		Order("m2.recorded_at DESC, m2.id DESC").
		Limit(1)

	query := r.db.WithContext(ctx).
		Model(&db.MoodEntry{}).
		Where("mood_entries.id = (?)", newest).
		Order("mood_entries.user_id ASC")
	if len(excludeIDs) > 0 {
		query = query.Where("mood_entries.user_id NOT IN ?", excludeIDs)
	}

	var entries []db.MoodEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// History returns the user's most recent entries, newest first.
func (r *MoodRepository) History(ctx context.Context, userID uint64, limit int) ([]db.MoodEntry, error) {
	var entries []db.MoodEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
