// Package seed populates the demo friends dataset.
//
// The loader is idempotent by natural key: users by username, friendships
// by unordered pair, requests by ordered pair with a pending status. Each
// key is looked up before inserting; a uniqueness violation is never used to
// detect duplicates. Messages have no natural key and are written on every
// run unless Options.DedupMessages is set.
//
// Categories run in order (users, moods, friendships, requests, messages).
// A persistence error aborts the rest of its category; rows already written
// stay, and later categories still run against whatever exists.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/moodfriends/internal/db"
	"github.com/oggyb/moodfriends/internal/metrics"
	"github.com/oggyb/moodfriends/internal/mood"
	"github.com/oggyb/moodfriends/internal/repository"
)

type Options struct {
	Credentials Credentials
	// MoodsAlways writes manifest moods for existing users too. By default
	// moods are written only for users created in the same run.
	MoodsAlways bool
	// DedupMessages skips a message already sent with the same body on the
	// same day.
	DedupMessages bool
	// Now and Rand are injectable for tests.
	Now  func() time.Time
	Rand *rand.Rand
}

type Loader struct {
	users       *repository.UserRepository
	moods       *repository.MoodRepository
	friendships *repository.FriendshipRepository
	requests    *repository.FriendRequestRepository
	messages    *repository.MessageRepository

	opts Options
	log  *slog.Logger
}

// NewLoader wires a loader to database.
func NewLoader(database *gorm.DB, opts Options, log *slog.Logger) *Loader {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Loader{
		users:       repository.NewUserRepository(database),
		moods:       repository.NewMoodRepository(database),
		friendships: repository.NewFriendshipRepository(database),
		requests:    repository.NewFriendRequestRepository(database),
		messages:    repository.NewMessageRepository(database),
		opts:        opts,
		log:         log,
	}
}

// run holds per-invocation state.
type run struct {
	now     time.Time
	ids     map[string]uint64 // username -> id, for users that exist
	created map[string]bool   // usernames created in this run
	summary *Summary
}

// Run seeds m. The summary is always returned, also alongside an error,
// so callers can report partial progress. The error joins every aborted
// category.
func (l *Loader) Run(ctx context.Context, m Manifest) (*Summary, error) {
	if err := m.Validate(); err != nil {
		return newSummary(), fmt.Errorf("invalid manifest: %w", err)
	}

	r := &run{
		now:     l.opts.Now().UTC().Truncate(time.Second),
		ids:     make(map[string]uint64, len(m.Users)),
		created: make(map[string]bool, len(m.Users)),
		summary: newSummary(),
	}

	steps := []struct {
		category string
		fn       func(context.Context, *run, Manifest) error
	}{
		{CategoryUsers, l.seedUsers},
		{CategoryMoods, l.seedMoods},
		{CategoryFriendships, l.seedFriendships},
		{CategoryRequests, l.seedRequests},
		{CategoryMessages, l.seedMessages},
	}

	var errs []error
	for _, step := range steps {
		if err := step.fn(ctx, r, m); err != nil {
			r.summary.counts[step.category].Failed = true
			metrics.SeedEntities.WithLabelValues(step.category, "failed").Inc()
			l.log.Error("seed category aborted", "category", step.category, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", step.category, err))
			continue
		}
		c := r.summary.Get(step.category)
		l.log.Info("seed category done", "category", step.category, "created", c.Created, "skipped", c.Skipped)
	}

	return r.summary, errors.Join(errs...)
}

func (r *run) markCreated(category string) {
	r.summary.counts[category].Created++
	metrics.SeedEntities.WithLabelValues(category, "created").Inc()
}

func (r *run) markSkipped(category string) {
	r.summary.counts[category].Skipped++
	metrics.SeedEntities.WithLabelValues(category, "skipped").Inc()
}

func (l *Loader) seedUsers(ctx context.Context, r *run, m Manifest) error {
	var hash string
	for _, u := range m.Users {
		existing, err := l.users.FindByUsername(ctx, u.Username)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", u.Username, err)
		}
		if existing != nil {
			r.ids[u.Username] = existing.ID
			r.markSkipped(CategoryUsers)
			l.log.Debug("user exists, skipping", "username", u.Username)
			continue
		}

		// hashed once, when the first missing user is found
		if hash == "" {
			if hash, err = l.opts.Credentials.Hash(); err != nil {
				return err
			}
		}

		user := &db.User{
			Username:     u.Username,
			DisplayName:  u.DisplayName,
			Email:        u.Email,
			School:       u.School,
			PasswordHash: hash,
		}
		if err := l.users.Create(ctx, user); err != nil {
			return fmt.Errorf("create %s: %w", u.Username, err)
		}
		r.ids[u.Username] = user.ID
		r.created[u.Username] = true
		r.markCreated(CategoryUsers)
		l.log.Info("created user", "username", u.Username, "id", user.ID)
	}
	return nil
}

func (l *Loader) seedMoods(ctx context.Context, r *run, m Manifest) error {
	for _, u := range m.Users {
		id, ok := r.ids[u.Username]
		if !ok || (!l.opts.MoodsAlways && !r.created[u.Username]) {
			r.summary.counts[CategoryMoods].Skipped += len(u.Moods)
			metrics.SeedEntities.WithLabelValues(CategoryMoods, "skipped").Add(float64(len(u.Moods)))
			continue
		}

		for _, ms := range u.Moods {
			entry := &db.MoodEntry{
				UserID:     id,
				Score:      ms.Score,
				Category:   string(mood.CategoryFor(ms.Score)),
				Tags:       mood.NormalizeTags(ms.Tags),
				RecordedAt: r.now.AddDate(0, 0, -ms.DaysAgo),
			}
			if err := l.moods.Create(ctx, entry); err != nil {
				return fmt.Errorf("create mood for %s: %w", u.Username, err)
			}
			r.markCreated(CategoryMoods)
		}
	}
	return nil
}

func (l *Loader) seedFriendships(ctx context.Context, r *run, m Manifest) error {
	for _, p := range m.Friendships {
		a, okA := r.ids[p.From]
		b, okB := r.ids[p.To]
		if !okA || !okB {
			l.log.Warn("friendship references missing user, skipping", "from", p.From, "to", p.To)
			r.markSkipped(CategoryFriendships)
			continue
		}

		existing, err := l.friendships.Get(ctx, a, b)
		if err != nil {
			return fmt.Errorf("lookup %s<->%s: %w", p.From, p.To, err)
		}
		if existing != nil {
			r.markSkipped(CategoryFriendships)
			continue
		}

		if _, err := l.friendships.Create(ctx, a, b); err != nil {
			return fmt.Errorf("create %s<->%s: %w", p.From, p.To, err)
		}
		r.markCreated(CategoryFriendships)
		l.log.Info("created friendship", "a", p.From, "b", p.To)
	}
	return nil
}

func (l *Loader) seedRequests(ctx context.Context, r *run, m Manifest) error {
	for _, p := range m.Requests {
		sender, okS := r.ids[p.From]
		receiver, okR := r.ids[p.To]
		if !okS || !okR {
			r.markSkipped(CategoryRequests)
			continue
		}

		friends, err := l.friendships.AreFriends(ctx, sender, receiver)
		if err != nil {
			return fmt.Errorf("lookup friendship %s->%s: %w", p.From, p.To, err)
		}
		if friends {
			l.log.Debug("already friends, skipping request", "from", p.From, "to", p.To)
			r.markSkipped(CategoryRequests)
			continue
		}

		pending, err := l.requests.FindPending(ctx, sender, receiver)
		if err != nil {
			return fmt.Errorf("lookup request %s->%s: %w", p.From, p.To, err)
		}
		if pending != nil {
			r.markSkipped(CategoryRequests)
			continue
		}

		if _, err := l.requests.Create(ctx, sender, receiver); err != nil {
			return fmt.Errorf("create request %s->%s: %w", p.From, p.To, err)
		}
		r.markCreated(CategoryRequests)
		l.log.Info("created friend request", "from", p.From, "to", p.To)
	}
	return nil
}

func (l *Loader) seedMessages(ctx context.Context, r *run, m Manifest) error {
	for _, ms := range m.Messages {
		sender, okS := r.ids[ms.From]
		receiver, okR := r.ids[ms.To]
		if !okS || !okR {
			r.markSkipped(CategoryMessages)
			continue
		}

		friends, err := l.friendships.AreFriends(ctx, sender, receiver)
		if err != nil {
			return fmt.Errorf("lookup friendship %s->%s: %w", ms.From, ms.To, err)
		}
		if !friends {
			l.log.Warn("not friends, skipping message", "from", ms.From, "to", ms.To)
			r.markSkipped(CategoryMessages)
			continue
		}

		sentAt := l.messageTime(r.now, ms.DaysAgo)
		if l.opts.DedupMessages {
			exists, err := l.messages.ExistsOnDay(ctx, sender, receiver, ms.Body, sentAt)
			if err != nil {
				return fmt.Errorf("lookup message %s->%s: %w", ms.From, ms.To, err)
			}
			if exists {
				r.markSkipped(CategoryMessages)
				continue
			}
		}

		msg := &db.Message{
			SenderID:   sender,
			ReceiverID: receiver,
			Body:       ms.Body,
			IsRead:     ms.Read,
			CreatedAt:  sentAt,
		}
		if err := l.messages.Create(ctx, msg); err != nil {
			return fmt.Errorf("create message %s->%s: %w", ms.From, ms.To, err)
		}
		r.markCreated(CategoryMessages)
	}
	return nil
}

// messageTime places a message at a random moment of the UTC day that lies
// daysAgo days before now, never later than now.
func (l *Loader) messageTime(now time.Time, daysAgo int) time.Time {
	dayStart := now.AddDate(0, 0, -daysAgo).Truncate(24 * time.Hour)
	jitter := time.Duration(l.opts.Rand.Int63n(int64(24 * time.Hour))).Truncate(time.Second)
	t := dayStart.Add(jitter)
	if t.After(now) {
		t = now
	}
	return t
}
