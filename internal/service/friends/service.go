package friends

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/moodfriends/internal/app"
	"github.com/oggyb/moodfriends/internal/db"
	svcErr "github.com/oggyb/moodfriends/internal/errors"
	"github.com/oggyb/moodfriends/internal/metrics"
	"github.com/oggyb/moodfriends/internal/mood"
	"github.com/oggyb/moodfriends/internal/recommend"
	"github.com/oggyb/moodfriends/internal/repository"
	"github.com/oggyb/moodfriends/internal/validation"
)

// Service implements the Friends gRPC API.
// It contains the business logic on top of repository and cache layers.
// The acting user is always passed explicitly in the request.
type Service struct {
	appCtx      *app.AppContext
	users       *repository.UserRepository
	moods       *repository.MoodRepository
	friendships *repository.FriendshipRepository
	requests    *repository.FriendRequestRepository
	messages    *repository.MessageRepository
}

var _ FriendsServer = (*Service)(nil)

// NewFriendsService creates a new Friends service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via the repositories)
//   - RedisCache for unread totals and cached recommendations
//   - Config for recommendation limits and cache TTL
func NewFriendsService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		users:       repository.NewUserRepository(appCtx.DB),
		moods:       repository.NewMoodRepository(appCtx.DB),
		friendships: repository.NewFriendshipRepository(appCtx.DB),
		requests:    repository.NewFriendRequestRepository(appCtx.DB),
		messages:    repository.NewMessageRepository(appCtx.DB),
	}
}

// ranking is the cached, unlimited result of one recommendation run.
type ranking struct {
	HasMood bool              `json:"has_mood"`
	Score   int               `json:"score"`
	Matches []recommend.Match `json:"matches"`
}

// GetRecommendations returns users whose current mood is closest to the
// caller's.
//
// Behavior:
//   - Friends, users with a pending request either way and users without a
//     mood are never candidates.
//   - A caller without a mood gets an empty list, not an error.
//   - limit defaults to RECOMMEND_DEFAULT_LIMIT and is capped at
//     RECOMMEND_MAX_LIMIT.
//   - The full ranking is cached in Redis for RECOMMEND_CACHE_TTL.
func (s *Service) GetRecommendations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("GetRecommendations called", "user", a.str("user_id"), "limit", a.str("limit"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}
	cfg := s.appCtx.Config.Recommend
	limit, err := a.limit("limit", cfg.DefaultLimit, cfg.MaxLimit)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, svcErr.Map(err)
	}

	r, err := s.loadRanking(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("ranking failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	matches := r.Matches
	if len(matches) > limit {
		matches = matches[:limit]
	}
	ids := make([]uint64, len(matches))
	for i, m := range matches {
		ids[i] = m.UserID
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	list := make([]any, 0, len(matches))
	for _, m := range matches {
		u, ok := users[m.UserID]
		if !ok {
			continue // deleted since the ranking was cached
		}
		item := userFields(u)
		item["score"] = m.Score
		item["category"] = string(m.Category)
		item["same_category"] = m.SameCategory
		item["match_percent"] = m.MatchPercent
		list = append(list, item)
	}
	metrics.RecommendationsServed.Observe(float64(len(list)))

	resp := fields{
		"recommendations": list,
		"has_mood":        r.HasMood,
	}
	if r.HasMood {
		resp["current_score"] = r.Score
		resp["current_category"] = string(mood.CategoryFor(r.Score))
	}
	return respond(resp)
}

// loadRanking loads the caller's ranking, cache first.
func (s *Service) loadRanking(ctx context.Context, userID uint64) (*ranking, error) {
	rc := s.appCtx.RedisCache
	key := rc.KeyForRecommendations(userID)

	var cached ranking
	ok, err := rc.GetJSON(ctx, key, &cached)
	if err != nil {
		s.appCtx.Logger.Warn("recommendation cache read failed", "user", userID, "err", err)
	}
	metrics.CacheResult("recommend", ok)
	if ok {
		return &cached, nil
	}

	r := &ranking{Matches: []recommend.Match{}}
	current, err := s.moods.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		exclude, err := s.excludedFor(ctx, userID)
		if err != nil {
			return nil, err
		}
		entries, err := s.moods.LatestForUsers(ctx, exclude)
		if err != nil {
			return nil, err
		}

		pool := make([]recommend.Profile, len(entries))
		for i, e := range entries {
			pool[i] = recommend.Profile{UserID: e.UserID, Score: e.Score}
		}
		target := recommend.Profile{UserID: userID, Score: current.Score}

		r.HasMood = true
		r.Score = current.Score
		r.Matches = recommend.Rank(target, pool, s.appCtx.Config.Recommend.MaxLimit)
	}

	if err := rc.SetJSON(ctx, key, r, s.appCtx.Config.Recommend.CacheTTL); err != nil {
		s.appCtx.Logger.Warn("recommendation cache write failed", "user", userID, "err", err)
	}
	return r, nil
}

// excludedFor lists userID, its friends and its pending request peers.
func (s *Service) excludedFor(ctx context.Context, userID uint64) ([]uint64, error) {
	friendIDs, err := s.friendships.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	pendingIDs, err := s.requests.PendingPeerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	exclude := make([]uint64, 0, 1+len(friendIDs)+len(pendingIDs))
	exclude = append(exclude, userID)
	exclude = append(exclude, friendIDs...)
	return append(exclude, pendingIDs...), nil
}

func (s *Service) invalidateRecommendations(ctx context.Context, userIDs ...uint64) {
	if err := s.appCtx.RedisCache.InvalidateRecommendations(ctx, userIDs...); err != nil {
		s.appCtx.Logger.Warn("failed to invalidate recommendations", "users", userIDs, "err", err)
	}
}

type moodInput struct {
	Score int      `validate:"gte=0,lte=100"`
	Tags  []string `validate:"max=15"`
}

// RecordMood stores a new current mood for the user.
//
// Behavior:
//   - score must be an integer in 0..100; the category is derived from it.
//   - Unknown tags are dropped, known ones lowercased and deduplicated.
//   - The user's cached recommendations are invalidated.
func (s *Service) RecordMood(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	s.appCtx.Logger.Debug("RecordMood called", "user", a.str("user_id"))

	userID, err := a.id("user_id")
	if err != nil {
		return nil, err
	}
	score, err := a.integer("score")
	if err != nil {
		return nil, err
	}
	in := moodInput{Score: score, Tags: a.strings("tags")}
	if err := validation.Struct(in); err != nil {
		return nil, svcErr.InvalidArgument(err.Error())
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, svcErr.Map(err)
	}

	entry := &db.MoodEntry{
		UserID:     userID,
		Score:      in.Score,
		Category:   string(mood.CategoryFor(in.Score)),
		Tags:       mood.NormalizeTags(in.Tags),
		RecordedAt: s.appCtx.DB.NowFunc().UTC(),
	}
	if err := s.moods.Create(ctx, entry); err != nil {
		s.appCtx.Logger.Error("failed to record mood", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	s.invalidateRecommendations(ctx, userID)

	return respond(fields{"mood": moodFields(entry)})
}

func userFields(u db.User) fields {
	return fields{
		"user_id":      formatID(u.ID),
		"username":     u.Username,
		"display_name": u.DisplayName,
		"school":       u.School,
	}
}

func moodFields(m *db.MoodEntry) fields {
	tags := make([]any, len(m.Tags))
	for i, t := range m.Tags {
		tags[i] = t
	}
	return fields{
		"mood_id":     formatID(m.ID),
		"score":       m.Score,
		"category":    m.Category,
		"tags":        tags,
		"recorded_at": m.RecordedAt.UnixMilli(),
	}
}
