// Package recommend ranks candidate friends by how close their current mood
// is to the target user's.
//
// The match blends two signals:
//
//	match = 0.6 * scoreSimilarity + 0.4 * categoryMatch
//
// scoreSimilarity is 1 - |a-b|/100 clamped to [0,1]; categoryMatch is 1 when
// both scores fall in the same mood band. The result is reported as a whole
// percentage. Everything here is pure: callers load profiles and filter out
// existing friends, pending requests and users without a mood.
package recommend

import (
	"math"
	"sort"

	"github.com/oggyb/moodfriends/internal/mood"
)

const (
	SimilarityWeight = 0.6
	CategoryWeight   = 0.4
)

// Profile is a user's current mood as seen by the scorer.
type Profile struct {
	UserID uint64
	Score  int
}

func (p Profile) Category() mood.Category { return mood.CategoryFor(p.Score) }

// Match is a scored candidate.
type Match struct {
	UserID       uint64        `json:"user_id"`
	Score        int           `json:"score"`
	Category     mood.Category `json:"category"`
	Similarity   float64       `json:"similarity"`
	SameCategory bool          `json:"same_category"`
	MatchPercent int           `json:"match_percent"`
}

// ScoreSimilarity returns 1 - |a-b|/100 clamped to [0,1].
func ScoreSimilarity(a, b int) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	s := 1 - float64(d)/100
	return math.Max(0, math.Min(1, s))
}

// CategoryMatch is 1 when both scores share a mood band, else 0.
func CategoryMatch(a, b int) float64 {
	if mood.CategoryFor(a) == mood.CategoryFor(b) {
		return 1
	}
	return 0
}

// MatchPercent blends similarity and category agreement into 0–100.
func MatchPercent(a, b int) int {
	m := SimilarityWeight*ScoreSimilarity(a, b) + CategoryWeight*CategoryMatch(a, b)
	return int(math.Round(m * 100))
}

// Score computes the match of a single candidate against target.
func Score(target, candidate Profile) Match {
	return Match{
		UserID:       candidate.UserID,
		Score:        candidate.Score,
		Category:     candidate.Category(),
		Similarity:   ScoreSimilarity(target.Score, candidate.Score),
		SameCategory: CategoryMatch(target.Score, candidate.Score) == 1,
		MatchPercent: MatchPercent(target.Score, candidate.Score),
	}
}

// Rank scores the pool against target and returns matches ordered by
// percentage descending, then user id ascending. The target itself is
// skipped if present in the pool. limit <= 0 returns every match.
func Rank(target Profile, pool []Profile, limit int) []Match {
	matches := make([]Match, 0, len(pool))
	for _, c := range pool {
		if c.UserID == target.UserID {
			continue
		}
		matches = append(matches, Score(target, c))
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].MatchPercent != matches[j].MatchPercent {
			return matches[i].MatchPercent > matches[j].MatchPercent
		}
		return matches[i].UserID < matches[j].UserID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
