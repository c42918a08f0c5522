// Package mood holds the score bands that turn a 0–100 mood score into one
// of four categories, plus the tag vocabulary users can attach to an entry.
package mood

import (
	"slices"
	"strings"
)

const (
	MinScore = 0
	MaxScore = 100
)

type Category string

const (
	StressedAnxious  Category = "Stressed/Anxious"
	TiredLowEnergy   Category = "Tired/Low Energy"
	HappyNeutral     Category = "Happy/Neutral"
	EnergeticExcited Category = "Energetic/Excited"
)

// band is an inclusive score range.
type band struct {
	min, max int
	category Category
}

// bands partition [MinScore, MaxScore] in ascending order.
var bands = []band{
	{0, 40, StressedAnxious},
	{41, 60, TiredLowEnergy},
	{61, 80, HappyNeutral},
	{81, 100, EnergeticExcited},
}

// Categories lists every category from lowest to highest band.
func Categories() []Category {
	out := make([]Category, len(bands))
	for i, b := range bands {
		out[i] = b.category
	}
	return out
}

// ValidScore reports whether score is inside the 0–100 scale.
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// CategoryFor maps a score to its band. Callers validate the score first;
// out-of-range values are pinned to the nearest band.
func CategoryFor(score int) Category {
	for _, b := range bands {
		if score <= b.max {
			return b.category
		}
	}
	return bands[len(bands)-1].category
}

var validTags = []string{
	"happy", "sad", "anxious", "calm", "energetic",
	"tired", "stressed", "relaxed", "focused", "creative",
	"social", "lonely", "grateful", "frustrated", "hopeful",
}

// ValidTags returns a copy of the accepted tag vocabulary.
func ValidTags() []string { return slices.Clone(validTags) }

// NormalizeTags lowercases and trims tags, dropping unknown ones and
// duplicates while keeping the first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if slices.Contains(validTags, t) && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
