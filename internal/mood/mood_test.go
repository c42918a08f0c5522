package mood_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/moodfriends/internal/mood"
)

func TestCategoryFor_Boundaries(t *testing.T) {
	cases := map[int]mood.Category{
		0:   mood.StressedAnxious,
		40:  mood.StressedAnxious,
		41:  mood.TiredLowEnergy,
		60:  mood.TiredLowEnergy,
		61:  mood.HappyNeutral,
		80:  mood.HappyNeutral,
		81:  mood.EnergeticExcited,
		100: mood.EnergeticExcited,
	}
	for score, want := range cases {
		assert.Equal(t, want, mood.CategoryFor(score), "score %d", score)
	}
}

// Every score lands in exactly one band and bands appear in ascending order
// with no gaps.
func TestCategoryFor_PartitionsScale(t *testing.T) {
	order := mood.Categories()
	idx := 0
	for s := mood.MinScore; s <= mood.MaxScore; s++ {
		c := mood.CategoryFor(s)
		if c != order[idx] {
			idx++
			if assert.Less(t, idx, len(order)) {
				assert.Equal(t, order[idx], c, "score %d skipped a band", s)
			}
		}
	}
	assert.Equal(t, len(order)-1, idx)
}

func TestValidScore(t *testing.T) {
	assert.True(t, mood.ValidScore(0))
	assert.True(t, mood.ValidScore(100))
	assert.False(t, mood.ValidScore(-1))
	assert.False(t, mood.ValidScore(101))
}

func TestNormalizeTags(t *testing.T) {
	got := mood.NormalizeTags([]string{" Happy", "calm", "pumped", "HAPPY", ""})
	assert.Equal(t, []string{"happy", "calm"}, got)
}
