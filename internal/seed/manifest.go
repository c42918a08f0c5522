package seed

import (
	"fmt"

	"github.com/oggyb/moodfriends/internal/validation"
)

// Manifest is the fixed demo dataset. Users are referenced by username
// everywhere else.
type Manifest struct {
	Users       []UserSeed    `validate:"required,dive"`
	Friendships []PairSeed    `validate:"dive"`
	Requests    []PairSeed    `validate:"dive"`
	Messages    []MessageSeed `validate:"dive"`
}

type UserSeed struct {
	Username    string     `validate:"required,max=64"`
	DisplayName string     `validate:"required,max=128"`
	Email       string     `validate:"omitempty,email"`
	School      string     `validate:"max=128"`
	Moods       []MoodSeed `validate:"dive"`
}

// MoodSeed is recorded DaysAgo days before the run.
type MoodSeed struct {
	Score   int      `validate:"gte=0,lte=100"`
	Tags    []string `validate:"dive,required"`
	DaysAgo int      `validate:"gte=0"`
}

// PairSeed is a friendship (unordered) or a request (From sends to To).
type PairSeed struct {
	From string `validate:"required"`
	To   string `validate:"required,nefield=From"`
}

type MessageSeed struct {
	From    string `validate:"required"`
	To      string `validate:"required,nefield=From"`
	Body    string `validate:"required"`
	DaysAgo int    `validate:"gte=0"`
	Read    bool
}

// Validate checks field rules and that every pair names a manifest user.
func (m Manifest) Validate() error {
	if err := validation.Struct(m); err != nil {
		return err
	}

	known := make(map[string]bool, len(m.Users))
	for _, u := range m.Users {
		if known[u.Username] {
			return fmt.Errorf("duplicate manifest user %q", u.Username)
		}
		known[u.Username] = true
	}
	check := func(kind, from, to string) error {
		for _, name := range []string{from, to} {
			if !known[name] {
				return fmt.Errorf("%s %s->%s references unknown user %q", kind, from, to, name)
			}
		}
		return nil
	}
	for _, p := range m.Friendships {
		if err := check("friendship", p.From, p.To); err != nil {
			return err
		}
	}
	for _, p := range m.Requests {
		if err := check("request", p.From, p.To); err != nil {
			return err
		}
	}
	for _, msg := range m.Messages {
		if err := check("message", msg.From, msg.To); err != nil {
			return err
		}
	}
	return nil
}

// DefaultManifest is the demo dataset: eight students spread across the
// four mood bands, a few friendships between similar moods, pending
// requests and short conversations.
func DefaultManifest() Manifest {
	week := func(scores [4]int, tags [4][]string) []MoodSeed {
		out := make([]MoodSeed, 4)
		for i := range scores {
			out[i] = MoodSeed{Score: scores[i], Tags: tags[i], DaysAgo: 7 - i*2}
		}
		return out
	}

	return Manifest{
		Users: []UserSeed{
			{
				Username: "emma_r", DisplayName: "Emma Rodriguez", Email: "emma.r@example.com", School: "Del Norte High School",
				Moods: week([4]int{75, 80, 70, 78}, [4][]string{{"relaxed"}, {"happy"}, {"calm"}, {"grateful"}}),
			},
			{
				Username: "marcus_c", DisplayName: "Marcus Chen", Email: "marcus.c@example.com", School: "Westview High School",
				Moods: week([4]int{85, 82, 88, 80}, [4][]string{{"energetic"}, {"focused"}, {"energetic", "social"}, {"happy"}}),
			},
			{
				Username: "sophia_k", DisplayName: "Sophia Kim", Email: "sophia.k@example.com", School: "Del Norte High School",
				Moods: week([4]int{55, 58, 52, 60}, [4][]string{{"tired"}, {"tired"}, {"tired", "stressed"}, {"tired"}}),
			},
			{
				Username: "jordan_t", DisplayName: "Jordan Taylor", Email: "jordan.t@example.com", School: "Poway High School",
				Moods: week([4]int{72, 75, 68, 70}, [4][]string{{"calm"}, {"happy"}, {"calm"}, {"relaxed"}}),
			},
			{
				Username: "aisha_p", DisplayName: "Aisha Patel", Email: "aisha.p@example.com", School: "Rancho Bernardo High School",
				Moods: week([4]int{35, 38, 40, 32}, [4][]string{{"stressed", "anxious"}, {"anxious"}, {"stressed"}, {"anxious"}}),
			},
			{
				Username: "ryan_m", DisplayName: "Ryan Martinez", Email: "ryan.m@example.com", School: "Mt Carmel High School",
				Moods: week([4]int{88, 90, 85, 92}, [4][]string{{"energetic"}, {"energetic", "happy"}, {"social"}, {"energetic"}}),
			},
			{
				Username: "zoe_a", DisplayName: "Zoe Anderson", Email: "zoe.a@example.com", School: "Del Norte High School",
				Moods: week([4]int{58, 55, 60, 53}, [4][]string{{"tired"}, {"tired"}, {"lonely"}, {"tired"}}),
			},
			{
				Username: "liam_o", DisplayName: "Liam O'Brien", Email: "liam.o@example.com", School: "Poway High School",
				Moods: week([4]int{73, 77, 71, 75}, [4][]string{{"happy"}, {"hopeful"}, {"calm"}, {"happy"}}),
			},
		},
		Friendships: []PairSeed{
			{From: "emma_r", To: "marcus_c"},
			{From: "emma_r", To: "jordan_t"},
			{From: "sophia_k", To: "zoe_a"},
			{From: "marcus_c", To: "ryan_m"},
			{From: "jordan_t", To: "liam_o"},
		},
		Requests: []PairSeed{
			{From: "aisha_p", To: "emma_r"},
			{From: "liam_o", To: "marcus_c"},
			{From: "zoe_a", To: "jordan_t"},
		},
		Messages: []MessageSeed{
			{From: "emma_r", To: "marcus_c", Body: "Hey Marcus! How's it going?", DaysAgo: 2, Read: true},
			{From: "marcus_c", To: "emma_r", Body: "Hey Emma! I'm doing great, feeling super energized today!", DaysAgo: 2, Read: true},
			{From: "emma_r", To: "marcus_c", Body: "That's awesome! Want to study together later?", DaysAgo: 1},
			{From: "sophia_k", To: "zoe_a", Body: "Ugh, I'm so tired today...", DaysAgo: 3, Read: true},
			{From: "zoe_a", To: "sophia_k", Body: "Same here! This week has been exhausting", DaysAgo: 3, Read: true},
			{From: "sophia_k", To: "zoe_a", Body: "Want to grab coffee? I need some energy", DaysAgo: 2, Read: true},
			{From: "zoe_a", To: "sophia_k", Body: "Yes please! Meet at Starbucks in 30?", DaysAgo: 1},
			{From: "marcus_c", To: "ryan_m", Body: "Dude! Ready for the game tonight?", DaysAgo: 2, Read: true},
			{From: "ryan_m", To: "marcus_c", Body: "SO PUMPED! Let's goooo!", DaysAgo: 2},
			{From: "jordan_t", To: "liam_o", Body: "Hey, did you finish the homework?", DaysAgo: 1, Read: true},
			{From: "liam_o", To: "jordan_t", Body: "Yeah, just finished. It wasn't too bad", DaysAgo: 1},
		},
	}
}
