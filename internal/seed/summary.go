package seed

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Category names, in the order the loader runs them.
const (
	CategoryUsers       = "users"
	CategoryMoods       = "moods"
	CategoryFriendships = "friendships"
	CategoryRequests    = "requests"
	CategoryMessages    = "messages"
)

var categories = []string{CategoryUsers, CategoryMoods, CategoryFriendships, CategoryRequests, CategoryMessages}

// Counts is the outcome of one category.
type Counts struct {
	Created int
	Skipped int
	Failed  bool
}

// Summary reports what a Run did, per category.
type Summary struct {
	counts map[string]*Counts
}

func newSummary() *Summary {
	s := &Summary{counts: make(map[string]*Counts, len(categories))}
	for _, c := range categories {
		s.counts[c] = &Counts{}
	}
	return s
}

// Get returns the counts for category.
func (s *Summary) Get(category string) Counts {
	if c, ok := s.counts[category]; ok {
		return *c
	}
	return Counts{}
}

// Total sums created and skipped across categories.
func (s *Summary) Total() (created, skipped int) {
	for _, c := range s.counts {
		created += c.Created
		skipped += c.Skipped
	}
	return created, skipped
}

func (s *Summary) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tCREATED\tSKIPPED\tSTATUS")
	for _, name := range categories {
		c := s.counts[name]
		status := "ok"
		if c.Failed {
			status = "aborted"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, c.Created, c.Skipped, status)
	}
	created, skipped := s.Total()
	fmt.Fprintf(w, "total\t%d\t%d\t\n", created, skipped)
	w.Flush()
	return b.String()
}
