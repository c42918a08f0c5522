package repository

import "slices"

func sortIDs(ids []uint64) { slices.Sort(ids) }

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
