package models

import "strings"

// EntryFilter is an AND-composed predicate over journal entries. Zero-value
// fields do not constrain the result.
type EntryFilter struct {
	// Path restricts to entries written on the given track.
	Path *Path

	// PrivateOnly keeps only entries flagged private.
	PrivateOnly bool

	// Search is a case-insensitive substring match over title, body and tags.
	Search string

	// Tags requires a non-empty intersection with the entry's tag set.
	Tags []string

	// MoodMin/MoodMax bound the self-reported mood, inclusive on both ends.
	// Entries without a mood are excluded when either bound is set.
	MoodMin *int
	MoodMax *int
}

// Matches reports whether the entry satisfies every set predicate.
func (f EntryFilter) Matches(e *JournalEntry) bool {
	if f.Path != nil && e.Path != *f.Path {
		return false
	}
	if f.PrivateOnly && !e.IsPrivate {
		return false
	}
	if f.Search != "" && !matchesSearch(e, f.Search) {
		return false
	}
	if len(f.Tags) > 0 && !intersects(e.Tags, f.Tags) {
		return false
	}
	if f.MoodMin != nil || f.MoodMax != nil {
		if e.Mood == nil {
			return false
		}
		if f.MoodMin != nil && *e.Mood < *f.MoodMin {
			return false
		}
		if f.MoodMax != nil && *e.Mood > *f.MoodMax {
			return false
		}
	}
	return true
}

// Apply filters the slice, preserving order.
func (f EntryFilter) Apply(entries []JournalEntry) []JournalEntry {
	out := make([]JournalEntry, 0, len(entries))
	for i := range entries {
		if f.Matches(&entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}

func matchesSearch(e *JournalEntry, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(e.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Content), q) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[strings.ToLower(s)] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[strings.ToLower(s)]; ok {
			return true
		}
	}
	return false
}
