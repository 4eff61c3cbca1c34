package models

import (
	"strings"
	"time"
)

// SyncStatus tracks whether a locally stored entry has been pushed to the
// remote table store.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
)

// JournalEntry is the durable local record of one journal entry. Entries are
// written locally first; AI enrichment and the remote push both happen after
// the local write has committed.
type JournalEntry struct {
	// ID is a globally unique identifier, also the remote upsert key.
	ID string

	// UserID is the owning identity.
	UserID string

	// EntryDate is the calendar day the entry belongs to (may differ from
	// CreatedAt when the user backfills a day).
	EntryDate time.Time

	// Path is the user's chosen track at the time of writing.
	Path Path

	Title   string
	Content string

	// Mood is the self-reported mood on a 1..10 scale, nil when not given.
	Mood *int

	// AI enrichment, all empty until analysis has run.
	AISummary    string
	AIReflection string
	AIInsights   []string

	// VoiceNoteRef is the object-storage key of an attached voice note.
	VoiceNoteRef    string
	VoiceTranscript string

	Tags      []string
	IsPrivate bool

	CreatedAt time.Time
	UpdatedAt time.Time

	SyncStatus SyncStatus
}

// MoodMin and MoodMax bound the self-reported and AI-estimated mood scale.
const (
	MoodMin = 1
	MoodMax = 10
)

// ClampMood forces v into the valid mood range.
func ClampMood(v int) int {
	if v < MoodMin {
		return MoodMin
	}
	if v > MoodMax {
		return MoodMax
	}
	return v
}

// NormalizeStrings trims every element and drops the ones that end up empty.
// Tags and insights lists never contain empty strings after normalization.
func NormalizeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// MergeTags unions two tag lists, normalizing both and keeping first-seen
// order. Comparison is case-insensitive.
func MergeTags(base, extra []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range append(NormalizeStrings(base), NormalizeStrings(extra)...) {
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
