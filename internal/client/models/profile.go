package models

import "time"

// UserProfile is the single remote profile record for an authenticated
// identity. It is fetched after sign-in and mutated only through explicit
// update operations; the in-memory copy held by the journal service is a
// write-through cache of the last fetched/updated row.
type UserProfile struct {
	ID        string
	Email     string
	CreatedAt time.Time

	// SelectedPath is nil until the user picks a track during onboarding.
	SelectedPath *Path
	DisplayName  *string

	HasCompletedOnboarding bool

	// CurrentStreak and TotalEntries are denormalized counters maintained
	// best-effort by the client.
	CurrentStreak int
	TotalEntries  int

	UpdatedAt time.Time
}
