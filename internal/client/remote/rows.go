package remote

import (
	"time"

	"github.com/obexhq/obex/internal/client/models"
)

// The remote schema uses snake_case column names; the in-memory models use
// Go naming. These row types are the explicit mapping layer, constructed
// once at the boundary.

type profileRow struct {
	ID                     string    `json:"id"`
	Email                  string    `json:"email"`
	CreatedAt              time.Time `json:"created_at"`
	SelectedPath           *string   `json:"selected_path"`
	DisplayName            *string   `json:"display_name"`
	HasCompletedOnboarding bool      `json:"has_completed_onboarding"`
	CurrentStreak          int       `json:"current_streak"`
	TotalEntries           int       `json:"total_entries"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (r profileRow) toModel() *models.UserProfile {
	p := &models.UserProfile{
		ID:                     r.ID,
		Email:                  r.Email,
		CreatedAt:              r.CreatedAt,
		DisplayName:            r.DisplayName,
		HasCompletedOnboarding: r.HasCompletedOnboarding,
		CurrentStreak:          r.CurrentStreak,
		TotalEntries:           r.TotalEntries,
		UpdatedAt:              r.UpdatedAt,
	}
	if r.SelectedPath != nil {
		if path, err := models.ParsePath(*r.SelectedPath); err == nil {
			p.SelectedPath = &path
		}
	}
	return p
}

func profileRowFromModel(p *models.UserProfile) profileRow {
	r := profileRow{
		ID:                     p.ID,
		Email:                  p.Email,
		CreatedAt:              p.CreatedAt,
		DisplayName:            p.DisplayName,
		HasCompletedOnboarding: p.HasCompletedOnboarding,
		CurrentStreak:          p.CurrentStreak,
		TotalEntries:           p.TotalEntries,
		UpdatedAt:              p.UpdatedAt,
	}
	if p.SelectedPath != nil {
		s := p.SelectedPath.String()
		r.SelectedPath = &s
	}
	return r
}

// profilePatchRow is the wire shape of a partial profile update. Unset
// fields are omitted entirely so the table store leaves them untouched.
type profilePatchRow struct {
	SelectedPath           *string   `json:"selected_path,omitempty"`
	DisplayName            *string   `json:"display_name,omitempty"`
	HasCompletedOnboarding *bool     `json:"has_completed_onboarding,omitempty"`
	CurrentStreak          *int      `json:"current_streak,omitempty"`
	TotalEntries           *int      `json:"total_entries,omitempty"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func patchRowFromPatch(patch ProfilePatch, updatedAt time.Time) profilePatchRow {
	row := profilePatchRow{
		DisplayName:            patch.DisplayName,
		HasCompletedOnboarding: patch.HasCompletedOnboarding,
		CurrentStreak:          patch.CurrentStreak,
		TotalEntries:           patch.TotalEntries,
		UpdatedAt:              updatedAt,
	}
	if patch.SelectedPath != nil {
		s := patch.SelectedPath.String()
		row.SelectedPath = &s
	}
	return row
}

type entryRow struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	EntryDate       time.Time `json:"entry_date"`
	Path            string    `json:"path"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Mood            *int      `json:"mood"`
	AISummary       string    `json:"ai_summary"`
	AIReflection    string    `json:"ai_reflection"`
	AIInsights      []string  `json:"ai_insights"`
	VoiceNoteRef    string    `json:"voice_note_ref"`
	VoiceTranscript string    `json:"voice_transcript"`
	Tags            []string  `json:"tags"`
	IsPrivate       bool      `json:"is_private"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func entryRowFromModel(e *models.JournalEntry) entryRow {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	insights := e.AIInsights
	if insights == nil {
		insights = []string{}
	}
	return entryRow{
		ID:              e.ID,
		UserID:          e.UserID,
		EntryDate:       e.EntryDate,
		Path:            e.Path.String(),
		Title:           e.Title,
		Content:         e.Content,
		Mood:            e.Mood,
		AISummary:       e.AISummary,
		AIReflection:    e.AIReflection,
		AIInsights:      insights,
		VoiceNoteRef:    e.VoiceNoteRef,
		VoiceTranscript: e.VoiceTranscript,
		Tags:            tags,
		IsPrivate:       e.IsPrivate,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
