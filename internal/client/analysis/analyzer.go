// Package analysis wraps the external text-generation endpoint used to
// enrich journal entries. Analysis is strictly best-effort: a failed or
// unparsable completion must never abort the caller's entry-creation flow,
// so parse failures degrade to a fixed fallback result and only transport
// and credential problems surface as errors.
package analysis

import (
	"context"
	"errors"

	"github.com/obexhq/obex/internal/client/models"
)

var (
	// ErrMissingCredential is returned when no API key was configured.
	// The client is constructed disabled and fails fast without a
	// network call.
	ErrMissingCredential = errors.New("analysis credential missing")

	// ErrAnalysisFailed covers transport failures and non-success statuses
	// from the endpoint.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// Request carries the entry text plus short context for the prompt.
type Request struct {
	Content string
	Path    models.Path

	// RecentEntries holds a few recent entry snippets, oldest first,
	// to give the model continuity.
	RecentEntries []string

	// SelfReportedMood, when set, is passed as context; the model is told
	// not to second-guess it.
	SelfReportedMood *int
}

// Result is the structured analysis of one entry.
type Result struct {
	Summary       string   `json:"summary"`
	Insights      []string `json:"insights"`
	Reflection    string   `json:"reflection"`
	Mood          *int     `json:"mood"`
	SuggestedTags []string `json:"suggestedTags"`
}

// Analyzer is the journal service's view of the analysis endpoint.
type Analyzer interface {
	// Enabled reports whether a credential was configured.
	Enabled() bool

	// Analyze performs one blocking round trip and returns the structured
	// result, substituting a fixed fallback when the completion cannot be
	// parsed.
	Analyze(ctx context.Context, req Request) (*Result, error)

	// AnalyzeMood estimates a 1..10 mood score for the content, defaulting
	// to a neutral 6 when the completion is not a number in range.
	AnalyzeMood(ctx context.Context, content string) (int, error)
}

// NeutralMood is the fallback mood score when estimation fails.
const NeutralMood = 6

// fallbackResult is substituted when the completion body cannot be parsed
// as the expected JSON object.
func fallbackResult() *Result {
	return &Result{
		Summary:    "You took time to reflect today.",
		Insights:   []string{"Showing up to write is itself a win."},
		Reflection: "What felt most important about today?",
	}
}
