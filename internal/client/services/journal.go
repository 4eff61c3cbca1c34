package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/obexhq/obex/internal/client/analysis"
	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/client/remote"
	"github.com/obexhq/obex/internal/client/repositories/entries"
	"github.com/obexhq/obex/internal/client/tasks"
	"github.com/obexhq/obex/internal/common"
	"github.com/obexhq/obex/internal/logging"
)

// VoiceUploader stores voice-note audio and returns the object key.
type VoiceUploader interface {
	Upload(ctx context.Context, userID, entryID, path string) (string, error)
}

// recentContextEntries is how many previous entries are handed to the
// analyzer as continuity context.
const recentContextEntries = 3

// JournalService orchestrates the entry lifecycle. Every write lands in the
// local store first; AI enrichment and the remote push are best-effort
// follow-ups that can never lose the user's words. It also holds the
// write-through cache of the user's profile for the current session.
type JournalService struct {
	entries  entries.Repository
	store    remote.TableStore
	analyzer analysis.Analyzer
	syncer   *SyncService
	runner   *tasks.Runner
	voice    VoiceUploader
	log      logging.Logger

	now func() time.Time

	mu      sync.Mutex
	profile *models.UserProfile
}

func NewJournalService(
	repo entries.Repository,
	store remote.TableStore,
	analyzer analysis.Analyzer,
	syncer *SyncService,
	runner *tasks.Runner,
	voice VoiceUploader,
	log logging.Logger,
) *JournalService {
	return &JournalService{
		entries:  repo,
		store:    store,
		analyzer: analyzer,
		syncer:   syncer,
		runner:   runner,
		voice:    voice,
		log:      log,
		now:      time.Now,
	}
}

// SetProfile installs the profile for the authenticated user. Passing nil
// returns the service to the signed-out state.
func (j *JournalService) SetProfile(p *models.UserProfile) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.profile = p
}

// Profile returns the cached profile, or nil when signed out.
func (j *JournalService) Profile() *models.UserProfile {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.profile
}

func (j *JournalService) requireProfile() (*models.UserProfile, error) {
	p := j.Profile()
	if p == nil {
		return nil, common.ErrUnauthenticated
	}
	return p, nil
}

// CreateEntryInput carries the user-supplied fields of a new entry.
type CreateEntryInput struct {
	Title   string
	Content string

	// Mood is the self-reported mood, nil when the user skipped it.
	Mood *int

	Tags      []string
	IsPrivate bool

	// EntryDate defaults to now when zero (backfilling a past day is allowed).
	EntryDate time.Time

	// Path overrides the profile's selected path for this entry.
	Path *models.Path
}

// CreateEntry persists a new entry locally, enriches it with AI analysis
// when the analyzer is configured, and schedules the remote push plus the
// profile counter update in the background. The returned entry reflects the
// enrichment; a failed analysis leaves the entry intact and unenriched.
func (j *JournalService) CreateEntry(ctx context.Context, in CreateEntryInput) (*models.JournalEntry, error) {
	profile, err := j.requireProfile()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: entry content is empty", common.ErrValidation)
	}

	now := j.now().UTC()
	entryDate := in.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}

	path := models.Path("")
	if in.Path != nil {
		path = *in.Path
	} else if profile.SelectedPath != nil {
		path = *profile.SelectedPath
	}

	var mood *int
	if in.Mood != nil {
		m := models.ClampMood(*in.Mood)
		mood = &m
	}

	entry := &models.JournalEntry{
		ID:         uuid.NewString(),
		UserID:     profile.ID,
		EntryDate:  entryDate,
		Path:       path,
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Mood:       mood,
		Tags:       models.NormalizeStrings(in.Tags),
		IsPrivate:  in.IsPrivate,
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncStatus: models.SyncStatusPending,
	}

	if err := j.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	j.enrich(ctx, entry)

	j.runner.Go("push entry", func(ctx context.Context) error {
		return j.syncer.Push(ctx, entry.ID)
	})
	j.runner.Go("bump entry counter", func(ctx context.Context) error {
		return j.adjustTotalEntries(ctx, +1)
	})

	return entry, nil
}

// enrich runs the analyzer on a freshly created entry and folds the result
// in. Analysis failures are logged and swallowed: the local write already
// committed and must survive.
func (j *JournalService) enrich(ctx context.Context, entry *models.JournalEntry) {
	if j.analyzer == nil || !j.analyzer.Enabled() {
		return
	}

	res, err := j.analyzer.Analyze(ctx, analysis.Request{
		Content:          entry.Content,
		Path:             entry.Path,
		RecentEntries:    j.recentSnippets(ctx, entry),
		SelfReportedMood: entry.Mood,
	})
	if err != nil {
		j.log.Warn(ctx, "entry analysis failed", "entry_id", entry.ID, "error", err)
		return
	}

	entry.AISummary = res.Summary
	entry.AIReflection = res.Reflection
	entry.AIInsights = models.NormalizeStrings(res.Insights)
	entry.Tags = models.MergeTags(entry.Tags, res.SuggestedTags)
	// A self-reported mood is never overwritten by the model's estimate.
	if entry.Mood == nil && res.Mood != nil {
		m := models.ClampMood(*res.Mood)
		entry.Mood = &m
	}
	entry.UpdatedAt = j.now().UTC()

	if err := j.entries.Update(ctx, entry); err != nil {
		j.log.Warn(ctx, "failed to store analysis result", "entry_id", entry.ID, "error", err)
	}
}

// recentSnippets returns short excerpts of the most recent entries, oldest
// first, for prompt continuity. Private entries never leave the device.
func (j *JournalService) recentSnippets(ctx context.Context, current *models.JournalEntry) []string {
	all, err := j.entries.GetAllByUser(ctx, current.UserID)
	if err != nil {
		return nil
	}
	var snippets []string
	for _, e := range all {
		if e.ID == current.ID || e.IsPrivate {
			continue
		}
		snippets = append(snippets, snippet(e.Content))
		if len(snippets) == recentContextEntries {
			break
		}
	}
	// all is newest first; the prompt wants chronological order.
	for i, k := 0, len(snippets)-1; i < k; i, k = i+1, k-1 {
		snippets[i], snippets[k] = snippets[k], snippets[i]
	}
	return snippets
}

func snippet(content string) string {
	const maxLen = 200
	content = strings.TrimSpace(content)
	if len(content) > maxLen {
		// back up to a rune boundary so the cut never produces invalid UTF-8
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	return content
}

// UpdateEntry replaces the mutable fields of an existing entry and queues a
// re-push. The entry goes back to pending until the push lands.
func (j *JournalService) UpdateEntry(ctx context.Context, entry *models.JournalEntry) error {
	if _, err := j.requireProfile(); err != nil {
		return err
	}
	if strings.TrimSpace(entry.Content) == "" {
		return fmt.Errorf("%w: entry content is empty", common.ErrValidation)
	}

	if entry.Mood != nil {
		m := models.ClampMood(*entry.Mood)
		entry.Mood = &m
	}
	entry.Tags = models.NormalizeStrings(entry.Tags)
	entry.UpdatedAt = j.now().UTC()
	entry.SyncStatus = models.SyncStatusPending

	if err := j.entries.Update(ctx, entry); err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	j.runner.Go("push entry", func(ctx context.Context) error {
		return j.syncer.Push(ctx, entry.ID)
	})
	return nil
}

// DeleteEntry removes the entry locally and schedules the remote delete.
// The counter decrement is best-effort and never goes below zero.
func (j *JournalService) DeleteEntry(ctx context.Context, id string) error {
	if _, err := j.requireProfile(); err != nil {
		return err
	}

	if err := j.entries.DeleteByID(ctx, id); err != nil {
		return err
	}

	j.runner.Go("delete remote entry", func(ctx context.Context) error {
		return j.store.DeleteEntry(ctx, id)
	})
	j.runner.Go("drop entry counter", func(ctx context.Context) error {
		return j.adjustTotalEntries(ctx, -1)
	})
	return nil
}

// GetEntry returns one entry by id.
func (j *JournalService) GetEntry(ctx context.Context, id string) (*models.JournalEntry, error) {
	if _, err := j.requireProfile(); err != nil {
		return nil, err
	}
	return j.entries.GetByID(ctx, id)
}

// List returns all of the user's entries, newest first.
func (j *JournalService) List(ctx context.Context) ([]models.JournalEntry, error) {
	profile, err := j.requireProfile()
	if err != nil {
		return nil, err
	}
	return j.entries.GetAllByUser(ctx, profile.ID)
}

// Filtered returns the user's entries matching the filter, newest first.
func (j *JournalService) Filtered(ctx context.Context, f models.EntryFilter) ([]models.JournalEntry, error) {
	all, err := j.List(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(all), nil
}

// Streak counts consecutive days with at least one entry, walking back from
// today. A day without an entry today means the streak is zero; yesterday's
// run does not count until the user writes again.
func (j *JournalService) Streak(ctx context.Context) (int, error) {
	all, err := j.List(ctx)
	if err != nil {
		return 0, err
	}

	days := make(map[string]struct{}, len(all))
	for _, e := range all {
		days[e.EntryDate.UTC().Format("2006-01-02")] = struct{}{}
	}

	streak := 0
	day := j.now().UTC()
	for {
		if _, ok := days[day.Format("2006-01-02")]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// AttachVoiceNote uploads the audio file, records its object key and the
// transcript on the entry, and queues a re-push.
func (j *JournalService) AttachVoiceNote(ctx context.Context, entryID, filePath, transcript string) (*models.JournalEntry, error) {
	profile, err := j.requireProfile()
	if err != nil {
		return nil, err
	}
	if j.voice == nil {
		return nil, errors.New("voice storage not configured")
	}

	entry, err := j.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	key, err := j.voice.Upload(ctx, profile.ID, entry.ID, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to upload voice note: %w", err)
	}

	entry.VoiceNoteRef = key
	entry.VoiceTranscript = strings.TrimSpace(transcript)
	entry.UpdatedAt = j.now().UTC()
	entry.SyncStatus = models.SyncStatusPending

	if err := j.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	j.runner.Go("push entry", func(ctx context.Context) error {
		return j.syncer.Push(ctx, entry.ID)
	})
	return entry, nil
}

// SyncNow pushes every pending entry synchronously and returns the counts.
func (j *JournalService) SyncNow(ctx context.Context) (synced, failed int, err error) {
	profile, err := j.requireProfile()
	if err != nil {
		return 0, 0, err
	}
	return j.syncer.PushAllPending(ctx, profile.ID)
}

// UpdateSelectedPath writes the new path through to the remote profile and
// refreshes the cache.
func (j *JournalService) UpdateSelectedPath(ctx context.Context, p models.Path) (*models.UserProfile, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownPath, p)
	}
	return j.patchProfile(ctx, remote.ProfilePatch{SelectedPath: &p})
}

// SetDisplayName writes the new display name through to the remote profile.
func (j *JournalService) SetDisplayName(ctx context.Context, name string) (*models.UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: display name is empty", common.ErrValidation)
	}
	return j.patchProfile(ctx, remote.ProfilePatch{DisplayName: &name})
}

// CompleteOnboarding marks onboarding done on the remote profile.
func (j *JournalService) CompleteOnboarding(ctx context.Context) (*models.UserProfile, error) {
	done := true
	return j.patchProfile(ctx, remote.ProfilePatch{HasCompletedOnboarding: &done})
}

func (j *JournalService) patchProfile(ctx context.Context, patch remote.ProfilePatch) (*models.UserProfile, error) {
	profile, err := j.requireProfile()
	if err != nil {
		return nil, err
	}

	updated, err := j.store.UpdateProfile(ctx, profile.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	j.SetProfile(updated)
	return updated, nil
}

// adjustTotalEntries shifts the denormalized entry counter by delta,
// flooring at zero. The counter is best-effort: a lost update shows a
// slightly stale number, never corrupt data.
func (j *JournalService) adjustTotalEntries(ctx context.Context, delta int) error {
	profile := j.Profile()
	if profile == nil {
		return nil
	}

	total := profile.TotalEntries + delta
	if total < 0 {
		total = 0
	}

	updated, err := j.store.UpdateProfile(ctx, profile.ID, remote.ProfilePatch{TotalEntries: &total})
	if err != nil {
		return fmt.Errorf("failed to update entry counter: %w", err)
	}
	j.SetProfile(updated)
	return nil
}

// RefreshStreak recomputes the streak from local entries and writes it
// through to the remote profile when it changed.
func (j *JournalService) RefreshStreak(ctx context.Context) (int, error) {
	profile, err := j.requireProfile()
	if err != nil {
		return 0, err
	}

	streak, err := j.Streak(ctx)
	if err != nil {
		return 0, err
	}
	if streak == profile.CurrentStreak {
		return streak, nil
	}

	updated, err := j.store.UpdateProfile(ctx, profile.ID, remote.ProfilePatch{CurrentStreak: &streak})
	if err != nil {
		return streak, fmt.Errorf("failed to update streak: %w", err)
	}
	j.SetProfile(updated)
	return streak, nil
}
