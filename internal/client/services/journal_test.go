package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obexhq/obex/internal/client/analysis"
	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/client/remote"
	"github.com/obexhq/obex/internal/client/tasks"
	"github.com/obexhq/obex/internal/common"
	"github.com/obexhq/obex/internal/logging"
)

type journalFixture struct {
	svc      *JournalService
	repo     *memEntries
	rem      *fakeRemote
	analyzer *fakeAnalyzer
	voice    *fakeVoice
	runner   *tasks.Runner
}

func newJournalFixture(t *testing.T) *journalFixture {
	t.Helper()
	log := logging.NewDefault(8)
	repo := newMemEntries()
	rem := newFakeRemote()
	rem.profiles["u1"] = &models.UserProfile{ID: "u1", Email: "u1@example.com"}
	analyzer := &fakeAnalyzer{}
	voice := &fakeVoice{}
	runner := tasks.NewRunner(log)
	syncer := NewSyncService(repo, rem, log)

	svc := NewJournalService(repo, rem, analyzer, syncer, runner, voice, log)
	svc.SetProfile(&models.UserProfile{ID: "u1", Email: "u1@example.com"})
	return &journalFixture{svc: svc, repo: repo, rem: rem, analyzer: analyzer, voice: voice, runner: runner}
}

func TestCreateEntry_RequiresSignIn(t *testing.T) {
	f := newJournalFixture(t)
	f.svc.SetProfile(nil)

	_, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "x"})
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestCreateEntry_RejectsEmptyContent(t *testing.T) {
	f := newJournalFixture(t)
	_, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "   \n"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCreateEntry_SurvivesAnalyzerFailure(t *testing.T) {
	f := newJournalFixture(t)
	f.analyzer.enabled = true
	f.analyzer.err = analysis.ErrAnalysisFailed

	entry, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "rough day"})
	require.NoError(t, err)
	f.runner.Wait()

	stored, err := f.repo.GetByID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "rough day", stored.Content)
	assert.Empty(t, stored.AISummary)
	// the push still ran
	assert.Contains(t, f.rem.upserted, entry.ID)
}

func TestCreateEntry_MergesAnalysis(t *testing.T) {
	f := newJournalFixture(t)
	mood := 9
	f.analyzer.enabled = true
	f.analyzer.result = &analysis.Result{
		Summary:       "A strong day.",
		Insights:      []string{"momentum builds"},
		Reflection:    "What carried you?",
		Mood:          &mood,
		SuggestedTags: []string{"Work", "focus"},
	}

	selfMood := 4
	entry, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{
		Content: "pushed through",
		Mood:    &selfMood,
		Tags:    []string{"work"},
	})
	require.NoError(t, err)
	f.runner.Wait()

	assert.Equal(t, "A strong day.", entry.AISummary)
	assert.Equal(t, "What carried you?", entry.AIReflection)
	assert.Equal(t, []string{"momentum builds"}, entry.AIInsights)
	// self-reported mood is never replaced by the estimate
	require.NotNil(t, entry.Mood)
	assert.Equal(t, 4, *entry.Mood)
	// case-insensitive tag union, first-seen casing wins
	assert.Equal(t, []string{"work", "focus"}, entry.Tags)
}

func TestCreateEntry_EstimatedMoodFillsGap(t *testing.T) {
	f := newJournalFixture(t)
	mood := 7
	f.analyzer.enabled = true
	f.analyzer.result = &analysis.Result{Summary: "s", Reflection: "r", Mood: &mood}

	entry, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "no mood given"})
	require.NoError(t, err)
	f.runner.Wait()

	require.NotNil(t, entry.Mood)
	assert.Equal(t, 7, *entry.Mood)
}

func TestCreateEntry_UsesProfilePath(t *testing.T) {
	f := newJournalFixture(t)
	p := models.PathDiscipline
	f.svc.SetProfile(&models.UserProfile{ID: "u1", SelectedPath: &p})

	entry, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "x"})
	require.NoError(t, err)
	f.runner.Wait()
	assert.Equal(t, models.PathDiscipline, entry.Path)
}

func TestCreateEntry_BumpsCounter(t *testing.T) {
	f := newJournalFixture(t)

	_, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "one"})
	require.NoError(t, err)
	f.runner.Wait()

	profile, err := f.rem.FetchProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TotalEntries)
	assert.Equal(t, 1, f.svc.Profile().TotalEntries)
}

func TestDeleteEntry_DecrementFloorsAtZero(t *testing.T) {
	f := newJournalFixture(t)
	entry, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "one"})
	require.NoError(t, err)
	f.runner.Wait()

	// counter drifted low remotely; delete must not push it below zero
	zero := 0
	_, err = f.rem.UpdateProfile(context.Background(), "u1", remote.ProfilePatch{TotalEntries: &zero})
	require.NoError(t, err)
	f.svc.SetProfile(&models.UserProfile{ID: "u1", TotalEntries: 0})

	require.NoError(t, f.svc.DeleteEntry(context.Background(), entry.ID))
	f.runner.Wait()

	profile, err := f.rem.FetchProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, profile.TotalEntries)
	assert.Contains(t, f.rem.deleted, entry.ID)

	_, err = f.repo.GetByID(context.Background(), entry.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteEntry_UnknownID(t *testing.T) {
	f := newJournalFixture(t)
	err := f.svc.DeleteEntry(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateEntry_GoesBackToPending(t *testing.T) {
	f := newJournalFixture(t)
	entry, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "v1"})
	require.NoError(t, err)
	f.runner.Wait()

	entry.Content = "v2"
	require.NoError(t, f.svc.UpdateEntry(context.Background(), entry))
	f.runner.Wait()

	stored, err := f.repo.GetByID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", stored.Content)
	// the re-push already landed, so it ends synced again
	assert.Equal(t, models.SyncStatusSynced, stored.SyncStatus)
}

func TestStreak(t *testing.T) {
	f := newJournalFixture(t)
	today := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return today }

	for _, daysAgo := range []int{0, 1, 2, 4} {
		e := pendingEntry(fmt.Sprintf("d%d", daysAgo), "u1", today.AddDate(0, 0, -daysAgo))
		require.NoError(t, f.repo.Create(context.Background(), e))
	}

	streak, err := f.svc.Streak(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestStreak_ZeroWithoutTodayEntry(t *testing.T) {
	f := newJournalFixture(t)
	today := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return today }

	require.NoError(t, f.repo.Create(context.Background(), pendingEntry("y", "u1", today.AddDate(0, 0, -1))))

	streak, err := f.svc.Streak(context.Background())
	require.NoError(t, err)
	assert.Zero(t, streak)
}

func TestRefreshStreak_WritesThrough(t *testing.T) {
	f := newJournalFixture(t)
	today := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return today }
	require.NoError(t, f.repo.Create(context.Background(), pendingEntry("t", "u1", today)))

	streak, err := f.svc.RefreshStreak(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	assert.Equal(t, 1, f.svc.Profile().CurrentStreak)
}

func TestSnippet_TruncatesOnRuneBoundary(t *testing.T) {
	// the 200-byte cut lands inside a two-byte rune
	long := "a" + strings.Repeat("й", 150)
	got := snippet(long)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 199, len(got))

	assert.Equal(t, "short", snippet("  short  "))
}

func TestFiltered(t *testing.T) {
	f := newJournalFixture(t)
	_, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "about running", Tags: []string{"health"}})
	require.NoError(t, err)
	_, err = f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "about work"})
	require.NoError(t, err)
	f.runner.Wait()

	got, err := f.svc.Filtered(context.Background(), models.EntryFilter{Search: "running"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"health"}, got[0].Tags)
}

func TestAttachVoiceNote(t *testing.T) {
	f := newJournalFixture(t)
	entry, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "spoken thoughts"})
	require.NoError(t, err)
	f.runner.Wait()

	updated, err := f.svc.AttachVoiceNote(context.Background(), entry.ID, "/tmp/note.m4a", " raw transcript ")
	require.NoError(t, err)
	f.runner.Wait()

	assert.Equal(t, 1, f.voice.uploads)
	assert.Equal(t, "voice/u1/"+entry.ID+".m4a", updated.VoiceNoteRef)
	assert.Equal(t, "raw transcript", updated.VoiceTranscript)
}

func TestAttachVoiceNote_UploadFailureLeavesEntry(t *testing.T) {
	f := newJournalFixture(t)
	f.voice.err = errors.New("bucket unavailable")
	entry, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{Content: "spoken"})
	require.NoError(t, err)
	f.runner.Wait()

	_, err = f.svc.AttachVoiceNote(context.Background(), entry.ID, "/tmp/note.m4a", "")
	require.Error(t, err)

	stored, err := f.repo.GetByID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.VoiceNoteRef)
}

func TestUpdateSelectedPath(t *testing.T) {
	f := newJournalFixture(t)

	profile, err := f.svc.UpdateSelectedPath(context.Background(), models.PathClarity)
	require.NoError(t, err)
	require.NotNil(t, profile.SelectedPath)
	assert.Equal(t, models.PathClarity, *profile.SelectedPath)
	assert.Equal(t, models.PathClarity, *f.svc.Profile().SelectedPath)

	_, err = f.svc.UpdateSelectedPath(context.Background(), models.Path("serenity"))
	assert.ErrorIs(t, err, models.ErrUnknownPath)
}

func TestSetDisplayName(t *testing.T) {
	f := newJournalFixture(t)

	profile, err := f.svc.SetDisplayName(context.Background(), "  Ada  ")
	require.NoError(t, err)
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Ada", *profile.DisplayName)

	_, err = f.svc.SetDisplayName(context.Background(), "   ")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCompleteOnboarding(t *testing.T) {
	f := newJournalFixture(t)
	profile, err := f.svc.CompleteOnboarding(context.Background())
	require.NoError(t, err)
	assert.True(t, profile.HasCompletedOnboarding)
}

func TestSyncNow(t *testing.T) {
	f := newJournalFixture(t)
	require.NoError(t, f.repo.Create(context.Background(), pendingEntry("p1", "u1", time.Now())))
	require.NoError(t, f.repo.Create(context.Background(), pendingEntry("p2", "u1", time.Now())))

	synced, failed, err := f.svc.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Zero(t, failed)
}
