package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/client/services"
	"github.com/obexhq/obex/internal/common"
)

// write prompts for a new entry and saves it. The entry is stored locally
// before any network work, so a dead connection never loses words.
func (a *App) write(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title (optional)", a.out)
	if err != nil {
		return err
	}

	content, err := GetMultiline(a.reader, "Write your entry", a.out)
	if err != nil {
		return err
	}

	mood, err := GetOptionalInt(a.reader, fmt.Sprintf("Mood %d-%d (optional)", models.MoodMin, models.MoodMax), a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	tagLine, err := getSimpleText(a.reader, "Tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}

	private, err := GetYesNo(a.reader, "Keep this entry private?", a.out)
	if err != nil {
		return err
	}

	entry, err := a.journal.CreateEntry(ctx, services.CreateEntryInput{
		Title:     title,
		Content:   content,
		Mood:      mood,
		Tags:      splitTags(tagLine),
		IsPrivate: private,
	})
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}

	fmt.Fprintf(a.out, "Saved entry %s.\n", shortID(entry.ID))
	if entry.AIReflection != "" {
		fmt.Fprintf(a.out, "\n%s\n", entry.AIReflection)
	}
	return nil
}

// list prints the user's entries, newest first.
func (a *App) list(ctx context.Context) error {
	entries, err := a.journal.List(ctx)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No entries yet. Try 'write'.")
		return nil
	}
	for i := range entries {
		a.printEntryLine(&entries[i])
	}
	return nil
}

// show prints one entry in full, addressed by id prefix.
func (a *App) show(ctx context.Context, idPrefix string) error {
	entry, err := a.resolveEntry(ctx, idPrefix)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	a.printEntry(entry)
	return nil
}

// edit rewrites the content (and optionally the mood) of an existing entry.
func (a *App) edit(ctx context.Context, idPrefix string) error {
	entry, err := a.resolveEntry(ctx, idPrefix)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}

	a.printEntry(entry)
	content, err := GetMultiline(a.reader, "New content", a.out)
	if err != nil {
		return err
	}
	if content != "" {
		entry.Content = content
	}

	mood, err := GetOptionalInt(a.reader, fmt.Sprintf("Mood %d-%d (optional, keeps current)", models.MoodMin, models.MoodMax), a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	if mood != nil {
		entry.Mood = mood
	}

	if err := a.journal.UpdateEntry(ctx, entry); err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	fmt.Fprintln(a.out, "Updated.")
	return nil
}

// delete removes an entry after confirmation.
func (a *App) delete(ctx context.Context, idPrefix string) error {
	entry, err := a.resolveEntry(ctx, idPrefix)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}

	ok, err := GetYesNo(a.reader, fmt.Sprintf("Delete entry %s?", shortID(entry.ID)), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Kept.")
		return nil
	}

	if err := a.journal.DeleteEntry(ctx, entry.ID); err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// search prompts for filter criteria and prints the matches.
func (a *App) search(ctx context.Context) error {
	var filter models.EntryFilter

	text, err := getSimpleText(a.reader, "Search text (optional)", a.out)
	if err != nil {
		return err
	}
	filter.Search = text

	tagLine, err := getSimpleText(a.reader, "Tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}
	filter.Tags = splitTags(tagLine)

	pathText, err := getSimpleText(a.reader, "Path (optional: confidence, clarity, discipline)", a.out)
	if err != nil {
		return err
	}
	if pathText != "" {
		p, err := models.ParsePath(pathText)
		if err != nil {
			fmt.Fprintln(a.out, describeError(err))
			return err
		}
		filter.Path = &p
	}

	filter.MoodMin, err = GetOptionalInt(a.reader, "Minimum mood (optional)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	filter.MoodMax, err = GetOptionalInt(a.reader, "Maximum mood (optional)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	entries, err := a.journal.Filtered(ctx, filter)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No matches.")
		return nil
	}
	for i := range entries {
		a.printEntryLine(&entries[i])
	}
	return nil
}

// attach uploads a voice note file and links it to an entry.
func (a *App) attach(ctx context.Context, idPrefix, filePath string) error {
	transcript, err := GetMultiline(a.reader, "Transcript (optional)", a.out)
	if err != nil {
		return err
	}

	entry, err := a.resolveEntry(ctx, idPrefix)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}

	updated, err := a.journal.AttachVoiceNote(ctx, entry.ID, filePath, transcript)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	fmt.Fprintf(a.out, "Voice note attached to %s.\n", shortID(updated.ID))
	return nil
}

// sync pushes all pending entries right now.
func (a *App) sync(ctx context.Context) error {
	synced, failed, err := a.journal.SyncNow(ctx)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	switch {
	case synced == 0 && failed == 0:
		fmt.Fprintln(a.out, "Everything is already synced.")
	case failed == 0:
		fmt.Fprintf(a.out, "Synced %d entries.\n", synced)
	default:
		fmt.Fprintf(a.out, "Synced %d entries, %d failed (they stay queued).\n", synced, failed)
	}
	return nil
}

// resolveEntry finds a single entry whose id starts with prefix.
func (a *App) resolveEntry(ctx context.Context, prefix string) (*models.JournalEntry, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("%w: entry id is required", common.ErrValidation)
	}

	entries, err := a.journal.List(ctx)
	if err != nil {
		return nil, err
	}

	var match *models.JournalEntry
	for i := range entries {
		if strings.HasPrefix(entries[i].ID, prefix) {
			if match != nil {
				return nil, fmt.Errorf("%w: id %q is ambiguous", common.ErrValidation, prefix)
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return nil, common.ErrNotFound
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (a *App) printEntryLine(e *models.JournalEntry) {
	title := e.Title
	if title == "" {
		title = firstLine(e.Content)
	}
	marks := ""
	if e.IsPrivate {
		marks += " [private]"
	}
	if e.SyncStatus == models.SyncStatusPending {
		marks += " [pending]"
	}
	fmt.Fprintf(a.out, "%s  %s  %s%s\n",
		shortID(e.ID), e.EntryDate.Format("2006-01-02"), title, marks)
}

func (a *App) printEntry(e *models.JournalEntry) {
	fmt.Fprintf(a.out, "Entry %s (%s)\n", shortID(e.ID), e.EntryDate.Format("2006-01-02"))
	if e.Title != "" {
		fmt.Fprintf(a.out, "Title: %s\n", e.Title)
	}
	if e.Path != "" {
		fmt.Fprintf(a.out, "Path: %s\n", e.Path.Info().DisplayName)
	}
	if e.Mood != nil {
		fmt.Fprintf(a.out, "Mood: %d/%d\n", *e.Mood, models.MoodMax)
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(a.out, "Tags: %s\n", strings.Join(e.Tags, ", "))
	}
	fmt.Fprintf(a.out, "\n%s\n", e.Content)
	if e.AISummary != "" {
		fmt.Fprintf(a.out, "\nSummary: %s\n", e.AISummary)
	}
	for _, ins := range e.AIInsights {
		fmt.Fprintf(a.out, "  - %s\n", ins)
	}
	if e.AIReflection != "" {
		fmt.Fprintf(a.out, "Reflection: %s\n", e.AIReflection)
	}
	if e.VoiceNoteRef != "" {
		fmt.Fprintf(a.out, "Voice note: %s\n", e.VoiceNoteRef)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const maxLen = 60
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
