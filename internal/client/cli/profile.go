package cli

import (
	"context"
	"fmt"

	"github.com/obexhq/obex/internal/client/models"
)

// profile prints the current profile and counters.
func (a *App) profile(ctx context.Context) error {
	p := a.journal.Profile()
	if p == nil {
		fmt.Fprintln(a.out, "You need to sign in first.")
		return nil
	}

	name := p.Email
	if p.DisplayName != nil {
		name = *p.DisplayName
	}
	fmt.Fprintf(a.out, "%s\n", name)
	if p.SelectedPath != nil {
		info := p.SelectedPath.Info()
		fmt.Fprintf(a.out, "Path: %s (%s)\n", info.DisplayName, info.Tagline)
	} else {
		fmt.Fprintln(a.out, "Path: not chosen yet (use 'path')")
	}
	fmt.Fprintf(a.out, "Entries: %d\n", p.TotalEntries)
	fmt.Fprintf(a.out, "Streak: %d days\n", p.CurrentStreak)
	return nil
}

// choosePath lets the user pick (or switch) their track. The first pick also
// completes onboarding.
func (a *App) choosePath(ctx context.Context) error {
	for _, p := range models.AllPaths() {
		info := p.Info()
		fmt.Fprintf(a.out, "  %-11s %s\n", p, info.Tagline)
	}

	text, err := getSimpleText(a.reader, "Choose your path", a.out)
	if err != nil {
		return err
	}
	p, err := models.ParsePath(text)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}

	profile, err := a.journal.UpdateSelectedPath(ctx, p)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}

	if !profile.HasCompletedOnboarding {
		if _, err := a.journal.CompleteOnboarding(ctx); err != nil {
			fmt.Fprintln(a.out, describeError(err))
			return err
		}
	}

	fmt.Fprintf(a.out, "You are on the %s path.\n", p.Info().DisplayName)
	return nil
}

// setName updates the display name.
func (a *App) setName(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Display name", a.out)
	if err != nil {
		return err
	}
	if _, err := a.journal.SetDisplayName(ctx, name); err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

// streak recomputes and prints the current writing streak.
func (a *App) streak(ctx context.Context) error {
	days, err := a.journal.RefreshStreak(ctx)
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	switch days {
	case 0:
		fmt.Fprintln(a.out, "No streak yet. Write something today to start one.")
	case 1:
		fmt.Fprintln(a.out, "1 day streak. Come back tomorrow.")
	default:
		fmt.Fprintf(a.out, "%d day streak. Keep going!\n", days)
	}
	return nil
}
