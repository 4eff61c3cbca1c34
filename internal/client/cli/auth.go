package cli

import (
	"context"
	"fmt"

	"github.com/obexhq/obex/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and password and creates a new account.
// When the provider requires email confirmation the user is told to check
// their inbox; otherwise they end up signed in immediately.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	profile, err := a.auth.SignUp(ctx, email, string(password))
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}

	a.journal.SetProfile(profile)
	fmt.Fprintln(a.out, "Welcome to Obex! Pick a path with 'path' to get started.")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	profile, err := a.auth.SignIn(ctx, email, string(password))
	if err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}

	a.journal.SetProfile(profile)
	fmt.Fprintf(a.out, "Signed in as %s.\n", profile.Email)
	return nil
}

// Logout signs the user out locally and (best effort) remotely.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	a.journal.SetProfile(nil)
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// Reset asks the provider to send a password recovery email.
func (a *App) Reset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.ResetPassword(ctx, email); err != nil {
		fmt.Fprintln(a.out, describeError(err))
		return err
	}
	fmt.Fprintln(a.out, "If that address has an account, a recovery email is on its way.")
	return nil
}
