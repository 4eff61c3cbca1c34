package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/client/remote"
	"github.com/obexhq/obex/internal/client/repositories/session"
	"github.com/obexhq/obex/internal/common"
	"github.com/obexhq/obex/internal/logging"
)

// LocalPurger removes a user's locally cached data together with the stored
// session in one transaction. Satisfied by *storage.Repositories.
type LocalPurger interface {
	PurgeUserData(ctx context.Context, userID string) error
}

// AuthService owns the authentication lifecycle: credential exchange with
// the identity provider, session persistence across restarts, and the
// profile bootstrap that guarantees every authenticated user has exactly
// one profile row.
type AuthService struct {
	client   remote.Client
	sessions session.Repository
	purger   LocalPurger
	log      logging.Logger

	now func() time.Time
}

// NewAuthService builds the service. purger may be nil; sign-out then only
// clears the session and leaves cached entries in place.
func NewAuthService(client remote.Client, sessions session.Repository, purger LocalPurger, log logging.Logger) *AuthService {
	return &AuthService{
		client:   client,
		sessions: sessions,
		purger:   purger,
		log:      log,
		now:      time.Now,
	}
}

// Restore resumes a previous session on startup. It is fail-closed: when no
// usable session is stored, or the profile cannot be fetched with it, the
// client starts signed out ((nil, nil)) rather than in a half-authenticated
// state. An absent session makes no network call at all.
func (a *AuthService) Restore(ctx context.Context) (*models.UserProfile, error) {
	sess, err := a.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	a.client.SetSession(sess)

	profile, err := a.client.FetchProfile(ctx, sess.UserID)
	if err != nil {
		a.log.Warn(ctx, "session restore failed, starting signed out", "error", err)
		a.client.SetSession(nil)
		if clearErr := a.sessions.Clear(ctx); clearErr != nil {
			a.log.Warn(ctx, "failed to clear stale session", "error", clearErr)
		}
		return nil, nil
	}

	a.log.Info(ctx, "session restored", "user_id", sess.UserID)
	return profile, nil
}

// SignUp registers a new account. When the provider requires email
// confirmation, remote.ErrEmailNotConfirmed is returned and no session is
// persisted; the user signs in after confirming.
func (a *AuthService) SignUp(ctx context.Context, email, password string) (*models.UserProfile, error) {
	sess, err := a.client.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, sess)
}

// SignIn exchanges credentials for a session, persists it, and returns the
// user's profile, creating the initial profile row if it does not exist yet.
func (a *AuthService) SignIn(ctx context.Context, email, password string) (*models.UserProfile, error) {
	sess, err := a.client.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, sess)
}

func (a *AuthService) establish(ctx context.Context, sess *models.AuthSession) (*models.UserProfile, error) {
	if err := a.sessions.Save(ctx, sess); err != nil {
		// The session still works for this process; persistence failure
		// only costs the user a re-login after restart.
		a.log.Warn(ctx, "failed to persist session", "error", err)
	}
	return a.ensureProfile(ctx, sess)
}

// ensureProfile fetches the profile row, inserting the default row on first
// contact. The remote table has no server-side signup hook, so the client is
// responsible for the bootstrap.
func (a *AuthService) ensureProfile(ctx context.Context, sess *models.AuthSession) (*models.UserProfile, error) {
	profile, err := a.client.FetchProfile(ctx, sess.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	now := a.now().UTC()
	profile = &models.UserProfile{
		ID:        sess.UserID,
		Email:     sess.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.client.InsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	a.log.Info(ctx, "created initial profile", "user_id", sess.UserID)
	return profile, nil
}

// SignOut revokes the session remotely (best effort) and always signs the
// user out locally, even when the revocation call fails. With a purger
// configured, the user's synced entries are dropped from the local cache in
// the same transaction that clears the session; pending entries stay so
// unsynced words are never lost.
func (a *AuthService) SignOut(ctx context.Context) error {
	var userID string
	if sess := a.client.Session(); sess != nil {
		userID = sess.UserID
	}

	if err := a.client.SignOut(ctx); err != nil {
		a.log.Warn(ctx, "remote sign-out failed", "error", err)
	}

	if a.purger != nil && userID != "" {
		if err := a.purger.PurgeUserData(ctx, userID); err != nil {
			return fmt.Errorf("failed to purge local data: %w", err)
		}
		return nil
	}
	if err := a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// ResetPassword asks the identity provider to send a recovery email.
func (a *AuthService) ResetPassword(ctx context.Context, email string) error {
	return a.client.ResetPassword(ctx, email)
}

// WatchAuthEvents keeps the persisted session in step with the client's
// in-memory one: refreshed token pairs are re-saved, sign-outs clear the
// store. Runs until ctx is cancelled or the client is closed.
func (a *AuthService) WatchAuthEvents(ctx context.Context) {
	events := a.client.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.handleAuthEvent(ctx, ev)
		}
	}
}

func (a *AuthService) handleAuthEvent(ctx context.Context, ev remote.AuthEvent) {
	switch ev {
	case remote.AuthEventTokenRefreshed, remote.AuthEventSignedIn:
		if sess := a.client.Session(); sess != nil {
			if err := a.sessions.Save(ctx, sess); err != nil {
				a.log.Warn(ctx, "failed to persist refreshed session", "error", err)
			}
		}
	case remote.AuthEventSignedOut:
		if err := a.sessions.Clear(ctx); err != nil {
			a.log.Warn(ctx, "failed to clear session after sign-out", "error", err)
		}
	}
}
