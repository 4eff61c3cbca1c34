package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/obexhq/obex/internal/client/analysis"
	"github.com/obexhq/obex/internal/client/config"
	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/client/remote"
	"github.com/obexhq/obex/internal/client/services"
	"github.com/obexhq/obex/internal/client/storage"
	"github.com/obexhq/obex/internal/client/tasks"
	"github.com/obexhq/obex/internal/client/voicestore"
	"github.com/obexhq/obex/internal/filex"
	"github.com/obexhq/obex/internal/logging"

	_ "modernc.org/sqlite"
)

// authService is the slice of services.AuthService the REPL uses.
type authService interface {
	Restore(ctx context.Context) (*models.UserProfile, error)
	SignUp(ctx context.Context, email, password string) (*models.UserProfile, error)
	SignIn(ctx context.Context, email, password string) (*models.UserProfile, error)
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	WatchAuthEvents(ctx context.Context)
}

// journalService is the slice of services.JournalService the REPL uses.
type journalService interface {
	Profile() *models.UserProfile
	SetProfile(p *models.UserProfile)
	CreateEntry(ctx context.Context, in services.CreateEntryInput) (*models.JournalEntry, error)
	UpdateEntry(ctx context.Context, entry *models.JournalEntry) error
	DeleteEntry(ctx context.Context, id string) error
	GetEntry(ctx context.Context, id string) (*models.JournalEntry, error)
	List(ctx context.Context) ([]models.JournalEntry, error)
	Filtered(ctx context.Context, f models.EntryFilter) ([]models.JournalEntry, error)
	Streak(ctx context.Context) (int, error)
	RefreshStreak(ctx context.Context) (int, error)
	AttachVoiceNote(ctx context.Context, entryID, filePath, transcript string) (*models.JournalEntry, error)
	SyncNow(ctx context.Context) (synced, failed int, err error)
	UpdateSelectedPath(ctx context.Context, p models.Path) (*models.UserProfile, error)
	SetDisplayName(ctx context.Context, name string) (*models.UserProfile, error)
	CompleteOnboarding(ctx context.Context) (*models.UserProfile, error)
}

type App struct {
	config  *config.Config
	log     logging.Logger
	store   *storage.Repositories
	client  remote.Client
	runner  *tasks.Runner
	auth    authService
	journal journalService

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	if _, err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	client := remote.NewHTTPClient(cfg.APIBaseURL, cfg.APIAnonKey, log)
	analyzer := analysis.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, log)
	runner := tasks.NewRunner(log)
	syncer := services.NewSyncService(store.Entries, client, log)
	auth := services.NewAuthService(client, store.Sessions, store, log)

	var voice services.VoiceUploader
	vs, err := voicestore.New(ctx, voicestore.Config{
		Bucket:       cfg.VoiceBucket,
		Region:       cfg.VoiceRegion,
		BaseEndpoint: cfg.VoiceEndpoint,
		AccessKey:    cfg.VoiceAccessKey,
		SecretKey:    cfg.VoiceSecretKey,
	})
	switch {
	case err == nil:
		voice = vs
	case errors.Is(err, voicestore.ErrNotConfigured):
		log.Debug(ctx, "voice storage not configured, attachments disabled")
	default:
		_ = store.Close()
		return nil, err
	}

	journal := services.NewJournalService(store.Entries, client, analyzer, syncer, runner, voice, log)

	return &App{
		config:  cfg,
		log:     log,
		store:   store,
		client:  client,
		runner:  runner,
		auth:    auth,
		journal: journal,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run restores any previous session, starts the background watchers, and
// enters the REPL. It blocks until the user exits, then drains background
// work before releasing resources.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	profile, err := a.auth.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}
	a.journal.SetProfile(profile)

	go a.auth.WatchAuthEvents(ctx)
	go a.StartSyncWatcher(ctx, a.config.SyncInterval)

	a.Root(ctx)

	cancel()
	a.runner.Wait()
	if a.client != nil {
		_ = a.client.Close()
	}
	_ = a.store.Close()
}

func (a *App) isSignedIn() bool {
	return a.journal.Profile() != nil
}

// StartSyncWatcher periodically pushes pending entries while a user is
// signed in. Each pass gets its own timeout so a hung push cannot stall
// the watcher.
func (a *App) StartSyncWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.isSignedIn() {
				continue
			}
			passCtx, cancel := context.WithTimeout(context.Background(), interval)
			if _, _, err := a.journal.SyncNow(passCtx); err != nil {
				a.log.Warn(passCtx, "background sync failed", "error", err)
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
