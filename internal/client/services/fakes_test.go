package services

import (
	"context"
	"sort"
	"sync"

	"github.com/obexhq/obex/internal/client/analysis"
	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/client/remote"
	"github.com/obexhq/obex/internal/common"
)

// fakeRemote is an in-memory stand-in for the hosted backend.
type fakeRemote struct {
	mu sync.Mutex

	session  *models.AuthSession
	profiles map[string]*models.UserProfile
	events   chan remote.AuthEvent

	signUpSession *models.AuthSession
	signUpErr     error
	signInSession *models.AuthSession
	signInErr     error
	signOutErr    error
	fetchErr      error
	updateErr     error

	fetchCalls    int
	upserted      []string
	deleted       []string
	patches       []remote.ProfilePatch
	failUpsertFor map[string]error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		profiles: make(map[string]*models.UserProfile),
		events:   make(chan remote.AuthEvent, 8),
	}
}

func (f *fakeRemote) SignUp(ctx context.Context, email, password string) (*models.AuthSession, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	f.SetSession(f.signUpSession)
	return f.signUpSession, nil
}

func (f *fakeRemote) SignIn(ctx context.Context, email, password string) (*models.AuthSession, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.SetSession(f.signInSession)
	return f.signInSession, nil
}

func (f *fakeRemote) SignOut(ctx context.Context) error {
	f.SetSession(nil)
	return f.signOutErr
}

func (f *fakeRemote) ResetPassword(ctx context.Context, email string) error { return nil }

func (f *fakeRemote) RefreshSession(ctx context.Context) (*models.AuthSession, error) {
	return f.Session(), nil
}

func (f *fakeRemote) Session() *models.AuthSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeRemote) SetSession(s *models.AuthSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = s
}

func (f *fakeRemote) Subscribe() <-chan remote.AuthEvent { return f.events }

func (f *fakeRemote) FetchProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRemote) InsertProfile(ctx context.Context, p *models.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeRemote) UpdateProfile(ctx context.Context, userID string, patch remote.ProfilePatch) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.patches = append(f.patches, patch)
	p, ok := f.profiles[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	if patch.SelectedPath != nil {
		p.SelectedPath = patch.SelectedPath
	}
	if patch.DisplayName != nil {
		p.DisplayName = patch.DisplayName
	}
	if patch.HasCompletedOnboarding != nil {
		p.HasCompletedOnboarding = *patch.HasCompletedOnboarding
	}
	if patch.CurrentStreak != nil {
		p.CurrentStreak = *patch.CurrentStreak
	}
	if patch.TotalEntries != nil {
		p.TotalEntries = *patch.TotalEntries
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRemote) UpsertEntry(ctx context.Context, e *models.JournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failUpsertFor[e.ID]; ok {
		return err
	}
	f.upserted = append(f.upserted, e.ID)
	return nil
}

func (f *fakeRemote) DeleteEntry(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRemote) Close() error { return nil }

// memEntries is an in-memory entries.Repository.
type memEntries struct {
	mu      sync.Mutex
	byID    map[string]*models.JournalEntry
	created []string
}

func newMemEntries() *memEntries {
	return &memEntries{byID: make(map[string]*models.JournalEntry)}
}

func (m *memEntries) Create(ctx context.Context, e *models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.byID[e.ID] = &cp
	m.created = append(m.created, e.ID)
	return nil
}

func (m *memEntries) GetByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEntries) GetAllByUser(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.JournalEntry
	for _, id := range m.created {
		if e := m.byID[id]; e != nil && e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (m *memEntries) Update(ctx context.Context, e *models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[e.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *e
	m.byID[e.ID] = &cp
	return nil
}

func (m *memEntries) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memEntries) GetAllPending(ctx context.Context, userID string) ([]*models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.JournalEntry
	for _, id := range m.created {
		if e := m.byID[id]; e != nil && e.UserID == userID && e.SyncStatus == models.SyncStatusPending {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memEntries) MarkSynced(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.byID[id]; ok {
		e.SyncStatus = models.SyncStatusSynced
	}
	return nil
}

func (m *memEntries) DeleteSyncedByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.byID {
		if e.UserID == userID && e.SyncStatus == models.SyncStatusSynced {
			delete(m.byID, id)
		}
	}
	return nil
}

// fakePurger records which user's data was purged.
type fakePurger struct {
	purged []string
	err    error
}

func (f *fakePurger) PurgeUserData(ctx context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.purged = append(f.purged, userID)
	return nil
}

// fakeSessions is an in-memory session.Repository.
type fakeSessions struct {
	mu      sync.Mutex
	stored  *models.AuthSession
	saveErr error
}

func (f *fakeSessions) Load(ctx context.Context) (*models.AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored, nil
}

func (f *fakeSessions) Save(ctx context.Context, s *models.AuthSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored = s
	return nil
}

func (f *fakeSessions) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = nil
	return nil
}

// fakeAnalyzer returns a canned result or error.
type fakeAnalyzer struct {
	enabled bool
	result  *analysis.Result
	err     error
	calls   int
}

func (f *fakeAnalyzer) Enabled() bool { return f.enabled }

func (f *fakeAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAnalyzer) AnalyzeMood(ctx context.Context, content string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return analysis.NeutralMood, nil
}

// fakeVoice records uploads and returns a deterministic key.
type fakeVoice struct {
	uploads int
	err     error
}

func (f *fakeVoice) Upload(ctx context.Context, userID, entryID, path string) (string, error) {
	f.uploads++
	if f.err != nil {
		return "", f.err
	}
	return "voice/" + userID + "/" + entryID + ".m4a", nil
}
