package session

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quranstudy/internal/auth"
	"quranstudy/internal/common"
	"quranstudy/internal/logging"
	"quranstudy/internal/models"
	"quranstudy/internal/store/local"
)

// fakeProvider drives identity changes by hand.
type fakeProvider struct {
	auth.Provider
	current  *auth.Identity
	callback func(*auth.Identity)
}

func (p *fakeProvider) Current() *auth.Identity { return p.current }

func (p *fakeProvider) OnChange(fn func(*auth.Identity)) {
	p.callback = fn
	fn(p.current)
}

func (p *fakeProvider) change(id *auth.Identity) {
	p.current = id
	p.callback(id)
}

func (p *fakeProvider) SignUp(ctx context.Context, email, password, displayName string) (*auth.Identity, error) {
	id := &auth.Identity{UID: "uid-new", DisplayName: displayName, Email: email}
	p.change(id)
	return id, nil
}

// fakeRemote records calls and fails on demand. updateFn, when set,
// runs before each UpdateField is recorded and may block or fail it.
type fakeRemote struct {
	mu sync.Mutex

	profile   *models.UserProfile
	getErr    error
	updateErr error
	updateFn  func(k models.Kind) error

	updates []updateCall
	merges  []models.Collections

	onChange func(*models.UserProfile, error)
	stopped  bool
	creates  int
}

type updateCall struct {
	uid   string
	kind  models.Kind
	value any
}

func (r *fakeRemote) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.profile == nil {
		return nil, common.ErrNotFound
	}
	p := *r.profile
	p.UID = uid
	return &p, nil
}

func (r *fakeRemote) Create(ctx context.Context, uid, displayName, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	return nil
}

func (r *fakeRemote) UpdateField(ctx context.Context, uid string, k models.Kind, value any) error {
	if r.updateFn != nil {
		if err := r.updateFn(k); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates = append(r.updates, updateCall{uid: uid, kind: k, value: value})
	return nil
}

func (r *fakeRemote) Merge(ctx context.Context, uid string, c models.Collections) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merges = append(r.merges, c.Clone())
	return nil
}

func (r *fakeRemote) Subscribe(ctx context.Context, uid string, onChange func(*models.UserProfile, error)) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = onChange
	return func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
	}, nil
}

func (r *fakeRemote) Close() error { return nil }

func (r *fakeRemote) lastUpdate(t *testing.T) updateCall {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.updates)
	return r.updates[len(r.updates)-1]
}

func setupLocal(t *testing.T) *local.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS user_state (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`)
	require.NoError(t, err)

	return local.NewRepository(db, testLogger())
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupManager(t *testing.T, provider *fakeProvider, rem *fakeRemote, opts ...Option) *Manager {
	t.Helper()
	m := NewManager(provider, setupLocal(t), rem, testLogger(), opts...)
	m.Start(context.Background())
	t.Cleanup(m.Close)
	return m
}

var testUser = &auth.Identity{UID: "uid-1", DisplayName: "Aisha", Email: "aisha@example.com"}

func TestManager_StartAnonymous(t *testing.T) {
	m := setupManager(t, &fakeProvider{}, &fakeRemote{})

	assert.Equal(t, StateReadyAnonymous, m.State())
	assert.Nil(t, m.Identity())
	assert.Equal(t, models.DefaultCollections(), m.Snapshot())
}

func TestManager_AnonymousSavePersistsLocally(t *testing.T) {
	rem := &fakeRemote{}
	m := setupManager(t, &fakeProvider{}, rem)
	ctx := context.Background()

	plans := []models.Plan{{Name: "Morning", SurahNum: 18, SurahName: "Al-Kahf", Pace: 5}}
	require.NoError(t, m.SaveData(ctx, models.KindPlans, plans))

	assert.Equal(t, plans, m.Snapshot().Plans)
	assert.Equal(t, SyncClean, m.SyncStatus(models.KindPlans))
	assert.Empty(t, rem.updates, "anonymous saves must not touch the remote store")
}

func TestManager_AuthenticatedSavePersistsRemotely(t *testing.T) {
	rem := &fakeRemote{}
	m := setupManager(t, &fakeProvider{current: testUser}, rem)
	ctx := context.Background()

	require.NoError(t, m.SaveData(ctx, models.KindQuizScore, 5))
	require.NoError(t, m.SaveData(ctx, models.KindQuizScore, 6))

	assert.Equal(t, 6, m.Snapshot().QuizScore)
	last := rem.lastUpdate(t)
	assert.Equal(t, "uid-1", last.uid)
	assert.Equal(t, models.KindQuizScore, last.kind)
	assert.Equal(t, 6, last.value)
}

func TestManager_SaveRejectsDerivedAndUnknownKinds(t *testing.T) {
	m := setupManager(t, &fakeProvider{}, &fakeRemote{})
	ctx := context.Background()

	err := m.SaveData(ctx, models.KindEarnedBadges, []int{1})
	assert.ErrorIs(t, err, common.ErrValidation)

	err = m.SaveData(ctx, models.Kind("nope"), 1)
	assert.Error(t, err)
}

func TestManager_RemoteFailureKeepsOptimisticState(t *testing.T) {
	rem := &fakeRemote{updateErr: errors.New("boom")}
	m := setupManager(t, &fakeProvider{current: testUser}, rem)
	ctx := context.Background()

	theme := models.ThemeDark
	err := m.SaveData(ctx, models.KindTheme, theme)
	assert.Error(t, err)

	assert.Equal(t, theme, m.Snapshot().Theme, "mirror must not roll back")
	assert.Equal(t, SyncFailed, m.SyncStatus(models.KindTheme))
}

func TestManager_StaleDispatchCannotOverrideSyncStatus(t *testing.T) {
	rem := &fakeRemote{}

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	rem.updateFn = func(k models.Kind) error {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return errors.New("late failure")
		}
		return nil
	}

	m := setupManager(t, &fakeProvider{current: testUser}, rem)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() { slow <- m.SaveData(ctx, models.KindQuizScore, 5) }()
	<-started

	// A second save settles while the first is still in flight.
	require.NoError(t, m.SaveData(ctx, models.KindQuizScore, 6))
	assert.Equal(t, SyncClean, m.SyncStatus(models.KindQuizScore))

	close(release)
	assert.Error(t, <-slow, "the stale save still reports its own failure to its caller")

	assert.Equal(t, 6, m.Snapshot().QuizScore)
	assert.Equal(t, SyncClean, m.SyncStatus(models.KindQuizScore),
		"an outdated dispatch outcome must not overwrite the newer save's status")
}

func TestManager_BadgeSaveDerivesEarned(t *testing.T) {
	m := setupManager(t, &fakeProvider{current: testUser}, &fakeRemote{})
	ctx := context.Background()

	awarded, err := m.AwardBadge(ctx, 114, "An-Nas")
	require.NoError(t, err)
	assert.True(t, awarded)

	snap := m.Snapshot()
	require.Len(t, snap.Badges, 1)
	assert.Equal(t, []int{114}, snap.EarnedBadges)

	// Second completion of the same surah is a no-op.
	awarded, err = m.AwardBadge(ctx, 114, "An-Nas")
	require.NoError(t, err)
	assert.False(t, awarded)
	assert.Len(t, m.Snapshot().Badges, 1)
}

func TestManager_AddBookmarkRejectsDuplicates(t *testing.T) {
	m := setupManager(t, &fakeProvider{}, &fakeRemote{})
	ctx := context.Background()

	b := models.Bookmark{Surah: "Al-Fatiha", Ayah: 1, Text: "..."}
	require.NoError(t, m.AddBookmark(ctx, b))

	err := m.AddBookmark(ctx, b)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Len(t, m.Snapshot().Bookmarks, 1)
}

func TestManager_LoginPromotesLocalDataWhenRemoteEmpty(t *testing.T) {
	provider := &fakeProvider{}
	rem := &fakeRemote{}
	m := setupManager(t, provider, rem)
	ctx := context.Background()

	plans := []models.Plan{{Name: "Juz Amma", SurahNum: 78, SurahName: "An-Naba", Pace: 3}}
	require.NoError(t, m.SaveData(ctx, models.KindPlans, plans))
	require.NoError(t, m.SaveData(ctx, models.KindQuizScore, 4))

	provider.change(testUser)

	assert.Equal(t, StateReadyAuthenticated, m.State())
	snap := m.Snapshot()
	assert.Equal(t, plans, snap.Plans)
	assert.Equal(t, 4, snap.QuizScore)

	require.Len(t, rem.merges, 1, "reconciliation writes back exactly once")
	assert.Equal(t, plans, rem.merges[0].Plans)
}

func TestManager_LoginRemoteNonEmptyWins(t *testing.T) {
	provider := &fakeProvider{}
	remotePlans := []models.Plan{{Name: "Khatm", SurahNum: 1, SurahName: "Al-Fatiha", Pace: 10}}
	rem := &fakeRemote{profile: &models.UserProfile{
		Collections: models.Collections{
			Plans:     remotePlans,
			QuizScore: 9,
			Theme:     models.ThemeDark,
		},
	}}
	m := setupManager(t, provider, rem)
	ctx := context.Background()

	require.NoError(t, m.SaveData(ctx, models.KindPlans, []models.Plan{{Name: "local", SurahNum: 2, SurahName: "Al-Baqara", Pace: 1}}))
	require.NoError(t, m.SaveData(ctx, models.KindQuizScore, 2))
	require.NoError(t, m.SaveData(ctx, models.KindTheme, models.ThemeLight))

	provider.change(testUser)

	snap := m.Snapshot()
	assert.Equal(t, remotePlans, snap.Plans)
	assert.Equal(t, 9, snap.QuizScore)
	assert.Equal(t, models.ThemeDark, snap.Theme)
}

func TestManager_SignUpProvisionsProfile(t *testing.T) {
	provider := &fakeProvider{}
	rem := &fakeRemote{}
	m := setupManager(t, provider, rem)
	ctx := context.Background()

	id, err := m.SignUp(ctx, "new@example.com", "secret1", "New User")
	require.NoError(t, err)
	assert.Equal(t, "uid-new", id.UID)

	assert.Equal(t, StateReadyAuthenticated, m.State())
	assert.Equal(t, 1, rem.creates, "profile document is created exactly once, at signup")

	// A plain sign-in must not provision.
	provider.change(nil)
	provider.change(testUser)
	assert.Equal(t, 1, rem.creates)
}

func TestManager_SignOutRepopulatesFromLocal(t *testing.T) {
	provider := &fakeProvider{}
	rem := &fakeRemote{}
	m := setupManager(t, provider, rem)
	ctx := context.Background()

	bookmarks := []models.Bookmark{{Surah: "Ya-Sin", Ayah: 9}}
	require.NoError(t, m.SaveData(ctx, models.KindBookmarks, bookmarks))

	provider.change(testUser)
	require.NoError(t, m.SaveData(ctx, models.KindQuizScore, 7))

	provider.change(nil)

	assert.Equal(t, StateReadyAnonymous, m.State())
	snap := m.Snapshot()
	assert.Equal(t, bookmarks, snap.Bookmarks, "local data survives the authenticated session")
	assert.Equal(t, 0, snap.QuizScore, "authenticated-session data does not leak into anonymous state")
}

func TestManager_FetchFailureServesLocalWithoutWriteBack(t *testing.T) {
	provider := &fakeProvider{}
	rem := &fakeRemote{getErr: errors.New("unavailable")}
	m := setupManager(t, provider, rem)
	ctx := context.Background()

	mistakes := []models.Mistake{{Question: "q", Correct: "a", Your: "b"}}
	require.NoError(t, m.SaveData(ctx, models.KindMistakes, mistakes))

	provider.change(testUser)

	assert.Equal(t, StateReadyAuthenticated, m.State())
	assert.Equal(t, mistakes, m.Snapshot().Mistakes)
	assert.Empty(t, rem.merges, "unknown remote state must not be overwritten")
	assert.Equal(t, SyncFailed, m.SyncStatus(models.KindMistakes))
}

func TestManager_SnapshotOverridesMirror(t *testing.T) {
	provider := &fakeProvider{current: testUser}
	rem := &fakeRemote{}
	m := setupManager(t, provider, rem, WithRealtime())
	ctx := context.Background()

	require.NoError(t, m.SaveData(ctx, models.KindQuizScore, 3))
	require.NotNil(t, rem.onChange)

	pushed := &models.UserProfile{UID: "uid-1", Collections: models.Collections{
		QuizScore: 42,
		Theme:     models.ThemeDark,
	}}
	rem.onChange(pushed, nil)

	snap := m.Snapshot()
	assert.Equal(t, 42, snap.QuizScore)
	assert.Equal(t, SyncClean, m.SyncStatus(models.KindQuizScore))
}

func TestManager_SignOutStopsSubscription(t *testing.T) {
	provider := &fakeProvider{current: testUser}
	rem := &fakeRemote{}
	m := setupManager(t, provider, rem, WithRealtime())

	require.NotNil(t, rem.onChange)
	provider.change(nil)

	assert.True(t, rem.stopped)
	assert.Equal(t, StateReadyAnonymous, m.State())

	// A stale push after sign-out must not resurrect remote state.
	rem.onChange(&models.UserProfile{UID: "uid-1", Collections: models.Collections{QuizScore: 99}}, nil)
	assert.Equal(t, 0, m.Snapshot().QuizScore)
}

func TestReconcile(t *testing.T) {
	localCols := models.Collections{
		Plans:     []models.Plan{{Name: "local", SurahNum: 2, SurahName: "Al-Baqara", Pace: 1}},
		Badges:    []models.Badge{{SurahNum: 1, SurahName: "Al-Fatiha", Medal: "🥇"}},
		QuizScore: 3,
		Theme:     models.ThemeDark,
	}
	remoteCols := models.Collections{
		Bookmarks: []models.Bookmark{{Surah: "Maryam", Ayah: 1}},
	}

	merged := reconcile(localCols, remoteCols)

	assert.Equal(t, localCols.Plans, merged.Plans, "empty remote kind promotes local")
	assert.Equal(t, remoteCols.Bookmarks, merged.Bookmarks, "non-empty remote kind wins")
	assert.Equal(t, 3, merged.QuizScore)
	assert.Equal(t, models.ThemeDark, merged.Theme)
	assert.Equal(t, []int{1}, merged.EarnedBadges, "earned list is recomputed from merged badges")
	assert.Equal(t, []models.Mistake{}, merged.Mistakes, "untouched kinds come back as empty, not nil")
}

func TestReconcile_ThemeDefaultsWhenNeverChosen(t *testing.T) {
	merged := reconcile(models.Collections{}, models.Collections{})
	assert.Equal(t, models.ThemeLight, merged.Theme)
}
