// Package session owns the in-memory mirror of the seven user-state
// collections and decides, for every write, where it is persisted: the
// local store while anonymous, the remote store while authenticated.
// The mirror is updated synchronously and optimistically; persistence
// failures are logged and reported but never roll the mirror back.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"quranstudy/internal/auth"
	"quranstudy/internal/badges"
	"quranstudy/internal/common"
	"quranstudy/internal/logging"
	"quranstudy/internal/models"
	"quranstudy/internal/store/local"
	"quranstudy/internal/store/remote"
)

// State is the session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReadyAnonymous
	StateReadyAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReadyAnonymous:
		return "anonymous"
	case StateReadyAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// SyncState tracks, per collection kind, whether the last persistence
// attempt settled. A failed flag means mirror and store have diverged;
// the mirror stays authoritative for the rest of the session.
type SyncState int

const (
	SyncClean SyncState = iota
	SyncPending
	SyncFailed
)

// Manager is the session state manager. All exported methods are safe
// for concurrent use; within one collection kind the last writer wins.
type Manager struct {
	provider auth.Provider
	local    *local.Repository
	remote   remote.Store
	log      logging.Logger
	watch    bool

	mu           sync.Mutex
	state        State
	identity     *auth.Identity
	mirror       models.Collections
	syncStatus   map[models.Kind]SyncState
	syncSeq      map[models.Kind]uint64
	unsubscribe  func()
	provisioning bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithRealtime enables the push subscription on the remote profile
// document while authenticated.
func WithRealtime() Option {
	return func(m *Manager) { m.watch = true }
}

func NewManager(provider auth.Provider, localRepo *local.Repository, remoteStore remote.Store, log logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		provider:   provider,
		local:      localRepo,
		remote:     remoteStore,
		log:        log,
		state:      StateUninitialized,
		mirror:     models.DefaultCollections(),
		syncStatus: make(map[models.Kind]SyncState),
		syncSeq:    make(map[models.Kind]uint64),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to identity changes and performs the initial load.
// The provider invokes the callback synchronously with the current
// identity, so the session is Ready when Start returns unless the
// provider defers its first notification.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.state = StateLoading
	m.mu.Unlock()

	m.provider.OnChange(func(id *auth.Identity) {
		m.handleIdentity(ctx, id)
	})
}

// Close releases the push subscription, if any. In-flight writes are
// not cancelled; their outcome is logged and otherwise ignored.
func (m *Manager) Close() {
	m.mu.Lock()
	stop := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Identity() *auth.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Snapshot returns a deep copy of the mirror for UI reads.
func (m *Manager) Snapshot() models.Collections {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mirror.Clone()
}

// SyncStatus reports whether the last persistence attempt for the kind
// settled cleanly.
func (m *Manager) SyncStatus(k models.Kind) SyncState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncStatus[k]
}

// SignUp creates the account and provisions its profile document. The
// provider fires the identity change synchronously, so the document is
// created inside the resulting login transition, before reconciliation
// touches it.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName string) (*auth.Identity, error) {
	m.mu.Lock()
	m.provisioning = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.provisioning = false
		m.mu.Unlock()
	}()

	return m.provider.SignUp(ctx, email, password, displayName)
}

// SaveData is the single entry point every feature uses to change user
// state. The mirror advances before persistence is attempted; a remote
// failure is returned for surfacing but the optimistic state stands.
// The next successful save of the same kind carries the full value.
func (m *Manager) SaveData(ctx context.Context, k models.Kind, value any) error {
	if !k.Valid() {
		return models.ErrUnknownKind(k)
	}
	if k == models.KindEarnedBadges {
		return fmt.Errorf("%w: earnedBadges is derived from badges", common.ErrValidation)
	}

	m.mu.Lock()
	if err := m.mirror.Set(k, value); err != nil {
		m.mu.Unlock()
		return err
	}
	if k == models.KindBadges {
		m.mirror.EarnedBadges = badges.DeriveEarned(m.mirror.Badges)
	}
	id := m.identity
	m.syncSeq[k]++
	seq := m.syncSeq[k]
	m.syncStatus[k] = SyncPending
	m.mu.Unlock()

	if id == nil {
		// Local writes never fail by contract; errors are swallowed
		// and logged inside the repository.
		m.local.Write(ctx, k, value)
		m.setSync(k, seq, SyncClean)
		return nil
	}

	if err := m.remote.UpdateField(ctx, id.UID, k, value); err != nil {
		m.setSync(k, seq, SyncFailed)
		m.log.Error(ctx, "remote write failed, keeping optimistic state",
			"kind", string(k), "uid", id.UID, "error", err)
		return err
	}
	m.setSync(k, seq, SyncClean)
	return nil
}

// AddBookmark appends a bookmark unless the same surah+ayah is already
// bookmarked. Duplicate rejection lives here, in the writer, not in
// the stores.
func (m *Manager) AddBookmark(ctx context.Context, b models.Bookmark) error {
	if b.Ayah < 1 {
		return fmt.Errorf("%w: ayah number must be at least 1", common.ErrValidation)
	}

	cur := m.Snapshot().Bookmarks
	for _, existing := range cur {
		if existing.Surah == b.Surah && existing.Ayah == b.Ayah {
			return fmt.Errorf("%w: ayah already bookmarked", common.ErrValidation)
		}
	}
	return m.SaveData(ctx, models.KindBookmarks, append(cur, b))
}

// AwardBadge awards the completion badge for a surah if not already
// earned. Returns false with no error when the badge already exists;
// the completion trigger fires on every full read of a surah.
func (m *Manager) AwardBadge(ctx context.Context, surahNum int, surahName string) (bool, error) {
	snap := m.Snapshot()
	newBadges, _, awarded := badges.Award(surahNum, surahName, snap.Badges, snap.EarnedBadges)
	if !awarded {
		return false, nil
	}
	return true, m.SaveData(ctx, models.KindBadges, newBadges)
}

// setSync records the outcome of one dispatch. A dispatch that is no
// longer the newest for its kind is ignored: the mirror has moved on
// and a later save already owns the status.
func (m *Manager) setSync(k models.Kind, seq uint64, s SyncState) {
	m.mu.Lock()
	if m.syncSeq[k] == seq {
		m.syncStatus[k] = s
	}
	m.mu.Unlock()
}

func (m *Manager) handleIdentity(ctx context.Context, id *auth.Identity) {
	if id == nil {
		m.enterAnonymous(ctx)
		return
	}
	m.enterAuthenticated(ctx, id)
}

// enterAnonymous discards the mirror and repopulates it from the local
// store. Runs on start without a user and on sign-out; the abandoned
// remote data is not consulted.
func (m *Manager) enterAnonymous(ctx context.Context) {
	m.mu.Lock()
	m.state = StateLoading
	m.identity = nil
	stop := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if stop != nil {
		stop()
	}

	c := m.local.ReadAll(ctx)

	m.mu.Lock()
	m.mirror = c
	m.resetSyncLocked()
	m.state = StateReadyAnonymous
	m.mu.Unlock()

	m.log.Info(ctx, "session ready", "mode", "anonymous")
}

// enterAuthenticated fetches the remote profile, reconciles local-only
// data into it, and populates the mirror from the result. The mirror is
// not Ready until reconciliation has run.
func (m *Manager) enterAuthenticated(ctx context.Context, id *auth.Identity) {
	m.mu.Lock()
	m.state = StateLoading
	m.identity = id
	provisioning := m.provisioning
	stop := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if stop != nil {
		stop()
	}

	if provisioning {
		// Fresh signup: the profile document does not exist yet. A
		// failure here is tolerable, the reconciliation merge below
		// upserts.
		if err := m.remote.Create(ctx, id.UID, id.DisplayName, id.Email); err != nil {
			m.log.Warn(ctx, "profile provisioning failed", "uid", id.UID, "error", err)
		}
	}

	var remoteCols models.Collections
	fetchFailed := false

	profile, err := m.remote.Get(ctx, id.UID)
	switch {
	case err == nil:
		remoteCols = profile.Collections
	case errors.Is(err, common.ErrNotFound):
		// Absent profile means use defaults; the merge below will
		// upsert the document.
	default:
		// With the remote state unknown, promoting local data could
		// overwrite it. Serve local data for availability and skip the
		// write-back; every kind is flagged as diverged.
		fetchFailed = true
		m.log.Error(ctx, "remote profile fetch failed", "uid", id.UID, "error", err)
	}

	localCols := m.local.ReadAll(ctx)
	merged := reconcile(localCols, remoteCols)

	if !fetchFailed {
		if err := m.remote.Merge(ctx, id.UID, merged); err != nil {
			m.log.Error(ctx, "reconciliation write-back failed", "uid", id.UID, "error", err)
			fetchFailed = true
		}
	}

	m.mu.Lock()
	m.mirror = merged
	m.resetSyncLocked()
	if fetchFailed {
		for _, k := range models.AllKinds() {
			m.syncStatus[k] = SyncFailed
		}
	}
	m.state = StateReadyAuthenticated
	m.mu.Unlock()

	m.log.Info(ctx, "session ready", "mode", "authenticated", "uid", id.UID)

	if m.watch {
		m.subscribe(ctx, id.UID)
	}
}

func (m *Manager) subscribe(ctx context.Context, uid string) {
	stop, err := m.remote.Subscribe(ctx, uid, m.onSnapshot)
	if err != nil {
		m.log.Warn(ctx, "profile subscription unavailable", "uid", uid, "error", err)
		return
	}

	m.mu.Lock()
	if m.identity == nil || m.identity.UID != uid {
		// Signed out while the subscription was being set up.
		m.mu.Unlock()
		stop()
		return
	}
	m.unsubscribe = stop
	m.mu.Unlock()
}

// onSnapshot handles out-of-band remote changes. This is the one case
// where the store overrides the mirror: the pushed profile replaces it
// wholesale.
func (m *Manager) onSnapshot(p *models.UserProfile, err error) {
	if err != nil {
		m.log.Warn(context.Background(), "profile snapshot error", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReadyAuthenticated || m.identity == nil || m.identity.UID != p.UID {
		return
	}
	m.mirror = p.Collections.Clone()
	m.resetSyncLocked()
}

// resetSyncLocked marks every kind clean and invalidates in-flight
// dispatches, so a write outliving an identity transition cannot touch
// the new session's status.
func (m *Manager) resetSyncLocked() {
	for _, k := range models.AllKinds() {
		m.syncStatus[k] = SyncClean
		m.syncSeq[k]++
	}
}
