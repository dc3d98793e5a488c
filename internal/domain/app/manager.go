package app

import (
	"sort"
	"sync"
	"time"

	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
	"go.uber.org/zap"
)

// Catalog resolves app ids to manifests
type Catalog interface {
	Get(id string) (types.AppManifest, bool)
}

// LaunchHook observes successful launches
type LaunchHook func(appID string, in *types.Intent)

// Manager orchestrates app lifecycle. It is the only owner of the running
// set and of the active app pointer.
type Manager struct {
	mu       sync.RWMutex
	apps     map[string]*types.RunningApp // Protected by mu
	pending  map[string]types.Intent      // Protected by mu
	activeID *string                      // Protected by mu
	hooks    []LaunchHook                 // Protected by mu

	catalog Catalog
	now     func() time.Time
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewManager creates a new app manager backed by catalog
func NewManager(catalog Catalog, log *logging.Logger) *Manager {
	return &Manager{
		apps:    make(map[string]*types.RunningApp),
		pending: make(map[string]types.Intent),
		catalog: catalog,
		now:     time.Now,
		log:     logging.OrNop(log).Named("lifecycle"),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithClock overrides the timestamp source
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// OnLaunch registers a hook called after every successful launch
func (m *Manager) OnLaunch(hook LaunchHook) {
	m.mu.Lock()
	m.hooks = append(m.hooks, hook)
	m.mu.Unlock()
}

// Launch makes appID the active app, creating its running entry if needed.
// A non-nil intent is kept as the app's pending intent until taken; a nil
// intent drops whatever an earlier launch left pending. Ids outside the
// catalog are logged and ignored.
func (m *Manager) Launch(appID string, in *types.Intent) bool {
	manifest, ok := m.catalog.Get(appID)
	if !ok {
		m.unknown("launch", appID)
		return false
	}

	m.mu.Lock()
	now := m.now()
	m.demoteActive(appID)

	app, exists := m.apps[appID]
	if !exists {
		app = &types.RunningApp{Manifest: manifest}
		m.apps[appID] = app
	}
	app.State = types.StateActive
	app.LastActive = now
	m.activeID = &appID

	if in != nil {
		m.pending[appID] = cloneIntent(*in)
	} else {
		delete(m.pending, appID)
	}
	running := len(m.apps)
	hooks := append([]LaunchHook(nil), m.hooks...)
	m.mu.Unlock()

	m.log.Debug("app launched",
		zap.String("app_id", appID),
		zap.Bool("new", !exists),
		zap.Bool("with_intent", in != nil))
	if m.metrics != nil {
		m.metrics.RecordLaunch(appID, running)
	}
	for _, hook := range hooks {
		hook(appID, in)
	}
	return true
}

// Suspend marks a running app suspended. The active pointer is left alone.
func (m *Manager) Suspend(appID string) bool {
	return m.park("suspend", appID, types.StateSuspended)
}

// Background parks a running app in the background state
func (m *Manager) Background(appID string) bool {
	return m.park("background", appID, types.StateBackground)
}

func (m *Manager) park(op, appID string, state types.State) bool {
	if _, ok := m.catalog.Get(appID); !ok {
		m.unknown(op, appID)
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[appID]
	if !ok {
		return false
	}
	app.State = state
	return true
}

// Terminate removes appID from the running set, clearing the active
// pointer if it was the active app
func (m *Manager) Terminate(appID string) bool {
	if _, ok := m.catalog.Get(appID); !ok {
		m.unknown("terminate", appID)
		return false
	}

	m.mu.Lock()
	_, existed := m.apps[appID]
	delete(m.apps, appID)
	delete(m.pending, appID)
	if m.activeID != nil && *m.activeID == appID {
		m.activeID = nil
	}
	running := len(m.apps)
	m.mu.Unlock()

	if existed {
		m.log.Debug("app terminated", zap.String("app_id", appID))
	}
	if m.metrics != nil {
		m.metrics.SetAppsRunning(running)
	}
	return existed
}

// SetActive moves the active pointer to appID, or clears it when appID is
// nil. A running target is reactivated; a known but not running target only
// receives the pointer. Ids outside the catalog are rejected.
func (m *Manager) SetActive(appID *string) bool {
	if appID != nil {
		if _, ok := m.catalog.Get(*appID); !ok {
			m.unknown("set_active", *appID)
			return false
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if appID == nil {
		m.demoteActive("")
		m.activeID = nil
		return true
	}

	id := *appID
	m.demoteActive(id)
	if app, ok := m.apps[id]; ok {
		app.State = types.StateActive
		app.LastActive = m.now()
	}
	m.activeID = &id
	return true
}

// demoteActive suspends the currently active app unless it is keep.
// Caller must hold mu.
func (m *Manager) demoteActive(keep string) {
	if m.activeID == nil || *m.activeID == keep {
		return
	}
	if current, ok := m.apps[*m.activeID]; ok && current.State == types.StateActive {
		current.State = types.StateSuspended
	}
}

// ActiveAppID returns the active pointer
func (m *Manager) ActiveAppID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.activeID == nil {
		return "", false
	}
	return *m.activeID, true
}

// ActiveApp resolves the active pointer through the catalog
func (m *Manager) ActiveApp() (types.AppManifest, bool) {
	id, ok := m.ActiveAppID()
	if !ok {
		return types.AppManifest{}, false
	}
	return m.catalog.Get(id)
}

// Get retrieves a running app by id
func (m *Manager) Get(appID string) (types.RunningApp, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.apps[appID]
	if !ok {
		return types.RunningApp{}, false
	}
	return *app, true
}

// List returns running apps, most recently active first, optionally
// filtered by state
func (m *Manager) List(state *types.State) []types.RunningApp {
	m.mu.RLock()
	apps := make([]types.RunningApp, 0, len(m.apps))
	for _, app := range m.apps {
		if state == nil || app.State == *state {
			apps = append(apps, *app)
		}
	}
	m.mu.RUnlock()

	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].LastActive.Equal(apps[j].LastActive) {
			return apps[i].LastActive.After(apps[j].LastActive)
		}
		return apps[i].Manifest.ID < apps[j].Manifest.ID
	})
	return apps
}

// PendingIntent returns the intent attached to appID's last launch
func (m *Manager) PendingIntent(appID string) (types.Intent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	in, ok := m.pending[appID]
	if !ok {
		return types.Intent{}, false
	}
	return cloneIntent(in), true
}

// TakePendingIntent returns and clears appID's pending intent
func (m *Manager) TakePendingIntent(appID string) (types.Intent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	in, ok := m.pending[appID]
	if ok {
		delete(m.pending, appID)
	}
	return in, ok
}

// Stats returns manager statistics
func (m *Manager) Stats() types.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats types.Stats
	for _, app := range m.apps {
		stats.RunningApps++
		switch app.State {
		case types.StateActive:
			stats.ActiveApps++
		case types.StateSuspended:
			stats.SuspendedApps++
		case types.StateBackground:
			stats.BackgroundApps++
		}
	}
	if m.activeID != nil {
		id := *m.activeID
		stats.ActiveAppID = &id
	}
	return stats
}

func (m *Manager) unknown(op, appID string) {
	m.log.Error("lifecycle operation on unknown app",
		zap.String("op", op),
		zap.String("app_id", appID),
		zap.Error(hosterr.NewUnknownApp(appID)))
}

func cloneIntent(in types.Intent) types.Intent {
	if in.Extras != nil {
		extras := make(map[string]any, len(in.Extras))
		for k, v := range in.Extras {
			extras[k] = v
		}
		in.Extras = extras
	}
	return in
}
