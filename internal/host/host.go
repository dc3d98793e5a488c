// Package host assembles the app kernel: catalog, lifecycle registry,
// handler directory and dispatcher, plus the system services handed to
// every mounted app.
//
// A Host is created at startup and closed at shutdown. Nothing in it is
// package-level state; tests build as many hosts as they like.
package host

import (
	"context"
	"errors"

	"github.com/kwararru/shell/internal/domain/analytics"
	"github.com/kwararru/shell/internal/domain/app"
	"github.com/kwararru/shell/internal/domain/catalog"
	"github.com/kwararru/shell/internal/domain/intent"
	"github.com/kwararru/shell/internal/domain/review"
	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	"github.com/kwararru/shell/internal/providers/permissions"
	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
	"github.com/kwararru/shell/internal/store"
	"go.uber.org/zap"
)

// Options configures a Host
type Options struct {
	// Catalog defaults to a catalog holding the built-in manifests
	Catalog *catalog.Catalog
	// ManifestDir, when set, is scanned for extra manifests after the builtins
	ManifestDir string
	// Views attaches entry points to manifests by app id
	Views map[string]types.EntryPoint
	// Store defaults to an in-memory store
	Store store.Store
	// DeviceGate decides microphone and camera requests
	DeviceGate permissions.DeviceGate
	Metrics    *monitoring.Metrics
	Logger     *logging.Logger
}

// SystemServices are the host services an app may use
type SystemServices struct {
	Permissions *permissions.Scoped
	Store       store.Store
	Reviews     *review.Tracker
	Analytics   *analytics.Service
}

// AppProps is what an app's entry point receives on mount. The app reacts
// to InitialIntent only while IsActive reports true and emits outbound
// intents through OnNavigate.
type AppProps struct {
	AppID         string
	Services      SystemServices
	InitialIntent *types.Intent
	OnNavigate    func(types.Intent) intent.Resolution
	IsActive      func() bool
}

// Host owns the app kernel and its services
type Host struct {
	Catalog     *catalog.Catalog
	Lifecycle   *app.Manager
	Directory   *intent.Directory
	Dispatcher  *intent.Dispatcher
	Permissions *permissions.Service
	Store       store.Store
	Reviews     *review.Tracker
	Analytics   *analytics.Service

	metrics *monitoring.Metrics
	log     *logging.Logger
}

// New builds a host from opts
func New(opts Options) (*Host, error) {
	log := logging.OrNop(opts.Logger)

	cat := opts.Catalog
	if cat == nil {
		cat = catalog.New(log)
		for _, m := range catalog.Builtins() {
			if ep, ok := opts.Views[m.ID]; ok {
				m.EntryPoint = ep
			}
			if err := cat.Register(m); err != nil {
				return nil, err
			}
		}
	}
	if opts.ManifestDir != "" {
		if _, err := catalog.NewLoader(cat, log).LoadDir(opts.ManifestDir); err != nil {
			return nil, err
		}
	}

	st := opts.Store
	if st == nil {
		st = store.NewMemory()
	}

	h := &Host{
		Catalog:   cat,
		Directory: intent.NewDirectory(),
		Store:     st,
		Analytics: analytics.NewService(st),
		metrics:   opts.Metrics,
		log:       log.Named("host"),
	}

	h.Lifecycle = app.NewManager(cat, log).WithMetrics(opts.Metrics)
	h.Dispatcher = intent.NewDispatcher(cat, h.Directory, h.Lifecycle, log).WithMetrics(opts.Metrics)
	h.Permissions = permissions.NewService(opts.DeviceGate, cat.Get, log)
	h.Reviews = review.NewTracker(st, review.WithLogger(log), review.WithMetrics(opts.Metrics))

	h.Lifecycle.OnLaunch(h.activate)

	if h.metrics != nil {
		h.metrics.SetCatalogManifests(cat.Len())
	}
	h.log.Info("host ready",
		zap.Int("manifests", cat.Len()))
	return h, nil
}

// activate builds the app's view on its first launch
func (h *Host) activate(appID string, _ *types.Intent) {
	entry, ok := h.Catalog.Entry(appID)
	if !ok || entry.Built() {
		return
	}
	if _, err := entry.Resolve(); err != nil && !errors.Is(err, catalog.ErrNoEntryPoint) {
		h.log.Error("entry point failed", zap.String("app_id", appID), zap.Error(err))
	}
}

// Navigate routes an intent emitted by an app or the shell. An intent a
// live handler already received is not left pending for the next mount.
func (h *Host) Navigate(in types.Intent) intent.Resolution {
	res := h.Dispatcher.Dispatch(in)
	if res.Delivered {
		h.Lifecycle.TakePendingIntent(res.AppID)
	}
	return res
}

// Mount registers a live handler for appID and returns its props. The
// pending intent from the launch that brought the app up, if any, becomes
// InitialIntent and is consumed. The returned release func unregisters
// the handler unless a later Mount replaced it.
func (h *Host) Mount(appID string, handler intent.Handler) (AppProps, func(), error) {
	if !h.Catalog.Has(appID) {
		return AppProps{}, nil, hosterr.NewUnknownApp(appID)
	}

	release, err := h.Directory.Register(appID, handler)
	if err != nil {
		return AppProps{}, nil, hosterr.NewInvalidRequest(err.Error())
	}
	h.syncHandlers()

	props := h.props(appID)
	if in, ok := h.Lifecycle.TakePendingIntent(appID); ok {
		props.InitialIntent = &in
	}

	h.log.Debug("app mounted",
		zap.String("app_id", appID),
		zap.Bool("initial_intent", props.InitialIntent != nil))

	return props, func() {
		release()
		h.syncHandlers()
	}, nil
}

// Unmount drops appID's live handler
func (h *Host) Unmount(appID string) {
	h.Directory.Unregister(appID)
	h.syncHandlers()
}

// Props returns the props of appID without touching its pending intent
func (h *Host) Props(appID string) (AppProps, error) {
	if !h.Catalog.Has(appID) {
		return AppProps{}, hosterr.NewUnknownApp(appID)
	}
	props := h.props(appID)
	if in, ok := h.Lifecycle.PendingIntent(appID); ok {
		props.InitialIntent = &in
	}
	return props, nil
}

func (h *Host) props(appID string) AppProps {
	return AppProps{
		AppID: appID,
		Services: SystemServices{
			Permissions: h.Permissions.For(appID),
			Store:       h.Store,
			Reviews:     h.Reviews,
			Analytics:   h.Analytics,
		},
		OnNavigate: h.Navigate,
		IsActive: func() bool {
			id, ok := h.Lifecycle.ActiveAppID()
			return ok && id == appID
		},
	}
}

func (h *Host) syncHandlers() {
	if h.metrics != nil {
		h.metrics.SetLiveHandlers(h.Directory.Len())
	}
}

// Ready checks that the store answers
func (h *Host) Ready(ctx context.Context) error {
	_, err := h.Store.ListDecks(ctx)
	return err
}

// Close releases the store
func (h *Host) Close() error {
	for _, id := range h.Directory.IDs() {
		h.Directory.Unregister(id)
	}
	return h.Store.Close()
}
