package intent

import (
	"fmt"

	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	"github.com/kwararru/shell/internal/shared/types"
	"go.uber.org/zap"
)

// Catalog is the manifest source the dispatcher matches against
type Catalog interface {
	List() []types.AppManifest
}

// Launcher brings a resolved app to the foreground with the intent attached
type Launcher interface {
	Launch(appID string, in *types.Intent) bool
}

// Resolution describes where an intent went
type Resolution struct {
	AppID     string `json:"app_id,omitempty"`
	Resolved  bool   `json:"resolved"`
	Explicit  bool   `json:"explicit"`
	Delivered bool   `json:"delivered"`
	Launched  bool   `json:"launched"`
}

// Outcome labels the resolution for metrics and logs
func (r Resolution) Outcome() string {
	switch {
	case !r.Resolved:
		return "unresolved"
	case r.Explicit:
		return "explicit"
	default:
		return "matched"
	}
}

// Dispatcher resolves intents and delivers them
type Dispatcher struct {
	catalog   Catalog
	directory *Directory
	launcher  Launcher
	log       *logging.Logger
	metrics   *monitoring.Metrics
}

// NewDispatcher creates a dispatcher over the given catalog, handler
// directory and lifecycle launcher
func NewDispatcher(catalog Catalog, directory *Directory, launcher Launcher, log *logging.Logger) *Dispatcher {
	return &Dispatcher{
		catalog:   catalog,
		directory: directory,
		launcher:  launcher,
		log:       logging.OrNop(log).Named("dispatcher"),
	}
}

// WithMetrics adds metrics tracking to the dispatcher
func (d *Dispatcher) WithMetrics(metrics *monitoring.Metrics) *Dispatcher {
	d.metrics = metrics
	return d
}

// Resolve picks the target app for in without side effects
func (d *Dispatcher) Resolve(in types.Intent) (string, bool) {
	id, _, ok := d.resolve(in)
	return id, ok
}

func (d *Dispatcher) resolve(in types.Intent) (appID string, explicit bool, ok bool) {
	if in.TargetApp != "" && d.directory.Has(in.TargetApp) {
		return in.TargetApp, true, true
	}
	appID, ok = FirstMatch(d.catalog.List(), in)
	return appID, false, ok
}

// Dispatch resolves in, hands it to the target's live handler when one is
// mounted and launches the target with the intent pending. An intent no
// app claims is logged and dropped.
func (d *Dispatcher) Dispatch(in types.Intent) Resolution {
	appID, explicit, ok := d.resolve(in)
	res := Resolution{AppID: appID, Resolved: ok, Explicit: explicit}

	if !ok {
		d.log.Warn("unresolved intent",
			zap.String("action", string(in.Action)),
			zap.String("type", in.Type),
			zap.String("target_app", in.TargetApp))
		d.record(res)
		return res
	}

	if h, live := d.directory.handler(appID); live {
		res.Delivered = d.deliver(appID, h, in)
	}
	res.Launched = d.launcher.Launch(appID, &in)

	d.log.Debug("intent dispatched",
		zap.String("action", string(in.Action)),
		zap.String("type", in.Type),
		zap.String("app_id", appID),
		zap.String("outcome", res.Outcome()),
		zap.Bool("delivered", res.Delivered))
	d.record(res)
	return res
}

// deliver calls h and reports a panic as an undelivered intent
func (d *Dispatcher) deliver(appID string, h Handler, in types.Intent) (delivered bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("intent handler panicked",
				zap.String("app_id", appID),
				zap.String("panic", fmt.Sprint(r)))
			delivered = false
		}
	}()
	h(in)
	return true
}

func (d *Dispatcher) record(res Resolution) {
	if d.metrics != nil {
		d.metrics.RecordDispatch(res.Outcome())
	}
}
