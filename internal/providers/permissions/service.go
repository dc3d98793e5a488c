// Package permissions grants capability tokens to apps.
//
// Grants are tracked per app. MICROPHONE and CAMERA go through a DeviceGate
// (a user prompt or device probe); every other token is granted on request.
// When a manifest lookup is configured an app can only obtain tokens its
// manifest declares. Every decision is kept in a bounded audit log.
package permissions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/shared/types"
	"go.uber.org/zap"
)

// MaxAuditEntries bounds the audit log
const MaxAuditEntries = 1000

// DeviceGate decides whether a device-backed permission may be granted
type DeviceGate interface {
	Allow(ctx context.Context, appID string, p types.Permission) (bool, error)
}

// DeviceGateFunc adapts a function to DeviceGate
type DeviceGateFunc func(ctx context.Context, appID string, p types.Permission) (bool, error)

func (f DeviceGateFunc) Allow(ctx context.Context, appID string, p types.Permission) (bool, error) {
	return f(ctx, appID, p)
}

// AllowAll grants every device request
var AllowAll DeviceGate = DeviceGateFunc(func(context.Context, string, types.Permission) (bool, error) {
	return true, nil
})

// ManifestLookup returns the manifest of an app
type ManifestLookup func(appID string) (types.AppManifest, bool)

// AuditEntry records one permission decision
type AuditEntry struct {
	Timestamp  time.Time        `json:"timestamp"`
	AppID      string           `json:"app_id"`
	Permission types.Permission `json:"permission"`
	Action     string           `json:"action"`
	Allowed    bool             `json:"allowed"`
	Reason     string           `json:"reason,omitempty"`
}

// Service tracks granted permissions
type Service struct {
	mu      sync.RWMutex
	granted map[string]map[types.Permission]time.Time // Protected by mu
	audit   []AuditEntry                              // Protected by mu

	gate     DeviceGate
	manifest ManifestLookup
	now      func() time.Time
	log      *logging.Logger
}

// NewService creates a permission service. A nil gate denies device access.
func NewService(gate DeviceGate, manifest ManifestLookup, log *logging.Logger) *Service {
	return &Service{
		granted:  make(map[string]map[types.Permission]time.Time),
		gate:     gate,
		manifest: manifest,
		now:      time.Now,
		log:      logging.OrNop(log).Named("permissions"),
	}
}

func requiresDevice(p types.Permission) bool {
	return p == types.PermissionMicrophone || p == types.PermissionCamera
}

// Request asks for p on behalf of appID and reports whether it was granted
func (s *Service) Request(ctx context.Context, appID string, p types.Permission) (bool, error) {
	if !p.Valid() {
		s.record(appID, p, "request", false, "unknown permission")
		return false, nil
	}
	if s.manifest != nil {
		m, ok := s.manifest(appID)
		if !ok {
			s.record(appID, p, "request", false, "unknown app")
			return false, nil
		}
		if !m.HasPermission(p) {
			s.record(appID, p, "request", false, "not declared in manifest")
			return false, nil
		}
	}

	if requiresDevice(p) {
		if s.gate == nil {
			s.record(appID, p, "request", false, "no device gate")
			return false, nil
		}
		allowed, err := s.gate.Allow(ctx, appID, p)
		if err != nil {
			s.log.Warn("device gate failed",
				zap.String("app_id", appID),
				zap.String("permission", string(p)),
				zap.Error(err))
			s.record(appID, p, "request", false, err.Error())
			return false, err
		}
		if !allowed {
			s.record(appID, p, "request", false, "denied by device gate")
			return false, nil
		}
	}

	s.mu.Lock()
	grants, ok := s.granted[appID]
	if !ok {
		grants = make(map[types.Permission]time.Time)
		s.granted[appID] = grants
	}
	grants[p] = s.now()
	s.mu.Unlock()

	s.record(appID, p, "request", true, "")
	return true, nil
}

// Check reports whether appID currently holds p
func (s *Service) Check(appID string, p types.Permission) bool {
	s.mu.RLock()
	_, ok := s.granted[appID][p]
	s.mu.RUnlock()

	s.record(appID, p, "check", ok, "")
	return ok
}

// Revoke removes p from appID
func (s *Service) Revoke(appID string, p types.Permission) {
	s.mu.Lock()
	if grants, ok := s.granted[appID]; ok {
		delete(grants, p)
		if len(grants) == 0 {
			delete(s.granted, appID)
		}
	}
	s.mu.Unlock()

	s.record(appID, p, "revoke", true, "")
}

// RevokeAll drops every grant of appID
func (s *Service) RevokeAll(appID string) {
	s.mu.Lock()
	delete(s.granted, appID)
	s.mu.Unlock()
}

// Granted lists the permissions appID holds, sorted
func (s *Service) Granted(appID string) []types.Permission {
	s.mu.RLock()
	out := make([]types.Permission, 0, len(s.granted[appID]))
	for p := range s.granted[appID] {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Audit returns the newest audit entries first, optionally for one app.
// A limit <= 0 returns everything retained.
func (s *Service) Audit(appID string, limit int) []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []AuditEntry
	for i := len(s.audit) - 1; i >= 0; i-- {
		e := s.audit[i]
		if appID != "" && e.AppID != appID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (s *Service) record(appID string, p types.Permission, action string, allowed bool, reason string) {
	s.mu.Lock()
	s.audit = append(s.audit, AuditEntry{
		Timestamp:  s.now(),
		AppID:      appID,
		Permission: p,
		Action:     action,
		Allowed:    allowed,
		Reason:     reason,
	})
	if len(s.audit) > MaxAuditEntries {
		s.audit = append([]AuditEntry(nil), s.audit[len(s.audit)-MaxAuditEntries:]...)
	}
	s.mu.Unlock()
}

// Scoped is the permission view handed to a single app
type Scoped struct {
	service *Service
	appID   string
}

// For returns a view of the service bound to appID
func (s *Service) For(appID string) *Scoped {
	return &Scoped{service: s, appID: appID}
}

func (sc *Scoped) Request(ctx context.Context, p types.Permission) (bool, error) {
	return sc.service.Request(ctx, sc.appID, p)
}

func (sc *Scoped) Check(p types.Permission) bool {
	return sc.service.Check(sc.appID, p)
}

func (sc *Scoped) Revoke(p types.Permission) {
	sc.service.Revoke(sc.appID, p)
}
