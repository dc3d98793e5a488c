package catalog

import (
	"sync"

	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/shared/types"
	"go.uber.org/zap"
)

type entry struct {
	manifest types.AppManifest
	lazy     *LazyEntry
}

// Catalog is the ordered table of app manifests
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]*entry // Protected by mu
	order   []string          // Protected by mu
	log     *logging.Logger
}

// New creates an empty catalog
func New(log *logging.Logger) *Catalog {
	return &Catalog{
		entries: make(map[string]*entry),
		log:     logging.OrNop(log).Named("catalog"),
	}
}

// Register adds a manifest, or replaces the one already registered under
// the same id. A replaced manifest keeps its original position.
func (c *Catalog) Register(m types.AppManifest) error {
	if err := ValidateManifest(m); err != nil {
		return err
	}

	m = cloneManifest(m)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[m.ID]; exists {
		c.log.Warn("duplicate manifest id, replacing",
			zap.String("app_id", m.ID),
			zap.String("name", m.Name))
	} else {
		c.order = append(c.order, m.ID)
	}

	c.entries[m.ID] = &entry{
		manifest: m,
		lazy:     NewLazyEntry(m.EntryPoint),
	}
	return nil
}

// Get returns the manifest registered under id
func (c *Catalog) Get(id string) (types.AppManifest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return types.AppManifest{}, false
	}
	return cloneManifest(e.manifest), true
}

// Has reports whether id is registered
func (c *Catalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[id]
	return ok
}

// GetByMode returns the first manifest (in registration order) tagged with mode
func (c *Catalog) GetByMode(mode string) (types.AppManifest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, id := range c.order {
		if e := c.entries[id]; e.manifest.Mode == mode {
			return cloneManifest(e.manifest), true
		}
	}
	return types.AppManifest{}, false
}

// List returns all manifests in registration order
func (c *Catalog) List() []types.AppManifest {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]types.AppManifest, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, cloneManifest(c.entries[id].manifest))
	}
	return out
}

// Len returns the number of registered manifests
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Stats summarizes the catalog by mode
func (c *Catalog) Stats() types.CatalogStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := types.CatalogStats{
		TotalManifests: len(c.order),
		Modes:          make(map[string]int),
	}
	for _, id := range c.order {
		stats.Modes[c.entries[id].manifest.Mode]++
	}
	return stats
}

// Entry returns the lazy entry point of id. The view is built on the
// first Resolve call and shared afterwards.
func (c *Catalog) Entry(id string) (*LazyEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return e.lazy, true
}

func cloneManifest(m types.AppManifest) types.AppManifest {
	if m.Permissions != nil {
		m.Permissions = append([]types.Permission(nil), m.Permissions...)
	}
	if m.IntentFilters != nil {
		m.IntentFilters = append([]types.IntentFilter(nil), m.IntentFilters...)
	}
	return m
}
