package intent

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kwararru/shell/internal/shared/types"
)

// Handler receives intents delivered to a mounted app
type Handler func(types.Intent)

type registration struct {
	handler Handler
	seq     uint64
}

// Directory maps app ids to their live handler. Each app has at most one
// handler; registering again replaces the previous one.
type Directory struct {
	mu       sync.RWMutex
	handlers map[string]registration // Protected by mu
	seq      uint64                  // Protected by mu
}

// NewDirectory creates an empty handler directory
func NewDirectory() *Directory {
	return &Directory{handlers: make(map[string]registration)}
}

// Register installs h as the live handler of appID. The returned release
// func removes it again, unless another handler has replaced it meanwhile.
func (d *Directory) Register(appID string, h Handler) (func(), error) {
	if appID == "" {
		return nil, fmt.Errorf("app ID cannot be empty")
	}
	if h == nil {
		return nil, fmt.Errorf("handler for %s cannot be nil", appID)
	}

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.handlers[appID] = registration{handler: h, seq: seq}
	d.mu.Unlock()

	release := func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if cur, ok := d.handlers[appID]; ok && cur.seq == seq {
			delete(d.handlers, appID)
		}
	}
	return release, nil
}

// Unregister removes whatever handler appID has
func (d *Directory) Unregister(appID string) {
	d.mu.Lock()
	delete(d.handlers, appID)
	d.mu.Unlock()
}

// Has reports whether appID has a live handler
func (d *Directory) Has(appID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[appID]
	return ok
}

// Len returns the number of live handlers
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers)
}

// IDs returns the app ids with a live handler, sorted
func (d *Directory) IDs() []string {
	d.mu.RLock()
	ids := make([]string, 0, len(d.handlers))
	for id := range d.handlers {
		ids = append(ids, id)
	}
	d.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

func (d *Directory) handler(appID string) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.handlers[appID]
	return r.handler, ok
}
