package catalog

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/kwararru/shell/internal/shared/types"
)

// ErrNoEntryPoint is returned when resolving an app that declares none
var ErrNoEntryPoint = errors.New("app has no entry point")

// LazyEntry wraps an entry point so the view is built once, on demand
type LazyEntry struct {
	once  sync.Once
	build types.EntryPoint
	view  types.AppView
	err   error
	built atomic.Bool
}

// NewLazyEntry wraps build. A nil build resolves to ErrNoEntryPoint.
func NewLazyEntry(build types.EntryPoint) *LazyEntry {
	return &LazyEntry{build: build}
}

// Resolve builds the view on first call and returns the cached result after
func (l *LazyEntry) Resolve() (types.AppView, error) {
	l.once.Do(func() {
		defer l.built.Store(true)
		if l.build == nil {
			l.err = ErrNoEntryPoint
			return
		}
		l.view, l.err = l.build()
	})
	return l.view, l.err
}

// Built reports whether Resolve has run
func (l *LazyEntry) Built() bool {
	return l.built.Load()
}
