package refdata

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Record is one selectable entry inside a reference collection.
type Record struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
}

// Collection is a named reference dataset plus its load status. Consumers
// always read a full snapshot; Items is never exposed mid-write.
type Collection struct {
	Name   string
	Items  []Record
	Loaded bool
}

// Store fetches named reference collections from the backend inventory
// service.
type Store interface {
	Fetch(ctx context.Context, collection string) ([]Record, error)
}

// Collection names the enlistment form depends on.
const (
	CollectionArchitectures = "architectures"
	CollectionDomains       = "domains"
	CollectionPools         = "pools"
	CollectionZones         = "zones"
)

// DefaultCollections returns the collections required before the form becomes
// interactive.
func DefaultCollections() []string {
	return []string{
		CollectionArchitectures,
		CollectionDomains,
		CollectionPools,
		CollectionZones,
	}
}

// Option customises loader construction.
type Option func(*Loader)

// WithLogger injects the logger used to report failed fetches. Failures are
// logged and reported as not-ready; they never escalate to the form.
func WithLogger(log logr.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// WithCollections overrides the set of collections the loader requires.
func WithCollections(names ...string) Option {
	return func(l *Loader) {
		if len(names) == 0 {
			return
		}
		l.order = append([]string(nil), names...)
	}
}

// Loader requests and caches the reference collections backing the form's
// selectors. Each collection resolves independently; a failed fetch leaves
// the loader not-ready without disturbing collections that already loaded.
type Loader struct {
	store Store
	log   logr.Logger

	mu          sync.Mutex
	order       []string
	collections map[string]*collectionState
	listeners   []func(name string, err error)
}

type collectionState struct {
	items   []Record
	loaded  bool
	pending bool
}

// NewLoader constructs a Loader for the given store. The default collection
// set covers architectures, domains, pools, and zones.
func NewLoader(store Store, options ...Option) (*Loader, error) {
	if store == nil {
		return nil, errors.New("refdata: store is required")
	}
	l := &Loader{
		store: store,
		log:   logr.Discard(),
		order: DefaultCollections(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	l.collections = make(map[string]*collectionState, len(l.order))
	for _, name := range l.order {
		l.collections[name] = &collectionState{}
	}
	return l, nil
}

// Notify registers a listener invoked after every fetch completes, loaded or
// failed. Listeners run outside the loader's lock; they may call back into
// the loader.
func (l *Loader) Notify(fn func(name string, err error)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Load issues one fetch per collection that is neither loaded nor already in
// flight. Calling Load again while fetches are pending is a no-op for those
// collections, so re-render churn never duplicates network traffic.
func (l *Loader) Load(ctx context.Context) {
	l.mu.Lock()
	var launch []string
	for _, name := range l.order {
		state := l.collections[name]
		if state.loaded || state.pending {
			continue
		}
		state.pending = true
		launch = append(launch, name)
	}
	l.mu.Unlock()

	for _, name := range launch {
		go l.fetch(ctx, name)
	}
}

// Reload re-issues a single collection's fetch, preserving the per-collection
// retry isolation the loader guarantees. Collections already in flight are
// left alone.
func (l *Loader) Reload(ctx context.Context, name string) error {
	l.mu.Lock()
	state, ok := l.collections[name]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("refdata: unknown collection %q", name)
	}
	if state.pending {
		l.mu.Unlock()
		return nil
	}
	state.loaded = false
	state.pending = true
	l.mu.Unlock()

	go l.fetch(ctx, name)
	return nil
}

func (l *Loader) fetch(ctx context.Context, name string) {
	items, err := l.store.Fetch(ctx, name)

	l.mu.Lock()
	state := l.collections[name]
	state.pending = false
	if err == nil {
		state.items = append([]Record(nil), items...)
		state.loaded = true
	}
	listeners := append(([]func(string, error))(nil), l.listeners...)
	l.mu.Unlock()

	if err != nil {
		l.log.Error(err, "reference collection fetch failed", "collection", name)
	}
	for _, fn := range listeners {
		fn(name, err)
	}
}

// Ready reports whether every required collection has loaded. It returns
// false while any collection is pending or failed; it never errors.
func (l *Loader) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range l.order {
		if !l.collections[name].loaded {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of every collection's current contents keyed by
// name. Mutating the returned value has no effect on the loader.
func (l *Loader) Snapshot() map[string]Collection {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := make(map[string]Collection, len(l.order))
	for _, name := range l.order {
		state := l.collections[name]
		snapshot[name] = Collection{
			Name:   name,
			Items:  append([]Record(nil), state.items...),
			Loaded: state.loaded,
		}
	}
	return snapshot
}
