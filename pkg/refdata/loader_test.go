package refdata_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-enlist/pkg/refdata"
)

type stubStore struct {
	mu      sync.Mutex
	calls   map[string]int
	fail    map[string]error
	records map[string][]refdata.Record
	gate    chan struct{}
}

func newStubStore() *stubStore {
	return &stubStore{
		calls: make(map[string]int),
		fail:  make(map[string]error),
		records: map[string][]refdata.Record{
			refdata.CollectionArchitectures: {{Name: "amd64/generic"}},
			refdata.CollectionDomains:       {{Name: "maas"}},
			refdata.CollectionPools:         {{Name: "default"}},
			refdata.CollectionZones:         {{Name: "default"}},
		},
	}
}

func (s *stubStore) Fetch(_ context.Context, collection string) ([]refdata.Record, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[collection]++
	if err := s.fail[collection]; err != nil {
		return nil, err
	}
	return s.records[collection], nil
}

func (s *stubStore) callCount(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[collection]
}

func waitForFetches(t *testing.T, done <-chan string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for fetch %d of %d", i+1, count)
		}
	}
}

func TestLoaderBecomesReady(t *testing.T) {
	store := newStubStore()
	loader, err := refdata.NewLoader(store)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	if loader.Ready() {
		t.Fatalf("loader ready before any load")
	}

	done := make(chan string, 8)
	loader.Notify(func(name string, _ error) { done <- name })
	loader.Load(context.Background())
	waitForFetches(t, done, 4)

	if !loader.Ready() {
		t.Fatalf("loader not ready after all collections loaded")
	}

	snapshot := loader.Snapshot()
	want := refdata.Collection{
		Name:   refdata.CollectionDomains,
		Items:  []refdata.Record{{Name: "maas"}},
		Loaded: true,
	}
	if diff := cmp.Diff(want, snapshot[refdata.CollectionDomains]); diff != "" {
		t.Fatalf("domains snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderDuplicateLoadIsNoOp(t *testing.T) {
	store := newStubStore()
	store.gate = make(chan struct{})

	loader, err := refdata.NewLoader(store)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	done := make(chan string, 8)
	loader.Notify(func(name string, _ error) { done <- name })

	ctx := context.Background()
	loader.Load(ctx)
	loader.Load(ctx)
	close(store.gate)
	waitForFetches(t, done, 4)

	for _, name := range refdata.DefaultCollections() {
		if got := store.callCount(name); got != 1 {
			t.Fatalf("collection %s fetched %d times, want 1", name, got)
		}
	}
}

func TestLoaderFailedCollectionBlocksReadiness(t *testing.T) {
	store := newStubStore()
	store.fail[refdata.CollectionZones] = errors.New("boom")

	loader, err := refdata.NewLoader(store)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	done := make(chan string, 8)
	loader.Notify(func(name string, _ error) { done <- name })
	loader.Load(context.Background())
	waitForFetches(t, done, 4)

	if loader.Ready() {
		t.Fatalf("loader ready despite failed collection")
	}
	if got := loader.Snapshot()[refdata.CollectionZones].Loaded; got {
		t.Fatalf("failed collection reports loaded")
	}

	// The failure is isolated: retrying just that collection completes the
	// set without refetching the others.
	store.mu.Lock()
	delete(store.fail, refdata.CollectionZones)
	store.mu.Unlock()

	if err := loader.Reload(context.Background(), refdata.CollectionZones); err != nil {
		t.Fatalf("reload: %v", err)
	}
	waitForFetches(t, done, 1)

	if !loader.Ready() {
		t.Fatalf("loader not ready after retry")
	}
	if got := store.callCount(refdata.CollectionDomains); got != 1 {
		t.Fatalf("retry refetched unrelated collection %d times", got)
	}
}

func TestLoaderReloadUnknownCollection(t *testing.T) {
	loader, err := refdata.NewLoader(newStubStore())
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	if err := loader.Reload(context.Background(), "nonsense"); err == nil {
		t.Fatalf("expected error for unknown collection")
	}
}

func TestLoaderSnapshotIsCopy(t *testing.T) {
	store := newStubStore()
	loader, err := refdata.NewLoader(store)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	done := make(chan string, 8)
	loader.Notify(func(name string, _ error) { done <- name })
	loader.Load(context.Background())
	waitForFetches(t, done, 4)

	snapshot := loader.Snapshot()
	snapshot[refdata.CollectionPools].Items[0] = refdata.Record{Name: "mutated"}

	if got := loader.Snapshot()[refdata.CollectionPools].Items[0].Name; got != "default" {
		t.Fatalf("snapshot mutation leaked into loader: %q", got)
	}
}
