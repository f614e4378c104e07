package warmup

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jnrpurin/jr-it-news/internal/apperr"
	"github.com/jnrpurin/jr-it-news/internal/hnmodel"
	"github.com/jnrpurin/jr-it-news/internal/store"
)

type fakeIDLister struct {
	ids []int64
	err error
}

func (f *fakeIDLister) BestStoryIDs(_ context.Context) ([]int64, error) {
	return f.ids, f.err
}

type fakeFanout struct {
	items map[int64]hnmodel.Item
}

func (f *fakeFanout) FetchMany(_ context.Context, ids []int64) []hnmodel.Item {
	out := make([]hnmodel.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := f.items[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

func score(n int) *int { return &n }

func TestWarmupPublishesSnapshot(t *testing.T) {
	ids := &fakeIDLister{ids: []int64{1, 2, 3}}
	fo := &fakeFanout{items: map[int64]hnmodel.Item{
		1: {ID: 1, Type: "story", Title: "a", Score: score(10)},
		2: {ID: 2, Type: "story", Title: "b", Score: score(30)},
		3: {ID: 3, Type: "story", Title: "c", Score: score(20)},
	}}
	s := store.NewMemory()
	o := New(ids, fo, s, 200, time.Minute)

	if err := o.Warmup(context.Background()); err != nil {
		t.Fatalf("Warmup: %v", err)
	}

	raw, err := s.Get(context.Background(), SnapshotKey)
	if err != nil {
		t.Fatalf("expected snapshot to be published, got: %v", err)
	}
	var snap hnmodel.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.TotalStories != 3 {
		t.Fatalf("TotalStories = %d, want 3", snap.TotalStories)
	}
	if snap.Stories[0].Title != "b" {
		t.Fatalf("expected highest-score story first, got %+v", snap.Stories)
	}
}

func TestWarmupTruncatesToMaxStories(t *testing.T) {
	ids := &fakeIDLister{ids: []int64{1, 2, 3, 4, 5}}
	fo := &fakeFanout{items: map[int64]hnmodel.Item{
		1: {ID: 1, Type: "story", Score: score(1)},
		2: {ID: 2, Type: "story", Score: score(2)},
		3: {ID: 3, Type: "story", Score: score(3)},
		4: {ID: 4, Type: "story", Score: score(4)},
		5: {ID: 5, Type: "story", Score: score(5)},
	}}
	s := store.NewMemory()
	o := New(ids, fo, s, 2, time.Minute)

	if err := o.Warmup(context.Background()); err != nil {
		t.Fatalf("Warmup: %v", err)
	}

	raw, _ := s.Get(context.Background(), SnapshotKey)
	var snap hnmodel.Snapshot
	_ = json.Unmarshal(raw, &snap)
	if snap.TotalStories != 2 {
		t.Fatalf("TotalStories = %d, want 2 (truncated)", snap.TotalStories)
	}
}

func TestWarmupEmptyIDsIsANoOpThatPreservesExistingSnapshot(t *testing.T) {
	s := store.NewMemory()
	putErr := s.Set(context.Background(), SnapshotKey, mustMarshal(t, hnmodel.Snapshot{
		Stories:      []hnmodel.Story{{Score: 42}},
		TotalStories: 1,
	}), time.Minute)
	if putErr != nil {
		t.Fatalf("seed snapshot: %v", putErr)
	}

	ids := &fakeIDLister{ids: []int64{}}
	fo := &fakeFanout{items: map[int64]hnmodel.Item{}}
	o := New(ids, fo, s, 200, time.Minute)

	if err := o.Warmup(context.Background()); err != nil {
		t.Fatalf("Warmup: %v", err)
	}

	raw, err := s.Get(context.Background(), SnapshotKey)
	if err != nil {
		t.Fatalf("expected existing snapshot to survive an empty id list, got: %v", err)
	}
	var snap hnmodel.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.TotalStories != 1 || snap.Stories[0].Score != 42 {
		t.Fatalf("snapshot was overwritten by the empty-ids warmup: %+v", snap)
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestWarmupPropagatesIDListError(t *testing.T) {
	ids := &fakeIDLister{err: apperr.New(apperr.KindCircuitOpen, "breaker open")}
	fo := &fakeFanout{items: map[int64]hnmodel.Item{}}
	s := store.NewMemory()
	o := New(ids, fo, s, 200, time.Minute)

	err := o.Warmup(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if apperr.KindOf(err) != apperr.KindCircuitOpen {
		t.Fatalf("KindOf(err) = %v, want CircuitOpen", apperr.KindOf(err))
	}
}

type failingStore struct{ store.Store }

func (failingStore) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return apperr.New(apperr.KindTransient, "write failed")
}

func TestWarmupPropagatesStoreWriteError(t *testing.T) {
	ids := &fakeIDLister{ids: []int64{1}}
	fo := &fakeFanout{items: map[int64]hnmodel.Item{1: {ID: 1, Type: "story", Score: score(1)}}}
	o := New(ids, fo, failingStore{store.NewMemory()}, 200, time.Minute)

	err := o.Warmup(context.Background())
	if err == nil {
		t.Fatalf("expected store write error to propagate")
	}
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	ids := &fakeIDLister{ids: []int64{}}
	fo := &fakeFanout{items: map[int64]hnmodel.Item{}}
	s := store.NewMemory()
	o := New(ids, fo, s, 200, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Run(ctx, 0, time.Hour, time.Hour)
		close(done)
	}()

	// Let the first cycle run, then cancel before the next sleep would
	// otherwise block for an hour.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return promptly after context cancellation")
	}
}
