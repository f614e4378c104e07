// Package reader is the public read path from spec.md §4.7: it serves
// the top N stories out of the published Snapshot, triggering a
// synchronous rebuild on a cold cache and falling back to a stale
// snapshot when a rebuild fails because the breaker is open.
package reader

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jnrpurin/jr-it-news/internal/apperr"
	"github.com/jnrpurin/jr-it-news/internal/hnmodel"
	"github.com/jnrpurin/jr-it-news/internal/logging"
	"github.com/jnrpurin/jr-it-news/internal/store"
)

// maxN and minN bound the n argument to GetTop per spec.md §4.7.
const (
	minN = 1
	maxN = 200
)

// Warmer is the narrow capability reader needs from warmup.Orchestrator.
type Warmer interface {
	Warmup(ctx context.Context) error
}

// Clock lets tests control "now" without sleeping.
type Clock func() time.Time

// Reader serves Story lists out of the shared store, rebuilding on a
// cold or stale-with-no-fallback miss.
type Reader struct {
	store         store.Store
	warmer        Warmer
	cacheDuration time.Duration
	now           Clock
	log           *logging.Logger
}

// New builds a Reader. cacheDuration is the staleness threshold: a
// snapshot older than this is considered stale on the normal path
// (though still usable as a stale fallback, per the store's longer TTL,
// which is cacheDuration's own +1 minute window via Config.StoreTTL).
func New(s store.Store, w Warmer, cacheDuration time.Duration) *Reader {
	return &Reader{
		store:         s,
		warmer:        w,
		cacheDuration: cacheDuration,
		now:           time.Now,
		log:           logging.Named("reader"),
	}
}

// snapshotKey mirrors warmup.SnapshotKey without importing warmup, to
// avoid a reader->warmup->reader import cycle risk as the two packages
// evolve independently.
const snapshotKey = "preprocessed_top_stories"

// GetTop returns up to n stories. n is clamped to [1, 200]; n <= 0
// returns an empty, non-error result. On a cache miss or a stale
// snapshot, GetTop synchronously triggers a rebuild before reading
// again. If that rebuild fails with a circuit-open classification and a
// (now stale) snapshot still exists, that stale snapshot is served
// anyway; if no snapshot exists at all, the rebuild's error surfaces as
// KindServiceUnavailable.
func (r *Reader) GetTop(ctx context.Context, n int) ([]hnmodel.Story, error) {
	if n <= 0 {
		return []hnmodel.Story{}, nil
	}
	if n > maxN {
		n = maxN
	}

	snap, hit := r.read(ctx)
	if hit && snap.Age(r.now()) <= r.cacheDuration {
		return snap.Top(n), nil
	}

	warmErr := r.warmer.Warmup(ctx)
	if warmErr == nil {
		fresh, ok := r.read(ctx)
		if ok {
			return fresh.Top(n), nil
		}
		// Warmup reported success but the read-back missed; fall through
		// to the stale-or-unavailable handling below using what we had.
	}

	if hit {
		if warmErr != nil && apperr.KindOf(warmErr) == apperr.KindCircuitOpen {
			r.log.Warn().Err(warmErr).Msg("rebuild failed with breaker open; serving stale snapshot")
			return snap.Top(n), nil
		}
		if warmErr == nil {
			// Rebuild claimed success but left no readable snapshot; the
			// stale one we already had is still the best available answer.
			return snap.Top(n), nil
		}
	}

	if warmErr != nil {
		return nil, apperr.Wrap(warmErr, apperr.KindServiceUnavailable, "no snapshot available and rebuild failed")
	}
	return nil, apperr.New(apperr.KindServiceUnavailable, "no snapshot available")
}

// read fetches and decodes the published snapshot, reporting (zero, false)
// on a miss or a corrupt payload.
func (r *Reader) read(ctx context.Context) (hnmodel.Snapshot, bool) {
	raw, err := r.store.Get(ctx, snapshotKey)
	if err != nil {
		return hnmodel.Snapshot{}, false
	}
	var snap hnmodel.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		r.log.Warn().Err(err).Msg("snapshot payload corrupt; treating as miss")
		return hnmodel.Snapshot{}, false
	}
	return snap, true
}
