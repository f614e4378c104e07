// Package warmup is the orchestrator from spec.md §4.6: on a fixed
// cadence it rebuilds the published snapshot from scratch and writes it
// to the store under a single well-known key, so every reader sees the
// same atomically-published artifact.
package warmup

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jnrpurin/jr-it-news/internal/apperr"
	"github.com/jnrpurin/jr-it-news/internal/hnmodel"
	"github.com/jnrpurin/jr-it-news/internal/logging"
	"github.com/jnrpurin/jr-it-news/internal/metrics"
	"github.com/jnrpurin/jr-it-news/internal/store"
	"github.com/jnrpurin/jr-it-news/internal/topn"
)

// SnapshotKey is the fixed store key under which the published snapshot
// lives. Every reader in the process reads the same key.
const SnapshotKey = "preprocessed_top_stories"

// IDLister is the narrow capability warmup needs from idlist.Lister.
type IDLister interface {
	BestStoryIDs(ctx context.Context) ([]int64, error)
}

// Fanout is the narrow capability warmup needs from fanout.Fetcher.
type Fanout interface {
	FetchMany(ctx context.Context, ids []int64) []hnmodel.Item
}

// Clock lets tests control "now" without sleeping.
type Clock func() time.Time

// Orchestrator runs the warmup cycle, synchronously via Warmup and
// periodically via Run.
type Orchestrator struct {
	ids         IDLister
	fanout      Fanout
	store       store.Store
	maxStories  int
	storeTTL    time.Duration
	now         Clock
	log         *logging.Logger
}

// New builds an Orchestrator. maxStories truncates the id list before
// fan-out (spec.md §4.6); storeTTL is typically Config.StoreTTL().
func New(ids IDLister, fo Fanout, s store.Store, maxStories int, storeTTL time.Duration) *Orchestrator {
	return &Orchestrator{
		ids:        ids,
		fanout:     fo,
		store:      s,
		maxStories: maxStories,
		storeTTL:   storeTTL,
		now:        time.Now,
		log:        logging.Named("warmup"),
	}
}

// Warmup runs one full rebuild cycle: fetch ids, truncate, fan out,
// build the top-N list, and publish the resulting Snapshot. An error
// from the id list fetch or the store write is returned to the caller;
// per-item fetch failures are never errors here, only smaller snapshots
// (fanout already swallowed and counted them).
func (o *Orchestrator) Warmup(ctx context.Context) error {
	start := o.now()
	defer func() {
		metrics.WarmupDuration.Observe(o.now().Sub(start).Seconds())
	}()

	ids, err := o.ids.BestStoryIDs(ctx)
	if err != nil {
		metrics.WarmupFailures.Inc()
		return apperr.WithOp(err, "warmup.Warmup")
	}

	if len(ids) == 0 {
		o.log.Warn().Msg("upstream id list is empty; leaving existing snapshot in place")
		return nil
	}

	if len(ids) > o.maxStories {
		ids = ids[:o.maxStories]
	}

	items := o.fanout.FetchMany(ctx, ids)
	stories := topn.Build(items)

	snap := hnmodel.Snapshot{
		Stories:      stories,
		CachedAt:     o.now(),
		TotalStories: len(stories),
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		metrics.WarmupFailures.Inc()
		return apperr.Wrap(err, apperr.KindPermanent, "failed to marshal snapshot")
	}

	if err := o.store.Set(ctx, SnapshotKey, raw, o.storeTTL); err != nil {
		metrics.WarmupFailures.Inc()
		return apperr.Wrap(err, apperr.KindTransient, "failed to publish snapshot")
	}

	metrics.SnapshotStories.Set(float64(len(stories)))
	o.log.Info().Int("stories", len(stories)).Int("requested_ids", len(ids)).Msg("warmup complete")
	return nil
}

// Run drives Warmup on a fixed cadence: an initial startupDelay, then
// refreshInterval between successful cycles, falling back to
// errorBackoff after a failed cycle so a flapping upstream doesn't spin
// the loop. Run blocks until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, startupDelay, refreshInterval, errorBackoff time.Duration) {
	select {
	case <-time.After(startupDelay):
	case <-ctx.Done():
		return
	}

	for {
		wait := refreshInterval
		if err := o.Warmup(ctx); err != nil {
			o.log.Error().Err(err).Msg("warmup cycle failed")
			wait = errorBackoff
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}
