// Package fanout is the bounded-concurrency batch retriever from
// spec.md §4.3: at most FanoutConcurrency item fetches are in flight
// simultaneously, globally across every caller of Fetcher.FetchMany, not
// per invocation — hence the semaphore lives on the Fetcher value, built
// once and shared.
package fanout

import (
	"context"
	"sync"

	"github.com/jnrpurin/jr-it-news/internal/hnmodel"
	"github.com/jnrpurin/jr-it-news/internal/logging"
	"github.com/jnrpurin/jr-it-news/internal/metrics"
)

// ItemGetter is the narrow capability fanout needs from itemcache.Cache.
type ItemGetter interface {
	GetOrFetch(ctx context.Context, id int64) (hnmodel.Item, bool)
}

// Fetcher bounds concurrent item fetches behind a counting semaphore.
type Fetcher struct {
	items ItemGetter
	sem   chan struct{}
	log   *logging.Logger
}

// New builds a Fetcher with a semaphore of `concurrency` permits, shared
// by every call to FetchMany for the lifetime of this Fetcher.
func New(items ItemGetter, concurrency int) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		items: items,
		sem:   make(chan struct{}, concurrency),
		log:   logging.Named("fanout"),
	}
}

// FetchMany retrieves ids under the shared concurrency budget. It
// preserves no particular order and returns only successfully retrieved
// items; a per-item failure is counted and logged at warn but never
// propagated. If ctx is cancelled or its deadline passes, in-flight
// fetches are cancelled promptly and whatever was already collected is
// returned — the caller may still build a partial top-N from it.
func (f *Fetcher) FetchMany(ctx context.Context, ids []int64) []hnmodel.Item {
	results := make(chan (*hnmodel.Item), len(ids))
	var wg sync.WaitGroup

	for _, id := range ids {
		if ctx.Err() != nil {
			// Stop launching new work once the deadline has passed;
			// whatever is already in flight still gets to finish below.
			break
		}

		wg.Add(1)
		go func(id int64) {
			defer wg.Done()

			select {
			case f.sem <- struct{}{}:
			case <-ctx.Done():
				results <- nil
				return
			}
			defer func() { <-f.sem }()

			it, ok := f.items.GetOrFetch(ctx, id)
			if !ok {
				metrics.ItemFetchFailures.Inc()
				results <- nil
				return
			}
			results <- &it
		}(id)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]hnmodel.Item, 0, len(ids))
	for r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
