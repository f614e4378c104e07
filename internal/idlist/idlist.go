// Package idlist fetches the ordered "best stories" id list from
// spec.md §4.4, caching it for 30 seconds under a fixed key. Order is
// upstream-authoritative but not load-bearing — the top-N builder
// re-sorts by score regardless.
package idlist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jnrpurin/jr-it-news/internal/apperr"
	"github.com/jnrpurin/jr-it-news/internal/store"
)

// Key is the fixed cache key for the id list.
const Key = "beststories_ids"

// TTL is how long a fetched id list stays cached.
const TTL = 30 * time.Second

// Fetcher is the narrow capability idlist needs from the resilient client.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Lister fetches and caches the best-stories id list.
type Lister struct {
	store   store.Store
	fetcher Fetcher
	url     string
}

// New builds a Lister against baseURL + "/beststories.json".
func New(s store.Store, f Fetcher, baseURL string) *Lister {
	return &Lister{store: s, fetcher: f, url: baseURL + "/beststories.json"}
}

// BestStoryIDs returns the cached id list if fresh, otherwise fetches and
// re-caches it. Unlike the per-item cache, a fetch error here is
// propagated: the warmup orchestrator cannot proceed without ids.
func (l *Lister) BestStoryIDs(ctx context.Context) ([]int64, error) {
	if raw, err := l.store.Get(ctx, Key); err == nil {
		var ids []int64
		if jsonErr := json.Unmarshal(raw, &ids); jsonErr == nil {
			return ids, nil
		}
		// Corrupt cache entry: fall through and refetch.
	}

	raw, err := l.fetcher.Fetch(ctx, l.url)
	if err != nil {
		return nil, apperr.WithOp(err, "idlist.BestStoryIDs")
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, apperr.Wrap(err, apperr.KindPermanent, "best stories payload malformed")
	}

	if err := l.store.Set(ctx, Key, raw, TTL); err != nil {
		// Caching is best-effort; a failed write does not invalidate the
		// ids we already have in hand for this call.
		return ids, nil
	}
	return ids, nil
}
