// Package itemcache is the per-item micro-cache from spec.md §4.2: a
// short-lived memoization of individual raw item records in front of the
// resilient upstream client. Any fetch error — including CircuitOpen — is
// swallowed so a single missing item never poisons a top-N build.
package itemcache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/jnrpurin/jr-it-news/internal/apperr"
	"github.com/jnrpurin/jr-it-news/internal/hnmodel"
	"github.com/jnrpurin/jr-it-news/internal/logging"
	"github.com/jnrpurin/jr-it-news/internal/store"
)

// TTL is how long a raw item stays cached once fetched.
const TTL = 5 * time.Minute

// Fetcher is the narrow capability itemcache needs from the resilient
// upstream client.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Cache wraps a Store and a Fetcher to serve GetOrFetch.
type Cache struct {
	store   store.Store
	fetcher Fetcher
	baseURL string
	log     *logging.Logger
}

// New constructs a Cache. baseURL is the upstream root, e.g.
// "https://hacker-news.firebaseio.com/v0".
func New(s store.Store, f Fetcher, baseURL string) *Cache {
	return &Cache{store: s, fetcher: f, baseURL: baseURL, log: logging.Named("itemcache")}
}

// Key returns the exact cache key for an item id: "item_<decimal id>".
func Key(id int64) string {
	return fmt.Sprintf("item_%d", id)
}

// GetOrFetch returns the cached raw item if present, else fetches it from
// upstream, stores it with a 5 minute TTL, and returns it. Any error is
// swallowed and reported as (zero Item, false) — this is deliberate per
// §4.2, not a bug: the fan-out fetcher tolerates holes.
func (c *Cache) GetOrFetch(ctx context.Context, id int64) (hnmodel.Item, bool) {
	key := Key(id)

	if raw, err := c.store.Get(ctx, key); err == nil {
		var it hnmodel.Item
		if jsonErr := json.Unmarshal(raw, &it); jsonErr == nil {
			return it, true
		}
		// A corrupt cache entry is treated like a miss, not a poison pill.
	}

	itemURL := c.baseURL + "/item/" + url.PathEscape(fmt.Sprintf("%d", id)) + ".json"
	raw, err := c.fetcher.Fetch(ctx, itemURL)
	if err != nil {
		c.log.Warn().Int64("item_id", id).Str("kind", apperr.KindOf(err).String()).Err(err).Msg("item fetch failed; swallowing")
		return hnmodel.Item{}, false
	}

	var it hnmodel.Item
	if err := json.Unmarshal(raw, &it); err != nil {
		c.log.Warn().Int64("item_id", id).Err(err).Msg("item payload malformed; swallowing")
		return hnmodel.Item{}, false
	}

	// Idempotent: two concurrent misses may each fetch; last writer wins.
	if setErr := c.store.Set(ctx, key, raw, TTL); setErr != nil {
		c.log.Warn().Int64("item_id", id).Err(setErr).Msg("failed to cache item; serving uncached result")
	}
	return it, true
}
