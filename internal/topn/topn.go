// Package topn builds the score-ordered Story list from a batch of raw
// Items, per spec.md §4.5. It does no fetching or caching of its own —
// it is a pure projection over whatever fanout already collected.
package topn

import (
	"sort"

	"github.com/jnrpurin/jr-it-news/internal/hnmodel"
)

// Build filters items to scored stories, sorts them descending by score
// (stable, so upstream order breaks ties), and projects each survivor to
// a Story. No truncation happens here; callers slice with Snapshot.Top.
func Build(items []hnmodel.Item) []hnmodel.Story {
	stories := make([]hnmodel.Item, 0, len(items))
	for _, it := range items {
		if it.IsStory() {
			stories = append(stories, it)
		}
	}

	sort.SliceStable(stories, func(i, j int) bool {
		return *stories[i].Score > *stories[j].Score
	})

	out := make([]hnmodel.Story, len(stories))
	for i, it := range stories {
		out[i] = hnmodel.FromItem(it)
	}
	return out
}
