package topn

import (
	"testing"

	"github.com/jnrpurin/jr-it-news/internal/hnmodel"
)

func score(n int) *int { return &n }

func TestBuildSortsDescendingByScore(t *testing.T) {
	items := []hnmodel.Item{
		{ID: 1, Type: "story", Title: "low", Score: score(5)},
		{ID: 2, Type: "story", Title: "high", Score: score(100)},
		{ID: 3, Type: "story", Title: "mid", Score: score(42)},
	}

	got := Build(items)
	if len(got) != 3 {
		t.Fatalf("got %d stories, want 3", len(got))
	}
	if got[0].Title != "high" || got[1].Title != "mid" || got[2].Title != "low" {
		t.Fatalf("not sorted descending: %+v", got)
	}
}

func TestBuildFiltersNonStories(t *testing.T) {
	items := []hnmodel.Item{
		{ID: 1, Type: "story", Title: "keep", Score: score(10)},
		{ID: 2, Type: "comment", Title: "drop-wrong-type"},
		{ID: 3, Type: "story", Title: "drop-no-score"},
	}

	got := Build(items)
	if len(got) != 1 || got[0].Title != "keep" {
		t.Fatalf("expected only the scored story to survive, got %+v", got)
	}
}

func TestBuildStableOnTies(t *testing.T) {
	items := []hnmodel.Item{
		{ID: 1, Type: "story", Title: "first", Score: score(10)},
		{ID: 2, Type: "story", Title: "second", Score: score(10)},
	}

	got := Build(items)
	if len(got) != 2 || got[0].Title != "first" || got[1].Title != "second" {
		t.Fatalf("expected stable tie order, got %+v", got)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	got := Build(nil)
	if len(got) != 0 {
		t.Fatalf("got %d stories, want 0", len(got))
	}
}

func TestBuildNoTruncation(t *testing.T) {
	items := make([]hnmodel.Item, 300)
	for i := range items {
		items[i] = hnmodel.Item{ID: int64(i), Type: "story", Score: score(i)}
	}
	got := Build(items)
	if len(got) != 300 {
		t.Fatalf("got %d stories, want 300 (no truncation in topn.Build)", len(got))
	}
}
