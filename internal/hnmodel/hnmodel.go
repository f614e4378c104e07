// Package hnmodel holds the raw upstream Item, the published Story DTO,
// and the CachedSnapshot that is the service's one authoritative artifact.
package hnmodel

import "time"

// Item is a raw upstream record, deserialized once and treated as
// immutable for the rest of its (short) lifetime.
type Item struct {
	ID          int64  `json:"id"`
	By          string `json:"by,omitempty"`
	Time        int64  `json:"time,omitempty"`
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	Score       *int   `json:"score,omitempty"`
	Descendants *int   `json:"descendants,omitempty"`
	Type        string `json:"type,omitempty"`
}

// IsStory reports whether this item is a scored story, the only kind the
// top-N builder keeps.
func (it Item) IsStory() bool {
	return it.Type == "story" && it.Score != nil
}

// Story is the published record: every non-score field defaults to its
// zero value when the upstream item omitted it.
type Story struct {
	Title        string `json:"title"`
	URI          string `json:"uri"`
	PostedBy     string `json:"postedBy"`
	Time         string `json:"time"`
	Score        int    `json:"score"`
	CommentCount int    `json:"commentCount"`
}

// FromItem projects an Item into a Story. Callers must have already
// checked Item.IsStory(); FromItem does not filter.
func FromItem(it Item) Story {
	s := Story{
		Title:    it.Title,
		URI:      it.URL,
		PostedBy: it.By,
	}
	if it.Score != nil {
		s.Score = *it.Score
	}
	if it.Descendants != nil {
		s.CommentCount = *it.Descendants
	}
	if it.Time > 0 {
		s.Time = time.Unix(it.Time, 0).UTC().Format("2006-01-02T15:04:05-07:00")
	}
	return s
}

// Snapshot is the atomically published, score-ordered top-N list.
type Snapshot struct {
	Stories      []Story   `json:"stories"`
	CachedAt     time.Time `json:"cachedAt"`
	TotalStories int       `json:"totalStories"`
}

// Age reports how long ago the snapshot was committed, relative to now.
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CachedAt)
}

// Top returns at most n stories from the snapshot, clamped to its length.
// n is assumed already clamped to [1, 200] by the caller (reader.GetTop).
func (s Snapshot) Top(n int) []Story {
	if n > len(s.Stories) {
		n = len(s.Stories)
	}
	if n <= 0 {
		return []Story{}
	}
	out := make([]Story, n)
	copy(out, s.Stories[:n])
	return out
}
