// Package timeline flattens the dataset into timestamped posts and groups
// them into fixed-width interval buckets for the timeline view.
package timeline

import (
	"fmt"
	"sort"

	"naikenten/internal/space"
)

const (
	PostOriginal = "original"
	PostUpdate   = "update"

	// UnknownLabel is the bucket for posts with no usable timestamp. It
	// sorts after every dated bucket.
	UnknownLabel = "Unknown"

	DefaultIntervalMinutes = 30
)

// Post is one timeline entry: a space's original state or one of its updates.
type Post struct {
	SpaceID int    `json:"space_id"`
	Type    string `json:"type"`

	Image         space.ImageRef   `json:"image"`
	Supplementary []space.ImageRef `json:"supplementary,omitempty"`

	Author string `json:"author"`
	Text   string `json:"text,omitempty"`

	// TakenAt is the raw timestamp string; parsing happens at grouping time
	// so an unparseable value degrades to the Unknown bucket.
	TakenAt string `json:"taken_at,omitempty"`
}

// Collect flattens originals and updates in dataset order. An original is
// included only when its image carries a timestamp; an update is included
// when it has any image. The update's timestamp prefers the primary image's
// taken_at (camera time) over the upload time.
func Collect(spaces []space.Space) []Post {
	var posts []Post
	for _, s := range spaces {
		if im, ok := s.OriginalImage(); ok && im.TakenAt != "" {
			author := s.CreatedBy
			if author == "" {
				author = "Original"
			}
			posts = append(posts, Post{
				SpaceID: s.ID,
				Type:    PostOriginal,
				Image:   im,
				Author:  author,
				Text:    "Original state",
				TakenAt: im.TakenAt,
			})
		}
		for _, u := range s.Updates {
			primary, ok := u.Primary()
			if !ok {
				continue
			}
			author := u.Author
			if author == "" {
				author = "Unknown"
			}
			takenAt := primary.TakenAt
			if takenAt == "" {
				takenAt = u.CreatedAt
			}
			posts = append(posts, Post{
				SpaceID:       s.ID,
				Type:          PostUpdate,
				Image:         primary,
				Supplementary: u.Supplementary(),
				Author:        author,
				Text:          u.Text,
				TakenAt:       takenAt,
			})
		}
	}
	return posts
}

// Bucket is one [start,end) interval on one calendar date. The Unknown bucket
// has Date == UnknownLabel and no times.
type Bucket struct {
	Date  string `json:"date"`
	Start string `json:"start,omitempty"` // "07:30"
	End   string `json:"end,omitempty"`   // "08:00"
	Posts []Post `json:"posts"`
}

// Label renders the interval as shown on the page, e.g. "07:30~08:00".
func (b Bucket) Label() string {
	if b.Start == "" {
		return UnknownLabel
	}
	return b.Start + "~" + b.End
}

type bucketKey struct {
	date     string
	startMin int // minutes since midnight; -1 for unknown
}

// Group buckets posts by local calendar date and intervalMinutes-wide slots.
// The slot start is the timestamp truncated down to the nearest interval
// multiple within its day, so with 30-minute slots 07:42 lands in
// [07:30,08:00) and an exact boundary 08:00:00 starts its own slot. Buckets
// come out sorted by (date, start); the Unknown bucket, when present, is
// last. Within a bucket posts keep their insertion order.
func Group(posts []Post, intervalMinutes int) []Bucket {
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultIntervalMinutes
	}

	groups := map[bucketKey][]Post{}
	var order []bucketKey

	for _, p := range posts {
		key := bucketKey{date: UnknownLabel, startMin: -1}
		if t, ok := space.ParseTime(p.TakenAt); ok {
			min := t.Hour()*60 + t.Minute()
			key = bucketKey{
				date:     t.Format("2006-01-02"),
				startMin: min / intervalMinutes * intervalMinutes,
			}
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if (a.startMin < 0) != (b.startMin < 0) {
			return b.startMin < 0 // unknown last
		}
		if a.date != b.date {
			return a.date < b.date
		}
		return a.startMin < b.startMin
	})

	out := make([]Bucket, 0, len(order))
	for _, key := range order {
		b := Bucket{Date: key.date, Posts: groups[key]}
		if key.startMin >= 0 {
			b.Start = clock(key.startMin)
			b.End = clock((key.startMin + intervalMinutes) % (24 * 60))
		}
		out = append(out, b)
	}
	return out
}

func clock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Day groups the buckets of one calendar date for rendering.
type Day struct {
	Date    string   `json:"date"`
	Buckets []Bucket `json:"buckets"`
}

// Days splits sorted buckets by date, preserving order.
func Days(buckets []Bucket) []Day {
	var out []Day
	for _, b := range buckets {
		if len(out) == 0 || out[len(out)-1].Date != b.Date {
			out = append(out, Day{Date: b.Date})
		}
		d := &out[len(out)-1]
		d.Buckets = append(d.Buckets, b)
	}
	return out
}
