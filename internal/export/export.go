// Package export derives the frontend JSON variants from the canonical
// dataset: a trimmed per-space projection and a flat chronological event
// list. Both are write-only artifacts, never read back.
package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"naikenten/internal/space"
	"naikenten/internal/timeline"
)

// OptimizedSpace carries only what the gallery page needs.
type OptimizedSpace struct {
	ID     int          `json:"id"`
	Status space.Status `json:"status,omitempty"`

	Location string   `json:"location,omitempty"`
	Element  []string `json:"element,omitempty"`
	Style    []string `json:"style,omitempty"`

	Description   string `json:"description,omitempty"`
	DescriptionJa string `json:"description_ja,omitempty"`

	OriginalImage *space.ImageRef `json:"original_image"`
	FinalImage    *space.ImageRef `json:"final_image"`

	TakenBy string `json:"taken_by,omitempty"`
	TakenAt string `json:"taken_at,omitempty"`
}

// Optimized projects the dataset for the gallery. The final image is the
// primary of the last published update, when any.
func Optimized(spaces []space.Space) []OptimizedSpace {
	out := make([]OptimizedSpace, 0, len(spaces))
	for _, s := range spaces {
		e := OptimizedSpace{
			ID:            s.ID,
			Status:        s.Status,
			Location:      s.Location,
			Element:       s.Element,
			Style:         s.Style,
			Description:   s.Description,
			DescriptionJa: s.DescriptionJa,
			TakenBy:       s.TakenBy,
			TakenAt:       s.TakenAt,
		}
		if im, ok := s.OriginalImage(); ok {
			e.OriginalImage = &im
		}
		for i := len(s.Updates) - 1; i >= 0; i-- {
			u := s.Updates[i]
			if u.Status != string(space.StatusPublished) {
				continue
			}
			if im, ok := u.Primary(); ok {
				e.FinalImage = &im
				break
			}
		}
		out = append(out, e)
	}
	return out
}

// Timeline flattens the dataset into posts sorted by timestamp,
// untimestamped ones last.
func Timeline(spaces []space.Space) []timeline.Post {
	posts := timeline.Collect(spaces)
	sort.SliceStable(posts, func(i, j int) bool {
		a, aok := space.ParseTime(posts[i].TakenAt)
		b, bok := space.ParseTime(posts[j].TakenAt)
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		return a.Before(b)
	})
	return posts
}

// WriteFiles renders both variants into dir.
func WriteFiles(dir string, spaces []space.Space) error {
	if err := writeJSON(filepath.Join(dir, "spaces_optimized.json"), Optimized(spaces)); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "spaces_timeline.json"), Timeline(spaces))
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
