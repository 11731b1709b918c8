package space

import (
	"encoding/json"
	"sort"
	"time"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusTaken     Status = "taken"
	StatusPublished Status = "published"
	StatusShared    Status = "shared"
)

const (
	RolePrimary       = "primary"
	RoleSupplementary = "supplementary"
)

// ImageRef is one image reference. Older dataset snapshots store images as
// bare URL strings; newer ones as {src, taken_at, role} objects. Both decode
// into this shape, and it always encodes as the object form.
type ImageRef struct {
	Src     string `json:"src"`
	TakenAt string `json:"taken_at,omitempty"`
	Role    string `json:"role,omitempty"`
}

func (im *ImageRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*im = ImageRef{Src: s}
		return nil
	}
	type alias ImageRef
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*im = ImageRef(a)
	return nil
}

// Update is one change event attached to a Space. Append-only: stored order
// is insertion order, not timestamp order.
type Update struct {
	Author    string     `json:"author,omitempty"`
	Action    string     `json:"action,omitempty"`
	Text      string     `json:"text,omitempty"`
	Images    []ImageRef `json:"images,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
	Status    string     `json:"status,omitempty"`
	Related   []int      `json:"related,omitempty"`
}

// Primary reports the image tagged role=primary; by convention the first
// image when nothing is tagged.
func (u Update) Primary() (ImageRef, bool) {
	for _, im := range u.Images {
		if im.Role == RolePrimary {
			return im, true
		}
	}
	if len(u.Images) > 0 {
		return u.Images[0], true
	}
	return ImageRef{}, false
}

// Supplementary reports every image other than the primary, in stored order.
func (u Update) Supplementary() []ImageRef {
	p, ok := u.Primary()
	if !ok {
		return nil
	}
	var out []ImageRef
	for _, im := range u.Images {
		if im != p {
			out = append(out, im)
		}
	}
	return out
}

// Space is one exhibit slot. id doubles as the human-facing reference code.
type Space struct {
	ID     int    `json:"id"`
	Status Status `json:"status,omitempty"`

	Location string   `json:"location,omitempty"`
	Element  []string `json:"element,omitempty"`
	Style    []string `json:"style,omitempty"`

	Images  []ImageRef `json:"images,omitempty"`
	Updates []Update   `json:"updates,omitempty"`

	Description   string `json:"description,omitempty"`
	DescriptionJa string `json:"description_ja,omitempty"`

	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`

	TakenBy   string `json:"taken_by,omitempty"`
	TakenAt   string `json:"taken_at,omitempty"`
	TakenNote string `json:"taken_note,omitempty"`

	InstructionText   string     `json:"instruction_text,omitempty"`
	InstructionImages []ImageRef `json:"instruction_images,omitempty"`

	ModifiedBy string `json:"modified_by,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
}

// OriginalImage is the first image reference, conventionally the original
// state of the space.
func (s Space) OriginalImage() (ImageRef, bool) {
	if len(s.Images) == 0 {
		return ImageRef{}, false
	}
	return s.Images[0], true
}

// Available reports whether the space can still be claimed. Any status other
// than available counts as not available.
func (s Space) Available() bool {
	return s.Status == "" || s.Status == StatusAvailable
}

// timestampLayouts covers the shapes that have appeared in the dataset:
// RFC3339 with and without zone, and with fractional seconds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses a dataset timestamp in local time. ok is false for absent
// or unparseable values; callers degrade instead of failing.
func ParseTime(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, ts, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortedUpdates returns the updates ordered by creation time, untimestamped
// ones last. The stored slice is never reordered; this is a derived view for
// one record's presentation.
func SortedUpdates(s Space) []Update {
	out := make([]Update, len(s.Updates))
	copy(out, s.Updates)
	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := ParseTime(out[i].CreatedAt)
		tj, jok := ParseTime(out[j].CreatedAt)
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return ti.Before(tj)
	})
	return out
}

// Clone deep-copies a space so store snapshots can be handed out without
// aliasing the canonical dataset.
func Clone(s Space) Space {
	c := s
	c.Element = append([]string(nil), s.Element...)
	c.Style = append([]string(nil), s.Style...)
	c.Images = append([]ImageRef(nil), s.Images...)
	c.InstructionImages = append([]ImageRef(nil), s.InstructionImages...)
	if s.Updates != nil {
		c.Updates = make([]Update, len(s.Updates))
		for i, u := range s.Updates {
			cu := u
			cu.Images = append([]ImageRef(nil), u.Images...)
			cu.Related = append([]int(nil), u.Related...)
			c.Updates[i] = cu
		}
	}
	return c
}

// CloneAll deep-copies a dataset snapshot.
func CloneAll(spaces []Space) []Space {
	out := make([]Space, len(spaces))
	for i, s := range spaces {
		out[i] = Clone(s)
	}
	return out
}
