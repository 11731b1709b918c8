package space

// Selection holds the current filter state: at most one value per facet
// dimension plus the available-only toggle. The zero value selects nothing.
type Selection struct {
	Location string
	Element  string
	Style    string

	AvailableOnly bool
}

// Toggle returns the selection after clicking value v in dimension f.
// Selecting a second value for the same dimension replaces the first;
// clicking the already-selected value clears the dimension.
func (sel Selection) Toggle(f Facet, v string) Selection {
	set := func(cur string) string {
		if cur == v {
			return ""
		}
		return v
	}
	switch f {
	case FacetLocation:
		sel.Location = set(sel.Location)
	case FacetElement:
		sel.Element = set(sel.Element)
	case FacetStyle:
		sel.Style = set(sel.Style)
	}
	return sel
}

// Empty reports whether the selection filters nothing.
func (sel Selection) Empty() bool {
	return sel == Selection{}
}

// Match reports whether one space passes the selection. Conditions are
// conjunctive across dimensions. A record with no value for a selected
// multi-valued facet simply does not match; with nothing selected everything
// matches.
func (sel Selection) Match(s Space) bool {
	if sel.AvailableOnly && !s.Available() {
		return false
	}
	if sel.Location != "" && s.Location != sel.Location {
		return false
	}
	if sel.Element != "" && !contains(s.Element, sel.Element) {
		return false
	}
	if sel.Style != "" && !contains(s.Style, sel.Style) {
		return false
	}
	return true
}

// Apply derives the filtered view. The result is a fresh slice preserving the
// dataset's relative order; the dataset itself is never mutated. An empty
// result is a valid outcome, not a failure.
func Apply(spaces []Space, sel Selection) []Space {
	out := make([]Space, 0, len(spaces))
	for _, s := range spaces {
		if sel.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

func contains(vs []string, v string) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}
