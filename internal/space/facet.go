package space

// Facet is a filterable attribute dimension.
type Facet string

const (
	FacetLocation Facet = "location" // scalar
	FacetElement  Facet = "element"  // multi-valued
	FacetStyle    Facet = "style"    // multi-valued
)

// Facets lists the dimensions in display order.
var Facets = []Facet{FacetLocation, FacetElement, FacetStyle}

// Values returns the distinct values observed for a facet across the dataset.
// Scalar facets contribute their value, multi-valued ones each member.
// Duplicates collapse, first-seen order is preserved, absent or empty values
// contribute nothing. An unknown facet yields nil.
func Values(spaces []Space, f Facet) []string {
	seen := map[string]struct{}{}
	var out []string

	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	for _, s := range spaces {
		switch f {
		case FacetLocation:
			add(s.Location)
		case FacetElement:
			for _, v := range s.Element {
				add(v)
			}
		case FacetStyle:
			for _, v := range s.Style {
				add(v)
			}
		}
	}
	return out
}
