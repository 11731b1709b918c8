package space

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterDataset() []Space {
	return []Space{
		{ID: 1, Status: StatusAvailable, Location: "inside", Element: []string{"wall"}, Style: []string{"neutral"}},
		{ID: 2, Status: StatusTaken, Location: "outside", Element: []string{"wall", "door"}},
		{ID: 3, Status: StatusAvailable, Location: "outside", Element: []string{"floor"}, Style: []string{"modern"}},
		{ID: 4, Status: StatusPublished, Location: "inside", Element: []string{"window"}},
		{ID: 5, Status: StatusTaken, Style: []string{"neutral"}},
	}
}

func ids(spaces []Space) []int {
	out := make([]int, 0, len(spaces))
	for _, s := range spaces {
		out = append(out, s.ID)
	}
	return out
}

func TestApplyEmptySelectionIsIdentity(t *testing.T) {
	ds := filterDataset()
	assert.Equal(t, ids(ds), ids(Apply(ds, Selection{})))
}

func TestApplyAvailableOnly(t *testing.T) {
	ds := filterDataset()
	got := Apply(ds, Selection{AvailableOnly: true})
	assert.Equal(t, []int{1, 3}, ids(got), "5 spaces with 2 available filter down to 2")
}

func TestApplyScalarFacet(t *testing.T) {
	got := Apply(filterDataset(), Selection{Location: "outside"})
	assert.Equal(t, []int{2, 3}, ids(got))
}

func TestApplyMultiValuedFacet(t *testing.T) {
	got := Apply(filterDataset(), Selection{Element: "wall"})
	assert.Equal(t, []int{1, 2}, ids(got))

	// a record with no opinion never matches a selected multi-valued facet
	got = Apply(filterDataset(), Selection{Style: "neutral"})
	assert.Equal(t, []int{1, 5}, ids(got))
}

func TestApplyConjunctive(t *testing.T) {
	got := Apply(filterDataset(), Selection{Location: "outside", Element: "wall"})
	assert.Equal(t, []int{2, 3}, ids(Apply(filterDataset(), Selection{Location: "outside"})))
	assert.Equal(t, []int{2}, ids(got))

	// no matches is a valid outcome
	got = Apply(filterDataset(), Selection{Location: "inside", Element: "floor"})
	assert.Empty(t, got)
}

func TestApplyIsSubsequenceAndNonMutating(t *testing.T) {
	ds := filterDataset()
	before := ids(ds)

	got := Apply(ds, Selection{AvailableOnly: true, Location: "outside"})

	// subsequence: relative order preserved
	pos := 0
	for _, g := range got {
		found := false
		for ; pos < len(ds); pos++ {
			if ds[pos].ID == g.ID {
				found = true
				pos++
				break
			}
		}
		require.True(t, found, "result is not a subsequence of the dataset")
	}

	assert.Equal(t, before, ids(ds), "Apply must not mutate the dataset")
}

func TestApplyIdempotent(t *testing.T) {
	ds := filterDataset()
	sel := Selection{Location: "outside", AvailableOnly: true}
	once := Apply(ds, sel)
	twice := Apply(once, sel)
	assert.Equal(t, ids(once), ids(twice))
}

func TestToggleSingleSelectPerDimension(t *testing.T) {
	ds := filterDataset()
	var sel Selection

	// select inside, then outside: outside replaces inside
	sel = sel.Toggle(FacetLocation, "inside")
	sel = sel.Toggle(FacetLocation, "outside")
	assert.Equal(t, "outside", sel.Location)
	assert.Equal(t, []int{2, 3}, ids(Apply(ds, sel)))

	// selecting outside again clears the dimension entirely
	sel = sel.Toggle(FacetLocation, "outside")
	assert.Equal(t, "", sel.Location)
	assert.Equal(t, len(ds), len(Apply(ds, sel)))
}

func TestToggleDimensionsIndependent(t *testing.T) {
	var sel Selection
	sel = sel.Toggle(FacetLocation, "inside")
	sel = sel.Toggle(FacetElement, "wall")
	assert.Equal(t, "inside", sel.Location)
	assert.Equal(t, "wall", sel.Element)

	sel = sel.Toggle(FacetElement, "wall")
	assert.Equal(t, "inside", sel.Location, "clearing one dimension leaves the others")
	assert.Equal(t, "", sel.Element)
}
