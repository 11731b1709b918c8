package space

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func facetDataset() []Space {
	return []Space{
		{ID: 1, Location: "inside", Element: []string{"wall", "window"}, Style: []string{"neutral"}},
		{ID: 2, Location: "outside", Element: []string{"wall"}},
		{ID: 3, Element: []string{"floor"}, Style: []string{"modern", "neutral"}},
		{ID: 4, Location: "inside", Element: []string{}},
	}
}

func TestValuesScalar(t *testing.T) {
	assert.Equal(t, []string{"inside", "outside"}, Values(facetDataset(), FacetLocation))
}

func TestValuesMultiValued(t *testing.T) {
	ds := facetDataset()
	got := Values(ds, FacetElement)
	assert.Equal(t, []string{"wall", "window", "floor"}, got, "first-seen order, duplicates collapsed")

	// every returned value belongs to some record, and no record's value is missing
	set := map[string]bool{}
	for _, v := range got {
		set[v] = true
	}
	for _, s := range ds {
		for _, v := range s.Element {
			assert.True(t, set[v], "element %q missing from facet values", v)
		}
	}
}

func TestValuesAbsentContributesNothing(t *testing.T) {
	assert.Equal(t, []string{"neutral", "modern"}, Values(facetDataset(), FacetStyle))
	assert.Nil(t, Values([]Space{{ID: 1}}, FacetLocation))
}

func TestValuesUnknownFacet(t *testing.T) {
	assert.Nil(t, Values(facetDataset(), Facet("color")))
}
