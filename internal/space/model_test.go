package space

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageRefDecodesBothShapes(t *testing.T) {
	var s Space
	raw := `{
		"id": 7,
		"images": [
			"img/7/original.jpg",
			{"src": "img/7/after.jpg", "taken_at": "2025-09-05T07:42:00", "role": "primary"}
		]
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	require.Len(t, s.Images, 2)
	assert.Equal(t, ImageRef{Src: "img/7/original.jpg"}, s.Images[0])
	assert.Equal(t, "img/7/after.jpg", s.Images[1].Src)
	assert.Equal(t, "2025-09-05T07:42:00", s.Images[1].TakenAt)
	assert.Equal(t, RolePrimary, s.Images[1].Role)
}

func TestImageRefEncodesObjectForm(t *testing.T) {
	b, err := json.Marshal([]ImageRef{{Src: "img/x.jpg"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"src":"img/x.jpg"}]`, string(b))
}

func TestUpdatePrimary(t *testing.T) {
	t.Run("tagged primary wins", func(t *testing.T) {
		u := Update{Images: []ImageRef{
			{Src: "a.jpg", Role: RoleSupplementary},
			{Src: "b.jpg", Role: RolePrimary},
		}}
		p, ok := u.Primary()
		require.True(t, ok)
		assert.Equal(t, "b.jpg", p.Src)
		assert.Equal(t, []ImageRef{{Src: "a.jpg", Role: RoleSupplementary}}, u.Supplementary())
	})

	t.Run("first image by convention", func(t *testing.T) {
		u := Update{Images: []ImageRef{{Src: "a.jpg"}, {Src: "b.jpg"}}}
		p, ok := u.Primary()
		require.True(t, ok)
		assert.Equal(t, "a.jpg", p.Src)
	})

	t.Run("no images", func(t *testing.T) {
		_, ok := Update{}.Primary()
		assert.False(t, ok)
	})
}

func TestParseTime(t *testing.T) {
	for _, ts := range []string{
		"2025-09-05T07:42:00",
		"2025-09-05T07:42:00Z",
		"2025-09-05 07:42:00",
		"2025-09-05T07:42:00.123456",
	} {
		_, ok := ParseTime(ts)
		assert.True(t, ok, ts)
	}

	for _, ts := range []string{"", "not-a-date", "2025/09/05"} {
		_, ok := ParseTime(ts)
		assert.False(t, ok, ts)
	}
}

func TestSortedUpdatesDoesNotMutateStoredOrder(t *testing.T) {
	s := Space{Updates: []Update{
		{Author: "late", CreatedAt: "2025-09-05T12:00:00"},
		{Author: "undated"},
		{Author: "early", CreatedAt: "2025-09-05T09:00:00"},
	}}

	sorted := SortedUpdates(s)

	assert.Equal(t, "early", sorted[0].Author)
	assert.Equal(t, "late", sorted[1].Author)
	assert.Equal(t, "undated", sorted[2].Author, "untimestamped updates sort last")

	// stored order untouched
	assert.Equal(t, "late", s.Updates[0].Author)
	assert.Equal(t, "undated", s.Updates[1].Author)
	assert.Equal(t, "early", s.Updates[2].Author)
}

func TestCloneIsDeep(t *testing.T) {
	s := Space{
		ID:      1,
		Element: []string{"wall"},
		Images:  []ImageRef{{Src: "a.jpg"}},
		Updates: []Update{{Author: "x", Images: []ImageRef{{Src: "u.jpg"}}}},
	}
	c := Clone(s)
	c.Element[0] = "door"
	c.Images[0].Src = "b.jpg"
	c.Updates[0].Images[0].Src = "v.jpg"

	assert.Equal(t, "wall", s.Element[0])
	assert.Equal(t, "a.jpg", s.Images[0].Src)
	assert.Equal(t, "u.jpg", s.Updates[0].Images[0].Src)
}
