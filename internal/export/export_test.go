package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naikenten/internal/space"
)

func sample() []space.Space {
	return []space.Space{
		{
			ID:       1,
			Status:   space.StatusPublished,
			Location: "2F",
			Element:  []string{"wall"},
			Images:   []space.ImageRef{{Src: "img/1/orig.jpg", TakenAt: "2025-09-05T10:00:00"}},
			TakenBy:  "aoi",
			Updates: []space.Update{
				{
					Author:    "aoi",
					Status:    "published",
					CreatedAt: "2025-09-05T11:00:00",
					Images:    []space.ImageRef{{Src: "img/1-x/one.jpg", Role: space.RolePrimary, TakenAt: "2025-09-05T11:00:00"}},
				},
				{
					Author:    "aoi",
					Status:    "draft",
					CreatedAt: "2025-09-05T12:00:00",
					Images:    []space.ImageRef{{Src: "img/1-x/two.jpg", Role: space.RolePrimary}},
				},
			},
		},
		{
			ID:     2,
			Status: space.StatusAvailable,
			Images: []space.ImageRef{{Src: "img/2/orig.jpg", TakenAt: "2025-09-05T08:30:00"}},
		},
	}
}

func TestOptimizedFinalImageIsLastPublished(t *testing.T) {
	out := Optimized(sample())
	require.Len(t, out, 2)

	first := out[0]
	require.NotNil(t, first.OriginalImage)
	assert.Equal(t, "img/1/orig.jpg", first.OriginalImage.Src)
	require.NotNil(t, first.FinalImage, "draft updates are skipped")
	assert.Equal(t, "img/1-x/one.jpg", first.FinalImage.Src)
	assert.Equal(t, "aoi", first.TakenBy)

	second := out[1]
	assert.Nil(t, second.FinalImage)
	require.NotNil(t, second.OriginalImage)
}

func TestTimelineSortedUndatedLast(t *testing.T) {
	posts := Timeline(sample())
	require.NotEmpty(t, posts)

	// dated posts come first in chronological order
	var last string
	undatedSeen := false
	for _, p := range posts {
		_, ok := space.ParseTime(p.TakenAt)
		if !ok {
			undatedSeen = true
			continue
		}
		assert.False(t, undatedSeen, "dated post after an undated one")
		if last != "" {
			assert.LessOrEqual(t, last, p.TakenAt)
		}
		last = p.TakenAt
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFiles(dir, sample()))

	for _, name := range []string{"spaces_optimized.json", "spaces_timeline.json"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.True(t, json.Valid(b), name)
	}

	var opt []OptimizedSpace
	b, _ := os.ReadFile(filepath.Join(dir, "spaces_optimized.json"))
	require.NoError(t, json.Unmarshal(b, &opt))
	assert.Len(t, opt, 2)
}
