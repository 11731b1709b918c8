package store

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"

	"naikenten/internal/space"
)

// Upload is one received image, already read off the wire.
type Upload struct {
	Name string
	Data []byte
}

// Uploads persists received images under the image directory and turns them
// into dataset image references.
type Uploads struct {
	// Dir is the image directory on disk; references are recorded relative
	// to its parent, e.g. "img/140-abc123/photo.jpg".
	Dir string
}

// Folder returns a fresh upload folder name for the given prefix.
func (u Uploads) Folder(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

// SaveAll writes every upload into Dir/folder and returns refs in input
// order. taken_at comes from EXIF when the image carries it, else the
// receipt time.
func (u Uploads) SaveAll(files []Upload, folder string) ([]space.ImageRef, error) {
	dir := filepath.Join(u.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	refs := make([]space.ImageRef, 0, len(files))
	for _, f := range files {
		name := SanitizeFilename(f.Name)
		if name == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o644); err != nil {
			return nil, err
		}
		takenAt := exifTakenAt(f.Data)
		if takenAt == "" {
			takenAt = time.Now().UTC().Format("2006-01-02T15:04:05")
		}
		refs = append(refs, space.ImageRef{
			Src:     path.Join(filepath.Base(u.Dir), folder, name),
			TakenAt: takenAt,
		})
	}
	return refs, nil
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename strips directories and collapses anything risky, in the
// spirit of werkzeug's secure_filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFilename.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}

func exifTakenAt(data []byte) string {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	t, err := x.DateTime()
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}
