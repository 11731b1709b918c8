// Package store owns the dataset file: one canonical JSON document, a
// compatibility copy, and a timestamped backup before every write. All admin
// mutations go through here.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"naikenten/internal/space"
)

var ErrNotFound = errors.New("space not found")
var ErrNoUpdates = errors.New("no updates to revert")

type Store struct {
	mu sync.Mutex

	dataFile   string
	compatFile string
	backupDir  string
	root       string

	spaces  []space.Space
	version uint64
}

// Open loads the canonical dataset, falling back to the compatibility file
// and then to an empty dataset. A missing file is not an error; a corrupt one
// is.
func Open(dataFile, compatFile, backupDir string) (*Store, error) {
	s := &Store{
		dataFile:   dataFile,
		compatFile: compatFile,
		backupDir:  backupDir,
		root:       filepath.Dir(dataFile),
	}

	for _, path := range []string{dataFile, compatFile} {
		b, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &s.spaces); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		break
	}
	return s, nil
}

// Spaces returns a deep-copied snapshot of the dataset.
func (s *Store) Spaces() []space.Space {
	s.mu.Lock()
	defer s.mu.Unlock()
	return space.CloneAll(s.spaces)
}

// Get returns a deep copy of one space.
func (s *Store) Get(id int) (space.Space, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := s.find(id)
	if sp == nil {
		return space.Space{}, ErrNotFound
	}
	return space.Clone(*sp), nil
}

// Version increments on every committed write. The export worker polls it.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) find(id int) *space.Space {
	for i := range s.spaces {
		if s.spaces[i].ID == id {
			return &s.spaces[i]
		}
	}
	return nil
}

// write backs up the current canonical file, then rewrites both copies via
// temp+rename. Caller holds the lock.
func (s *Store) write() error {
	if _, err := os.Stat(s.dataFile); err == nil {
		if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
			return err
		}
		name := fmt.Sprintf("%s.bak.%s", filepath.Base(s.dataFile), time.Now().UTC().Format("20060102150405"))
		if err := copyFile(s.dataFile, filepath.Join(s.backupDir, name)); err != nil {
			return err
		}
	}

	b, err := json.MarshalIndent(s.spaces, "", "  ")
	if err != nil {
		return err
	}
	for _, path := range []string{s.dataFile, s.compatFile} {
		if path == "" {
			continue
		}
		if err := writeFileAtomic(path, b); err != nil {
			return err
		}
	}
	s.version++
	return nil
}

func copyFile(src, dst string) error {
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0o644)
}

func writeFileAtomic(path string, b []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func nowStamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05")
}

// MarkTaken marks one space taken. An optional replacement main image is
// prepended so the originals stay behind it, and recorded as a taken update
// for the timeline. publish upgrades the status only when a new main image
// came with it.
func (s *Store) MarkTaken(id int, takenBy, note string, newMain *space.ImageRef, publish bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.find(id)
	if target == nil {
		return ErrNotFound
	}

	if newMain != nil {
		target.Images = append([]space.ImageRef{*newMain}, target.Images...)
		primary := *newMain
		primary.Role = space.RolePrimary
		target.Updates = append(target.Updates, space.Update{
			Author:    takenBy,
			Text:      note,
			Action:    "taken",
			Images:    []space.ImageRef{primary},
			CreatedAt: nowStamp(),
			Status:    string(space.StatusTaken),
		})
	}

	target.Status = space.StatusTaken
	target.TakenBy = takenBy
	target.TakenAt = nowStamp()
	if note != "" {
		target.TakenNote = note
	}
	if publish && newMain != nil {
		target.Status = space.StatusPublished
	}

	return s.write()
}

// MarkMany marks several spaces taken in one shot, attaching the
// participant's instruction text and images to each. Unknown ids become
// per-id error strings rather than failing the batch.
func (s *Store) MarkMany(ids []int, takenBy, note, instructionText string, instructionImages []space.ImageRef) (marked []int, errs []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		target := s.find(id)
		if target == nil {
			errs = append(errs, fmt.Sprintf("space %d not found", id))
			continue
		}
		target.Status = space.StatusTaken
		target.TakenBy = takenBy
		target.TakenAt = nowStamp()
		if note != "" {
			target.TakenNote = note
		}
		if instructionText != "" {
			target.InstructionText = instructionText
		}
		if len(instructionImages) > 0 {
			target.InstructionImages = append(target.InstructionImages, instructionImages...)
		}
		marked = append(marked, id)
	}

	if len(marked) == 0 {
		return marked, errs, nil
	}
	return marked, errs, s.write()
}

// AddUpdate appends a published update: first image primary, the rest
// supplementary. Returns the number of images attached.
func (s *Store) AddUpdate(id int, author, text string, images []space.ImageRef) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.find(id)
	if target == nil {
		return 0, ErrNotFound
	}

	for i := range images {
		if i == 0 {
			images[i].Role = space.RolePrimary
		} else if images[i].Role == "" {
			images[i].Role = space.RoleSupplementary
		}
	}

	target.Updates = append(target.Updates, space.Update{
		Author:    author,
		Text:      text,
		Action:    "update",
		Images:    images,
		CreatedAt: nowStamp(),
		Status:    string(space.StatusPublished),
	})
	target.Status = space.StatusPublished
	target.ModifiedBy = author
	target.ModifiedAt = nowStamp()

	return len(images), s.write()
}

// SaveInput is the legacy bulk-edit operation: attach an update to an
// existing space or create a new one, with an optional dry run.
type SaveInput struct {
	ID        int  // ignored when CreateNew
	CreateNew bool
	Author    string
	Text      string
	Action    string
	Status    string
	Related   []int
	Images    []space.ImageRef
	Primary   string // filename of the primary image
	NoAppend  bool   // do not extend the space's own image list
	DryRun    bool
}

type SaveResult struct {
	ID      int
	Preview *space.Space // set on dry run
}

// Save implements the /save contract. On dry run it returns the would-be
// state of the target space and writes nothing.
func (s *Store) Save(in SaveInput) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := in.ID
	if in.CreateNew {
		maxID := 0
		for _, sp := range s.spaces {
			if sp.ID > maxID {
				maxID = sp.ID
			}
		}
		id = maxID + 1
		s.spaces = append(s.spaces, space.Space{
			ID:        id,
			CreatedBy: in.Author,
			CreatedAt: nowStamp(),
			Status:    space.Status(in.Status),
		})
	}

	target := s.find(id)
	if target == nil {
		return SaveResult{}, ErrNotFound
	}

	ordered := orderByPrimary(in.Images, in.Primary)
	upd := space.Update{
		Author:    in.Author,
		Text:      in.Text,
		Action:    in.Action,
		Images:    ordered,
		CreatedAt: nowStamp(),
		Status:    in.Status,
		Related:   in.Related,
	}

	if in.DryRun {
		preview := space.Clone(*target)
		preview.Updates = append(preview.Updates, upd)
		if !in.NoAppend {
			preview.Images = append(preview.Images, in.Images...)
		}
		if in.CreateNew {
			// roll back the provisional record
			s.spaces = s.spaces[:len(s.spaces)-1]
		}
		return SaveResult{ID: id, Preview: &preview}, nil
	}

	target.Updates = append(target.Updates, upd)
	if !in.NoAppend {
		target.Images = append(target.Images, in.Images...)
	}
	target.ModifiedBy = in.Author
	target.ModifiedAt = nowStamp()
	if in.Status != "" {
		target.Status = space.Status(in.Status)
	}

	return SaveResult{ID: id}, s.write()
}

func orderByPrimary(images []space.ImageRef, primary string) []space.ImageRef {
	out := make([]space.ImageRef, 0, len(images))
	for _, im := range images {
		if primary != "" && filepath.Base(im.Src) == primary {
			im.Role = space.RolePrimary
			out = append([]space.ImageRef{im}, out...)
			continue
		}
		if im.Role == "" {
			im.Role = space.RoleSupplementary
		}
		out = append(out, im)
	}
	return out
}

// RevertLast pops the most recent update of one space. If the update's
// primary image was prepended as the main image it is dropped again (and its
// file removed, best effort). When no updates remain the space goes back to
// available and the taken bookkeeping is cleared.
func (s *Store) RevertLast(id int) (revertedAt string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.find(id)
	if target == nil {
		return "", ErrNotFound
	}
	if len(target.Updates) == 0 {
		return "", ErrNoUpdates
	}

	last := target.Updates[len(target.Updates)-1]
	target.Updates = target.Updates[:len(target.Updates)-1]

	var primarySrc string
	for _, im := range last.Images {
		if im.Role == space.RolePrimary {
			primarySrc = im.Src
			break
		}
	}
	if primarySrc != "" && len(target.Images) > 0 && target.Images[0].Src == primarySrc {
		target.Images = target.Images[1:]
		if strings.HasPrefix(primarySrc, "img/") {
			_ = os.Remove(filepath.Join(s.root, filepath.FromSlash(primarySrc)))
		}
	}

	if len(target.Updates) == 0 {
		target.Status = space.StatusAvailable
		target.TakenBy = ""
		target.TakenAt = ""
		target.TakenNote = ""
	}

	return last.CreatedAt, s.write()
}

// MarkPreview describes the image swap a mark would perform, without touching
// anything.
type MarkPreview struct {
	Old  *space.ImageRef `json:"old"`
	New  *space.ImageRef `json:"new"`
	Note string          `json:"note,omitempty"`
}

// PreviewMark builds the confirmation payload for the two-phase mark flow.
// filename is where the uploaded image would land; nothing is saved.
func (s *Store) PreviewMark(id int, filename, note string) (MarkPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.find(id)
	if target == nil {
		return MarkPreview{}, ErrNotFound
	}

	p := MarkPreview{Note: note}
	if len(target.Images) > 0 {
		old := target.Images[0]
		p.Old = &old
	}
	if filename != "" {
		p.New = &space.ImageRef{Src: fmt.Sprintf("img/%d-manual-update/%s", id, filename)}
	}
	return p, nil
}
