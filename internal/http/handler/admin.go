package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"naikenten/internal/space"
	"naikenten/internal/store"
)

const maxUploadBytes = 64 << 20

// AdminHandler owns the mutating endpoints. All of them answer the
// {ok, error} envelope the admin pages expect; an ok:false is an operator
// message, not a transport failure.
type AdminHandler struct {
	Store   *store.Store
	Uploads store.Uploads
}

func parseForm(r *http.Request) error {
	return r.ParseMultipartForm(maxUploadBytes)
}

func formFiles(r *http.Request, field string) ([]store.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var out []store.Upload
	for _, fh := range r.MultipartForm.File[field] {
		u, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		if u.Name == "" {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func readUpload(fh *multipart.FileHeader) (store.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return store.Upload{}, err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return store.Upload{}, err
	}
	return store.Upload{Name: fh.Filename, Data: b}, nil
}

func parseIDList(s string) []int {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			ids = append(ids, n)
		}
	}
	return ids
}

// Mark handles POST /mark: mark one space taken, optionally replacing its
// main image and publishing.
func (h *AdminHandler) Mark(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		fail(w, "bad form")
		return
	}

	idStr := r.FormValue("mark_id")
	if idStr == "" {
		fail(w, "mark_id required")
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		fail(w, "invalid mark_id")
		return
	}

	takenBy := strings.TrimSpace(r.FormValue("taken_by"))
	if takenBy == "" {
		takenBy = "Unknown"
	}
	note := strings.TrimSpace(r.FormValue("taken_note"))
	publish := r.FormValue("mark_publish") == "on" || r.FormValue("mark_publish") == "1"

	var newMain *space.ImageRef
	files, err := formFiles(r, "taken_file")
	if err != nil {
		fail(w, "upload failed")
		return
	}
	if len(files) > 0 {
		refs, err := h.Uploads.SaveAll(files[:1], fmt.Sprintf("%d-manual-update", id))
		if err != nil || len(refs) == 0 {
			fail(w, "upload failed")
			return
		}
		newMain = &refs[0]
	}

	if err := h.Store.MarkTaken(id, takenBy, note, newMain, publish); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(w, "space id not found")
			return
		}
		fail(w, "write failed")
		return
	}

	writeJSON(w, map[string]any{"ok": true, "id": id, "published": publish && newMain != nil})
}

// MarkMultiple handles POST /mark_multiple: batch mark with shared
// instruction text/images.
func (h *AdminHandler) MarkMultiple(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		fail(w, "bad form")
		return
	}

	ids := parseIDList(r.FormValue("space_ids"))
	takenBy := strings.TrimSpace(r.FormValue("taken_by"))
	if len(ids) == 0 || takenBy == "" {
		fail(w, "space_ids and taken_by required")
		return
	}
	note := strings.TrimSpace(r.FormValue("taken_note"))
	instructionText := strings.TrimSpace(r.FormValue("instruction_text"))

	files, err := formFiles(r, "instruction_files")
	if err != nil {
		fail(w, "upload failed")
		return
	}
	var refs []space.ImageRef
	if len(files) > 0 {
		refs, err = h.Uploads.SaveAll(files, h.Uploads.Folder("instruction"))
		if err != nil {
			fail(w, "upload failed")
			return
		}
	}

	marked, errs, err := h.Store.MarkMany(ids, takenBy, note, instructionText, refs)
	if err != nil {
		fail(w, "write failed")
		return
	}
	if marked == nil {
		marked = []int{}
	}
	if errs == nil {
		errs = []string{}
	}

	writeJSON(w, map[string]any{
		"ok":                 true,
		"marked":             marked,
		"errors":             errs,
		"instruction_images": len(refs),
	})
}

// MarkPreview handles POST /mark_preview: the first half of the two-phase
// mark flow. Nothing is saved; the response describes the image swap for
// human confirmation.
func (h *AdminHandler) MarkPreview(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		fail(w, "bad form")
		return
	}

	idStr := r.FormValue("mark_id")
	if idStr == "" {
		fail(w, "mark_id required")
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		fail(w, "invalid mark_id")
		return
	}
	note := strings.TrimSpace(r.FormValue("taken_note"))

	filename := ""
	if r.MultipartForm != nil {
		if fhs := r.MultipartForm.File["taken_file"]; len(fhs) > 0 {
			filename = store.SanitizeFilename(fhs[0].Filename)
		}
	}

	p, err := h.Store.PreviewMark(id, filename, note)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(w, "space id not found")
			return
		}
		fail(w, "preview failed")
		return
	}

	writeJSON(w, map[string]any{"ok": true, "old": p.Old, "new": p.New, "note": p.Note})
}

// PublishUpdate handles POST /publish_update: attach a published update with
// images to one space.
func (h *AdminHandler) PublishUpdate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		fail(w, "bad form")
		return
	}

	idStr := strings.TrimSpace(r.FormValue("space_id"))
	author := strings.TrimSpace(r.FormValue("author"))
	if idStr == "" || author == "" {
		fail(w, "space_id and author required")
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		fail(w, "invalid space_id")
		return
	}

	files, err := formFiles(r, "update_files")
	if err != nil {
		fail(w, "upload failed")
		return
	}
	if len(files) == 0 {
		fail(w, "no files uploaded")
		return
	}

	refs, err := h.Uploads.SaveAll(files, h.Uploads.Folder(fmt.Sprintf("update-%d", id)))
	if err != nil {
		fail(w, "upload failed")
		return
	}

	count, err := h.Store.AddUpdate(id, author, strings.TrimSpace(r.FormValue("update_text")), refs)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(w, "space id not found")
			return
		}
		fail(w, "write failed")
		return
	}

	writeJSON(w, map[string]any{"ok": true, "images": count})
}

// Save handles POST /save, the legacy bulk-edit endpoint: create a space or
// append an update, with dry-run preview support.
func (h *AdminHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		fail(w, "bad form")
		return
	}

	files, err := formFiles(r, "files")
	if err != nil {
		fail(w, "upload failed")
		return
	}
	if len(files) == 0 {
		fail(w, "no files uploaded")
		return
	}

	titleID := strings.TrimSpace(r.FormValue("title_id"))
	author := strings.TrimSpace(r.FormValue("author"))
	if author == "" {
		author = "Unknown"
	}
	createNew := r.FormValue("create_new") == "1" || titleID == ""

	id := 0
	if !createNew {
		id, err = strconv.Atoi(titleID)
		if err != nil {
			fail(w, "invalid title_id")
			return
		}
	}

	var related []int
	if rel := strings.TrimSpace(r.FormValue("related")); rel != "" {
		related = parseIDList(rel)
	}

	slug := store.SanitizeFilename(r.FormValue("slug"))
	if slug == "" {
		slug = h.Uploads.Folder("upload")
	}
	folder := fmt.Sprintf("%s-%s", titleID, slug)
	if createNew {
		folder = slug
	}

	refs, err := h.Uploads.SaveAll(files, folder)
	if err != nil {
		fail(w, "upload failed")
		return
	}

	status := r.FormValue("status")
	if status == "" {
		status = "draft"
	}

	res, err := h.Store.Save(store.SaveInput{
		ID:        id,
		CreateNew: createNew,
		Author:    author,
		Text:      strings.TrimSpace(r.FormValue("text")),
		Action:    strings.TrimSpace(r.FormValue("action")),
		Status:    status,
		Related:   related,
		Images:    refs,
		Primary:   strings.TrimSpace(r.FormValue("primary")),
		NoAppend:  r.FormValue("no_append") == "1",
		DryRun:    r.FormValue("dry_run") == "1" || r.FormValue("dry_run") == "on",
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(w, "target id not found: "+titleID)
			return
		}
		fail(w, "write failed")
		return
	}

	if res.Preview != nil {
		writeJSON(w, map[string]any{"ok": true, "preview": res.Preview, "dry_run": true})
		return
	}
	writeJSON(w, map[string]any{"ok": true, "id": res.ID, "folder": folder})
}

// Revert handles POST /revert: undo the most recent update of one space.
func (h *AdminHandler) Revert(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		fail(w, "bad form")
		return
	}

	idStr := r.FormValue("revert_id")
	if idStr == "" {
		fail(w, "revert_id required")
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		fail(w, "invalid revert_id")
		return
	}

	revertedAt, err := h.Store.RevertLast(id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			fail(w, "space id not found")
		case errors.Is(err, store.ErrNoUpdates):
			fail(w, "no updates to revert")
		default:
			fail(w, "write failed")
		}
		return
	}

	writeJSON(w, map[string]any{"ok": true, "id": id, "reverted": revertedAt})
}
