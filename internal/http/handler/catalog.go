package handler

import (
	"net/http"
	"strconv"
	"strings"

	"naikenten/internal/space"
	"naikenten/internal/store"
	"naikenten/internal/timeline"
)

// CatalogHandler serves the read-only views: the raw dataset and the
// filtered/faceted/bucketed derivations of it.
type CatalogHandler struct {
	Store    *store.Store
	SharedID int
}

// Dataset serves the full dataset, the same document the static pages fetch.
func (h *CatalogHandler) Dataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Store.Spaces())
}

func selectionFromQuery(r *http.Request) space.Selection {
	q := r.URL.Query()
	return space.Selection{
		Location:      strings.TrimSpace(q.Get("location")),
		Element:       strings.TrimSpace(q.Get("element")),
		Style:         strings.TrimSpace(q.Get("style")),
		AvailableOnly: q.Get("available") == "true",
	}
}

// Spaces serves the filtered view. With no query parameters it equals the
// dataset.
func (h *CatalogHandler) Spaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, space.Apply(h.Store.Spaces(), selectionFromQuery(r)))
}

// Facets serves the candidate values per filter dimension.
func (h *CatalogHandler) Facets(w http.ResponseWriter, r *http.Request) {
	spaces := h.Store.Spaces()
	out := map[string][]string{}
	for _, f := range space.Facets {
		vs := space.Values(spaces, f)
		if vs == nil {
			vs = []string{}
		}
		out[string(f)] = vs
	}
	writeJSON(w, out)
}

// Cards serves the filtered view projected for rendering.
func (h *CatalogHandler) Cards(w http.ResponseWriter, r *http.Request) {
	lang := space.ParseLang(r.URL.Query().Get("lang"))
	filtered := space.Apply(h.Store.Spaces(), selectionFromQuery(r))
	writeJSON(w, map[string]any{
		"summary": space.Found(lang, len(filtered)),
		"cards":   space.ProjectAll(filtered, lang, h.SharedID),
	})
}

// Timeline serves the bucketed event view. interval is in minutes.
func (h *CatalogHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	interval := timeline.DefaultIntervalMinutes
	if v := strings.TrimSpace(r.URL.Query().Get("interval")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 24*60 {
			interval = n
		}
	}
	posts := timeline.Collect(h.Store.Spaces())
	writeJSON(w, timeline.Days(timeline.Group(posts, interval)))
}
