package export

import (
	"context"
	"log"
	"time"

	"naikenten/internal/store"
)

// Worker regenerates the derived JSON files after dataset writes. It polls
// the store's version instead of hooking every mutation, so a burst of admin
// actions collapses into one export.
type Worker struct {
	Store    *store.Store
	Dir      string
	Interval time.Duration

	exported uint64
	ran      bool
}

func (w *Worker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Worker) tick() {
	v := w.Store.Version()
	if w.ran && v == w.exported {
		return
	}
	if err := w.Export(); err != nil {
		log.Printf("export failed: %v\n", err)
		return
	}
	w.exported = v
	w.ran = true
}

// Export writes both derived files once.
func (w *Worker) Export() error {
	return WriteFiles(w.Dir, w.Store.Spaces())
}
