package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gino-rizzo/ginos-pizza-api/models"
)

// PDFWatcher keeps one receipt PDF per order in cloud storage, filed under
// the incoming folder normally and the customer-updating folder while the
// order's update-status flag is set. It runs as its own process with its
// own cache, polling the same sheet the API serves; the two coordinate only
// through the sheet itself.
type PDFWatcher struct {
	cache          *SheetCache
	storage        StorageInterface
	incomingFolder string
	updatingFolder string
	render         func(models.Order) ([]byte, error)
}

// NewPDFWatcher wires a watcher over the given cache and storage
func NewPDFWatcher(cache *SheetCache, storage StorageInterface, incomingFolder, updatingFolder string) *PDFWatcher {
	return &PDFWatcher{
		cache:          cache,
		storage:        storage,
		incomingFolder: incomingFolder,
		updatingFolder: updatingFolder,
		render:         RenderOrderPDF,
	}
}

// Run polls until the context is cancelled
func (w *PDFWatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.Sweep(ctx); err != nil {
			// Transient storage or sheet failures just wait for the next tick.
			log.Printf("pdf watcher sweep failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep reconciles storage with the current sheet state once
func (w *PDFWatcher) Sweep(ctx context.Context) error {
	snap, err := w.cache.Get(ctx, true)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	for _, order := range snap.Orders {
		if order.Cancelled || order.IsSyntheticOrderNum() {
			// No PDF for cancelled rows; synthetic order numbers are not
			// stable enough to name a file after.
			continue
		}
		if err := w.reconcileOrder(ctx, order); err != nil {
			// One bad order must not stop the sweep for the rest.
			log.Printf("pdf watcher: order %s (row %d): %v", order.OrderNum, order.RowIndex, err)
		}
	}
	return nil
}

// reconcileOrder ensures the order's PDF exists, is current, and sits in
// the folder matching its update-status flag
func (w *PDFWatcher) reconcileOrder(ctx context.Context, order models.Order) error {
	name := PDFName(order.OrderNum)
	wantFolder := w.incomingFolder
	otherFolder := w.updatingFolder
	if order.OrderUpdateStatus == models.UpdateStatusChkRecExist {
		wantFolder, otherFolder = otherFolder, wantFolder
	}

	// Look in the expected folder first, then the other one.
	file, err := w.storage.Find(ctx, wantFolder, name)
	if err != nil {
		return err
	}
	foundFolder := wantFolder
	if file == nil {
		if file, err = w.storage.Find(ctx, otherFolder, name); err != nil {
			return err
		}
		foundFolder = otherFolder
	}

	if file == nil {
		return w.generate(ctx, order, wantFolder, name)
	}

	if w.isStale(order, file) {
		// Regenerate rather than patch: delete then upload to the right
		// folder. A 404 on delete means someone beat us to it.
		if err := w.storage.Delete(ctx, file.ID); err != nil {
			return err
		}
		return w.generate(ctx, order, wantFolder, name)
	}

	if foundFolder != wantFolder {
		return w.storage.Move(ctx, file.ID, foundFolder, wantFolder)
	}
	return nil
}

func (w *PDFWatcher) generate(ctx context.Context, order models.Order, folder, name string) error {
	content, err := w.render(order)
	if err != nil {
		return err
	}
	if _, err := w.storage.Upload(ctx, folder, name, content); err != nil {
		return err
	}
	log.Printf("pdf watcher: wrote %s for order %s", name, order.OrderNum)
	return nil
}

// isStale reports whether the sheet row changed after the stored PDF was
// written. SheetLastModified is written by every mutation, so a newer value
// means the PDF no longer reflects the row.
func (w *PDFWatcher) isStale(order models.Order, file *StoredFile) bool {
	if order.SheetLastModified == "" {
		return false
	}
	modified, err := time.Parse(time.RFC3339, order.SheetLastModified)
	if err != nil {
		return false
	}
	return modified.After(file.ModifiedAt)
}

// PDFName is the storage file name for an order
func PDFName(orderNum string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, orderNum)
	return fmt.Sprintf("order-%s.pdf", safe)
}
