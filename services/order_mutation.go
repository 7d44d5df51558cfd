package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gino-rizzo/ginos-pizza-api/models"
)

// OrderMutationService performs the fire and reprint actions. Each action
// is one printer dispatch followed by one batch cell write and a cache
// invalidation, in that fixed order: the dispatch's success gates
// everything after it, so a failed delivery never leaves a phantom
// printed timestamp in the sheet.
//
// There is no lock or optimistic-concurrency token on the row being
// mutated; the force refresh immediately before the write reduces, but does
// not eliminate, lost updates against the archival job running in parallel.
// See DESIGN.md.
type OrderMutationService struct {
	cache   *SheetCache
	sheets  SheetsInterface
	printer PrinterInterface
	history *PrintHistoryService
	liveTab string
	now     func() time.Time
}

var mutationServiceInstance *OrderMutationService

// NewOrderMutationService wires the mutation service
func NewOrderMutationService(cache *SheetCache, sheets SheetsInterface, printer PrinterInterface, history *PrintHistoryService, liveTab string) *OrderMutationService {
	return &OrderMutationService{
		cache:   cache,
		sheets:  sheets,
		printer: printer,
		history: history,
		liveTab: liveTab,
		now:     time.Now,
	}
}

// GetMutationService returns the initialized mutation service instance
func GetMutationService() *OrderMutationService {
	return mutationServiceInstance
}

// SetMutationService sets the mutation service instance (primarily for testing)
func SetMutationService(s *OrderMutationService) {
	mutationServiceInstance = s
}

// SetNowFunc replaces the service clock (primarily for testing)
func (s *OrderMutationService) SetNowFunc(now func() time.Time) {
	s.now = now
}

// Fire marks an order processed and prints it for the first time. The
// order must currently be unprocessed; use Reprint otherwise.
func (s *OrderMutationService) Fire(ctx context.Context, rowIndex int) (models.Order, error) {
	return s.print(ctx, rowIndex, false)
}

// Reprint prints an already-processed order again, incrementing the same
// counters. It is also valid on an unprocessed order.
func (s *OrderMutationService) Reprint(ctx context.Context, rowIndex int) (models.Order, error) {
	return s.print(ctx, rowIndex, true)
}

func (s *OrderMutationService) print(ctx context.Context, rowIndex int, allowProcessed bool) (models.Order, error) {
	// Force refresh for read-your-writes safety against the cache window,
	// then locate strictly by row index.
	snap, err := s.cache.Get(ctx, true)
	if err != nil {
		return models.Order{}, fmt.Errorf("refresh before mutation failed: %w", err)
	}

	var order *models.Order
	for i := range snap.Orders {
		if snap.Orders[i].RowIndex == rowIndex {
			order = &snap.Orders[i]
			break
		}
	}
	if order == nil {
		return models.Order{}, ErrNotFound
	}
	if order.OrderProcessed && !allowProcessed {
		return models.Order{}, ErrAlreadyProcessed
	}

	ts := s.now().UTC().Format(time.RFC3339)
	updated := *order
	updated.OrderProcessed = true
	updated.PrintedCount = order.PrintedCount + 1
	updated.PrintedTimestamps = append(append([]string(nil), order.PrintedTimestamps...), ts)
	updated.SheetLastModified = ts

	// Resolve the write targets before anything physical happens: a tab
	// that cannot record the print refuses the action instead of printing
	// an order it would immediately lose track of.
	updates, err := s.derivedCellUpdates(snap.Columns, updated)
	if err != nil {
		return models.Order{}, err
	}

	// Side effect before state change: the physical print must happen (or
	// be refused) before the sheet records it.
	if err := s.printer.Dispatch(ctx, *order); err != nil {
		return models.Order{}, fmt.Errorf("printer dispatch failed, order not updated: %w", err)
	}

	// All four derived columns go out as one batch so no concurrent reader
	// sees a half-updated row.
	if err := s.sheets.BatchUpdate(ctx, s.liveTab, updates); err != nil {
		// The print already happened; bookkeeping did not. At-least-once
		// delivery is the accepted tradeoff, but it must be loud.
		log.Printf("CRITICAL: print dispatched for row %d (%s) but sheet write failed: %v", rowIndex, order.OrderNum, err)
		return models.Order{}, fmt.Errorf("printed, but recording the print failed: %w", err)
	}

	s.cache.Invalidate()

	if s.history != nil {
		rec := PrintRecord{
			ID:        rowIndex,
			OrderNum:  order.OrderNum,
			PrintedAt: ts,
			Mode:      s.printer.Mode(),
		}
		if err := s.history.Append(rec); err != nil {
			// The sheet is already correct; losing the secondary log entry
			// is not worth failing the request over.
			log.Printf("failed to append print history for %s: %v", order.OrderNum, err)
		}
	}

	return updated, nil
}

// derivedCellUpdates builds the four-cell batch for a fire/reprint
func (s *OrderMutationService) derivedCellUpdates(cols *ColumnMap, o models.Order) ([]CellUpdate, error) {
	named := []struct {
		col   string
		value string
	}{
		{ColOrderProcessed, "TRUE"},
		{ColPrintedCount, strconv.Itoa(o.PrintedCount)},
		{ColPrintedTimestamps, strings.Join(o.PrintedTimestamps, ",")},
		{ColSheetLastModified, o.SheetLastModified},
	}

	updates := make([]CellUpdate, 0, len(named))
	for _, n := range named {
		col, ok := cols.SheetColumn(n.col)
		if !ok {
			// A minimal tab can read fine and still be unwritable: all
			// four bookkeeping columns are required to record a print.
			return nil, fmt.Errorf("%w: column %s is required to record a print", ErrSchema, n.col)
		}
		updates = append(updates, CellUpdate{Row: o.RowIndex, Col: col, Value: n.value})
	}
	return updates, nil
}

// IsNotFound reports whether err is the not-found condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
