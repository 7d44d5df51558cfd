package services

import (
	"context"
	"fmt"
	"log"
)

// ArchiveService moves all data rows from the live tab to the history tab,
// then clears the live tab's data rows. The header row is never touched.
// History is cumulative: rows are appended, never overwritten.
type ArchiveService struct {
	sheets     SheetsInterface
	cache      *SheetCache
	liveTab    string
	historyTab string
}

var archiveServiceInstance *ArchiveService

// NewArchiveService wires the archival job
func NewArchiveService(sheets SheetsInterface, cache *SheetCache, liveTab, historyTab string) *ArchiveService {
	return &ArchiveService{
		sheets:     sheets,
		cache:      cache,
		liveTab:    liveTab,
		historyTab: historyTab,
	}
}

// GetArchiveService returns the initialized archive service instance
func GetArchiveService() *ArchiveService {
	return archiveServiceInstance
}

// SetArchiveService sets the archive service instance (primarily for testing)
func SetArchiveService(s *ArchiveService) {
	archiveServiceInstance = s
}

// Run performs one archival sweep and returns the number of rows moved.
// It must not run concurrently with itself; the scheduler guarantees a
// single non-re-entrant invocation. A row being fired at the exact moment
// of the clear is a known, accepted race (see DESIGN.md).
func (s *ArchiveService) Run(ctx context.Context) (int, error) {
	values, err := s.sheets.ReadTab(ctx, s.liveTab)
	if err != nil {
		return 0, fmt.Errorf("archival read of %s failed: %w", s.liveTab, err)
	}
	if len(values) <= 1 {
		// Header only (or empty): nothing to move.
		return 0, nil
	}

	header := values[0]
	dataRows := values[1:]

	if len(header) == 0 {
		// Data rows under a blank header cannot be addressed for the
		// clear; refuse rather than build a malformed range.
		return 0, fmt.Errorf("%w: live tab %s has data rows but no header row", ErrSchema, s.liveTab)
	}

	if err := s.sheets.AppendRows(ctx, s.historyTab, dataRows); err != nil {
		return 0, fmt.Errorf("archival append to %s failed: %w", s.historyTab, err)
	}

	// Clear exactly the data-row range: column span = header width, rows
	// 2..N. Row 1 is the header and stays.
	rangeA1 := fmt.Sprintf("A2:%s%d", ColumnLetter(len(header)), len(values))
	if err := s.sheets.ClearRange(ctx, s.liveTab, rangeA1); err != nil {
		// The rows are now in both tabs; the next scheduled run would
		// append them again. Known gap, not silently recovered.
		log.Printf("CRITICAL: archival appended %d rows to %s but clearing %s failed: %v (duplicate rows on next run)",
			len(dataRows), s.historyTab, s.liveTab, err)
		return 0, fmt.Errorf("archival clear of %s failed after append: %w", s.liveTab, err)
	}

	s.cache.Invalidate()
	log.Printf("archival moved %d rows from %s to %s", len(dataRows), s.liveTab, s.historyTab)
	return len(dataRows), nil
}
