package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gino-rizzo/ginos-pizza-api/models"
)

const mutationTestTab = "Orders"

// mutationHarness wires a mutation service over a mock sheet and printer
type mutationHarness struct {
	sheets  *MockSheetsService
	printer *MockPrinterService
	cache   *SheetCache
	history *PrintHistoryService
	svc     *OrderMutationService
}

func newMutationHarness(t *testing.T, values [][]string) *mutationHarness {
	t.Helper()

	sheets := NewMockSheetsService()
	sheets.SetTab(mutationTestTab, values)

	printer := NewMockPrinterService()

	cache := NewSheetCache(func(ctx context.Context) ([]models.Order, *ColumnMap, error) {
		read, err := sheets.ReadTab(ctx, mutationTestTab)
		if err != nil {
			return nil, nil, err
		}
		return ParseOrders(read, MaxItemsLive)
	}, DefaultCacheWindow)

	history, err := InitPrintHistory(filepath.Join(t.TempDir(), "print_history.json"))
	require.NoError(t, err)

	svc := NewOrderMutationService(cache, sheets, printer, history, mutationTestTab)
	svc.SetNowFunc(func() time.Time {
		return time.Date(2025, 3, 9, 21, 0, 0, 0, time.UTC)
	})

	return &mutationHarness{sheets: sheets, printer: printer, cache: cache, history: history, svc: svc}
}

// cell reads one cell of the mock live tab by header name, for assertions
func (h *mutationHarness) cell(t *testing.T, rowIndex int, column string) string {
	t.Helper()
	values := h.sheets.Tab(mutationTestTab)
	cols, err := NewColumnMap(values[0])
	require.NoError(t, err)
	i, ok := cols.Index(column)
	require.True(t, ok)
	row := values[rowIndex-1]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func TestOrderMutationService_FireUpdatesAllFourCells(t *testing.T) {
	h := newMutationHarness(t, [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "A1", "TimeOrdered": "3/9/2025 16:00:00"}),
	})

	order, err := h.svc.Fire(context.Background(), 2)
	require.NoError(t, err)

	assert.True(t, order.OrderProcessed)
	assert.Equal(t, 1, order.PrintedCount)
	require.Len(t, order.PrintedTimestamps, 1)

	assert.Equal(t, "TRUE", h.cell(t, 2, ColOrderProcessed))
	assert.Equal(t, "1", h.cell(t, 2, ColPrintedCount))
	assert.Equal(t, "2025-03-09T21:00:00Z", h.cell(t, 2, ColPrintedTimestamps))
	assert.Equal(t, "2025-03-09T21:00:00Z", h.cell(t, 2, ColSheetLastModified))

	assert.Equal(t, 1, h.sheets.BatchCalls(), "all four cells go out as one batch")
	require.Len(t, h.printer.Dispatched(), 1)
	assert.Equal(t, "A1", h.printer.Dispatched()[0].OrderNum)

	recs := h.history.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "A1", recs[0].OrderNum)
	assert.Equal(t, PrinterModeMock, recs[0].Mode)
}

func TestOrderMutationService_ReprintAppendsTimestamp(t *testing.T) {
	h := newMutationHarness(t, [][]string{
		testHeader(),
		testRow(map[string]string{
			"OrderNum":          "A1",
			"OrderProcessed":    "TRUE",
			"PrintedCount":      "1",
			"PrintedTimestamps": "2025-03-09T20:00:00Z",
		}),
	})

	order, err := h.svc.Reprint(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, order.PrintedCount)
	assert.Equal(t, []string{"2025-03-09T20:00:00Z", "2025-03-09T21:00:00Z"}, order.PrintedTimestamps)
	assert.Equal(t, "2", h.cell(t, 2, ColPrintedCount))
	assert.Equal(t, "2025-03-09T20:00:00Z,2025-03-09T21:00:00Z", h.cell(t, 2, ColPrintedTimestamps))
}

func TestOrderMutationService_FireRejectsProcessedOrder(t *testing.T) {
	h := newMutationHarness(t, [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "A1", "OrderProcessed": "TRUE"}),
	})

	_, err := h.svc.Fire(context.Background(), 2)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Empty(t, h.printer.Dispatched())
	assert.Equal(t, 0, h.sheets.BatchCalls())
}

func TestOrderMutationService_RowNotFound(t *testing.T) {
	h := newMutationHarness(t, [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "A1"}),
	})

	_, err := h.svc.Fire(context.Background(), 40)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))
	assert.Empty(t, h.printer.Dispatched())
}

func TestOrderMutationService_PrinterFailureLeavesSheetUntouched(t *testing.T) {
	h := newMutationHarness(t, [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "A1"}),
	})
	h.printer.DispatchErr = errors.New("printer offline")

	_, err := h.svc.Fire(context.Background(), 2)
	require.Error(t, err)

	assert.Equal(t, 0, h.sheets.BatchCalls(), "a refused dispatch must not reach the sheet")
	assert.Equal(t, "", h.cell(t, 2, ColOrderProcessed))
	assert.Empty(t, h.history.Records())

	// The order is still fireable once the printer recovers.
	h.printer.DispatchErr = nil
	_, err = h.svc.Fire(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", h.cell(t, 2, ColOrderProcessed))
}

func TestOrderMutationService_UnwritableTabRefusesDispatch(t *testing.T) {
	// A minimal tab reads fine, but without the bookkeeping columns a fire
	// must be refused before anything reaches the printer.
	h := newMutationHarness(t, [][]string{
		{"OrderNum", "Order_item_1"},
		{"A1", "Burger"},
	})

	_, err := h.svc.Fire(context.Background(), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
	assert.Empty(t, h.printer.Dispatched(), "nothing prints when the tab cannot record it")
	assert.Equal(t, 0, h.sheets.BatchCalls())
}

func TestOrderMutationService_SheetWriteFailureSurfaces(t *testing.T) {
	h := newMutationHarness(t, [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "A1"}),
	})
	h.sheets.BatchErr = errors.New("quota exceeded")

	_, err := h.svc.Fire(context.Background(), 2)
	require.Error(t, err)
	assert.Len(t, h.printer.Dispatched(), 1, "the dispatch had already happened")
	assert.Empty(t, h.history.Records(), "history records only confirmed prints")
}

func TestOrderMutationService_InvalidatesCacheAfterWrite(t *testing.T) {
	h := newMutationHarness(t, [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "A1"}),
	})

	_, err := h.svc.Fire(context.Background(), 2)
	require.NoError(t, err)

	// A plain (non-forced) read after the mutation must see the write.
	snap, err := h.cache.Get(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, snap.Orders, 1)
	assert.True(t, snap.Orders[0].OrderProcessed)
	assert.Equal(t, 1, snap.Orders[0].PrintedCount)
}
