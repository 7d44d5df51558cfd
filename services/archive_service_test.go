package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gino-rizzo/ginos-pizza-api/models"
)

const (
	archiveTestLive    = "Orders"
	archiveTestHistory = "OrderHistory"
)

func newArchiveHarness(t *testing.T, live [][]string) (*ArchiveService, *MockSheetsService, *SheetCache) {
	t.Helper()

	sheets := NewMockSheetsService()
	sheets.SetTab(archiveTestLive, live)
	sheets.SetTab(archiveTestHistory, [][]string{testHeader()})

	cache := NewSheetCache(func(ctx context.Context) ([]models.Order, *ColumnMap, error) {
		read, err := sheets.ReadTab(ctx, archiveTestLive)
		if err != nil {
			return nil, nil, err
		}
		return ParseOrders(read, MaxItemsLive)
	}, DefaultCacheWindow)

	return NewArchiveService(sheets, cache, archiveTestLive, archiveTestHistory), sheets, cache
}

func TestArchiveService_MovesDataRowsAndKeepsHeader(t *testing.T) {
	live := [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "A1", "OrderProcessed": "TRUE"}),
		testRow(map[string]string{"OrderNum": "A2", "Cancelled": "TRUE"}),
		testRow(map[string]string{"OrderNum": "A3"}),
	}
	svc, sheets, _ := newArchiveHarness(t, live)

	moved, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, moved)

	// Live keeps only the header. Cancelled and unprocessed rows move too;
	// archival sweeps everything, filtering happens at read time.
	after := sheets.Tab(archiveTestLive)
	require.Len(t, after, 1)
	assert.Equal(t, testHeader(), after[0])

	history := sheets.Tab(archiveTestHistory)
	require.Len(t, history, 4, "header plus the three moved rows")
	assert.Equal(t, live[1], history[1])
	assert.Equal(t, live[3], history[3])
}

func TestArchiveService_HeaderOnlyIsNoOp(t *testing.T) {
	svc, sheets, _ := newArchiveHarness(t, [][]string{testHeader()})

	moved, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Equal(t, 0, sheets.AppendCalls())
}

func TestArchiveService_BlankHeaderIsSchemaError(t *testing.T) {
	// Data rows under a blank header row have no addressable clear range.
	svc, sheets, _ := newArchiveHarness(t, [][]string{
		{},
		{"A1", "Burger"},
	})

	moved, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
	assert.Zero(t, moved)
	assert.Equal(t, 0, sheets.AppendCalls(), "nothing moves out of an unclearable tab")
	require.Len(t, sheets.Tab(archiveTestLive), 2, "live tab untouched")
}

func TestArchiveService_RunsAreCumulative(t *testing.T) {
	svc, sheets, _ := newArchiveHarness(t, [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "DAY1"}),
	})

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	sheets.SetTab(archiveTestLive, [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "DAY2"}),
	})
	moved, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	history := sheets.Tab(archiveTestHistory)
	require.Len(t, history, 3, "second run appends, never overwrites")
}

func TestArchiveService_AppendFailureLeavesLiveIntact(t *testing.T) {
	live := [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "A1"}),
	}
	svc, sheets, _ := newArchiveHarness(t, live)
	sheets.AppendErr = errors.New("quota exceeded")

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, sheets.Tab(archiveTestLive), 2, "nothing cleared when the append failed")
}

func TestArchiveService_ClearFailureSurfaces(t *testing.T) {
	svc, sheets, _ := newArchiveHarness(t, [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "A1"}),
	})
	sheets.ClearErr = errors.New("transient")

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	// The rows did reach history; the error reports the half-finished state.
	assert.Len(t, sheets.Tab(archiveTestHistory), 2)
}

func TestArchiveService_InvalidatesCache(t *testing.T) {
	svc, _, cache := newArchiveHarness(t, [][]string{
		testHeader(),
		testRow(map[string]string{"OrderNum": "A1"}),
	})

	// Warm the cache so a stale snapshot exists.
	snap, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, snap.Orders, 1)

	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	snap, err = cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, snap.Orders, "post-archival read must not serve the pre-archival snapshot")
}
