package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/gino-rizzo/ginos-pizza-api/models"
)

// Named sheet columns. Item columns are indexed (Order_item_N, Qty_N,
// modifier_N) and resolved separately.
const (
	ColOrderNum          = "OrderNum"
	ColCancelled         = "Cancelled"
	ColOrderProcessed    = "OrderProcessed"
	ColOrderUpdateStatus = "OrderUpdateStatus"
	ColTimeOrdered       = "TimeOrdered"
	ColCustomerName      = "CustomerName"
	ColPhone             = "Phone"
	ColAddress           = "Address"
	ColCity              = "City"
	ColState             = "State"
	ColZip               = "Zip"
	ColEmail             = "Email"
	ColPrintedCount      = "PrintedCount"
	ColPrintedTimestamps = "PrintedTimestamps"
	ColSheetLastModified = "SheetLastModified"
	ColOrderSummary      = "OrderSummary"
)

// MaxItemsLive is the item index range scanned on the live-order path;
// MaxItemsReport is the wider range used by report aggregation.
const (
	MaxItemsLive   = 20
	MaxItemsReport = 40
)

// requiredColumns must all be present in the header row. Only the order
// number column is structurally required: every other named column is
// optional and reads as blank when absent, so trimmed-down tabs and older
// history layouts still parse. A header that is missing or entirely blank
// is a schema error, which fails the whole fetch.
var requiredColumns = []string{
	ColOrderNum,
}

// ColumnMap resolves header names to 0-based column indices. It is built
// once per fetch, not per row.
type ColumnMap struct {
	byName map[string]int
}

// NewColumnMap builds the name -> index table from a header row and fails
// fast when required columns are absent
func NewColumnMap(header []string) (*ColumnMap, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, exists := byName[name]; !exists {
			byName[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := byName[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrSchema, strings.Join(missing, ", "))
	}

	return &ColumnMap{byName: byName}, nil
}

// Index returns the 0-based column index for a header name
func (m *ColumnMap) Index(name string) (int, bool) {
	i, ok := m.byName[name]
	return i, ok
}

// SheetColumn returns the 1-based sheet column number for a header name,
// suitable for a CellUpdate
func (m *ColumnMap) SheetColumn(name string) (int, bool) {
	i, ok := m.byName[name]
	return i + 1, ok
}

// ParseOrders converts a full tab read (header + data rows) into Orders.
// maxItems bounds the item index scan. Row-level defects never abort the
// fetch: the bad field defaults and parsing continues.
func ParseOrders(values [][]string, maxItems int) ([]models.Order, *ColumnMap, error) {
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet is empty, no header row", ErrSchema)
	}

	cols, err := NewColumnMap(values[0])
	if err != nil {
		return nil, nil, err
	}

	orders := make([]models.Order, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		// 1-based sheet row: header is row 1, so data row i maps to i+1
		orders = append(orders, parseOrderRow(cols, values[i], i+1, maxItems))
	}
	return orders, cols, nil
}

// parseOrderRow maps one data row to an Order with best-effort defaults
func parseOrderRow(cols *ColumnMap, row []string, rowIndex, maxItems int) models.Order {
	order := models.Order{
		RowIndex:          rowIndex,
		OrderNum:          cellNamed(cols, row, ColOrderNum),
		Cancelled:         parseSheetBool(cellNamed(cols, row, ColCancelled)),
		OrderProcessed:    parseSheetBool(cellNamed(cols, row, ColOrderProcessed)),
		OrderUpdateStatus: cellNamed(cols, row, ColOrderUpdateStatus),
		TimeOrdered:       cellNamed(cols, row, ColTimeOrdered),
		CustomerName:      cellNamed(cols, row, ColCustomerName),
		Phone:             cellNamed(cols, row, ColPhone),
		Address:           cellNamed(cols, row, ColAddress),
		City:              cellNamed(cols, row, ColCity),
		State:             cellNamed(cols, row, ColState),
		Zip:               cellNamed(cols, row, ColZip),
		Email:             cellNamed(cols, row, ColEmail),
		OrderSummary:      cellNamed(cols, row, ColOrderSummary),
	}

	if order.OrderNum == "" {
		// Synthetic display identifier; never written back to the sheet.
		order.OrderNum = fmt.Sprintf("TEMP-%s-%d", uuid.NewString()[:8], rowIndex)
		order.MarkSyntheticOrderNum()
	}
	if order.OrderUpdateStatus == "" {
		order.OrderUpdateStatus = models.UpdateStatusNone
	}

	if raw := cellNamed(cols, row, ColPrintedCount); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			log.Printf("row %d: unparseable PrintedCount %q, defaulting to 0", rowIndex, raw)
		} else {
			order.PrintedCount = n
		}
	}

	if raw := cellNamed(cols, row, ColPrintedTimestamps); raw != "" {
		for _, ts := range strings.Split(raw, ",") {
			if ts = strings.TrimSpace(ts); ts != "" {
				order.PrintedTimestamps = append(order.PrintedTimestamps, ts)
			}
		}
	}
	order.SheetLastModified = cellNamed(cols, row, ColSheetLastModified)

	// Every item index up to maxItems is checked independently: gaps are
	// possible (item 3 blank, item 4 present) and do not end the list.
	for i := 1; i <= maxItems; i++ {
		name := cellNamed(cols, row, fmt.Sprintf("Order_item_%d", i))
		if name == "" {
			continue
		}
		qty := cellNamed(cols, row, fmt.Sprintf("Qty_%d", i))
		if qty == "" {
			qty = "1"
		}
		order.Items = append(order.Items, models.OrderItem{
			Name:     name,
			Qty:      qty,
			Modifier: cellNamed(cols, row, fmt.Sprintf("modifier_%d", i)),
		})
	}

	return order
}

// cellNamed returns the trimmed cell under a named column, or "" when the
// column is absent or the row is short
func cellNamed(cols *ColumnMap, row []string, name string) string {
	i, ok := cols.Index(name)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseSheetBool reads the sheet's boolean notation: "TRUE" or "Y",
// case-insensitive. Anything else, including absence, is false.
func parseSheetBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "Y":
		return true
	}
	return false
}
