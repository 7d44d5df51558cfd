package services

import "time"

// testHeader is a realistic live-tab header with four item slots
func testHeader() []string {
	return []string{
		"OrderNum", "Cancelled", "OrderProcessed", "OrderUpdateStatus",
		"TimeOrdered", "CustomerName", "Phone", "Address", "City", "State",
		"Zip", "Email", "PrintedCount", "PrintedTimestamps",
		"SheetLastModified", "OrderSummary",
		"Order_item_1", "Qty_1", "modifier_1",
		"Order_item_2", "Qty_2", "modifier_2",
		"Order_item_3", "Qty_3", "modifier_3",
		"Order_item_4", "Qty_4", "modifier_4",
	}
}

// testRow builds a data row aligned to testHeader from named cells
func testRow(cells map[string]string) []string {
	header := testHeader()
	row := make([]string, len(header))
	for i, name := range header {
		row[i] = cells[name]
	}
	return row
}

// nyLoc is the reference timezone used throughout the service tests
var nyLoc = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}()
