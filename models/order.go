package models

// Order update status values as they appear in the sheet.
// A blank cell means the order is in its normal state.
const (
	UpdateStatusNone        = "NONE"
	UpdateStatusChkRecExist = "ChkRecExist" // flagged by the customer-update workflow
)

// OrderItem is one line of an order. Qty is kept as the raw sheet string
// ("1" when the cell is blank) since some rows carry values like "1.5".
type OrderItem struct {
	Name     string `json:"name"`
	Qty      string `json:"qty"`
	Modifier string `json:"modifier,omitempty"`
}

// Order represents one data row of the live orders tab. Its identity is the
// 1-based sheet row number (header is row 1, data starts at row 2). The row
// index is only stable until an archival sweep clears the tab; after that,
// row numbers are reused by new orders.
type Order struct {
	RowIndex          int         `json:"rowIndex"`
	OrderNum          string      `json:"orderNum"`
	Cancelled         bool        `json:"cancelled"`
	OrderProcessed    bool        `json:"orderProcessed"`
	OrderUpdateStatus string      `json:"orderUpdateStatus"`
	TimeOrdered       string      `json:"timeOrdered"`
	CustomerName      string      `json:"customerName"`
	Phone             string      `json:"phone"`
	Address           string      `json:"address"`
	City              string      `json:"city"`
	State             string      `json:"state"`
	Zip               string      `json:"zip"`
	Email             string      `json:"email"`
	PrintedCount      int         `json:"printedCount"`
	PrintedTimestamps []string    `json:"printedTimestamps"`
	SheetLastModified string      `json:"sheetLastModified"`
	Items             []OrderItem `json:"items"`
	OrderSummary      string      `json:"orderSummary,omitempty"`

	// synthetic marks an OrderNum generated at parse time for a blank
	// cell. Unexported: never serialized, never written to the sheet.
	synthetic bool
}

// MarkSyntheticOrderNum records that the display identifier was generated
// at parse time rather than read from the sheet
func (o *Order) MarkSyntheticOrderNum() {
	o.synthetic = true
}

// IsSyntheticOrderNum reports whether the display identifier was generated
// at parse time because the sheet cell was blank. Synthetic identifiers
// are excluded from lookups keyed by order number; a real order number
// that merely starts with "TEMP-" is not synthetic.
func (o *Order) IsSyntheticOrderNum() bool {
	return o.synthetic
}
