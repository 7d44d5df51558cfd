package services

import "errors"

// ErrNotFound means a row index is absent from the current snapshot. This is
// the expected shape of "the order was archived since the last poll" and is
// surfaced to callers as a 404, not logged as an error.
var ErrNotFound = errors.New("order not found")

// ErrSchema means an expected header column is missing from the sheet. The
// fetch that hit it is fatal; a partial or empty result is never cached.
var ErrSchema = errors.New("sheet schema invalid")

// ErrAlreadyProcessed is returned when fire is attempted on an order whose
// processed flag is already set. Reprint is the operation for that case.
var ErrAlreadyProcessed = errors.New("order already processed")
