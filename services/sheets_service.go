package services

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	appConfig "github.com/gino-rizzo/ginos-pizza-api/config"
)

// CellUpdate addresses one cell by 1-based row and column. The row index is
// the order's identity; nothing else may be used to locate a row for writing.
type CellUpdate struct {
	Row   int
	Col   int
	Value string
}

// SheetsInterface defines the operations the core needs from the
// spreadsheet backing store
type SheetsInterface interface {
	// ReadTab returns the full tab as a 2D string array, first row = header
	ReadTab(ctx context.Context, tab string) ([][]string, error)
	// BatchUpdate writes all cell updates in a single call
	BatchUpdate(ctx context.Context, tab string, updates []CellUpdate) error
	// AppendRows appends rows after the existing content of the tab
	AppendRows(ctx context.Context, tab string, rows [][]string) error
	// ClearRange blanks the cells of an A1 range without deleting the tab
	ClearRange(ctx context.Context, tab string, rangeA1 string) error
}

// SheetsService talks to the Google Sheets API
type SheetsService struct {
	svc           *sheets.Service
	spreadsheetID string
}

var sheetsServiceInstance SheetsInterface

// InitSheetsService initializes the Google Sheets client from configuration
func InitSheetsService(ctx context.Context) (SheetsInterface, error) {
	cfg := appConfig.GetConfig()

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.GoogleCredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	sheetsServiceInstance = &SheetsService{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
	}

	return sheetsServiceInstance, nil
}

// GetSheetsService returns the initialized sheets service instance
func GetSheetsService() SheetsInterface {
	return sheetsServiceInstance
}

// SetSheetsService sets the sheets service instance (primarily for testing)
func SetSheetsService(service SheetsInterface) {
	sheetsServiceInstance = service
}

// ReadTab returns every used cell of the tab as strings
func (s *SheetsService) ReadTab(ctx context.Context, tab string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, tab).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}

	values := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		values = append(values, cells)
	}
	return values, nil
}

// BatchUpdate writes all updates in one values.batchUpdate call so a
// concurrent reader never observes a half-updated row
func (s *SheetsService) BatchUpdate(ctx context.Context, tab string, updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", tab, ColumnLetter(u.Col), u.Row),
			Values: [][]interface{}{{u.Value}},
		})
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	if _, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("batch update of %d cells on %s failed: %w", len(updates), tab, err)
	}
	return nil
}

// AppendRows appends rows after the existing content of the tab
func (s *SheetsService) AppendRows(ctx context.Context, tab string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, 0, len(row))
		for _, c := range row {
			cells = append(cells, c)
		}
		values = append(values, cells)
	}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, tab, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append %d rows to %s: %w", len(rows), tab, err)
	}
	return nil
}

// ClearRange blanks the given A1 range of the tab
func (s *SheetsService) ClearRange(ctx context.Context, tab string, rangeA1 string) error {
	full := fmt.Sprintf("%s!%s", tab, rangeA1)
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, full, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", full, err)
	}
	return nil
}

// ColumnLetter converts a 1-based column number to spreadsheet notation
// (1 -> A, 26 -> Z, 27 -> AA)
func ColumnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
