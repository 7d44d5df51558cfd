package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

// MockSheetsService is an in-memory implementation of SheetsInterface for testing
type MockSheetsService struct {
	tabs map[string][][]string
	mu   sync.RWMutex

	// Call counters for assertions
	readCalls   int
	batchCalls  int
	appendCalls int
	clearCalls  int

	// Error injection
	ReadErr   error
	BatchErr  error
	AppendErr error
	ClearErr  error
}

// NewMockSheetsService creates a new mock sheets service
func NewMockSheetsService() *MockSheetsService {
	return &MockSheetsService{
		tabs: make(map[string][][]string),
	}
}

// SetAsMockForTesting sets this mock as the global sheets service instance for testing
func (m *MockSheetsService) SetAsMockForTesting() {
	SetSheetsService(m)
}

// SetTab replaces the contents of a tab
func (m *MockSheetsService) SetTab(tab string, values [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]string, len(values))
	for i, row := range values {
		copied[i] = append([]string(nil), row...)
	}
	m.tabs[tab] = copied
}

// Tab returns a copy of the current contents of a tab (for testing assertions)
func (m *MockSheetsService) Tab(tab string) [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := m.tabs[tab]
	copied := make([][]string, len(values))
	for i, row := range values {
		copied[i] = append([]string(nil), row...)
	}
	return copied
}

// ReadTab returns the full tab contents
func (m *MockSheetsService) ReadTab(ctx context.Context, tab string) ([][]string, error) {
	m.mu.Lock()
	m.readCalls++
	m.mu.Unlock()

	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.Tab(tab), nil
}

// BatchUpdate applies all cell updates to the in-memory tab
func (m *MockSheetsService) BatchUpdate(ctx context.Context, tab string, updates []CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++

	if m.BatchErr != nil {
		return m.BatchErr
	}

	values := m.tabs[tab]
	for _, u := range updates {
		if u.Row < 1 || u.Col < 1 {
			return fmt.Errorf("invalid cell address row=%d col=%d", u.Row, u.Col)
		}
		for len(values) < u.Row {
			values = append(values, []string{})
		}
		row := values[u.Row-1]
		for len(row) < u.Col {
			row = append(row, "")
		}
		row[u.Col-1] = u.Value
		values[u.Row-1] = row
	}
	m.tabs[tab] = values
	return nil
}

// AppendRows appends rows after the existing content
func (m *MockSheetsService) AppendRows(ctx context.Context, tab string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendCalls++

	if m.AppendErr != nil {
		return m.AppendErr
	}

	for _, row := range rows {
		m.tabs[tab] = append(m.tabs[tab], append([]string(nil), row...))
	}
	return nil
}

var a1RangeRe = regexp.MustCompile(`^([A-Z]+)(\d+):([A-Z]+)(\d+)$`)

// ClearRange blanks the cells of an A1 range such as "A2:T15"
func (m *MockSheetsService) ClearRange(ctx context.Context, tab string, rangeA1 string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++

	if m.ClearErr != nil {
		return m.ClearErr
	}

	match := a1RangeRe.FindStringSubmatch(rangeA1)
	if match == nil {
		return fmt.Errorf("unsupported range %q", rangeA1)
	}
	startCol := columnNumber(match[1])
	startRow, _ := strconv.Atoi(match[2])
	endCol := columnNumber(match[3])
	endRow, _ := strconv.Atoi(match[4])

	values := m.tabs[tab]
	for r := startRow; r <= endRow && r <= len(values); r++ {
		row := values[r-1]
		for c := startCol; c <= endCol && c <= len(row); c++ {
			row[c-1] = ""
		}
	}

	// Drop rows that are now entirely blank at the tail, the way the real
	// API stops reporting them in the used range.
	for len(values) > 0 && rowIsBlank(values[len(values)-1]) {
		values = values[:len(values)-1]
	}
	m.tabs[tab] = values
	return nil
}

// ReadCalls returns the number of ReadTab calls observed
func (m *MockSheetsService) ReadCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readCalls
}

// BatchCalls returns the number of BatchUpdate calls observed
func (m *MockSheetsService) BatchCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.batchCalls
}

// AppendCalls returns the number of AppendRows calls observed
func (m *MockSheetsService) AppendCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.appendCalls
}

// Clear removes all tabs and resets counters
func (m *MockSheetsService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs = make(map[string][][]string)
	m.readCalls, m.batchCalls, m.appendCalls, m.clearCalls = 0, 0, 0, 0
}

func columnNumber(letters string) int {
	n := 0
	for _, r := range letters {
		n = n*26 + int(r-'A') + 1
	}
	return n
}

func rowIsBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
