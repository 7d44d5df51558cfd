package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
)

// PrintRecord is one fire/reprint event kept outside the sheet as a
// recovery aid. ID is the row index at the time of printing; OrderNum is
// the stable key for lookups since row indices are reused after archival.
type PrintRecord struct {
	ID        int    `json:"id"`
	OrderNum  string `json:"orderNum"`
	PrintedAt string `json:"printedAt"`
	Mode      string `json:"mode"`
}

// PrintHistoryService is an append-only log persisted as a flat JSON file.
// The file is read fully at startup and rewritten whole on every append.
// It is a process-wide singleton; multiple instances would race on the file
// (known single-instance assumption).
type PrintHistoryService struct {
	mu      sync.Mutex
	path    string
	records []PrintRecord
}

var printHistoryInstance *PrintHistoryService

// InitPrintHistory loads (or creates) the history file at path
func InitPrintHistory(path string) (*PrintHistoryService, error) {
	s := &PrintHistoryService{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read print history %s: %w", path, err)
		}
		// First run: start empty
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &s.records); err != nil {
			// A corrupt history file must not keep the server down. Start
			// fresh and keep the old bytes out of the way.
			log.Printf("CRITICAL: print history %s is corrupt (%v), starting empty", path, err)
			s.records = nil
		}
	}

	printHistoryInstance = s
	return s, nil
}

// GetPrintHistory returns the initialized print history instance
func GetPrintHistory() *PrintHistoryService {
	return printHistoryInstance
}

// SetPrintHistory sets the print history instance (primarily for testing)
func SetPrintHistory(s *PrintHistoryService) {
	printHistoryInstance = s
}

// Append adds a record and rewrites the whole file
func (s *PrintHistoryService) Append(rec PrintRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode print history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write print history %s: %w", s.path, err)
	}
	return nil
}

// TimestampsFor returns the printed-at timestamps recorded for an order
// number, oldest first. Used as a fallback when the sheet's own timestamp
// column is empty (orders predating that column).
func (s *PrintHistoryService) TimestampsFor(orderNum string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, rec := range s.records {
		if rec.OrderNum == orderNum {
			out = append(out, rec.PrintedAt)
		}
	}
	return out
}

// Records returns a copy of all records (for testing assertions)
func (s *PrintHistoryService) Records() []PrintRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PrintRecord(nil), s.records...)
}
