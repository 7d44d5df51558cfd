package services

import (
	"context"
	"sync"

	"github.com/gino-rizzo/ginos-pizza-api/models"
)

// MockPrinterService is an in-memory implementation of PrinterInterface for testing
type MockPrinterService struct {
	mu         sync.Mutex
	dispatched []models.Order

	// Error/availability injection
	DispatchErr error
	Available   bool
	Message     string
}

// NewMockPrinterService creates a mock printer that accepts every dispatch
func NewMockPrinterService() *MockPrinterService {
	return &MockPrinterService{Available: true}
}

// SetAsMockForTesting sets this mock as the global printer service instance for testing
func (m *MockPrinterService) SetAsMockForTesting() {
	SetPrinterService(m)
}

// Dispatch records the order, or fails when DispatchErr is set
func (m *MockPrinterService) Dispatch(ctx context.Context, order models.Order) error {
	if m.DispatchErr != nil {
		return m.DispatchErr
	}
	m.mu.Lock()
	m.dispatched = append(m.dispatched, order)
	m.mu.Unlock()
	return nil
}

// CheckAvailability returns the injected availability
func (m *MockPrinterService) CheckAvailability(ctx context.Context) PrinterStatus {
	return PrinterStatus{Available: m.Available, Message: m.Message}
}

// Mode reports MOCK
func (m *MockPrinterService) Mode() string {
	return PrinterModeMock
}

// Dispatched returns the orders delivered so far (for testing assertions)
func (m *MockPrinterService) Dispatched() []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Order(nil), m.dispatched...)
}

// Clear drops recorded dispatches
func (m *MockPrinterService) Clear() {
	m.mu.Lock()
	m.dispatched = nil
	m.mu.Unlock()
}
