package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	appConfig "github.com/gino-rizzo/ginos-pizza-api/config"
	"github.com/gino-rizzo/ginos-pizza-api/models"
)

// Printer modes. LAN pushes directly to a kitchen printer box, CLOUD posts
// to a pull-based relay, MOCK posts to a test webhook.
const (
	PrinterModeLAN   = "LAN"
	PrinterModeCloud = "CLOUD"
	PrinterModeMock  = "MOCK"
)

// probeTimeout bounds every reachability check independently of the caller.
// Dispatch gets its own, longer budget: a printer that is slow to spool a
// job is not the same as a printer that is down, and a fire must not be
// aborted by the probe deadline.
const (
	probeTimeout           = 5 * time.Second
	defaultDispatchTimeout = 30 * time.Second
)

// PrinterStatus is the result of a reachability probe
type PrinterStatus struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// PrinterInterface defines the outbound printer dispatch operations
type PrinterInterface interface {
	// Dispatch sends the order payload to the kitchen printer. A dispatch
	// failure must abort any mutation that depends on it.
	Dispatch(ctx context.Context, order models.Order) error
	// CheckAvailability probes the printer endpoint without printing
	CheckAvailability(ctx context.Context) PrinterStatus
	// Mode reports which configured mode this printer uses
	Mode() string
}

// PrinterService dispatches orders over HTTP according to the configured mode
type PrinterService struct {
	mode       string
	addr       string
	webhookURL string
	dispatch   *http.Client
	probe      *http.Client
}

var printerServiceInstance PrinterInterface

// InitPrinterService builds the printer client from configuration. Settings
// are read once here, not per request.
func InitPrinterService() (PrinterInterface, error) {
	cfg := appConfig.GetConfig()

	switch cfg.PrinterMode {
	case PrinterModeLAN, PrinterModeCloud:
		if cfg.PrinterAddr == "" {
			return nil, fmt.Errorf("PRINTER_ADDR is required for %s mode", cfg.PrinterMode)
		}
	case PrinterModeMock:
		if cfg.PrinterWebhookURL == "" {
			return nil, fmt.Errorf("PRINTER_WEBHOOK_URL is required for MOCK mode")
		}
	default:
		return nil, fmt.Errorf("unknown printer mode %q", cfg.PrinterMode)
	}

	dispatchTimeout := time.Duration(cfg.PrinterDispatchTimeoutSeconds) * time.Second
	if dispatchTimeout <= 0 {
		dispatchTimeout = defaultDispatchTimeout
	}

	printerServiceInstance = &PrinterService{
		mode:       cfg.PrinterMode,
		addr:       cfg.PrinterAddr,
		webhookURL: cfg.PrinterWebhookURL,
		dispatch:   &http.Client{Timeout: dispatchTimeout},
		probe:      &http.Client{Timeout: probeTimeout},
	}
	return printerServiceInstance, nil
}

// GetPrinterService returns the initialized printer service instance
func GetPrinterService() PrinterInterface {
	return printerServiceInstance
}

// SetPrinterService sets the printer service instance (primarily for testing)
func SetPrinterService(p PrinterInterface) {
	printerServiceInstance = p
}

// Mode reports the configured printer mode
func (p *PrinterService) Mode() string {
	return p.mode
}

// Dispatch posts the order payload to the configured endpoint
func (p *PrinterService) Dispatch(ctx context.Context, order models.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode order payload: %w", err)
	}

	url := p.dispatchURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.dispatch.Do(req)
	if err != nil {
		return fmt.Errorf("printer dispatch to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("printer dispatch to %s failed: %s", url, resp.Status)
	}
	return nil
}

// CheckAvailability probes the endpoint: HEAD for push modes, a POST with a
// test payload for webhook mode. Timeouts are normal failures, not fatal.
func (p *PrinterService) CheckAvailability(ctx context.Context) PrinterStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var req *http.Request
	var err error
	if p.mode == PrinterModeMock {
		payload := []byte(`{"test":true}`)
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(payload))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodHead, p.dispatchURL(), nil)
	}
	if err != nil {
		return PrinterStatus{Available: false, Message: err.Error()}
	}

	resp, err := p.probe.Do(req)
	if err != nil {
		return PrinterStatus{Available: false, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return PrinterStatus{Available: false, Message: resp.Status}
	}
	return PrinterStatus{Available: true}
}

func (p *PrinterService) dispatchURL() string {
	if p.mode == PrinterModeMock {
		return p.webhookURL
	}
	return p.addr + "/print"
}
