package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gino-rizzo/ginos-pizza-api/models"
	"github.com/gino-rizzo/ginos-pizza-api/utils"
)

// DailyCount is one calendar-day bucket of processed, non-cancelled orders
type DailyCount struct {
	Date   string `json:"date"` // YYYY-MM-DD in the reference timezone
	Orders int    `json:"orders"`
}

// ItemCount is a tallied item quantity across a report range
type ItemCount struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// HourCount is one hour-of-day bucket for today's orders
type HourCount struct {
	Hour   int `json:"hour"`
	Orders int `json:"orders"`
}

// ReportService aggregates the history tab and the live cache into sales
// reports. Read-only; its only invariant is the date-bucket boundary math
// (inclusive start, exclusive end-of-range-plus-one-day).
type ReportService struct {
	sheets     SheetsInterface
	cache      *SheetCache
	historyTab string
	loc        *time.Location
	now        func() time.Time
}

var reportServiceInstance *ReportService

// NewReportService wires the report aggregator
func NewReportService(sheets SheetsInterface, cache *SheetCache, historyTab string, loc *time.Location) *ReportService {
	return &ReportService{
		sheets:     sheets,
		cache:      cache,
		historyTab: historyTab,
		loc:        loc,
		now:        time.Now,
	}
}

// GetReportService returns the initialized report service instance
func GetReportService() *ReportService {
	return reportServiceInstance
}

// SetReportService sets the report service instance (primarily for testing)
func SetReportService(s *ReportService) {
	reportServiceInstance = s
}

// SetNowFunc replaces the service clock (primarily for testing)
func (s *ReportService) SetNowFunc(now func() time.Time) {
	s.now = now
}

// DailyCounts buckets history-tab orders per calendar day between start and
// end (both inclusive as days), counting processed non-cancelled orders.
// Days without orders appear with a zero count.
func (s *ReportService) DailyCounts(ctx context.Context, start, end time.Time) ([]DailyCount, error) {
	startDay := utils.DayStart(start, s.loc)
	endExclusive := utils.DayStart(end, s.loc).AddDate(0, 0, 1)
	if !startDay.Before(endExclusive) {
		return nil, fmt.Errorf("start %s is after end %s", startDay.Format("2006-01-02"), endExclusive.Format("2006-01-02"))
	}

	buckets := make(map[string]int)
	for day := startDay; day.Before(endExclusive); day = day.AddDate(0, 0, 1) {
		buckets[day.Format("2006-01-02")] = 0
	}

	orders, err := s.historyOrders(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.Cancelled || !o.OrderProcessed {
			continue
		}
		t, err := utils.ParseOrderTime(o.TimeOrdered, s.loc)
		if err != nil {
			continue
		}
		if t.Before(startDay) || !t.Before(endExclusive) {
			continue
		}
		buckets[utils.DayStart(t, s.loc).Format("2006-01-02")]++
	}

	out := make([]DailyCount, 0, len(buckets))
	for day := startDay; day.Before(endExclusive); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		out = append(out, DailyCount{Date: key, Orders: buckets[key]})
	}
	return out, nil
}

// PopularItems tallies item quantities across the report item-index range
// for processed non-cancelled history orders in [start, end], best sellers
// first, at most topN entries (topN <= 0 means all).
func (s *ReportService) PopularItems(ctx context.Context, start, end time.Time, topN int) ([]ItemCount, error) {
	startDay := utils.DayStart(start, s.loc)
	endExclusive := utils.DayStart(end, s.loc).AddDate(0, 0, 1)

	orders, err := s.historyOrders(ctx)
	if err != nil {
		return nil, err
	}

	tally := make(map[string]int)
	for _, o := range orders {
		if o.Cancelled || !o.OrderProcessed {
			continue
		}
		t, err := utils.ParseOrderTime(o.TimeOrdered, s.loc)
		if err != nil || t.Before(startDay) || !t.Before(endExclusive) {
			continue
		}
		for _, item := range o.Items {
			tally[item.Name] += parseQty(item.Qty)
		}
	}

	out := make([]ItemCount, 0, len(tally))
	for name, qty := range tally {
		out = append(out, ItemCount{Name: name, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Qty == out[j].Qty {
			return out[i].Name < out[j].Name
		}
		return out[i].Qty > out[j].Qty
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// HourlyHistogram buckets today's live-cache orders by hour of day in the
// reference timezone. Cancelled orders are excluded; processed state is not,
// since the histogram shows order inflow.
func (s *ReportService) HourlyHistogram(ctx context.Context) ([]HourCount, error) {
	snap, err := s.cache.Get(ctx, false)
	if err != nil {
		return nil, err
	}

	var counts [24]int
	today := s.now()
	for _, o := range snap.Orders {
		if o.Cancelled {
			continue
		}
		t, err := utils.ParseOrderTime(o.TimeOrdered, s.loc)
		if err != nil || !utils.SameDay(t, today, s.loc) {
			continue
		}
		counts[t.In(s.loc).Hour()]++
	}

	out := make([]HourCount, 24)
	for h := range out {
		out[h] = HourCount{Hour: h, Orders: counts[h]}
	}
	return out, nil
}

// ExportXLSX renders the daily counts and popular items for the range as an
// Excel workbook
func (s *ReportService) ExportXLSX(ctx context.Context, start, end time.Time) ([]byte, error) {
	daily, err := s.DailyCounts(ctx, start, end)
	if err != nil {
		return nil, err
	}
	items, err := s.PopularItems(ctx, start, end, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	dailySheet := f.GetSheetName(0)
	if err := f.SetSheetName(dailySheet, "Daily Orders"); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow("Daily Orders", "A1", &[]interface{}{"Date", "Orders"}); err != nil {
		return nil, err
	}
	for i, d := range daily {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow("Daily Orders", cell, &[]interface{}{d.Date, d.Orders}); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet("Popular Items"); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow("Popular Items", "A1", &[]interface{}{"Item", "Qty"}); err != nil {
		return nil, err
	}
	for i, it := range items {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow("Popular Items", cell, &[]interface{}{it.Name, it.Qty}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// historyOrders reads and parses the history tab with the wider report
// item range. An empty history tab is not an error, just zero orders.
func (s *ReportService) historyOrders(ctx context.Context) ([]models.Order, error) {
	values, err := s.sheets.ReadTab(ctx, s.historyTab)
	if err != nil {
		return nil, fmt.Errorf("failed to read history tab %s: %w", s.historyTab, err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	orders, _, err := ParseOrders(values, MaxItemsReport)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// parseQty reads an item quantity cell, tolerating blanks and junk
func parseQty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		// Qty defaults to 1 at parse time, so anything unreadable here is
		// hand-edited; count the line once rather than dropping it.
		return 1
	}
	return n
}
