package services

import (
	"context"
	"sort"
	"time"

	"github.com/gino-rizzo/ginos-pizza-api/models"
	"github.com/gino-rizzo/ginos-pizza-api/utils"
)

// OrderQueryService derives the three operational views from one cached
// snapshot. It is read-only; all sheet writes go through the mutation
// service.
type OrderQueryService struct {
	cache   *SheetCache
	history *PrintHistoryService
	loc     *time.Location
	now     func() time.Time
}

var queryServiceInstance *OrderQueryService

// NewOrderQueryService creates a query service over the given cache
func NewOrderQueryService(cache *SheetCache, history *PrintHistoryService, loc *time.Location) *OrderQueryService {
	return &OrderQueryService{
		cache:   cache,
		history: history,
		loc:     loc,
		now:     time.Now,
	}
}

// GetQueryService returns the initialized query service instance
func GetQueryService() *OrderQueryService {
	return queryServiceInstance
}

// SetQueryService sets the query service instance (primarily for testing)
func SetQueryService(s *OrderQueryService) {
	queryServiceInstance = s
}

// SetNowFunc replaces the service clock (primarily for testing)
func (s *OrderQueryService) SetNowFunc(now func() time.Time) {
	s.now = now
}

// Incoming returns today's unprocessed, uncancelled, non-flagged orders,
// oldest first
func (s *OrderQueryService) Incoming(ctx context.Context) ([]models.Order, error) {
	snap, err := s.cache.Get(ctx, false)
	if err != nil {
		return nil, err
	}

	today := s.now()
	var out []models.Order
	for _, o := range snap.Orders {
		if o.Cancelled || o.OrderProcessed || o.OrderUpdateStatus != models.UpdateStatusNone {
			continue
		}
		t, err := utils.ParseOrderTime(o.TimeOrdered, s.loc)
		if err != nil || !utils.SameDay(t, today, s.loc) {
			// An unparseable timestamp excludes the row from date-bounded
			// views rather than failing the request.
			continue
		}
		out = append(out, o)
	}
	s.sortByTimeOrdered(out, true)
	return out, nil
}

// Updating returns today's orders flagged by the customer-update workflow,
// newest first. Flagged orders never appear in Incoming until an external
// actor flips the flag back.
func (s *OrderQueryService) Updating(ctx context.Context) ([]models.Order, error) {
	snap, err := s.cache.Get(ctx, false)
	if err != nil {
		return nil, err
	}

	today := s.now()
	var out []models.Order
	for _, o := range snap.Orders {
		if o.Cancelled || o.OrderProcessed || o.OrderUpdateStatus != models.UpdateStatusChkRecExist {
			continue
		}
		t, err := utils.ParseOrderTime(o.TimeOrdered, s.loc)
		if err != nil || !utils.SameDay(t, today, s.loc) {
			continue
		}
		out = append(out, o)
	}
	s.sortByTimeOrdered(out, false)
	return out, nil
}

// Processed returns all processed orders (no date filter), newest first.
// Orders whose sheet-native timestamp list is empty are enriched from the
// local print-history log.
func (s *OrderQueryService) Processed(ctx context.Context) ([]models.Order, error) {
	snap, err := s.cache.Get(ctx, false)
	if err != nil {
		return nil, err
	}

	var out []models.Order
	for _, o := range snap.Orders {
		if o.Cancelled || !o.OrderProcessed {
			continue
		}
		if len(o.PrintedTimestamps) == 0 && s.history != nil && !o.IsSyntheticOrderNum() {
			o.PrintedTimestamps = s.history.TimestampsFor(o.OrderNum)
		}
		out = append(out, o)
	}
	s.sortByTimeOrdered(out, false)
	return out, nil
}

// OrderByRow locates an order in the current snapshot by its sheet row
// index. A miss means the row was archived (or never existed) since the
// last poll; callers should clear their selection, not retry.
func (s *OrderQueryService) OrderByRow(ctx context.Context, rowIndex int) (models.Order, error) {
	snap, err := s.cache.Get(ctx, false)
	if err != nil {
		return models.Order{}, err
	}
	for _, o := range snap.Orders {
		if o.RowIndex == rowIndex {
			return o, nil
		}
	}
	return models.Order{}, ErrNotFound
}

// sortByTimeOrdered sorts in place by parsed order time. Unparseable
// timestamps sort last either way; ties fall back to row order so the
// result is deterministic.
func (s *OrderQueryService) sortByTimeOrdered(orders []models.Order, ascending bool) {
	type keyed struct {
		t  time.Time
		ok bool
	}
	keys := make(map[int]keyed, len(orders))
	for _, o := range orders {
		t, err := utils.ParseOrderTime(o.TimeOrdered, s.loc)
		keys[o.RowIndex] = keyed{t: t, ok: err == nil}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		ki, kj := keys[orders[i].RowIndex], keys[orders[j].RowIndex]
		if ki.ok != kj.ok {
			return ki.ok
		}
		if !ki.ok {
			return orders[i].RowIndex < orders[j].RowIndex
		}
		if ki.t.Equal(kj.t) {
			return orders[i].RowIndex < orders[j].RowIndex
		}
		if ascending {
			return ki.t.Before(kj.t)
		}
		return ki.t.After(kj.t)
	})
}
