package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	shareddomain "github.com/amirpoori99/food-ordering-project-sub008/internal/shared/domain"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// fakeSource source en mémoire qui respecte fenêtre, curseur et limite
type fakeSource struct {
	mu          sync.Mutex
	orders      []*sourcedomain.OrderRecord
	users       []*sourcedomain.UserRecord
	restaurants []*sourcedomain.RestaurantRecord
	payments    []*sourcedomain.PaymentRecord
	fail        map[sourcedomain.EntityType]error
	calls       map[sourcedomain.EntityType]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		fail:  make(map[sourcedomain.EntityType]error),
		calls: make(map[sourcedomain.EntityType]int),
	}
}

func (s *fakeSource) record(et sourcedomain.EntityType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[et]++
	return s.fail[et]
}

func (s *fakeSource) callsFor(et sourcedomain.EntityType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[et]
}

func (s *fakeSource) addOrders(orders ...*sourcedomain.OrderRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, orders...)
}

func (s *fakeSource) QueryOrders(ctx context.Context, window shareddomain.Window, after *sourcedomain.Cursor, limit int) ([]*sourcedomain.OrderRecord, error) {
	if err := s.record(sourcedomain.EntityOrders); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(s.orders, window, after, limit), nil
}

func (s *fakeSource) QueryUsers(ctx context.Context, window shareddomain.Window, after *sourcedomain.Cursor, limit int) ([]*sourcedomain.UserRecord, error) {
	if err := s.record(sourcedomain.EntityUsers); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(s.users, window, after, limit), nil
}

func (s *fakeSource) QueryRestaurants(ctx context.Context, window shareddomain.Window, after *sourcedomain.Cursor, limit int) ([]*sourcedomain.RestaurantRecord, error) {
	if err := s.record(sourcedomain.EntityRestaurants); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(s.restaurants, window, after, limit), nil
}

func (s *fakeSource) QueryPayments(ctx context.Context, window shareddomain.Window, after *sourcedomain.Cursor, limit int) ([]*sourcedomain.PaymentRecord, error) {
	if err := s.record(sourcedomain.EntityPayments); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(s.payments, window, after, limit), nil
}

func page[T sourcedomain.Record](rows []T, window shareddomain.Window, after *sourcedomain.Cursor, limit int) []T {
	sorted := append([]T(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].Timestamp(), sorted[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return sorted[i].Identity() < sorted[j].Identity()
	})

	out := make([]T, 0, limit)
	for _, r := range sorted {
		ts := r.Timestamp()
		if ts.Before(window.Since()) {
			continue
		}
		if until, ok := window.Until(); ok && ts.After(until) {
			continue
		}
		if after != nil && (ts.Before(after.CreatedAt) || (ts.Equal(after.CreatedAt) && r.Identity() <= after.ID)) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}

// fakeAggregates agrégats en mémoire; garde la trace des lots demandés
type fakeAggregates struct {
	mu                sync.Mutex
	stats             map[int64]sourcedomain.UserOrderStats
	counts            map[int64]int64
	err               error
	panics            bool
	userBatches       [][]int64
	restaurantBatches [][]int64
}

func newFakeAggregates() *fakeAggregates {
	return &fakeAggregates{
		stats:  make(map[int64]sourcedomain.UserOrderStats),
		counts: make(map[int64]int64),
	}
}

func (a *fakeAggregates) setStats(userID int64, stats sourcedomain.UserOrderStats) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats[userID] = stats
}

func (a *fakeAggregates) batches() (users, restaurants [][]int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]int64(nil), a.userBatches...), append([][]int64(nil), a.restaurantBatches...)
}

func (a *fakeAggregates) OrderStatsByUsers(ctx context.Context, userIDs []int64) (map[int64]sourcedomain.UserOrderStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userBatches = append(a.userBatches, append([]int64(nil), userIDs...))
	if a.panics {
		panic(fmt.Sprintf("corrupted aggregate for users %v", userIDs))
	}
	if a.err != nil {
		return nil, a.err
	}
	out := make(map[int64]sourcedomain.UserOrderStats, len(userIDs))
	for _, id := range userIDs {
		out[id] = a.stats[id]
	}
	return out, nil
}

func (a *fakeAggregates) OrderCountsByRestaurants(ctx context.Context, restaurantIDs []int64) (map[int64]int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.restaurantBatches = append(a.restaurantBatches, append([]int64(nil), restaurantIDs...))
	if a.err != nil {
		return nil, a.err
	}
	out := make(map[int64]int64, len(restaurantIDs))
	for _, id := range restaurantIDs {
		out[id] = a.counts[id]
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func money(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func order(id int64, total string, createdAt time.Time) *sourcedomain.OrderRecord {
	o := &sourcedomain.OrderRecord{
		ID:           id,
		UserID:       ptr(int64(1)),
		RestaurantID: ptr(int64(1)),
		Status:       sourcedomain.OrderStatusCompleted,
		ItemCount:    2,
		CreatedAt:    createdAt,
	}
	if total != "" {
		o.TotalAmount = money(total)
	}
	return o
}
