package application

import (
	"context"
	"fmt"
	"time"

	sharedinfra "github.com/amirpoori99/food-ordering-project-sub008/internal/shared/infrastructure"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

const (
	aggregateCacheShards = 4
	// les entrées vivent au plus le temps d'un run: le cache est jeté à la fin
	aggregateCacheTTL = 24 * time.Hour
)

// runAggregates cache d'agrégats propre à un run.
// Il est préchargé page par page (une requête par page) puis lu par la
// transformation; un nouveau run repart d'un cache vide et relit la source.
type runAggregates struct {
	next  AggregateLookup
	cache *sharedinfra.ShardedCache
}

func newRunAggregates(next AggregateLookup) *runAggregates {
	return &runAggregates{
		next:  next,
		cache: sharedinfra.NewShardedCache(aggregateCacheShards),
	}
}

func userStatsKey(id int64) string {
	return sharedinfra.NewCacheKeyBuilder().Add("user_order_stats").AddInt64(id).Build()
}

func restaurantCountKey(id int64) string {
	return sharedinfra.NewCacheKeyBuilder().Add("restaurant_order_count").AddInt64(id).Build()
}

// OrderStatsByUsers sert les agrégats en cache et interroge la source en un lot pour les autres.
// Les erreurs ne sont jamais mises en cache.
func (a *runAggregates) OrderStatsByUsers(ctx context.Context, userIDs []int64) (map[int64]sourcedomain.UserOrderStats, error) {
	out := make(map[int64]sourcedomain.UserOrderStats, len(userIDs))
	var missing []int64
	for _, id := range userIDs {
		if cached, found := a.cache.Get(userStatsKey(id)); found {
			out[id] = cached.(sourcedomain.UserOrderStats)
			continue
		}
		if _, queued := out[id]; !queued {
			missing = append(missing, id)
			out[id] = sourcedomain.UserOrderStats{}
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := a.next.OrderStatsByUsers(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		stats := fetched[id]
		a.cache.Set(userStatsKey(id), stats, aggregateCacheTTL)
		out[id] = stats
	}
	return out, nil
}

// OrderCountsByRestaurants même principe pour le nombre de commandes par restaurant
func (a *runAggregates) OrderCountsByRestaurants(ctx context.Context, restaurantIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(restaurantIDs))
	var missing []int64
	for _, id := range restaurantIDs {
		if cached, found := a.cache.Get(restaurantCountKey(id)); found {
			out[id] = cached.(int64)
			continue
		}
		if _, queued := out[id]; !queued {
			missing = append(missing, id)
			out[id] = 0
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := a.next.OrderCountsByRestaurants(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		count := fetched[id]
		a.cache.Set(restaurantCountKey(id), count, aggregateCacheTTL)
		out[id] = count
	}
	return out, nil
}

// prefetch charge en un lot les agrégats des utilisateurs et restaurants d'une page.
// Les autres types d'entité ne déclenchent aucune requête.
func (a *runAggregates) prefetch(ctx context.Context, page []sourcedomain.Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("aggregate prefetch panicked: %v", p)
		}
	}()

	var userIDs, restaurantIDs []int64
	for _, rec := range page {
		switch r := rec.(type) {
		case *sourcedomain.UserRecord:
			if r != nil {
				userIDs = append(userIDs, r.ID)
			}
		case *sourcedomain.RestaurantRecord:
			if r != nil {
				restaurantIDs = append(restaurantIDs, r.ID)
			}
		}
	}

	if len(userIDs) > 0 {
		if _, err := a.OrderStatsByUsers(ctx, userIDs); err != nil {
			return fmt.Errorf("prefetch user aggregates: %w", err)
		}
	}
	if len(restaurantIDs) > 0 {
		if _, err := a.OrderCountsByRestaurants(ctx, restaurantIDs); err != nil {
			return fmt.Errorf("prefetch restaurant aggregates: %w", err)
		}
	}
	return nil
}

// Close arrête le nettoyage du cache
func (a *runAggregates) Close() {
	a.cache.Close()
}
