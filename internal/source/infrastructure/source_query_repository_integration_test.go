package infrastructure

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shareddomain "github.com/amirpoori99/food-ordering-project-sub008/internal/shared/domain"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/testhelpers"
)

var base = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func seedSource(t *testing.T, db *sql.DB) {
	t.Helper()
	exec := func(query string, args ...interface{}) {
		t.Helper()
		_, err := db.Exec(query, args...)
		require.NoError(t, err)
	}

	exec(`INSERT INTO users (id, username, role, created_at) VALUES (1, 'sara', 'CUSTOMER', $1), (2, 'ali', NULL, $2)`,
		base, base.Add(time.Minute))
	exec(`INSERT INTO restaurants (id, name, category, city, created_at) VALUES (1, 'Shandiz', 'Iranian', 'Mashhad', $1)`, base)
	exec(`INSERT INTO coupons (id, code, discount_percent) VALUES (1, 'FOOD10', 10)`)
	// trois commandes au même horodatage pour exercer le départage par id
	exec(`INSERT INTO orders (id, customer_id, restaurant_id, coupon_id, status, total_amount, created_at, delivered_at) VALUES
		(1, 1, 1, 1, 'COMPLETED', 40000, $1, $2),
		(2, 1, 1, NULL, 'COMPLETED', 150000, $1, NULL),
		(3, 1, NULL, NULL, 'PENDING', NULL, $1, NULL),
		(4, 1, 1, NULL, 'CANCELLED', 310000, $3, NULL)`,
		base, base.Add(35*time.Minute), base.Add(time.Hour))
	exec(`INSERT INTO order_items (order_id, name, quantity, unit_price) VALUES (1, 'Joojeh', 1, 20000), (1, 'Salad', 2, 10000)`)
	exec(`INSERT INTO payment_transactions (id, order_id, amount, payment_method, status, created_at) VALUES (1, 1, 40000, 'CARD', 'SUCCESS', $1)`, base)
}

func TestSourceQueryRepositoryPagination(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	db := testhelpers.SetupTestDB(t)
	seedSource(t, db)

	ctx := context.Background()
	repo := NewSourceQueryRepository(db)
	window, err := shareddomain.NewWindow(base, nil)
	require.NoError(t, err)

	first, err := repo.QueryOrders(ctx, window, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, int64(1), first[0].ID)
	assert.Equal(t, int64(2), first[1].ID)
	assert.Equal(t, 2, first[0].ItemCount)
	require.NotNil(t, first[0].Coupon)
	assert.True(t, first[0].Coupon.DiscountPercent.Equal(decimal.NewFromInt(10)))
	require.NotNil(t, first[0].DeliveredAt)

	cursor := domain.CursorOf(first[1])
	second, err := repo.QueryOrders(ctx, window, &cursor, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, int64(3), second[0].ID)
	assert.Nil(t, second[0].RestaurantID)
	assert.False(t, second[0].TotalAmount.Valid)
	assert.Equal(t, int64(4), second[1].ID)
}

func TestSourceQueryRepositoryUpperBound(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	db := testhelpers.SetupTestDB(t)
	seedSource(t, db)

	until := base.Add(30 * time.Minute)
	window, err := shareddomain.NewWindow(base, &until)
	require.NoError(t, err)

	orders, err := NewSourceQueryRepository(db).QueryOrders(context.Background(), window, nil, 100)
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}

func TestSourceQueryRepositoryOtherEntities(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	db := testhelpers.SetupTestDB(t)
	seedSource(t, db)

	ctx := context.Background()
	repo := NewSourceQueryRepository(db)
	window, err := shareddomain.NewWindow(base, nil)
	require.NoError(t, err)

	users, err := repo.QueryUsers(ctx, window, nil, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "", users[1].Role)

	restaurants, err := repo.QueryRestaurants(ctx, window, nil, 10)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "Mashhad", restaurants[0].City)

	payments, err := repo.QueryPayments(ctx, window, nil, 10)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "CARD", payments[0].Method)
}

func TestSourceQueryRepositoryAggregates(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	db := testhelpers.SetupTestDB(t)
	seedSource(t, db)

	ctx := context.Background()
	repo := NewSourceQueryRepository(db)

	stats, err := repo.OrderStatsByUsers(ctx, []int64{1, 99})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(4), stats[1].TotalOrders)
	assert.True(t, stats[1].TotalSpent.Equal(decimal.NewFromInt(190000)), stats[1].TotalSpent.String())
	require.NotNil(t, stats[1].LastOrderAt)
	assert.True(t, stats[1].LastOrderAt.Equal(base.Add(time.Hour)))

	// utilisateur sans commande
	assert.Equal(t, int64(0), stats[99].TotalOrders)
	assert.True(t, stats[99].TotalSpent.IsZero())
	assert.Nil(t, stats[99].LastOrderAt)

	counts, err := repo.OrderCountsByRestaurants(ctx, []int64{1, 42})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 3, 42: 0}, counts)

	empty, err := repo.OrderStatsByUsers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
