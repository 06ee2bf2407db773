package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	analyticsdomain "github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/domain"
	analyticsinfra "github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/infrastructure"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/testhelpers"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteChunk(ctx context.Context, entityType sourcedomain.EntityType, facts []analyticsdomain.Fact) error {
	return m.Called(ctx, entityType, facts).Error(0)
}

// flakyWriter échoue sur les n premiers appels puis délègue
type flakyWriter struct {
	next     FactWriter
	failures int
	calls    int
}

func (w *flakyWriter) WriteChunk(ctx context.Context, entityType sourcedomain.EntityType, facts []analyticsdomain.Fact) error {
	w.calls++
	if w.calls <= w.failures {
		return errors.New("serialization failure")
	}
	return w.next.WriteChunk(ctx, entityType, facts)
}

func loaderConfig(commitSize, attempts int) domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()
	cfg.CommitSize = commitSize
	cfg.MaxRetryAttempts = attempts
	cfg.RetryDelay = 0
	return cfg
}

func orderFacts(n int) []analyticsdomain.Fact {
	facts := make([]analyticsdomain.Fact, 0, n)
	for i := 1; i <= n; i++ {
		facts = append(facts, analyticsdomain.OrderFact{
			OrderID:      int64(i),
			UserID:       1,
			RestaurantID: 1,
			OrderedAt:    t0,
			TotalAmount:  money("1000"),
		})
	}
	return facts
}

func chunkOf(size int) interface{} {
	return mock.MatchedBy(func(facts []analyticsdomain.Fact) bool { return len(facts) == size })
}

func TestLoadSplitsIntoChunks(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteChunk", mock.Anything, sourcedomain.EntityOrders, chunkOf(2)).Return(nil).Twice()
	w.On("WriteChunk", mock.Anything, sourcedomain.EntityOrders, chunkOf(1)).Return(nil).Once()

	res := NewLoader(w, loaderConfig(2, 3), NopMetrics{}, zap.NewNop()).Load(context.Background(), sourcedomain.EntityOrders, orderFacts(5))

	require.NoError(t, res.Err)
	assert.Equal(t, 5, res.Persisted)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, 3, res.Attempts)
	w.AssertExpectations(t)
}

func TestLoadEmptyIsNoop(t *testing.T) {
	w := &mockWriter{}

	res := NewLoader(w, loaderConfig(2, 3), NopMetrics{}, zap.NewNop()).Load(context.Background(), sourcedomain.EntityOrders, nil)

	require.NoError(t, res.Err)
	assert.Zero(t, res.Persisted)
	w.AssertNotCalled(t, "WriteChunk", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadRetriesWithoutDuplicates(t *testing.T) {
	warehouse := testhelpers.SetupWarehouse(t)
	facts := analyticsinfra.NewFactRepository(warehouse)
	w := &flakyWriter{next: facts, failures: 1}

	res := NewLoader(w, loaderConfig(10, 3), NopMetrics{}, zap.NewNop()).Load(context.Background(), sourcedomain.EntityOrders, orderFacts(3))

	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.Persisted)
	assert.Equal(t, 2, res.Attempts)

	count, err := facts.Count(context.Background(), sourcedomain.EntityOrders)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestLoadStopsAtFirstExhaustedChunk(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteChunk", mock.Anything, sourcedomain.EntityOrders, chunkOf(2)).Return(nil).Once()
	w.On("WriteChunk", mock.Anything, sourcedomain.EntityOrders, chunkOf(2)).Return(errors.New("disk full")).Times(3)

	res := NewLoader(w, loaderConfig(2, 3), NopMetrics{}, zap.NewNop()).Load(context.Background(), sourcedomain.EntityOrders, orderFacts(5))

	var loadErr *domain.LoadChunkError
	require.True(t, errors.As(res.Err, &loadErr))
	assert.Equal(t, 2, loadErr.Chunk)
	assert.Equal(t, 3, loadErr.Attempts)
	assert.Equal(t, 2, res.Persisted)
	assert.Equal(t, 3, res.Failed)
	// le troisième chunk n'est jamais tenté
	w.AssertExpectations(t)
	w.AssertNumberOfCalls(t, "WriteChunk", 4)
}

func TestLoadRetryDelayHonoursContext(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteChunk", mock.Anything, sourcedomain.EntityOrders, mock.Anything).Return(errors.New("lock timeout"))

	cfg := loaderConfig(10, 5)
	cfg.RetryDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := NewLoader(w, cfg, NopMetrics{}, zap.NewNop()).Load(ctx, sourcedomain.EntityOrders, orderFacts(1))

	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1, res.Failed)
	w.AssertNumberOfCalls(t, "WriteChunk", 1)
}
