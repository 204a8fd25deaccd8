package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(now *time.Time) *MemoryStore {
	store := NewMemoryStore()
	store.now = func() time.Time { return *now }
	return store
}

func TestConnectionBudgetExhaustion(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(&now)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		decision, err := store.Consume(ctx, "user-a", CategoryConnection)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "call %d should be admitted", i)
		assert.Equal(t, 10-i, decision.Remaining)
	}

	decision, err := store.Consume(ctx, "user-a", CategoryConnection)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, 24*3600, decision.RetryAfterSeconds())
	assert.Equal(t, 24*60, decision.RetryAfterMinutes())
}

func TestWindowResetRestoresFullBudget(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(&now)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		decision, err := store.Consume(ctx, "user-a", CategoryAuth)
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	denied, err := store.Consume(ctx, "user-a", CategoryAuth)
	require.NoError(t, err)
	require.False(t, denied.Allowed)

	// La ventana expira entera, no de forma deslizante
	now = now.Add(15 * time.Minute)

	decision, err := store.Consume(ctx, "user-a", CategoryAuth)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 4, decision.Remaining)
}

func TestKeysAndCategoriesAreIndependent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(&now)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		decision, err := store.Consume(ctx, "user-a", CategoryConnection)
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	denied, err := store.Consume(ctx, "user-a", CategoryConnection)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)

	// Otro usuario conserva su presupuesto completo
	other, err := store.Consume(ctx, "user-b", CategoryConnection)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
	assert.Equal(t, 9, other.Remaining)

	// Quedarse sin solicitudes de conexión no afecta otras categorías
	general, err := store.Consume(ctx, "user-a", CategoryGeneral)
	require.NoError(t, err)
	assert.True(t, general.Allowed)
}

func TestConcurrentConsumeNeverOverAdmits(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := store.Consume(ctx, "burst", CategoryFeed)
			if err == nil && decision.Allowed {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), admitted)
}

func TestSweepDropsExpiredWindows(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(&now)
	ctx := context.Background()

	_, err := store.Consume(ctx, "user-a", CategoryFeed)
	require.NoError(t, err)
	_, err = store.Consume(ctx, "user-b", CategoryAuth)
	require.NoError(t, err)
	require.Len(t, store.windows, 2)

	now = now.Add(2 * time.Minute)
	store.Sweep()

	// La ventana de feed (60s) expiró; la de auth (15min) sigue viva
	assert.Len(t, store.windows, 1)
}

func TestRetryAfterRounding(t *testing.T) {
	d := Decision{RetryAfter: 500 * time.Millisecond}
	assert.Equal(t, 1, d.RetryAfterSeconds())
	assert.Equal(t, 1, d.RetryAfterMinutes())

	d = Decision{RetryAfter: 61 * time.Second}
	assert.Equal(t, 61, d.RetryAfterSeconds())
	assert.Equal(t, 2, d.RetryAfterMinutes())
}

func TestUnknownCategoryFallsBackToGeneral(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(&now)

	decision, err := store.Consume(context.Background(), "user-a", Category("bogus"))
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, Limits[CategoryGeneral].Points, decision.Limit)
}
