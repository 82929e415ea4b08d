package storage

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rl1809/mestakip/internal/port"
)

// runCacheContract exercises the behaviour every stock cache must share.
// Item ids 9001..9004 are reserved for it.
func runCacheContract(t *testing.T, cache port.CacheRepository, idemPrefix string) {
	ctx := context.Background()

	t.Run("DecrementStock_Success", func(t *testing.T) {
		if err := cache.SetStock(ctx, 9001, 10); err != nil {
			t.Fatalf("SetStock failed: %v", err)
		}

		ok, err := cache.DecrementStock(ctx, 9001, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Error("expected success")
		}

		stock, found, _ := cache.GetStock(ctx, 9001)
		if !found || stock != 7 {
			t.Errorf("expected stock 7, got %d (found=%v)", stock, found)
		}
	})

	t.Run("DecrementStock_InsufficientStock", func(t *testing.T) {
		cache.SetStock(ctx, 9001, 5)

		// try to decrement more than available
		ok, err := cache.DecrementStock(ctx, 9001, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected failure due to insufficient stock")
		}

		stock, _, _ := cache.GetStock(ctx, 9001)
		if stock != 5 {
			t.Errorf("expected stock 5, got %d", stock)
		}
	})

	t.Run("DecrementStock_KeyNotExists", func(t *testing.T) {
		ok, err := cache.DecrementStock(ctx, 9002, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected failure for uncached item")
		}
		if _, found, _ := cache.GetStock(ctx, 9002); found {
			t.Error("expected item to stay uncached")
		}
	})

	t.Run("DecrementStock_Concurrent", func(t *testing.T) {
		initialStock := 20
		totalRequests := 50
		cache.SetStock(ctx, 9003, initialStock)

		var successCount atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < totalRequests; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := cache.DecrementStock(ctx, 9003, 1)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if ok {
					successCount.Add(1)
				}
			}()
		}
		wg.Wait()

		if successCount.Load() != int32(initialStock) {
			t.Errorf("expected %d successes, got %d", initialStock, successCount.Load())
		}
		stock, _, _ := cache.GetStock(ctx, 9003)
		if stock != 0 {
			t.Errorf("expected stock 0, got %d", stock)
		}
	})

	t.Run("IncrementStock", func(t *testing.T) {
		cache.SetStock(ctx, 9004, 5)

		if err := cache.IncrementStock(ctx, 9004, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cache.IncrementStock(ctx, 9004, -1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stock, _, _ := cache.GetStock(ctx, 9004)
		if stock != 7 {
			t.Errorf("expected stock 7, got %d", stock)
		}
	})

	t.Run("SetIdempotency_Concurrent", func(t *testing.T) {
		key := fmt.Sprintf("%sconcurrent-idem-key", idemPrefix)

		var successCount atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := cache.SetIdempotency(ctx, key)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if ok {
					successCount.Add(1)
				}
			}()
		}
		wg.Wait()

		// Only one should succeed
		if successCount.Load() != 1 {
			t.Errorf("expected exactly 1 success, got %d", successCount.Load())
		}
	})
}
