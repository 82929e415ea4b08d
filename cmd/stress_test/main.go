package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/mestakip/internal/adapter/storage"
	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/core/service"
	"github.com/rl1809/mestakip/internal/port"
)

const (
	itemID        = 900001
	customerID    = 900001
	initialStock  = 20
	totalRequests = 50
	queueSize     = 100
)

// catalog serves the single item and customer the checkouts reference.
type catalog struct {
	port.ItemRepository
	port.CustomerRepository
}

func (catalog) GetItemByID(_ context.Context, id int64) (*domain.Item, error) {
	return &domain.Item{ID: id, Name: "Stress Lastik", Price: decimal.NewFromInt(1000), Quantity: initialStock}, nil
}

func (catalog) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	return &domain.Customer{ID: id, FirstName: "Stress", LastName: "Test"}, nil
}

func main() {
	ctx := context.Background()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	redisAdapter := storage.NewRedisAdapter(rdb)
	if err := redisAdapter.SetStock(ctx, itemID, initialStock); err != nil {
		log.Fatalf("failed to set stock: %v", err)
	}

	quiet := logrus.New()
	quiet.SetLevel(logrus.WarnLevel)
	fixtures := catalog{}
	saleService := service.NewSaleService(nil, fixtures, fixtures, redisAdapter, queueSize, quiet)
	defer saleService.Close()

	// Drain the sale queue in background
	go func() {
		for range saleService.GetSaleQueue() {
		}
	}()

	clerk := domain.User{ID: 1, Username: "stress", IsActive: true, IsSuperuser: true, Role: domain.RoleAdmin}

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := saleService.Checkout(ctx, clerk, service.CheckoutRequest{
				RequestID:  uuid.NewString(),
				CustomerID: customerID,
				Lines:      []service.CheckoutLine{{ItemID: itemID, Quantity: 1}},
				AmountPaid: decimal.NewFromInt(1000),
			})
			if err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == int32(initialStock) && fail == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: Exactly %d sales succeeded, %d failed\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	finalStock, _, err := redisAdapter.GetStock(ctx, itemID)
	if err != nil {
		log.Fatalf("failed to read stock: %v", err)
	}
	fmt.Printf("Final Redis Stock: %d\n", finalStock)

	if finalStock == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", finalStock)
	}
}
