package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/port"
)

// saveTimeout bounds one save and, separately, its cache rollback.
var saveTimeout = 5 * time.Second

// SaleObserver is notified once per sale the workers finish with.
type SaleObserver interface {
	SaleProcessed(status domain.SaleStatus, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) SaleProcessed(domain.SaleStatus, time.Duration) {}

// RunSaleWorkers starts n workers draining queue. The returned WaitGroup is
// done once the queue is closed and drained.
func RunSaleWorkers(n int, queue <-chan domain.Sale, db port.SaleRepository, cache port.CacheRepository, log logrus.FieldLogger, observer SaleObserver) *sync.WaitGroup {
	if observer == nil {
		observer = nopObserver{}
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(log.WithField("worker", id), queue, db, cache, observer)
		}(i)
	}
	log.Infof("started %d sale workers", n)
	return &wg
}

func workerLoop(log logrus.FieldLogger, queue <-chan domain.Sale, db port.SaleRepository, cache port.CacheRepository, observer SaleObserver) {
	for sale := range queue {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)

		sale.Status = domain.SaleStatusCompleted
		if err := db.CreateSale(ctx, sale); err != nil {
			log.WithError(err).Errorf("failed to save sale %s", sale.ID)

			// Rollback: restore the reserved stock. The save context may
			// already be expired, so the rollback gets its own.
			rollbackCtx, rollbackCancel := context.WithTimeout(context.Background(), saveTimeout)
			for _, d := range sale.Details {
				if rollbackErr := cache.IncrementStock(rollbackCtx, d.ItemID, d.Quantity); rollbackErr != nil {
					log.WithError(rollbackErr).Errorf("CRITICAL rollback failed for sale %s item %d", sale.ID, d.ItemID)
				}
			}
			rollbackCancel()
			log.Infof("rolled back stock for sale %s", sale.ID)
			observer.SaleProcessed(domain.SaleStatusFailed, time.Since(start))
		} else {
			log.Debugf("saved sale %s", sale.ID)
			observer.SaleProcessed(domain.SaleStatusCompleted, time.Since(start))
		}

		cancel()
	}
}
