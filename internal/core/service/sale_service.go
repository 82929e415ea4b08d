package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/port"
)

type CheckoutLine struct {
	ItemID   int64            `json:"item_id"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type CheckoutRequest struct {
	RequestID     string          `json:"request_id"`
	CustomerID    int64           `json:"customer_id"`
	Lines         []CheckoutLine  `json:"lines"`
	TaxPercentage decimal.Decimal `json:"tax_percentage"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}

func (r *CheckoutRequest) validate() error {
	r.RequestID = strings.TrimSpace(r.RequestID)
	switch {
	case r.RequestID == "":
		return invalidf("request_id is required")
	case r.CustomerID <= 0:
		return invalidf("customer_id is required")
	case len(r.Lines) == 0:
		return invalidf("at least one line is required")
	case r.TaxPercentage.IsNegative() || r.TaxPercentage.GreaterThan(hundredPct):
		return invalidf("tax percentage must be between 0 and 100")
	case r.AmountPaid.IsNegative():
		return invalidf("amount paid cannot be negative")
	}
	for i, line := range r.Lines {
		if line.ItemID <= 0 {
			return invalidf("line %d: item_id is required", i+1)
		}
		if line.Quantity <= 0 {
			return invalidf("line %d: quantity must be greater than zero", i+1)
		}
		if line.Price != nil && line.Price.IsNegative() {
			return invalidf("line %d: price cannot be negative", i+1)
		}
	}
	return nil
}

var hundredPct = decimal.NewFromInt(100)

// SaleService reserves stock in the cache and hands accepted sales to the
// worker pool through a bounded queue.
type SaleService struct {
	sales     port.SaleRepository
	items     port.ItemRepository
	customers port.CustomerRepository
	cache     port.CacheRepository
	saleQueue chan domain.Sale
	log       logrus.FieldLogger

	// queueMu guards closed; senders hold it for reading while they enqueue.
	queueMu sync.RWMutex
	closed  bool
	now       func() time.Time
}

func NewSaleService(sales port.SaleRepository, items port.ItemRepository, customers port.CustomerRepository, cache port.CacheRepository, queueSize int, log logrus.FieldLogger) *SaleService {
	return &SaleService{
		sales:     sales,
		items:     items,
		customers: customers,
		cache:     cache,
		saleQueue: make(chan domain.Sale, queueSize),
		log:       log,
		now:       time.Now,
	}
}

// Checkout validates and prices the request, claims the request id, reserves
// stock for every line and enqueues the pending sale. A failed reservation
// releases the lines reserved before it.
func (s *SaleService) Checkout(ctx context.Context, actor domain.User, req CheckoutRequest) (*domain.Sale, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	scope := domain.ScopeFor(actor)

	customer, err := s.customers.GetCustomer(ctx, req.CustomerID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !scope.Allows(customer.UserID)) {
		return nil, invalidf("customer with id %d does not exist", req.CustomerID)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	sale := domain.Sale{
		ID:            uuid.NewString(),
		RequestID:     req.RequestID,
		UserID:        ownerOf(actor),
		CustomerID:    req.CustomerID,
		Status:        domain.SaleStatusPending,
		TaxPercentage: req.TaxPercentage,
		AmountPaid:    req.AmountPaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, line := range req.Lines {
		item, err := s.items.GetItemByID(ctx, line.ItemID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && !scope.Allows(item.UserID)) {
			return nil, invalidf("item with id %d does not exist", line.ItemID)
		}
		if err != nil {
			return nil, err
		}
		price := item.Price
		if line.Price != nil {
			price = *line.Price
		}
		sale.Details = append(sale.Details, domain.SaleDetail{
			SaleID:   sale.ID,
			ItemID:   item.ID,
			ItemName: item.Name,
			Price:    price,
			Quantity: line.Quantity,
		})
	}
	sale.ComputeTotals()
	if sale.AmountPaid.LessThan(sale.GrandTotal) {
		return nil, invalidf("amount paid %s is less than grand total %s", sale.AmountPaid.StringFixed(2), sale.GrandTotal.StringFixed(2))
	}

	ok, err := s.cache.SetIdempotency(ctx, "sale:"+req.RequestID)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, ErrDuplicateRequest
	}

	if err := s.reserve(ctx, sale.Details); err != nil {
		return nil, err
	}

	if err := s.enqueue(ctx, sale); err != nil {
		s.release(sale.Details)
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"sale": sale.ID, "request": sale.RequestID}).Debug("sale queued")
	return &sale, nil
}

func (s *SaleService) enqueue(ctx context.Context, sale domain.Sale) error {
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()
	if s.closed {
		return ErrShuttingDown
	}
	select {
	case s.saleQueue <- sale:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SaleService) reserve(ctx context.Context, details []domain.SaleDetail) error {
	for i, d := range details {
		ok, err := s.cache.DecrementStock(ctx, d.ItemID, d.Quantity)
		if err == nil && ok {
			continue
		}
		s.release(details[:i])
		if err != nil {
			return fmt.Errorf("stock decrement failed: %w", err)
		}
		return fmt.Errorf("%w: item %d", ErrInsufficientStock, d.ItemID)
	}
	return nil
}

// release returns reserved stock to the cache. It runs detached from the
// request context so a cancelled caller cannot leak a reservation.
func (s *SaleService) release(details []domain.SaleDetail) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, d := range details {
		if err := s.cache.IncrementStock(ctx, d.ItemID, d.Quantity); err != nil {
			s.log.WithError(err).Errorf("CRITICAL failed to release %d of item %d", d.Quantity, d.ItemID)
		}
	}
}

func (s *SaleService) GetSale(ctx context.Context, actor domain.User, id string) (*domain.Sale, error) {
	sale, err := s.sales.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := visible(domain.ScopeFor(actor), sale.UserID, "sale", id); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *SaleService) ListSales(ctx context.Context, actor domain.User, limit, offset int) ([]domain.Sale, error) {
	f := domain.ItemFilter{Limit: limit, Offset: offset}.Normalize()
	return s.sales.ListSales(ctx, domain.ScopeFor(actor), f.Limit, f.Offset)
}

// RemoveSale hides a sale from listings. Stock is not returned.
func (s *SaleService) RemoveSale(ctx context.Context, actor domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.GetSale(ctx, actor, id); err != nil {
		return err
	}
	return s.sales.RemoveSale(ctx, id)
}

func (s *SaleService) GetSaleQueue() <-chan domain.Sale {
	return s.saleQueue
}

// QueueDepth is the number of accepted sales still waiting for a worker.
func (s *SaleService) QueueDepth() int {
	return len(s.saleQueue)
}

// Close stops accepting sales and closes the queue once in-flight enqueues
// have finished. Later checkouts fail with ErrShuttingDown.
func (s *SaleService) Close() {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.saleQueue)
}
