package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/port"
)

var dotPattern = regexp.MustCompile(`^[0-9]{4}$`)

type PurchaseInput struct {
	ItemID         *int64                `json:"item_id"`
	Description    string                `json:"description"`
	VendorID       *int64                `json:"vendor_id"`
	OrderDate      time.Time             `json:"order_date"`
	DeliveryDate   *time.Time            `json:"delivery_date"`
	Quantity       int                   `json:"quantity"`
	DeliveryStatus domain.DeliveryStatus `json:"delivery_status"`
	Price          decimal.Decimal       `json:"price"`
	Condition      domain.Condition      `json:"condition"`
	Brand          string                `json:"brand"`
	Product        string                `json:"product"`
	DOT            string                `json:"dot"`
	EntryDate      *time.Time            `json:"entry_date"`
	Season         domain.Season         `json:"season"`
	Note           string                `json:"note"`
}

func (in *PurchaseInput) validate() error {
	in.DOT = strings.TrimSpace(in.DOT)
	if in.DeliveryStatus == "" {
		in.DeliveryStatus = domain.DeliveryPending
	}
	if in.Condition == "" {
		in.Condition = domain.ConditionVeryGood
	}
	switch {
	case in.Quantity < 0:
		return invalidf("quantity cannot be negative")
	case in.Price.IsNegative():
		return invalidf("price cannot be negative")
	case !in.DeliveryStatus.Valid():
		return invalidf("unknown delivery status %q", in.DeliveryStatus)
	case !in.Condition.Valid():
		return invalidf("unknown condition %q", in.Condition)
	case !in.Season.Valid():
		return invalidf("unknown season %q", in.Season)
	case in.DOT != "" && !dotPattern.MatchString(in.DOT):
		return invalidf("DOT must be 4 digits, e.g. 2423")
	case len(in.Description) > 300:
		return invalidf("description cannot exceed 300 characters")
	}
	return nil
}

// PurchaseService records goods bought from vendors. Purchases linked to an
// item add their quantity to that item's stock.
type PurchaseService struct {
	purchases port.PurchaseRepository
	items     port.ItemRepository
	vendors   port.VendorRepository
	cache     port.CacheRepository
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewPurchaseService(purchases port.PurchaseRepository, items port.ItemRepository, vendors port.VendorRepository, cache port.CacheRepository, log logrus.FieldLogger) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		items:     items,
		vendors:   vendors,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

func (s *PurchaseService) checkReferences(ctx context.Context, actor domain.User, in PurchaseInput) error {
	scope := domain.ScopeFor(actor)
	if in.ItemID != nil {
		item, err := s.items.GetItemByID(ctx, *in.ItemID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && !scope.Allows(item.UserID)) {
			return invalidf("item with id %d does not exist", *in.ItemID)
		}
		if err != nil {
			return err
		}
	}
	if in.VendorID != nil {
		vendor, err := s.vendors.GetVendor(ctx, *in.VendorID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && !scope.Allows(vendor.UserID)) {
			return invalidf("vendor with id %d does not exist", *in.VendorID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PurchaseService) CreatePurchase(ctx context.Context, actor domain.User, in PurchaseInput) (*domain.Purchase, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, actor, in); err != nil {
		return nil, err
	}
	now := s.now()
	purchase := &domain.Purchase{UserID: ownerOf(actor), ItemID: in.ItemID, CreatedAt: now}
	applyPurchaseInput(purchase, in, now)
	if purchase.Slug == "" {
		purchase.Slug = domain.Slugify(in.Brand + " " + in.Product)
	}
	if err := s.purchases.CreatePurchase(ctx, purchase); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}
	if purchase.ItemID != nil {
		s.adjustCache(ctx, *purchase.ItemID, purchase.Quantity)
	}
	s.log.Infof("purchase %d recorded, %d units", purchase.ID, purchase.Quantity)
	return purchase, nil
}

func (s *PurchaseService) GetPurchase(ctx context.Context, actor domain.User, id int64) (*domain.Purchase, error) {
	purchase, err := s.purchases.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := visible(domain.ScopeFor(actor), purchase.UserID, "purchase", id); err != nil {
		return nil, err
	}
	return purchase, nil
}

// UpdatePurchase keeps the linked item fixed and moves its stock by the
// change in quantity.
func (s *PurchaseService) UpdatePurchase(ctx context.Context, actor domain.User, id int64, in PurchaseInput) (*domain.Purchase, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	purchase, err := s.GetPurchase(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.ItemID != nil && (purchase.ItemID == nil || *purchase.ItemID != *in.ItemID) {
		return nil, invalidf("the item of a purchase cannot be changed")
	}
	in.ItemID = purchase.ItemID
	if err := s.checkReferences(ctx, actor, in); err != nil {
		return nil, err
	}
	delta := in.Quantity - purchase.Quantity
	applyPurchaseInput(purchase, in, s.now())
	if err := s.purchases.UpdatePurchase(ctx, purchase, delta); err != nil {
		return nil, fmt.Errorf("update purchase: %w", err)
	}
	if purchase.ItemID != nil && delta != 0 {
		s.adjustCache(ctx, *purchase.ItemID, delta)
	}
	return purchase, nil
}

func (s *PurchaseService) RemovePurchase(ctx context.Context, actor domain.User, id int64) error {
	if _, err := s.GetPurchase(ctx, actor, id); err != nil {
		return err
	}
	return s.purchases.RemovePurchase(ctx, id)
}

func (s *PurchaseService) ListPurchases(ctx context.Context, actor domain.User) ([]domain.Purchase, error) {
	return s.purchases.ListPurchases(ctx, domain.ScopeFor(actor))
}

// adjustCache mirrors a committed stock change in the reservation cache.
// Failures are logged; the next stock sync repairs them.
func (s *PurchaseService) adjustCache(ctx context.Context, itemID int64, delta int) {
	if err := s.cache.IncrementStock(ctx, itemID, delta); err != nil {
		s.log.WithError(err).Warnf("failed to adjust cached stock of item %d by %d", itemID, delta)
	}
}

func applyPurchaseInput(p *domain.Purchase, in PurchaseInput, now time.Time) {
	p.Description = in.Description
	p.VendorID = in.VendorID
	p.OrderDate = in.OrderDate
	if p.OrderDate.IsZero() {
		p.OrderDate = now
	}
	p.DeliveryDate = in.DeliveryDate
	p.Quantity = in.Quantity
	p.DeliveryStatus = in.DeliveryStatus
	p.Price = in.Price
	p.Condition = in.Condition
	p.Brand = strings.TrimSpace(in.Brand)
	p.Product = strings.TrimSpace(in.Product)
	p.DOT = in.DOT
	p.EntryDate = in.EntryDate
	p.Season = in.Season
	p.Note = in.Note
	p.UpdatedAt = now
	p.ComputeTotal()
}
