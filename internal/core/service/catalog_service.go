package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/port"
)

const searchLimit = 10

type ItemInput struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   int64           `json:"category_id"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	ExpiringDate *time.Time      `json:"expiring_date"`
	VendorID     *int64          `json:"vendor_id"`
	Brand        string          `json:"brand"`
	Group        domain.Group    `json:"group"`
	Season       domain.Season   `json:"season"`
	Currency     domain.Currency `json:"currency"`
	// Version is required on update and must match the stored version.
	Version int `json:"version"`
}

func (in *ItemInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return invalidf("item name cannot be empty")
	case len(in.Name) > 200:
		return invalidf("item name cannot exceed 200 characters")
	case len(in.Description) > 256:
		return invalidf("item description cannot exceed 256 characters")
	case in.CategoryID <= 0:
		return invalidf("category_id is required")
	case in.Quantity < 0:
		return invalidf("item quantity cannot be negative")
	case in.Price.IsNegative():
		return invalidf("item price cannot be negative")
	case !in.Group.ValidForItem():
		return invalidf("unknown item group %q", in.Group)
	case !in.Season.Valid():
		return invalidf("unknown season %q", in.Season)
	}
	if in.Currency == "" {
		in.Currency = domain.CurrencyTRY
	}
	if !in.Currency.Valid() {
		return invalidf("currency must be TRY or USD")
	}
	return nil
}

type CatalogService struct {
	categories port.CategoryRepository
	items      port.ItemRepository
	vendors    port.VendorRepository
	cache      port.CacheRepository
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewCatalogService(categories port.CategoryRepository, items port.ItemRepository, vendors port.VendorRepository, cache port.CacheRepository, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{
		categories: categories,
		items:      items,
		vendors:    vendors,
		cache:      cache,
		log:        log,
		now:        time.Now,
	}
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor domain.User, name string) (*domain.Category, error) {
	name, err := validCategoryName(name)
	if err != nil {
		return nil, err
	}

	slug, err := domain.UniqueSlug(name, func(candidate string) (bool, error) {
		return s.categories.CategorySlugExists(ctx, candidate)
	})
	if err != nil {
		return nil, fmt.Errorf("generate slug: %w", err)
	}

	category := &domain.Category{UserID: ownerOf(actor), Name: name, Slug: slug}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.log.Infof("category %q created (slug %s)", category.Name, category.Slug)
	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, actor domain.User, id int64) (*domain.Category, error) {
	category, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := visible(domain.ScopeFor(actor), category.UserID, "category", id); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames a category. The slug is kept so existing links
// stay valid.
func (s *CatalogService) UpdateCategory(ctx context.Context, actor domain.User, id int64, name string) (*domain.Category, error) {
	name, err := validCategoryName(name)
	if err != nil {
		return nil, err
	}
	category, err := s.GetCategory(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.categories.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category together with its items.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor domain.User, id int64) error {
	if _, err := s.GetCategory(ctx, actor, id); err != nil {
		return err
	}
	items, err := s.items.ListItems(ctx, domain.Scope{All: true}, domain.ItemFilter{CategoryID: id, Limit: math.MaxInt32})
	if err != nil {
		return fmt.Errorf("list items of category %d: %w", id, err)
	}
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	for _, item := range items {
		if err := s.cache.SetStock(ctx, item.ID, 0); err != nil {
			s.log.Errorf("item %d deleted with category %d but stock cache not cleared: %v", item.ID, id, err)
		}
	}
	s.log.Infof("category %d deleted", id)
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context, actor domain.User) ([]domain.Category, error) {
	return s.categories.ListCategories(ctx, domain.ScopeFor(actor))
}

func validCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidf("category name cannot be empty")
	}
	if len(name) > 50 {
		return "", invalidf("category name cannot exceed 50 characters")
	}
	return name, nil
}

func (s *CatalogService) checkReferences(ctx context.Context, actor domain.User, in ItemInput) error {
	if _, err := s.GetCategory(ctx, actor, in.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return invalidf("category with id %d does not exist", in.CategoryID)
		}
		return err
	}
	if in.VendorID != nil {
		vendor, err := s.vendors.GetVendor(ctx, *in.VendorID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && !domain.ScopeFor(actor).Allows(vendor.UserID)) {
			return invalidf("vendor with id %d does not exist", *in.VendorID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *CatalogService) CreateItem(ctx context.Context, actor domain.User, in ItemInput) (*domain.Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, actor, in); err != nil {
		return nil, err
	}

	slug, err := domain.UniqueSlug(in.Name, func(candidate string) (bool, error) {
		return s.items.ItemSlugExists(ctx, candidate)
	})
	if err != nil {
		return nil, fmt.Errorf("generate slug: %w", err)
	}

	now := s.now()
	item := &domain.Item{UserID: ownerOf(actor), Slug: slug, CreatedAt: now}
	applyItemInput(item, in, now)

	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	if err := s.cache.SetStock(ctx, item.ID, item.Quantity); err != nil {
		s.log.Errorf("item %d created but stock cache not primed: %v", item.ID, err)
	}
	s.log.Infof("item %q created with id %d", item.Name, item.ID)
	return item, nil
}

func (s *CatalogService) GetItem(ctx context.Context, actor domain.User, slug string) (*domain.Item, error) {
	item, err := s.items.GetItemBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := visible(domain.ScopeFor(actor), item.UserID, "item", slug); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) GetItemByID(ctx context.Context, actor domain.User, id int64) (*domain.Item, error) {
	item, err := s.items.GetItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := visible(domain.ScopeFor(actor), item.UserID, "item", id); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem replaces the editable fields of an item. The caller's version
// must match the stored one; a concurrent edit yields domain.ErrConflict.
// Quantity changes are applied to the stock cache as a delta so that
// reservations of in-flight sales are preserved.
func (s *CatalogService) UpdateItem(ctx context.Context, actor domain.User, slug string, in ItemInput) (*domain.Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item, err := s.GetItem(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, actor, in); err != nil {
		return nil, err
	}

	before := item.Quantity
	applyItemInput(item, in, s.now())
	item.Version = in.Version

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	if delta := item.Quantity - before; delta != 0 {
		if err := s.cache.IncrementStock(ctx, item.ID, delta); err != nil {
			s.log.Errorf("item %d updated but stock cache not adjusted by %d: %v", item.ID, delta, err)
		}
	}
	return item, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, actor domain.User, slug string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	item, err := s.GetItem(ctx, actor, slug)
	if err != nil {
		return err
	}
	if err := s.items.DeleteItem(ctx, item.ID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if err := s.cache.SetStock(ctx, item.ID, 0); err != nil {
		s.log.Errorf("item %d deleted but stock cache not cleared: %v", item.ID, err)
	}
	s.log.Infof("item %q deleted", slug)
	return nil
}

func (s *CatalogService) ListItems(ctx context.Context, actor domain.User, filter domain.ItemFilter) ([]domain.Item, error) {
	return s.items.ListItems(ctx, domain.ScopeFor(actor), filter.Normalize())
}

// SearchItems returns at most ten items whose name contains term.
func (s *CatalogService) SearchItems(ctx context.Context, actor domain.User, term string) ([]domain.ItemSearchResult, error) {
	items, err := s.items.ListItems(ctx, domain.ScopeFor(actor), domain.ItemFilter{Query: term, Limit: searchLimit}.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]domain.ItemSearchResult, 0, len(items))
	for _, item := range items {
		out = append(out, item.SearchResult())
	}
	return out, nil
}

// SyncStock copies the persisted quantity of every item into the stock cache.
func (s *CatalogService) SyncStock(ctx context.Context) (int, error) {
	levels, err := s.items.ListStockLevels(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stock levels: %w", err)
	}
	for _, lvl := range levels {
		if err := s.cache.SetStock(ctx, lvl.ItemID, lvl.Quantity); err != nil {
			return 0, fmt.Errorf("cache stock for item %d: %w", lvl.ItemID, err)
		}
	}
	return len(levels), nil
}

func applyItemInput(item *domain.Item, in ItemInput, now time.Time) {
	item.Name = in.Name
	item.Description = in.Description
	item.CategoryID = in.CategoryID
	item.Quantity = in.Quantity
	item.Price = in.Price
	item.ExpiringDate = in.ExpiringDate
	item.VendorID = in.VendorID
	item.Brand = in.Brand
	item.Group = in.Group
	item.Season = in.Season
	item.Currency = in.Currency
	item.UpdatedAt = now
}
