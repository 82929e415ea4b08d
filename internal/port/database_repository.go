package port

import (
	"context"

	"github.com/rl1809/mestakip/internal/core/domain"
)

// Lookups return domain.ErrNotFound when the row does not exist (or has been
// soft deleted). Ownership is enforced by the services, not here.

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	// ListCategories includes the number of items in each category
	ListCategories(ctx context.Context, scope domain.Scope) ([]domain.Category, error)
	CategorySlugExists(ctx context.Context, slug string) (bool, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItemByID(ctx context.Context, id int64) (*domain.Item, error)
	GetItemBySlug(ctx context.Context, slug string) (*domain.Item, error)
	// UpdateItem updates item with version check for optimistic locking
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id int64) error
	ListItems(ctx context.Context, scope domain.Scope, filter domain.ItemFilter) ([]domain.Item, error)
	ItemSlugExists(ctx context.Context, slug string) (bool, error)
	// ListStockLevels returns the persisted quantity of every item
	ListStockLevels(ctx context.Context) ([]domain.StockLevel, error)
	StockTotals(ctx context.Context, scope domain.Scope) (domain.StockTotals, error)
}

type VendorRepository interface {
	CreateVendor(ctx context.Context, vendor *domain.Vendor) error
	UpdateVendor(ctx context.Context, vendor *domain.Vendor) error
	GetVendor(ctx context.Context, id int64) (*domain.Vendor, error)
	ListVendors(ctx context.Context, scope domain.Scope) ([]domain.Vendor, error)
	RemoveVendor(ctx context.Context, id int64) error
}

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	UpdateCustomer(ctx context.Context, customer *domain.Customer) error
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	ListCustomers(ctx context.Context, scope domain.Scope) ([]domain.Customer, error)
	RemoveCustomer(ctx context.Context, id int64) error
}

type DeliveryRepository interface {
	CreateDelivery(ctx context.Context, delivery *domain.Delivery) error
	UpdateDelivery(ctx context.Context, delivery *domain.Delivery) error
	GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error)
	// ListDeliveries matches query against customer name and location
	ListDeliveries(ctx context.Context, scope domain.Scope, query string) ([]domain.Delivery, error)
	DeleteDelivery(ctx context.Context, id int64) error
}

type SaleRepository interface {
	// CreateSale persists a sale with its details and decrements item stock
	// conditionally in one transaction
	CreateSale(ctx context.Context, sale domain.Sale) error
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.Sale, error)
	RemoveSale(ctx context.Context, id string) error
	DailyRevenue(ctx context.Context, scope domain.Scope) ([]domain.DailyRevenue, error)
}

type PurchaseRepository interface {
	// CreatePurchase persists a purchase and adds its quantity to the linked item
	CreatePurchase(ctx context.Context, purchase *domain.Purchase) error
	// UpdatePurchase saves the purchase and adjusts the linked item by stockDelta
	UpdatePurchase(ctx context.Context, purchase *domain.Purchase, stockDelta int) error
	GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, scope domain.Scope) ([]domain.Purchase, error)
	RemovePurchase(ctx context.Context, id int64) error
}

type TireRepository interface {
	CreateTire(ctx context.Context, tire *domain.TireRecord) error
	UpdateTire(ctx context.Context, tire *domain.TireRecord) error
	GetTire(ctx context.Context, id int64) (*domain.TireRecord, error)
	// FindTire looks a record up by company account and product
	FindTire(ctx context.Context, account, product string) (*domain.TireRecord, error)
	// ListTires returns matching records, newest first
	ListTires(ctx context.Context, scope domain.Scope, filter domain.TireFilter) ([]domain.TireRecord, error)
	RemoveTire(ctx context.Context, id int64) error
}
