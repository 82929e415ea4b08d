package handler

import (
	"context"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/core/service"
)

// The handlers depend on these narrow views of the services so they can be
// exercised with fakes.

type AccountUseCase interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context, actor domain.User) ([]domain.User, error)
	CreateUser(ctx context.Context, in service.NewUser) (*domain.User, error)
}

type CatalogUseCase interface {
	CreateCategory(ctx context.Context, actor domain.User, name string) (*domain.Category, error)
	GetCategory(ctx context.Context, actor domain.User, id int64) (*domain.Category, error)
	UpdateCategory(ctx context.Context, actor domain.User, id int64, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, actor domain.User, id int64) error
	ListCategories(ctx context.Context, actor domain.User) ([]domain.Category, error)

	CreateItem(ctx context.Context, actor domain.User, in service.ItemInput) (*domain.Item, error)
	GetItem(ctx context.Context, actor domain.User, slug string) (*domain.Item, error)
	GetItemByID(ctx context.Context, actor domain.User, id int64) (*domain.Item, error)
	UpdateItem(ctx context.Context, actor domain.User, slug string, in service.ItemInput) (*domain.Item, error)
	DeleteItem(ctx context.Context, actor domain.User, slug string) error
	ListItems(ctx context.Context, actor domain.User, filter domain.ItemFilter) ([]domain.Item, error)
	SearchItems(ctx context.Context, actor domain.User, term string) ([]domain.ItemSearchResult, error)
}

type PartyUseCase interface {
	CreateVendor(ctx context.Context, actor domain.User, in service.VendorInput) (*domain.Vendor, error)
	GetVendor(ctx context.Context, actor domain.User, id int64) (*domain.Vendor, error)
	UpdateVendor(ctx context.Context, actor domain.User, id int64, in service.VendorInput) (*domain.Vendor, error)
	RemoveVendor(ctx context.Context, actor domain.User, id int64) error
	ListVendors(ctx context.Context, actor domain.User) ([]domain.Vendor, error)

	CreateCustomer(ctx context.Context, actor domain.User, in service.CustomerInput) (*domain.Customer, error)
	GetCustomer(ctx context.Context, actor domain.User, id int64) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, actor domain.User, id int64, in service.CustomerInput) (*domain.Customer, error)
	RemoveCustomer(ctx context.Context, actor domain.User, id int64) error
	ListCustomers(ctx context.Context, actor domain.User) ([]domain.Customer, error)
}

type DeliveryUseCase interface {
	CreateDelivery(ctx context.Context, actor domain.User, in service.DeliveryInput) (*domain.Delivery, error)
	GetDelivery(ctx context.Context, actor domain.User, id int64) (*domain.Delivery, error)
	UpdateDelivery(ctx context.Context, actor domain.User, id int64, in service.DeliveryInput) (*domain.Delivery, error)
	DeleteDelivery(ctx context.Context, actor domain.User, id int64) error
	ListDeliveries(ctx context.Context, actor domain.User, query string) ([]domain.Delivery, error)
}

type SaleUseCase interface {
	Checkout(ctx context.Context, actor domain.User, req service.CheckoutRequest) (*domain.Sale, error)
	GetSale(ctx context.Context, actor domain.User, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, actor domain.User, limit, offset int) ([]domain.Sale, error)
	RemoveSale(ctx context.Context, actor domain.User, id string) error
}

type PurchaseUseCase interface {
	CreatePurchase(ctx context.Context, actor domain.User, in service.PurchaseInput) (*domain.Purchase, error)
	GetPurchase(ctx context.Context, actor domain.User, id int64) (*domain.Purchase, error)
	UpdatePurchase(ctx context.Context, actor domain.User, id int64, in service.PurchaseInput) (*domain.Purchase, error)
	RemovePurchase(ctx context.Context, actor domain.User, id int64) error
	ListPurchases(ctx context.Context, actor domain.User) ([]domain.Purchase, error)
}

type TireUseCase interface {
	CreateTire(ctx context.Context, actor domain.User, in service.TireInput) (*domain.TireRecord, error)
	GetTire(ctx context.Context, actor domain.User, id int64) (*domain.TireRecord, error)
	UpdateTire(ctx context.Context, actor domain.User, id int64, in service.TireInput) (*domain.TireRecord, error)
	RemoveTire(ctx context.Context, actor domain.User, id int64) error
	CancelTire(ctx context.Context, actor domain.User, id int64, reason string) (*domain.TireRecord, error)
	ShareTire(ctx context.Context, actor domain.User, id int64) (*service.TireShare, error)
	ListActive(ctx context.Context, actor domain.User, q service.TireQuery) ([]domain.TireRecord, error)
	ListChecked(ctx context.Context, actor domain.User, q service.TireQuery) (*service.CheckedReport, error)
	ListCancelled(ctx context.Context, actor domain.User, q service.TireQuery) ([]domain.TireRecord, error)
	Dashboard(ctx context.Context, actor domain.User) (*domain.TireSummary, error)
}

type DashboardUseCase interface {
	Build(ctx context.Context, actor domain.User) (*service.Dashboard, error)
}

// Pinger is a dependency /health reports on.
type Pinger interface {
	Ping(ctx context.Context) error
}
