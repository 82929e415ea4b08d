package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/rl1809/mestakip/internal/core/domain"
)

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

var (
	admin    = domain.User{ID: 1, Username: "admin", Role: domain.RoleAdmin, IsSuperuser: true, IsActive: true}
	operator = domain.User{ID: 2, Username: "ayse", Role: domain.RoleOperative, IsActive: true}
	other    = domain.User{ID: 3, Username: "mehmet", Role: domain.RoleOperative, IsActive: true}
)

func ptr[T any](v T) *T { return &v }

// Mock CacheRepository
type mockCacheRepo struct {
	mu             sync.Mutex
	stock          map[int64]int
	idempotencySet map[string]bool
	failDecrement  error
	// honourContext makes writes fail on a done context, as go-redis does
	honourContext bool
}

func newMockCacheRepo(stock map[int64]int) *mockCacheRepo {
	if stock == nil {
		stock = make(map[int64]int)
	}
	return &mockCacheRepo{stock: stock, idempotencySet: make(map[string]bool)}
}

func (m *mockCacheRepo) DecrementStock(ctx context.Context, itemID int64, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDecrement != nil {
		return false, m.failDecrement
	}
	if m.stock[itemID] >= quantity {
		m.stock[itemID] -= quantity
		return true, nil
	}
	return false, nil
}

func (m *mockCacheRepo) IncrementStock(ctx context.Context, itemID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.honourContext && ctx.Err() != nil {
		return ctx.Err()
	}
	m.stock[itemID] += quantity
	return nil
}

func (m *mockCacheRepo) SetStock(ctx context.Context, itemID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[itemID] = quantity
	return nil
}

func (m *mockCacheRepo) GetStock(ctx context.Context, itemID int64) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.stock[itemID]
	return v, ok, nil
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) get(itemID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[itemID]
}

// Mock UserRepository
type mockUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]domain.User)}
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Mock CategoryRepository
type mockCategoryRepo struct {
	nextID     int64
	categories map[int64]domain.Category
}

func newMockCategoryRepo(cats ...domain.Category) *mockCategoryRepo {
	m := &mockCategoryRepo{categories: make(map[int64]domain.Category)}
	for _, c := range cats {
		m.categories[c.ID] = c
		if c.ID > m.nextID {
			m.nextID = c.ID
		}
	}
	return m
}

func (m *mockCategoryRepo) CreateCategory(ctx context.Context, c *domain.Category) error {
	m.nextID++
	c.ID = m.nextID
	m.categories[c.ID] = *c
	return nil
}

func (m *mockCategoryRepo) UpdateCategory(ctx context.Context, c *domain.Category) error {
	m.categories[c.ID] = *c
	return nil
}

func (m *mockCategoryRepo) DeleteCategory(ctx context.Context, id int64) error {
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepo) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockCategoryRepo) ListCategories(ctx context.Context, scope domain.Scope) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range m.categories {
		if scope.Allows(c.UserID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCategoryRepo) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// Mock ItemRepository
type mockItemRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Item
}

func newMockItemRepo(items ...domain.Item) *mockItemRepo {
	m := &mockItemRepo{items: make(map[int64]domain.Item)}
	for _, it := range items {
		m.items[it.ID] = it
		if it.ID > m.nextID {
			m.nextID = it.ID
		}
	}
	return m
}

func (m *mockItemRepo) CreateItem(ctx context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item.ID = m.nextID
	item.Version = 1
	m.items[item.ID] = *item
	return nil
}

func (m *mockItemRepo) GetItemByID(ctx context.Context, id int64) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &it, nil
}

func (m *mockItemRepo) GetItemBySlug(ctx context.Context, slug string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.Slug == slug {
			return &it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockItemRepo) UpdateItem(ctx context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != item.Version {
		return domain.ErrConflict
	}
	item.Version++
	m.items[item.ID] = *item
	return nil
}

func (m *mockItemRepo) DeleteItem(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *mockItemRepo) ListItems(ctx context.Context, scope domain.Scope, filter domain.ItemFilter) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Item
	for _, it := range m.items {
		if !scope.Allows(it.UserID) {
			continue
		}
		if filter.CategoryID != 0 && it.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *mockItemRepo) ItemSlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := m.GetItemBySlug(ctx, slug)
	return err == nil, nil
}

func (m *mockItemRepo) ListStockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StockLevel
	for _, it := range m.items {
		out = append(out, domain.StockLevel{ItemID: it.ID, Quantity: it.Quantity, Version: it.Version})
	}
	return out, nil
}

func (m *mockItemRepo) StockTotals(ctx context.Context, scope domain.Scope) (domain.StockTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var t domain.StockTotals
	for _, it := range m.items {
		if scope.Allows(it.UserID) {
			t.Items++
			t.Quantity += it.Quantity
		}
	}
	return t, nil
}

func (m *mockItemRepo) adjust(id int64, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := m.items[id]
	it.Quantity += delta
	m.items[id] = it
}

// Mock VendorRepository
type mockVendorRepo struct {
	nextID  int64
	vendors map[int64]domain.Vendor
}

func newMockVendorRepo(vendors ...domain.Vendor) *mockVendorRepo {
	m := &mockVendorRepo{vendors: make(map[int64]domain.Vendor)}
	for _, v := range vendors {
		m.vendors[v.ID] = v
		m.nextID = max(m.nextID, v.ID)
	}
	return m
}

func (m *mockVendorRepo) CreateVendor(ctx context.Context, v *domain.Vendor) error {
	m.nextID++
	v.ID = m.nextID
	m.vendors[v.ID] = *v
	return nil
}

func (m *mockVendorRepo) UpdateVendor(ctx context.Context, v *domain.Vendor) error {
	m.vendors[v.ID] = *v
	return nil
}

func (m *mockVendorRepo) GetVendor(ctx context.Context, id int64) (*domain.Vendor, error) {
	v, ok := m.vendors[id]
	if !ok || v.IsRemoved {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (m *mockVendorRepo) ListVendors(ctx context.Context, scope domain.Scope) ([]domain.Vendor, error) {
	var out []domain.Vendor
	for _, v := range m.vendors {
		if !v.IsRemoved && scope.Allows(v.UserID) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockVendorRepo) RemoveVendor(ctx context.Context, id int64) error {
	v := m.vendors[id]
	v.IsRemoved = true
	m.vendors[id] = v
	return nil
}

// Mock CustomerRepository
type mockCustomerRepo struct {
	nextID    int64
	customers map[int64]domain.Customer
}

func newMockCustomerRepo(customers ...domain.Customer) *mockCustomerRepo {
	m := &mockCustomerRepo{customers: make(map[int64]domain.Customer)}
	for _, c := range customers {
		m.customers[c.ID] = c
		m.nextID = max(m.nextID, c.ID)
	}
	return m
}

func (m *mockCustomerRepo) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	m.nextID++
	c.ID = m.nextID
	m.customers[c.ID] = *c
	return nil
}

func (m *mockCustomerRepo) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	m.customers[c.ID] = *c
	return nil
}

func (m *mockCustomerRepo) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	c, ok := m.customers[id]
	if !ok || c.IsRemoved {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockCustomerRepo) ListCustomers(ctx context.Context, scope domain.Scope) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, c := range m.customers {
		if !c.IsRemoved && scope.Allows(c.UserID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCustomerRepo) RemoveCustomer(ctx context.Context, id int64) error {
	c := m.customers[id]
	c.IsRemoved = true
	m.customers[id] = c
	return nil
}

// Mock DeliveryRepository
type mockDeliveryRepo struct {
	nextID     int64
	deliveries map[int64]domain.Delivery
}

func newMockDeliveryRepo() *mockDeliveryRepo {
	return &mockDeliveryRepo{deliveries: make(map[int64]domain.Delivery)}
}

func (m *mockDeliveryRepo) CreateDelivery(ctx context.Context, d *domain.Delivery) error {
	m.nextID++
	d.ID = m.nextID
	m.deliveries[d.ID] = *d
	return nil
}

func (m *mockDeliveryRepo) UpdateDelivery(ctx context.Context, d *domain.Delivery) error {
	m.deliveries[d.ID] = *d
	return nil
}

func (m *mockDeliveryRepo) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	d, ok := m.deliveries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (m *mockDeliveryRepo) ListDeliveries(ctx context.Context, scope domain.Scope, query string) ([]domain.Delivery, error) {
	var out []domain.Delivery
	q := strings.ToLower(query)
	for _, d := range m.deliveries {
		if !scope.Allows(d.UserID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(d.CustomerName), q) && !strings.Contains(strings.ToLower(d.Location), q) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDeliveryRepo) DeleteDelivery(ctx context.Context, id int64) error {
	delete(m.deliveries, id)
	return nil
}

// Mock SaleRepository
type mockSaleRepo struct {
	mu      sync.Mutex
	sales   map[string]domain.Sale
	removed map[string]bool
	failErr error
	// blockUntilDone makes CreateSale wait for its context to end
	blockUntilDone bool
}

func newMockSaleRepo() *mockSaleRepo {
	return &mockSaleRepo{sales: make(map[string]domain.Sale), removed: make(map[string]bool)}
}

func (m *mockSaleRepo) CreateSale(ctx context.Context, sale domain.Sale) error {
	if m.blockUntilDone {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.sales[sale.ID] = sale
	return nil
}

func (m *mockSaleRepo) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[id]
	if !ok || m.removed[id] {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *mockSaleRepo) ListSales(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Sale
	for id, s := range m.sales {
		if !m.removed[id] && scope.Allows(s.UserID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSaleRepo) RemoveSale(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed[id] = true
	return nil
}

func (m *mockSaleRepo) DailyRevenue(ctx context.Context, scope domain.Scope) ([]domain.DailyRevenue, error) {
	return nil, nil
}

func (m *mockSaleRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sales)
}

// Mock PurchaseRepository
type mockPurchaseRepo struct {
	nextID    int64
	purchases map[int64]domain.Purchase
	items     *mockItemRepo
}

func newMockPurchaseRepo(items *mockItemRepo) *mockPurchaseRepo {
	return &mockPurchaseRepo{purchases: make(map[int64]domain.Purchase), items: items}
}

func (m *mockPurchaseRepo) CreatePurchase(ctx context.Context, p *domain.Purchase) error {
	m.nextID++
	p.ID = m.nextID
	m.purchases[p.ID] = *p
	if p.ItemID != nil {
		m.items.adjust(*p.ItemID, p.Quantity)
	}
	return nil
}

func (m *mockPurchaseRepo) UpdatePurchase(ctx context.Context, p *domain.Purchase, stockDelta int) error {
	m.purchases[p.ID] = *p
	if p.ItemID != nil {
		m.items.adjust(*p.ItemID, stockDelta)
	}
	return nil
}

func (m *mockPurchaseRepo) GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	p, ok := m.purchases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *mockPurchaseRepo) ListPurchases(ctx context.Context, scope domain.Scope) ([]domain.Purchase, error) {
	var out []domain.Purchase
	for _, p := range m.purchases {
		if scope.Allows(p.UserID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPurchaseRepo) RemovePurchase(ctx context.Context, id int64) error {
	delete(m.purchases, id)
	return nil
}

// Mock TireRepository
type mockTireRepo struct {
	nextID int64
	tires  map[int64]domain.TireRecord
}

func newMockTireRepo(tires ...domain.TireRecord) *mockTireRepo {
	m := &mockTireRepo{tires: make(map[int64]domain.TireRecord)}
	for _, t := range tires {
		m.nextID++
		t.ID = m.nextID
		m.tires[t.ID] = t
	}
	return m
}

func (m *mockTireRepo) CreateTire(ctx context.Context, t *domain.TireRecord) error {
	m.nextID++
	t.ID = m.nextID
	m.tires[t.ID] = *t
	return nil
}

func (m *mockTireRepo) UpdateTire(ctx context.Context, t *domain.TireRecord) error {
	m.tires[t.ID] = *t
	return nil
}

func (m *mockTireRepo) GetTire(ctx context.Context, id int64) (*domain.TireRecord, error) {
	t, ok := m.tires[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *mockTireRepo) FindTire(ctx context.Context, account, product string) (*domain.TireRecord, error) {
	for _, t := range m.tires {
		if t.Account == account && t.Product == product {
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTireRepo) ListTires(ctx context.Context, scope domain.Scope, filter domain.TireFilter) ([]domain.TireRecord, error) {
	var out []domain.TireRecord
	for _, t := range m.tires {
		if scope.Allows(t.UserID) && filter.Matches(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockTireRepo) RemoveTire(ctx context.Context, id int64) error {
	delete(m.tires, id)
	return nil
}
