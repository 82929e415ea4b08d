package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/mestakip/internal/core/domain"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newMockAdapter(t *testing.T, dialect Dialect) (*SQLAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	a := NewSQLAdapter(db, dialect)
	a.now = func() time.Time { return fixedNow }
	return a, mock
}

func TestParseDatabaseURL(t *testing.T) {
	dialect, dsn, err := ParseDatabaseURL("postgres://app:secret@db:5432/mestakip?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, Postgres, dialect)
	assert.Equal(t, "postgres://app:secret@db:5432/mestakip?sslmode=disable", dsn)

	dialect, dsn, err = ParseDatabaseURL("mysql://app:secret@db/mestakip")
	require.NoError(t, err)
	assert.Equal(t, MySQL, dialect)
	assert.Contains(t, dsn, "app:secret@tcp(db:3306)/mestakip")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "multiStatements=true")

	_, _, err = ParseDatabaseURL("sqlite:///tmp/db.sqlite3")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &SQLAdapter{dialect: Postgres}
	assert.Equal(t, "a = $1 AND b IN ($2, $3)", pg.rebind("a = ? AND b IN (?, ?)"))

	my := &SQLAdapter{dialect: MySQL}
	assert.Equal(t, "a = ? AND b = ?", my.rebind("a = ? AND b = ?"))
}

func testSale() domain.Sale {
	owner := int64(2)
	return domain.Sale{
		ID:         "4b1f0a52-0000-4000-8000-000000000001",
		RequestID:  "req-1",
		UserID:     &owner,
		CustomerID: 5,
		Status:     domain.SaleStatusCompleted,
		SubTotal:   decimal.NewFromInt(200),
		GrandTotal: decimal.NewFromInt(200),
		AmountPaid: decimal.NewFromInt(200),
		Details: []domain.SaleDetail{
			{ItemID: 10, Price: decimal.NewFromInt(100), Quantity: 2, TotalDetail: decimal.NewFromInt(200)},
		},
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
}

func TestCreateSale_Commits(t *testing.T) {
	a, mock := newMockAdapter(t, MySQL)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sales").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sale_details").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = ? AND quantity >= ?")).
		WithArgs(2, fixedNow, int64(10), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, a.CreateSale(context.Background(), testSale()))
}

func TestCreateSale_RollsBackWhenStockIsGone(t *testing.T) {
	a, mock := newMockAdapter(t, MySQL)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sales").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sale_details").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE items").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := a.CreateSale(context.Background(), testSale())
	assert.ErrorIs(t, err, ErrOptimisticLock)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateItem_VersionMismatch(t *testing.T) {
	a, mock := newMockAdapter(t, Postgres)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $13 AND version = $14")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	it := &domain.Item{ID: 3, Name: "Lastik", CategoryID: 1, Version: 4, Currency: domain.CurrencyTRY}
	err := a.UpdateItem(context.Background(), it)
	assert.ErrorIs(t, err, ErrOptimisticLock)
	assert.Equal(t, 4, it.Version)
}

func TestUpdateItem_BumpsVersion(t *testing.T) {
	a, mock := newMockAdapter(t, MySQL)

	mock.ExpectExec("UPDATE items SET").WillReturnResult(sqlmock.NewResult(0, 1))

	it := &domain.Item{ID: 3, Name: "Lastik", CategoryID: 1, Version: 4, Currency: domain.CurrencyTRY}
	require.NoError(t, a.UpdateItem(context.Background(), it))
	assert.Equal(t, 5, it.Version)
}

func TestCreateTire_PostgresReturnsID(t *testing.T) {
	a, mock := newMockAdapter(t, Postgres)

	mock.ExpectQuery(`INSERT INTO tire_records .* RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	tire := &domain.TireRecord{Account: "OTOPARK", Product: "205/55 R16", Brand: "MICHELIN", Group: domain.GroupPassenger}
	require.NoError(t, a.CreateTire(context.Background(), tire))
	assert.Equal(t, int64(7), tire.ID)
}

func TestCreateItem_MySQLUsesLastInsertID(t *testing.T) {
	a, mock := newMockAdapter(t, MySQL)

	mock.ExpectExec("INSERT INTO items").WillReturnResult(sqlmock.NewResult(42, 1))

	it := &domain.Item{Name: "Aku", Slug: "aku", CategoryID: 1, Currency: domain.CurrencyTRY}
	require.NoError(t, a.CreateItem(context.Background(), it))
	assert.Equal(t, int64(42), it.ID)
	assert.Equal(t, 1, it.Version)
}

func TestCreateUser_DuplicateIsConflict(t *testing.T) {
	a, mock := newMockAdapter(t, Postgres)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	err := a.CreateUser(context.Background(), &domain.User{Username: "admin"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateDelivery_MissingItemIsInvalid(t *testing.T) {
	a, mock := newMockAdapter(t, Postgres)

	mock.ExpectQuery("INSERT INTO deliveries").WillReturnError(&pq.Error{Code: "23503"})

	err := a.CreateDelivery(context.Background(), &domain.Delivery{Date: fixedNow})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetSale_NotFound(t *testing.T) {
	a, mock := newMockAdapter(t, MySQL)

	mock.ExpectQuery("FROM sales").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := a.GetSale(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdatePurchase_RefusesNegativeStock(t *testing.T) {
	a, mock := newMockAdapter(t, MySQL)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE purchases SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("quantity + ? >= 0")).
		WithArgs(-5, fixedNow, int64(10), -5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	item := int64(10)
	p := &domain.Purchase{ID: 1, ItemID: &item, Quantity: 1, OrderDate: fixedNow}
	err := a.UpdatePurchase(context.Background(), p, -5)
	assert.ErrorIs(t, err, ErrOptimisticLock)
}

func TestCreatePurchase_AddsStock(t *testing.T) {
	a, mock := newMockAdapter(t, MySQL)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO purchases").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("UPDATE items SET quantity = quantity").
		WithArgs(4, fixedNow, int64(10), 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item := int64(10)
	p := &domain.Purchase{ItemID: &item, Quantity: 4, OrderDate: fixedNow}
	require.NoError(t, a.CreatePurchase(context.Background(), p))
	assert.Equal(t, int64(9), p.ID)
}

func TestListTires_RendersFilter(t *testing.T) {
	a, mock := newMockAdapter(t, MySQL)

	cols := []string{"id", "user_id", "account", "product", "brand", "tire_group", "season", "quantity",
		"unit_price", "total_price", "status", "warehouse", "note", "payment", "notification_sent",
		"featured", "cancel_reason", "created_at", "updated_at"}
	rows := sqlmock.NewRows(cols).AddRow(
		int64(1), int64(2), "OTOPARK", "205/55 R16", "MICHELIN", "BINEK", "YAZ", 4,
		"1000.00", "4000.00", "YOLDA", "STOK", "", "KART", false,
		false, "", fixedNow, fixedNow,
	)
	mock.ExpectQuery(regexp.QuoteMeta("AND user_id = ? AND status NOT IN (?, ?) AND UPPER(brand) LIKE ?")).
		WithArgs(int64(2), "KONTROL_EDILDI", "IPTAL_EDILDI", "%MICH%").
		WillReturnRows(rows)

	filter := domain.TireFilter{
		ExcludeStatuses: []domain.TireStatus{domain.TireChecked, domain.TireCancelled},
		Brand:           "mich",
	}
	out, err := a.ListTires(context.Background(), domain.Scope{UserID: 2}, filter)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, domain.TireInTransit, out[0].Status)
	assert.True(t, out[0].TotalPrice.Equal(decimal.NewFromInt(4000)))
	assert.Equal(t, int64(2), *out[0].UserID)
}

func TestRemoveVendor_Missing(t *testing.T) {
	a, mock := newMockAdapter(t, MySQL)

	mock.ExpectExec("UPDATE vendors SET is_removed = TRUE").WillReturnResult(sqlmock.NewResult(0, 0))

	err := a.RemoveVendor(context.Background(), 99)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
