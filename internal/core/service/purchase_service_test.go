package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/mestakip/internal/core/domain"
)

func TestPurchase_CreateAndUpdateAdjustStock(t *testing.T) {
	items := newMockItemRepo(domain.Item{ID: 3, Name: "Pirelli P7", Quantity: 4})
	cache := newMockCacheRepo(map[int64]int{3: 4})
	purchases := newMockPurchaseRepo(items)
	svc := NewPurchaseService(purchases, items, newMockVendorRepo(domain.Vendor{ID: 1}), cache, nullLogger())
	ctx := context.Background()

	in := PurchaseInput{
		ItemID:   ptr(int64(3)),
		VendorID: ptr(int64(1)),
		Quantity: 6,
		Price:    decimal.RequireFromString("1250.50"),
		Brand:    "Pirelli",
		Product:  "P7 205/55R16",
		DOT:      "2423",
	}
	p, err := svc.CreatePurchase(ctx, admin, in)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7503").Equal(p.TotalValue))
	assert.Equal(t, domain.DeliveryPending, p.DeliveryStatus)
	assert.Equal(t, domain.ConditionVeryGood, p.Condition)
	assert.False(t, p.OrderDate.IsZero())

	item, _ := items.GetItemByID(ctx, 3)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, 10, cache.get(3))

	in.Quantity = 2
	p, err = svc.UpdatePurchase(ctx, admin, p.ID, in)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2501").Equal(p.TotalValue))

	item, _ = items.GetItemByID(ctx, 3)
	assert.Equal(t, 6, item.Quantity)
	assert.Equal(t, 6, cache.get(3))
}

func TestPurchase_Validation(t *testing.T) {
	items := newMockItemRepo(domain.Item{ID: 3}, domain.Item{ID: 4})
	svc := NewPurchaseService(newMockPurchaseRepo(items), items, newMockVendorRepo(), newMockCacheRepo(nil), nullLogger())
	ctx := context.Background()

	for name, in := range map[string]PurchaseInput{
		"negative qty":   {Quantity: -1},
		"bad dot":        {Quantity: 1, DOT: "23"},
		"bad condition":  {Quantity: 1, Condition: "NEW"},
		"unknown vendor": {Quantity: 1, VendorID: ptr(int64(9))},
		"unknown item":   {Quantity: 1, ItemID: ptr(int64(9))},
	} {
		_, err := svc.CreatePurchase(ctx, admin, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}

	zero, err := svc.CreatePurchase(ctx, admin, PurchaseInput{Quantity: 0, Price: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.True(t, zero.TotalValue.IsZero())

	p, err := svc.CreatePurchase(ctx, admin, PurchaseInput{ItemID: ptr(int64(3)), Quantity: 1})
	require.NoError(t, err)
	_, err = svc.UpdatePurchase(ctx, admin, p.ID, PurchaseInput{ItemID: ptr(int64(4)), Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
