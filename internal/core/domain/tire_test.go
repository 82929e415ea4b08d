package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTireRecordNormalize_Defaults(t *testing.T) {
	rec := TireRecord{Group: GroupPassenger, Season: SeasonSummer, Quantity: 3}
	rec.Normalize()

	assert.Equal(t, TireInTransit, rec.Status)
	assert.Equal(t, WarehouseStock, rec.Warehouse)
	assert.Equal(t, SeasonSummer, rec.Season)
	assert.Equal(t, 3, rec.Quantity)
}

func TestTireRecordNormalize_BatteryHasNoSeason(t *testing.T) {
	rec := TireRecord{Group: GroupBattery, Season: SeasonWinter}
	rec.Normalize()
	assert.Equal(t, Season(""), rec.Season)
}

func TestTireRecordNormalize_QuantityFromTotals(t *testing.T) {
	cases := []struct {
		total, unit string
		want        int
	}{
		{"1200", "400", 3},
		{"1000", "400", 2}, // 2.5 rounds to even
		{"1400", "400", 4}, // 3.5 rounds to even
		{"1100", "400", 3},
	}
	for _, tc := range cases {
		rec := TireRecord{
			Quantity:   1,
			TotalPrice: decimal.RequireFromString(tc.total),
			UnitPrice:  decimal.RequireFromString(tc.unit),
		}
		rec.Normalize()
		assert.Equal(t, tc.want, rec.Quantity, "%s/%s", tc.total, tc.unit)
	}

	rec := TireRecord{Quantity: 5, TotalPrice: decimal.NewFromInt(100)}
	rec.Normalize()
	assert.Equal(t, 5, rec.Quantity, "zero unit price keeps the entered quantity")
}

func TestTireFilterApplyWindow(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	var f TireFilter
	f.ApplyWindow(WindowLast3Months, "", "", now)
	require.NotNil(t, f.CreatedFrom)
	assert.Equal(t, now.AddDate(0, 0, -90), *f.CreatedFrom)
	assert.Nil(t, f.CreatedTo)

	f = TireFilter{}
	f.ApplyWindow(WindowCustom, "2025-01-10", "not-a-date", now)
	require.NotNil(t, f.CreatedFrom)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), *f.CreatedFrom)
	assert.Nil(t, f.CreatedTo)

	f = TireFilter{}
	f.ApplyWindow("unknown", "2025-01-10", "2025-01-11", now)
	assert.Nil(t, f.CreatedFrom)
	assert.Nil(t, f.CreatedTo)
}

func TestTireFilterMatches(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := TireRecord{
		Account:   "Test Firma 1",
		Brand:     "Michelin",
		Group:     GroupPassenger,
		Season:    SeasonSummer,
		Status:    TireDelivered,
		Warehouse: WarehouseStock,
		CreatedAt: created,
	}

	assert.True(t, TireFilter{Account: "firma", Brand: "MICH"}.Matches(rec))
	assert.False(t, TireFilter{ExcludeStatuses: []TireStatus{TireDelivered}}.Matches(rec))
	assert.False(t, TireFilter{Statuses: []TireStatus{TireChecked}}.Matches(rec))
	assert.False(t, TireFilter{Warehouse: WarehouseSales}.Matches(rec))

	end := time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC)
	assert.True(t, TireFilter{CreatedTo: &end}.Matches(rec))
	start := end
	assert.False(t, TireFilter{CreatedFrom: &start}.Matches(rec))
}
