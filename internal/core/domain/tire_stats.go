package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const Unspecified = "Belirtilmemiş"

// Distribution is one bucket of a grouped tire aggregate.
type Distribution struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	Count    int             `json:"count"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total_price"`
}

type bucketer struct {
	order []string
	by    map[string]*Distribution
}

func (b *bucketer) add(key, label string, t TireRecord) {
	if b.by == nil {
		b.by = make(map[string]*Distribution)
	}
	d, ok := b.by[key]
	if !ok {
		d = &Distribution{Key: key, Label: label}
		b.by[key] = d
		b.order = append(b.order, key)
	}
	d.Count++
	d.Quantity += t.Quantity
	d.Total = d.Total.Add(t.TotalPrice)
}

func (b *bucketer) result() []Distribution {
	out := make([]Distribution, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, *b.by[k])
	}
	return out
}

// BrandDistribution groups records by upper-cased brand, largest quantity
// first.
func BrandDistribution(records []TireRecord) []Distribution {
	var b bucketer
	for _, t := range records {
		brand := strings.ToUpper(strings.TrimSpace(t.Brand))
		b.add(brand, brand, t)
	}
	out := b.result()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	return out
}

// TopBrands groups records by upper-cased brand, most records first, and
// keeps the first n.
func TopBrands(records []TireRecord, n int) []Distribution {
	out := BrandDistribution(records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func PaymentDistribution(records []TireRecord) []Distribution {
	var b bucketer
	for _, t := range records {
		label := Unspecified
		switch t.Payment {
		case PaymentCard:
			label = "Kart"
		case PaymentTransfer:
			label = "Havale"
		case PaymentAccount:
			label = "Cari Hesap"
		}
		b.add(string(t.Payment), label, t)
	}
	out := b.result()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	return out
}

func StatusDistribution(records []TireRecord) []Distribution {
	var b bucketer
	for _, t := range records {
		b.add(string(t.Status), t.Status.Label(), t)
	}
	return b.result()
}

// SeasonGroupMatrix sums quantities into two rows, passenger then
// commercial, with one column per entry of Seasons.
func SeasonGroupMatrix(records []TireRecord) [][]int {
	rows := []Group{GroupPassenger, GroupCommercial}
	matrix := make([][]int, len(rows))
	for i := range matrix {
		matrix[i] = make([]int, len(Seasons))
	}
	for _, t := range records {
		for i, g := range rows {
			if t.Group != g {
				continue
			}
			for j, s := range Seasons {
				if t.Season == s {
					matrix[i][j] += t.Quantity
				}
			}
		}
	}
	return matrix
}

func SeasonLabels() []string {
	out := make([]string, len(Seasons))
	for i, s := range Seasons {
		out[i] = s.Label()
	}
	return out
}

// TireSummary is the headline view of the whole tire ledger.
type TireSummary struct {
	Count         int             `json:"count"`
	TotalQuantity int             `json:"total_quantity"`
	StockQuantity int             `json:"stock_quantity"`
	SalesQuantity int             `json:"sales_quantity"`
	InTransit     int             `json:"in_transit"`
	InProgress    int             `json:"in_progress"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Latest        []TireRecord    `json:"latest"`
	Statuses      []Distribution  `json:"statuses"`
	Brands        []Distribution  `json:"brands"`
}

// SummarizeTires expects records newest first.
func SummarizeTires(records []TireRecord) TireSummary {
	s := TireSummary{Count: len(records), TotalValue: decimal.Zero}
	for _, t := range records {
		s.TotalQuantity += t.Quantity
		switch t.Warehouse {
		case WarehouseStock:
			s.StockQuantity += t.Quantity
		case WarehouseSales:
			s.SalesQuantity += t.Quantity
		}
		switch t.Status {
		case TireInTransit:
			s.InTransit++
		case TireInProgress:
			s.InProgress++
		}
		s.TotalValue = s.TotalValue.Add(t.TotalPrice)
	}
	s.Latest = records
	if len(s.Latest) > 10 {
		s.Latest = s.Latest[:10]
	}
	s.Statuses = StatusDistribution(records)
	s.Brands = TopBrands(records, 10)
	return s
}
