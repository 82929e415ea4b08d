package service

import (
	"context"
	"fmt"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/port"
)

type Dashboard struct {
	Stock            domain.StockTotals    `json:"stock"`
	Categories       []domain.Category     `json:"categories"`
	Revenue          []domain.DailyRevenue `json:"revenue"`
	Tires            domain.TireSummary    `json:"tires"`
	TireValueText    string                `json:"tire_value_text"`
	TireQuantityText string                `json:"tire_quantity_text"`
	Payments         []domain.Distribution `json:"payments"`
	Seasons          []string              `json:"seasons"`
	CheckedMatrix    [][]int               `json:"checked_matrix"`
}

// DashboardService aggregates the catalog, sales and tire ledger into the
// home page figures.
type DashboardService struct {
	items      port.ItemRepository
	categories port.CategoryRepository
	sales      port.SaleRepository
	tires      port.TireRepository
}

func NewDashboardService(items port.ItemRepository, categories port.CategoryRepository, sales port.SaleRepository, tires port.TireRepository) *DashboardService {
	return &DashboardService{items: items, categories: categories, sales: sales, tires: tires}
}

func (s *DashboardService) Build(ctx context.Context, actor domain.User) (*Dashboard, error) {
	scope := domain.ScopeFor(actor)

	stock, err := s.items.StockTotals(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("stock totals: %w", err)
	}
	categories, err := s.categories.ListCategories(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	revenue, err := s.sales.DailyRevenue(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	tires, err := s.tires.ListTires(ctx, scope, domain.TireFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tires: %w", err)
	}

	var checked []domain.TireRecord
	for _, t := range tires {
		if t.Status == domain.TireChecked {
			checked = append(checked, t)
		}
	}
	summary := domain.SummarizeTires(tires)
	return &Dashboard{
		Stock:            stock,
		Categories:       categories,
		Revenue:          revenue,
		Tires:            summary,
		TireValueText:    domain.FormatTRY(summary.TotalValue),
		TireQuantityText: domain.FormatNumber(int64(summary.TotalQuantity)),
		Payments:         domain.PaymentDistribution(tires),
		Seasons:          domain.SeasonLabels(),
		CheckedMatrix:    domain.SeasonGroupMatrix(checked),
	}, nil
}
