package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusFailed    SaleStatus = "failed"
)

var hundred = decimal.NewFromInt(100)

type Sale struct {
	ID            string          `json:"id"`
	RequestID     string          `json:"request_id"`
	UserID        *int64          `json:"user_id,omitempty"`
	CustomerID    int64           `json:"customer_id"`
	Status        SaleStatus      `json:"status"`
	SubTotal      decimal.Decimal `json:"sub_total"`
	TaxPercentage decimal.Decimal `json:"tax_percentage"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	AmountChange  decimal.Decimal `json:"amount_change"`
	Details       []SaleDetail    `json:"details"`
	CreatedAt     time.Time       `json:"date_added"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type SaleDetail struct {
	ID          int64           `json:"id,omitempty"`
	SaleID      string          `json:"sale_id,omitempty"`
	ItemID      int64           `json:"item_id"`
	ItemName    string          `json:"item_name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	TotalDetail decimal.Decimal `json:"total_detail"`
}

// ComputeTotals fills the line totals and the sale's sub total, tax, grand
// total and change from the detail prices, the tax percentage and the amount
// paid.
func (s *Sale) ComputeTotals() {
	sub := decimal.Zero
	for i := range s.Details {
		d := &s.Details[i]
		d.TotalDetail = d.Price.Mul(decimal.NewFromInt(int64(d.Quantity))).Round(2)
		sub = sub.Add(d.TotalDetail)
	}
	s.SubTotal = sub
	s.TaxAmount = sub.Mul(s.TaxPercentage).Div(hundred).Round(2)
	s.GrandTotal = s.SubTotal.Add(s.TaxAmount)
	s.AmountChange = s.AmountPaid.Sub(s.GrandTotal)
}

// SumProducts returns the total number of units sold.
func (s Sale) SumProducts() int {
	n := 0
	for _, d := range s.Details {
		n += d.Quantity
	}
	return n
}

// DailyRevenue is the grand total of sales grouped by calendar day.
type DailyRevenue struct {
	Day   time.Time       `json:"day"`
	Total decimal.Decimal `json:"total"`
}
