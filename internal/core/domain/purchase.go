package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "P"
	DeliverySuccessful DeliveryStatus = "S"
)

func (s DeliveryStatus) Valid() bool {
	return s == DeliveryPending || s == DeliverySuccessful
}

type Condition string

const (
	ConditionVeryGood Condition = "COK_IYI"
	ConditionGood     Condition = "IYI"
	ConditionFair     Condition = "ORTA"
	ConditionPoor     Condition = "KOTU"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionVeryGood, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

type Purchase struct {
	ID             int64           `json:"id"`
	UserID         *int64          `json:"user_id,omitempty"`
	Slug           string          `json:"slug,omitempty"`
	ItemID         *int64          `json:"item_id,omitempty"`
	Description    string          `json:"description,omitempty"`
	VendorID       *int64          `json:"vendor_id,omitempty"`
	OrderDate      time.Time       `json:"order_date"`
	DeliveryDate   *time.Time      `json:"delivery_date,omitempty"`
	Quantity       int             `json:"quantity"`
	DeliveryStatus DeliveryStatus  `json:"delivery_status"`
	Price          decimal.Decimal `json:"price"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Condition      Condition       `json:"condition"`
	Brand          string          `json:"brand,omitempty"`
	Product        string          `json:"product,omitempty"`
	DOT            string          `json:"dot,omitempty"`
	EntryDate      *time.Time      `json:"entry_date,omitempty"`
	Season         Season          `json:"season,omitempty"`
	Note           string          `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created"`
	UpdatedAt      time.Time       `json:"modified"`
}

func (p *Purchase) ComputeTotal() {
	p.TotalValue = p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))).Round(2)
}
