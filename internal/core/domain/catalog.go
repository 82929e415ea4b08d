package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Group string

const (
	GroupPassenger  Group = "BINEK"
	GroupCommercial Group = "TICARI"
	GroupBattery    Group = "AKU"
	GroupRim        Group = "JANT"
)

// ValidForItem reports whether g may be set on a catalog item. Rims are only
// tracked in the tire ledger.
func (g Group) ValidForItem() bool {
	switch g {
	case "", GroupPassenger, GroupCommercial, GroupBattery:
		return true
	}
	return false
}

func (g Group) Valid() bool {
	return g == GroupRim || (g != "" && g.ValidForItem())
}

func (g Group) Label() string {
	switch g {
	case GroupPassenger:
		return "Binek"
	case GroupCommercial:
		return "Ticari"
	case GroupBattery:
		return "Akü"
	case GroupRim:
		return "Jant"
	}
	return string(g)
}

type Season string

const (
	SeasonSummer    Season = "YAZ"
	SeasonWinter    Season = "KIS"
	SeasonAllSeason Season = "4MEVSIM"
)

// Seasons is the display order used by the season/group matrix.
var Seasons = []Season{SeasonSummer, SeasonWinter, SeasonAllSeason}

func (s Season) Valid() bool {
	switch s {
	case "", SeasonSummer, SeasonWinter, SeasonAllSeason:
		return true
	}
	return false
}

func (s Season) Label() string {
	switch s {
	case SeasonSummer:
		return "Yaz"
	case SeasonWinter:
		return "Kış"
	case SeasonAllSeason:
		return "4 Mevsim"
	}
	return string(s)
}

type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
)

func (c Currency) Valid() bool {
	return c == CurrencyTRY || c == CurrencyUSD
}

func (c Currency) Symbol() string {
	if c == CurrencyUSD {
		return "$"
	}
	return "₺"
}

type Category struct {
	ID        int64  `json:"id"`
	UserID    *int64 `json:"user_id,omitempty"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	ItemCount int    `json:"item_count"`
}

type Item struct {
	ID           int64           `json:"id"`
	UserID       *int64          `json:"user_id,omitempty"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	ExpiringDate *time.Time      `json:"expiring_date,omitempty"`
	VendorID     *int64          `json:"vendor_id,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Group        Group           `json:"group,omitempty"`
	Season       Season          `json:"season,omitempty"`
	Currency     Currency        `json:"currency"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (i Item) String() string {
	return i.Name + " - Category: " + i.CategoryName
}

// ItemSearchResult is the shape returned to line-item pickers when searching
// items by name.
type ItemSearchResult struct {
	ID           int64           `json:"id"`
	Text         string          `json:"text"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	InStock      int             `json:"in_stock"`
	TotalProduct int             `json:"total_product"`
}

func (i Item) SearchResult() ItemSearchResult {
	return ItemSearchResult{
		ID:       i.ID,
		Text:     i.Name,
		Name:     i.Name,
		Slug:     i.Slug,
		Category: i.CategoryName,
		Price:    i.Price,
		Quantity: 1,
		InStock:  i.Quantity,
	}
}

type ItemFilter struct {
	CategoryID int64
	Query      string
	Limit      int
	Offset     int
}

// Normalize clamps paging to the 1..100 window, defaulting to 10.
func (f ItemFilter) Normalize() ItemFilter {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Query = strings.TrimSpace(f.Query)
	return f
}
