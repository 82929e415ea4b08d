package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TireStatus string

const (
	TireInTransit  TireStatus = "YOLDA"
	TireInProgress TireStatus = "ISLEM_DEVAM_EDIYOR"
	TireDelivered  TireStatus = "TESLIM_EDILDI"
	TireChecked    TireStatus = "KONTROL_EDILDI"
	TireCancelled  TireStatus = "IPTAL_EDILDI"
)

func (s TireStatus) Valid() bool {
	switch s {
	case TireInTransit, TireInProgress, TireDelivered, TireChecked, TireCancelled:
		return true
	}
	return false
}

func (s TireStatus) Label() string {
	switch s {
	case TireInTransit:
		return "Yolda"
	case TireInProgress:
		return "İşlem Devam Ediyor"
	case TireDelivered:
		return "Teslim Edildi"
	case TireChecked:
		return "Kontrol Edildi"
	case TireCancelled:
		return "İptal Edildi"
	}
	return string(s)
}

type Warehouse string

const (
	WarehouseSales Warehouse = "SATIS"
	WarehouseStock Warehouse = "STOK"
)

func (w Warehouse) Valid() bool {
	return w == WarehouseSales || w == WarehouseStock
}

type Payment string

const (
	PaymentCard     Payment = "KART"
	PaymentTransfer Payment = "HAVALE"
	PaymentAccount  Payment = "CARI_HESAP"
)

func (p Payment) Valid() bool {
	switch p {
	case "", PaymentCard, PaymentTransfer, PaymentAccount:
		return true
	}
	return false
}

type TireRecord struct {
	ID               int64           `json:"id"`
	UserID           *int64          `json:"user_id,omitempty"`
	Account          string          `json:"account"`
	Product          string          `json:"product"`
	Brand            string          `json:"brand"`
	Group            Group           `json:"group"`
	Season           Season          `json:"season,omitempty"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	Status           TireStatus      `json:"status"`
	Warehouse        Warehouse       `json:"warehouse"`
	Note             string          `json:"note,omitempty"`
	Payment          Payment         `json:"payment,omitempty"`
	NotificationSent bool            `json:"notification_sent"`
	Featured         bool            `json:"featured"`
	CancelReason     string          `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Normalize applies the ledger's save rules: an unset status means in
// transit, batteries carry no season, and when both the total and a positive
// unit price are known the quantity is derived from them with half-even
// rounding.
func (t *TireRecord) Normalize() {
	if t.Status == "" {
		t.Status = TireInTransit
	}
	if t.Warehouse == "" {
		t.Warehouse = WarehouseStock
	}
	if t.Group == GroupBattery {
		t.Season = ""
	}
	if !t.TotalPrice.IsZero() && t.UnitPrice.IsPositive() {
		t.Quantity = int(t.TotalPrice.Div(t.UnitPrice).RoundBank(0).IntPart())
	}
}

func (t TireRecord) String() string {
	return t.Account + " - " + t.Product
}

type DateWindow string

const (
	WindowLastMonth   DateWindow = "1_ay"
	WindowLast3Months DateWindow = "3_ay"
	WindowLast6Months DateWindow = "6_ay"
	WindowCustom      DateWindow = "custom"
)

type TireFilter struct {
	Statuses        []TireStatus
	ExcludeStatuses []TireStatus
	Account         string
	Brand           string
	Group           Group
	Season          Season
	Warehouse       Warehouse
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// ApplyWindow resolves a named date window relative to now. Custom windows
// use start/end in YYYY-MM-DD form; values that do not parse are ignored.
func (f *TireFilter) ApplyWindow(w DateWindow, start, end string, now time.Time) {
	var days int
	switch w {
	case WindowLastMonth:
		days = 30
	case WindowLast3Months:
		days = 90
	case WindowLast6Months:
		days = 180
	case WindowCustom:
		if d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(start), now.Location()); err == nil {
			f.CreatedFrom = &d
		}
		if d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(end), now.Location()); err == nil {
			// inclusive of the whole end day
			to := d.AddDate(0, 0, 1).Add(-time.Nanosecond)
			f.CreatedTo = &to
		}
		return
	default:
		return
	}
	from := now.AddDate(0, 0, -days)
	f.CreatedFrom = &from
}

// Matches evaluates the filter in memory. Account and brand are compared
// case-insensitively as substrings.
func (f TireFilter) Matches(t TireRecord) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if containsStatus(f.ExcludeStatuses, t.Status) {
		return false
	}
	if f.Account != "" && !strings.Contains(strings.ToUpper(t.Account), strings.ToUpper(f.Account)) {
		return false
	}
	if f.Brand != "" && !strings.Contains(strings.ToUpper(t.Brand), strings.ToUpper(f.Brand)) {
		return false
	}
	if f.Group != "" && t.Group != f.Group {
		return false
	}
	if f.Season != "" && t.Season != f.Season {
		return false
	}
	if f.Warehouse != "" && t.Warehouse != f.Warehouse {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

func containsStatus(list []TireStatus, s TireStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
