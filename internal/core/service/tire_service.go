package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/port"
)

const shareBaseURL = "https://wa.me/?text="

type TireInput struct {
	Account          string            `json:"account"`
	Product          string            `json:"product"`
	Brand            string            `json:"brand"`
	Group            domain.Group      `json:"group"`
	Season           domain.Season     `json:"season"`
	Quantity         int               `json:"quantity"`
	UnitPrice        decimal.Decimal   `json:"unit_price"`
	TotalPrice       decimal.Decimal   `json:"total_price"`
	Status           domain.TireStatus `json:"status"`
	Warehouse        domain.Warehouse  `json:"warehouse"`
	Note             string            `json:"note"`
	Payment          domain.Payment    `json:"payment"`
	NotificationSent bool              `json:"notification_sent"`
	Featured         bool              `json:"featured"`
}

func (in *TireInput) validate() error {
	in.Account = strings.TrimSpace(in.Account)
	in.Product = strings.TrimSpace(in.Product)
	in.Brand = strings.TrimSpace(in.Brand)
	switch {
	case in.Account == "":
		return invalidf("account is required")
	case in.Product == "":
		return invalidf("product is required")
	case in.Brand == "":
		return invalidf("brand is required")
	case !in.Group.Valid():
		return invalidf("unknown group %q", in.Group)
	case !in.Season.Valid():
		return invalidf("unknown season %q", in.Season)
	case in.Quantity < 0:
		return invalidf("quantity cannot be negative")
	case in.UnitPrice.IsNegative() || in.TotalPrice.IsNegative():
		return invalidf("prices cannot be negative")
	case in.Status != "" && !in.Status.Valid():
		return invalidf("unknown status %q", in.Status)
	case in.Warehouse != "" && !in.Warehouse.Valid():
		return invalidf("unknown warehouse %q", in.Warehouse)
	case !in.Payment.Valid():
		return invalidf("unknown payment %q", in.Payment)
	}
	return nil
}

// TireQuery carries list filters as they arrive from the query string.
type TireQuery struct {
	Status    domain.TireStatus
	Account   string
	Brand     string
	Group     domain.Group
	Season    domain.Season
	Warehouse domain.Warehouse
	Window    domain.DateWindow
	Start     string
	End       string
}

type CheckedReport struct {
	Records  []domain.TireRecord   `json:"records"`
	Brands   []domain.Distribution `json:"brands"`
	Payments []domain.Distribution `json:"payments"`
	Seasons  []string              `json:"seasons"`
	Matrix   [][]int               `json:"matrix"`
}

type TireShare struct {
	Message string `json:"message"`
	URL     string `json:"whatsapp_url"`
}

// TireService manages the tire ledger: orders placed for company accounts
// and tracked from transit to checked.
type TireService struct {
	tires port.TireRepository
	log   logrus.FieldLogger
	loc   *time.Location
	now   func() time.Time
}

func NewTireService(tires port.TireRepository, loc *time.Location, log logrus.FieldLogger) *TireService {
	if loc == nil {
		loc = time.UTC
	}
	return &TireService{tires: tires, log: log, loc: loc, now: time.Now}
}

func (s *TireService) CreateTire(ctx context.Context, actor domain.User, in TireInput) (*domain.TireRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	tire := &domain.TireRecord{UserID: ownerOf(actor), CreatedAt: now}
	applyTireInput(tire, in, now)
	if err := s.tires.CreateTire(ctx, tire); err != nil {
		return nil, fmt.Errorf("create tire record: %w", err)
	}
	s.log.Infof("tire record %d created for %s", tire.ID, tire.Account)
	return tire, nil
}

func (s *TireService) GetTire(ctx context.Context, actor domain.User, id int64) (*domain.TireRecord, error) {
	tire, err := s.tires.GetTire(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := visible(domain.ScopeFor(actor), tire.UserID, "tire record", id); err != nil {
		return nil, err
	}
	return tire, nil
}

func (s *TireService) UpdateTire(ctx context.Context, actor domain.User, id int64, in TireInput) (*domain.TireRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	tire, err := s.GetTire(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = tire.Status
	}
	applyTireInput(tire, in, s.now())
	if err := s.tires.UpdateTire(ctx, tire); err != nil {
		return nil, fmt.Errorf("update tire record: %w", err)
	}
	return tire, nil
}

func (s *TireService) RemoveTire(ctx context.Context, actor domain.User, id int64) error {
	if _, err := s.GetTire(ctx, actor, id); err != nil {
		return err
	}
	return s.tires.RemoveTire(ctx, id)
}

// CancelTire moves a record to the cancelled list with a mandatory reason.
func (s *TireService) CancelTire(ctx context.Context, actor domain.User, id int64, reason string) (*domain.TireRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalidf("a cancellation reason is required")
	}
	tire, err := s.GetTire(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	tire.Status = domain.TireCancelled
	tire.CancelReason = reason
	tire.UpdatedAt = s.now()
	if err := s.tires.UpdateTire(ctx, tire); err != nil {
		return nil, fmt.Errorf("cancel tire record: %w", err)
	}
	s.log.Infof("tire record %d cancelled: %s", id, reason)
	return tire, nil
}

// ShareTire prepares a WhatsApp status message for the record and marks the
// customer as notified.
func (s *TireService) ShareTire(ctx context.Context, actor domain.User, id int64) (*TireShare, error) {
	tire, err := s.GetTire(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	msg := ShareMessage(*tire, s.loc)

	tire.NotificationSent = true
	tire.UpdatedAt = s.now()
	if err := s.tires.UpdateTire(ctx, tire); err != nil {
		return nil, fmt.Errorf("mark tire record notified: %w", err)
	}
	return &TireShare{Message: msg, URL: shareBaseURL + url.PathEscape(msg)}, nil
}

func ShareMessage(t domain.TireRecord, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*MesTakip - %s*\n\n", t.Account)
	fmt.Fprintf(&b, "*Ürün:* %s\n", t.Product)
	fmt.Fprintf(&b, "*Marka:* %s\n", t.Brand)
	fmt.Fprintf(&b, "*Adet:* %d\n", t.Quantity)
	fmt.Fprintf(&b, "*Durum:* %s\n", t.Status.Label())
	fmt.Fprintf(&b, "*Güncellenen Son Tarih:* %s", t.UpdatedAt.In(loc).Format("02.01.2006 15:04"))
	return b.String()
}

func (s *TireService) filter(q TireQuery) domain.TireFilter {
	f := domain.TireFilter{
		Account:   strings.TrimSpace(q.Account),
		Brand:     strings.TrimSpace(q.Brand),
		Group:     q.Group,
		Season:    q.Season,
		Warehouse: q.Warehouse,
	}
	if q.Status != "" {
		f.Statuses = []domain.TireStatus{q.Status}
	}
	f.ApplyWindow(q.Window, q.Start, q.End, s.now().In(s.loc))
	return f
}

// ListActive lists records still being worked on. Checked and cancelled
// records have their own lists.
func (s *TireService) ListActive(ctx context.Context, actor domain.User, q TireQuery) ([]domain.TireRecord, error) {
	f := s.filter(q)
	f.ExcludeStatuses = []domain.TireStatus{domain.TireChecked, domain.TireCancelled}
	return s.tires.ListTires(ctx, domain.ScopeFor(actor), f)
}

// ListChecked returns the checked records matching q. The analytics cover
// every checked record regardless of the filter.
func (s *TireService) ListChecked(ctx context.Context, actor domain.User, q TireQuery) (*CheckedReport, error) {
	scope := domain.ScopeFor(actor)
	f := s.filter(q)
	f.Statuses = []domain.TireStatus{domain.TireChecked}
	records, err := s.tires.ListTires(ctx, scope, f)
	if err != nil {
		return nil, err
	}
	all, err := s.tires.ListTires(ctx, scope, domain.TireFilter{Statuses: []domain.TireStatus{domain.TireChecked}})
	if err != nil {
		return nil, err
	}
	return &CheckedReport{
		Records:  records,
		Brands:   domain.BrandDistribution(all),
		Payments: domain.PaymentDistribution(all),
		Seasons:  domain.SeasonLabels(),
		Matrix:   domain.SeasonGroupMatrix(all),
	}, nil
}

func (s *TireService) ListCancelled(ctx context.Context, actor domain.User, q TireQuery) ([]domain.TireRecord, error) {
	f := s.filter(q)
	f.Statuses = []domain.TireStatus{domain.TireCancelled}
	return s.tires.ListTires(ctx, domain.ScopeFor(actor), f)
}

func (s *TireService) Dashboard(ctx context.Context, actor domain.User) (*domain.TireSummary, error) {
	records, err := s.tires.ListTires(ctx, domain.ScopeFor(actor), domain.TireFilter{})
	if err != nil {
		return nil, err
	}
	summary := domain.SummarizeTires(records)
	return &summary, nil
}

// SeedTires inserts the records that do not exist yet, keyed by account and
// product, and reports how many were created.
func (s *TireService) SeedTires(ctx context.Context, records []domain.TireRecord) (int, error) {
	created := 0
	for _, rec := range records {
		_, err := s.tires.FindTire(ctx, rec.Account, rec.Product)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return created, fmt.Errorf("look up %s: %w", rec, err)
		}
		now := s.now()
		rec.CreatedAt, rec.UpdatedAt = now, now
		rec.Normalize()
		if err := s.tires.CreateTire(ctx, &rec); err != nil {
			return created, fmt.Errorf("create %s: %w", rec, err)
		}
		created++
		s.log.Infof("created: %s - %s - %s", rec.Product, rec.Season, rec.Group)
	}
	return created, nil
}

func applyTireInput(t *domain.TireRecord, in TireInput, now time.Time) {
	t.Account = in.Account
	t.Product = in.Product
	t.Brand = in.Brand
	t.Group = in.Group
	t.Season = in.Season
	t.Quantity = in.Quantity
	t.UnitPrice = in.UnitPrice
	t.TotalPrice = in.TotalPrice
	t.Status = in.Status
	t.Warehouse = in.Warehouse
	t.Note = in.Note
	t.Payment = in.Payment
	t.NotificationSent = in.NotificationSent
	t.Featured = in.Featured
	t.UpdatedAt = now
	t.Normalize()
}
