package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/port"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,18}[0-9]$`)

func validPhone(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

type DeliveryInput struct {
	ItemID       *int64    `json:"item_id"`
	CustomerName string    `json:"customer_name"`
	PhoneNumber  string    `json:"phone_number"`
	Location     string    `json:"location"`
	Date         time.Time `json:"date"`
	IsDelivered  bool      `json:"is_delivered"`
}

func (in *DeliveryInput) validate() error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Location = strings.TrimSpace(in.Location)
	switch {
	case len([]rune(in.CustomerName)) > 30:
		return invalidf("customer name cannot exceed 30 characters")
	case len([]rune(in.Location)) > 20:
		return invalidf("location cannot exceed 20 characters")
	case in.PhoneNumber != "" && !validPhone(in.PhoneNumber):
		return invalidf("invalid phone number %q", in.PhoneNumber)
	case in.Date.IsZero():
		return invalidf("delivery date is required")
	}
	return nil
}

type DeliveryService struct {
	deliveries port.DeliveryRepository
	items      port.ItemRepository
	log        logrus.FieldLogger
}

func NewDeliveryService(deliveries port.DeliveryRepository, items port.ItemRepository, log logrus.FieldLogger) *DeliveryService {
	return &DeliveryService{deliveries: deliveries, items: items, log: log}
}

func (s *DeliveryService) checkItem(ctx context.Context, actor domain.User, itemID *int64) error {
	if itemID == nil {
		return nil
	}
	item, err := s.items.GetItemByID(ctx, *itemID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !domain.ScopeFor(actor).Allows(item.UserID)) {
		return invalidf("item with id %d does not exist", *itemID)
	}
	return err
}

func (s *DeliveryService) CreateDelivery(ctx context.Context, actor domain.User, in DeliveryInput) (*domain.Delivery, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkItem(ctx, actor, in.ItemID); err != nil {
		return nil, err
	}
	delivery := &domain.Delivery{UserID: ownerOf(actor)}
	applyDeliveryInput(delivery, in)
	if err := s.deliveries.CreateDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}
	s.log.Infof("delivery %d scheduled for %s", delivery.ID, delivery.Date.Format(time.RFC3339))
	return delivery, nil
}

func (s *DeliveryService) GetDelivery(ctx context.Context, actor domain.User, id int64) (*domain.Delivery, error) {
	delivery, err := s.deliveries.GetDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := visible(domain.ScopeFor(actor), delivery.UserID, "delivery", id); err != nil {
		return nil, err
	}
	return delivery, nil
}

func (s *DeliveryService) UpdateDelivery(ctx context.Context, actor domain.User, id int64, in DeliveryInput) (*domain.Delivery, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	delivery, err := s.GetDelivery(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkItem(ctx, actor, in.ItemID); err != nil {
		return nil, err
	}
	applyDeliveryInput(delivery, in)
	if err := s.deliveries.UpdateDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("update delivery: %w", err)
	}
	return delivery, nil
}

func (s *DeliveryService) DeleteDelivery(ctx context.Context, actor domain.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.GetDelivery(ctx, actor, id); err != nil {
		return err
	}
	return s.deliveries.DeleteDelivery(ctx, id)
}

// ListDeliveries matches query against the customer name and location.
func (s *DeliveryService) ListDeliveries(ctx context.Context, actor domain.User, query string) ([]domain.Delivery, error) {
	return s.deliveries.ListDeliveries(ctx, domain.ScopeFor(actor), strings.TrimSpace(query))
}

func applyDeliveryInput(d *domain.Delivery, in DeliveryInput) {
	d.ItemID = in.ItemID
	d.CustomerName = in.CustomerName
	d.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	d.Location = in.Location
	d.Date = in.Date
	d.IsDelivered = in.IsDelivered
}
