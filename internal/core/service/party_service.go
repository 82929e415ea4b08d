package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/port"
)

type VendorInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type CustomerInput struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	LoyaltyPoints int    `json:"loyalty_points"`
}

// PartyService manages the vendors goods are bought from and the customers
// they are sold to. Both are soft deleted.
type PartyService struct {
	vendors   port.VendorRepository
	customers port.CustomerRepository
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewPartyService(vendors port.VendorRepository, customers port.CustomerRepository, log logrus.FieldLogger) *PartyService {
	return &PartyService{vendors: vendors, customers: customers, log: log, now: time.Now}
}

func (in *VendorInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalidf("vendor name cannot be empty")
	}
	if in.PhoneNumber != "" && !validPhone(in.PhoneNumber) {
		return invalidf("invalid phone number %q", in.PhoneNumber)
	}
	return nil
}

func (in *CustomerInput) validate() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" && in.LastName == "" {
		return invalidf("customer name cannot be empty")
	}
	if in.Phone != "" && !validPhone(in.Phone) {
		return invalidf("invalid phone number %q", in.Phone)
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return invalidf("invalid email %q", in.Email)
	}
	if in.LoyaltyPoints < 0 {
		return invalidf("loyalty points cannot be negative")
	}
	return nil
}

func (s *PartyService) CreateVendor(ctx context.Context, actor domain.User, in VendorInput) (*domain.Vendor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	vendor := &domain.Vendor{
		UserID:      ownerOf(actor),
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.vendors.CreateVendor(ctx, vendor); err != nil {
		return nil, fmt.Errorf("create vendor: %w", err)
	}
	s.log.Infof("vendor %q created with id %d", vendor.Name, vendor.ID)
	return vendor, nil
}

func (s *PartyService) GetVendor(ctx context.Context, actor domain.User, id int64) (*domain.Vendor, error) {
	vendor, err := s.vendors.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := visible(domain.ScopeFor(actor), vendor.UserID, "vendor", id); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *PartyService) UpdateVendor(ctx context.Context, actor domain.User, id int64, in VendorInput) (*domain.Vendor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	vendor, err := s.GetVendor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	vendor.Name = in.Name
	vendor.PhoneNumber = in.PhoneNumber
	vendor.Address = in.Address
	vendor.UpdatedAt = s.now()
	if err := s.vendors.UpdateVendor(ctx, vendor); err != nil {
		return nil, fmt.Errorf("update vendor: %w", err)
	}
	return vendor, nil
}

func (s *PartyService) RemoveVendor(ctx context.Context, actor domain.User, id int64) error {
	if _, err := s.GetVendor(ctx, actor, id); err != nil {
		return err
	}
	return s.vendors.RemoveVendor(ctx, id)
}

func (s *PartyService) ListVendors(ctx context.Context, actor domain.User) ([]domain.Vendor, error) {
	return s.vendors.ListVendors(ctx, domain.ScopeFor(actor))
}

func (s *PartyService) CreateCustomer(ctx context.Context, actor domain.User, in CustomerInput) (*domain.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	customer := &domain.Customer{UserID: ownerOf(actor), CreatedAt: now}
	applyCustomerInput(customer, in, now)
	if err := s.customers.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.log.Infof("customer %q created with id %d", customer.FullName(), customer.ID)
	return customer, nil
}

func (s *PartyService) GetCustomer(ctx context.Context, actor domain.User, id int64) (*domain.Customer, error) {
	customer, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := visible(domain.ScopeFor(actor), customer.UserID, "customer", id); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *PartyService) UpdateCustomer(ctx context.Context, actor domain.User, id int64, in CustomerInput) (*domain.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	customer, err := s.GetCustomer(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyCustomerInput(customer, in, s.now())
	if err := s.customers.UpdateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return customer, nil
}

func (s *PartyService) RemoveCustomer(ctx context.Context, actor domain.User, id int64) error {
	if _, err := s.GetCustomer(ctx, actor, id); err != nil {
		return err
	}
	return s.customers.RemoveCustomer(ctx, id)
}

func (s *PartyService) ListCustomers(ctx context.Context, actor domain.User) ([]domain.Customer, error) {
	return s.customers.ListCustomers(ctx, domain.ScopeFor(actor))
}

func applyCustomerInput(c *domain.Customer, in CustomerInput, now time.Time) {
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.LoyaltyPoints = in.LoyaltyPoints
	c.UpdatedAt = now
}
