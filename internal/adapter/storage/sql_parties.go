package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rl1809/mestakip/internal/core/domain"
)

const vendorColumns = `id, user_id, name, phone_number, address, is_removed, created_at, updated_at`

func scanVendor(row interface{ Scan(...any) error }) (*domain.Vendor, error) {
	var v domain.Vendor
	var owner sql.NullInt64
	if err := row.Scan(&v.ID, &owner, &v.Name, &v.PhoneNumber, &v.Address, &v.IsRemoved, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.UserID = intPtr(owner)
	return &v, nil
}

func (a *SQLAdapter) CreateVendor(ctx context.Context, v *domain.Vendor) error {
	id, err := a.insert(ctx, a.db, `
		INSERT INTO vendors (user_id, name, phone_number, address, is_removed, created_at, updated_at)
		VALUES (?, ?, ?, ?, FALSE, ?, ?)`,
		nullInt(v.UserID), v.Name, v.PhoneNumber, v.Address, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return classify(err, "vendor "+v.Name)
	}
	v.ID = id
	return nil
}

func (a *SQLAdapter) UpdateVendor(ctx context.Context, v *domain.Vendor) error {
	res, err := a.exec(ctx, a.db, `
		UPDATE vendors SET name = ?, phone_number = ?, address = ?, updated_at = ?
		WHERE id = ? AND is_removed = FALSE`,
		v.Name, v.PhoneNumber, v.Address, v.UpdatedAt, v.ID)
	return expectOne(res, classify(err, "vendor "+v.Name), notFound("vendor", v.ID))
}

func (a *SQLAdapter) GetVendor(ctx context.Context, id int64) (*domain.Vendor, error) {
	v, err := scanVendor(a.queryRow(ctx, a.db, `SELECT `+vendorColumns+` FROM vendors WHERE id = ? AND is_removed = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("vendor", id)
	}
	return v, classify(err, "query vendor")
}

func (a *SQLAdapter) ListVendors(ctx context.Context, scope domain.Scope) ([]domain.Vendor, error) {
	where, args := scopeClause(scope, "user_id")
	rows, err := a.query(ctx, a.db, `SELECT `+vendorColumns+` FROM vendors WHERE is_removed = FALSE`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, classify(err, "list vendors")
	}
	defer rows.Close()

	var out []domain.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, classify(err, "scan vendor")
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (a *SQLAdapter) RemoveVendor(ctx context.Context, id int64) error {
	res, err := a.exec(ctx, a.db, `UPDATE vendors SET is_removed = TRUE, updated_at = ? WHERE id = ? AND is_removed = FALSE`, a.now(), id)
	return expectOne(res, classify(err, "remove vendor"), notFound("vendor", id))
}

const customerColumns = `id, user_id, first_name, last_name, email, phone, address, loyalty_points,
	is_removed, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	var c domain.Customer
	var owner sql.NullInt64
	err := row.Scan(&c.ID, &owner, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.LoyaltyPoints,
		&c.IsRemoved, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.UserID = intPtr(owner)
	return &c, nil
}

func (a *SQLAdapter) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	id, err := a.insert(ctx, a.db, `
		INSERT INTO customers (user_id, first_name, last_name, email, phone, address, loyalty_points,
			is_removed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, FALSE, ?, ?)`,
		nullInt(c.UserID), c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.LoyaltyPoints,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return classify(err, "customer "+c.FullName())
	}
	c.ID = id
	return nil
}

func (a *SQLAdapter) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	res, err := a.exec(ctx, a.db, `
		UPDATE customers SET first_name = ?, last_name = ?, email = ?, phone = ?, address = ?,
			loyalty_points = ?, updated_at = ?
		WHERE id = ? AND is_removed = FALSE`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.LoyaltyPoints, c.UpdatedAt, c.ID)
	return expectOne(res, classify(err, "customer "+c.FullName()), notFound("customer", c.ID))
}

func (a *SQLAdapter) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := scanCustomer(a.queryRow(ctx, a.db, `SELECT `+customerColumns+` FROM customers WHERE id = ? AND is_removed = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("customer", id)
	}
	return c, classify(err, "query customer")
}

func (a *SQLAdapter) ListCustomers(ctx context.Context, scope domain.Scope) ([]domain.Customer, error) {
	where, args := scopeClause(scope, "user_id")
	rows, err := a.query(ctx, a.db, `SELECT `+customerColumns+` FROM customers WHERE is_removed = FALSE`+where+`
		ORDER BY first_name, last_name`, args...)
	if err != nil {
		return nil, classify(err, "list customers")
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, classify(err, "scan customer")
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (a *SQLAdapter) RemoveCustomer(ctx context.Context, id int64) error {
	res, err := a.exec(ctx, a.db, `UPDATE customers SET is_removed = TRUE, updated_at = ? WHERE id = ? AND is_removed = FALSE`, a.now(), id)
	return expectOne(res, classify(err, "remove customer"), notFound("customer", id))
}
