package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rl1809/mestakip/internal/core/domain"
)

const deliveryColumns = `d.id, d.user_id, d.item_id, COALESCE(i.name, ''), d.customer_name, d.phone_number,
	d.location, d.delivery_date, d.is_delivered`

const deliveryFrom = ` FROM deliveries d LEFT JOIN items i ON i.id = d.item_id`

func scanDelivery(row interface{ Scan(...any) error }) (*domain.Delivery, error) {
	var d domain.Delivery
	var owner, item sql.NullInt64
	err := row.Scan(&d.ID, &owner, &item, &d.ItemName, &d.CustomerName, &d.PhoneNumber, &d.Location, &d.Date, &d.IsDelivered)
	if err != nil {
		return nil, err
	}
	d.UserID = intPtr(owner)
	d.ItemID = intPtr(item)
	return &d, nil
}

func (a *SQLAdapter) CreateDelivery(ctx context.Context, d *domain.Delivery) error {
	id, err := a.insert(ctx, a.db, `
		INSERT INTO deliveries (user_id, item_id, customer_name, phone_number, location, delivery_date, is_delivered)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullInt(d.UserID), nullInt(d.ItemID), d.CustomerName, d.PhoneNumber, d.Location, d.Date, d.IsDelivered)
	if err != nil {
		return classify(err, "delivery")
	}
	d.ID = id
	return nil
}

func (a *SQLAdapter) UpdateDelivery(ctx context.Context, d *domain.Delivery) error {
	res, err := a.exec(ctx, a.db, `
		UPDATE deliveries SET item_id = ?, customer_name = ?, phone_number = ?, location = ?,
			delivery_date = ?, is_delivered = ?
		WHERE id = ?`,
		nullInt(d.ItemID), d.CustomerName, d.PhoneNumber, d.Location, d.Date, d.IsDelivered, d.ID)
	return expectOne(res, classify(err, "delivery"), notFound("delivery", d.ID))
}

func (a *SQLAdapter) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	d, err := scanDelivery(a.queryRow(ctx, a.db, `SELECT `+deliveryColumns+deliveryFrom+` WHERE d.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("delivery", id)
	}
	return d, classify(err, "query delivery")
}

func (a *SQLAdapter) ListDeliveries(ctx context.Context, scope domain.Scope, query string) ([]domain.Delivery, error) {
	where, args := scopeClause(scope, "d.user_id")
	if query != "" {
		pattern := "%" + likeEscaper.Replace(lower(query)) + "%"
		where += " AND (LOWER(d.customer_name) LIKE ? OR LOWER(d.location) LIKE ?)"
		args = append(args, pattern, pattern)
	}
	rows, err := a.query(ctx, a.db, `SELECT `+deliveryColumns+deliveryFrom+` WHERE 1 = 1`+where+`
		ORDER BY d.delivery_date DESC, d.id DESC`, args...)
	if err != nil {
		return nil, classify(err, "list deliveries")
	}
	defer rows.Close()

	var out []domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, classify(err, "scan delivery")
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (a *SQLAdapter) DeleteDelivery(ctx context.Context, id int64) error {
	res, err := a.exec(ctx, a.db, `DELETE FROM deliveries WHERE id = ?`, id)
	return expectOne(res, classify(err, "delete delivery"), notFound("delivery", id))
}
