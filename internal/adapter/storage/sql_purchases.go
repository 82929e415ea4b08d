package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/mestakip/internal/core/domain"
)

const purchaseColumns = `id, user_id, slug, item_id, description, vendor_id, order_date, delivery_date,
	quantity, delivery_status, price, total_value, condition_grade, brand, product, dot, entry_date,
	season, note, created_at, updated_at`

func scanPurchase(row interface{ Scan(...any) error }) (*domain.Purchase, error) {
	var p domain.Purchase
	var owner, item, vendor sql.NullInt64
	var delivered, entered sql.NullTime
	err := row.Scan(&p.ID, &owner, &p.Slug, &item, &p.Description, &vendor, &p.OrderDate, &delivered,
		&p.Quantity, &p.DeliveryStatus, &p.Price, &p.TotalValue, &p.Condition, &p.Brand, &p.Product, &p.DOT, &entered,
		&p.Season, &p.Note, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.UserID = intPtr(owner)
	p.ItemID = intPtr(item)
	p.VendorID = intPtr(vendor)
	p.DeliveryDate = timePtr(delivered)
	p.EntryDate = timePtr(entered)
	return &p, nil
}

// adjustStock moves an item's quantity by delta, refusing to go below zero.
func (a *SQLAdapter) adjustStock(ctx context.Context, tx *sql.Tx, itemID int64, delta int) error {
	res, err := a.exec(ctx, tx, `
		UPDATE items SET quantity = quantity + ?, version = version + 1, updated_at = ?
		WHERE id = ? AND quantity + ? >= 0`,
		delta, a.now(), itemID, delta)
	if err != nil {
		return fmt.Errorf("adjust item stock: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("item %d: %w", itemID, ErrOptimisticLock)
	}
	return nil
}

func (a *SQLAdapter) CreatePurchase(ctx context.Context, p *domain.Purchase) error {
	return a.inTx(ctx, func(tx *sql.Tx) error {
		id, err := a.insert(ctx, tx, `
			INSERT INTO purchases (user_id, slug, item_id, description, vendor_id, order_date, delivery_date,
				quantity, delivery_status, price, total_value, condition_grade, brand, product, dot, entry_date,
				season, note, is_removed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, ?, ?)`,
			nullInt(p.UserID), p.Slug, nullInt(p.ItemID), p.Description, nullInt(p.VendorID), p.OrderDate,
			nullTime(p.DeliveryDate), p.Quantity, p.DeliveryStatus, p.Price, p.TotalValue, p.Condition,
			p.Brand, p.Product, p.DOT, nullTime(p.EntryDate), p.Season, p.Note, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return classify(err, "insert purchase")
		}
		p.ID = id

		if p.ItemID != nil {
			return a.adjustStock(ctx, tx, *p.ItemID, p.Quantity)
		}
		return nil
	})
}

func (a *SQLAdapter) UpdatePurchase(ctx context.Context, p *domain.Purchase, stockDelta int) error {
	return a.inTx(ctx, func(tx *sql.Tx) error {
		res, err := a.exec(ctx, tx, `
			UPDATE purchases SET description = ?, vendor_id = ?, order_date = ?, delivery_date = ?,
				quantity = ?, delivery_status = ?, price = ?, total_value = ?, condition_grade = ?,
				brand = ?, product = ?, dot = ?, entry_date = ?, season = ?, note = ?, updated_at = ?
			WHERE id = ? AND is_removed = FALSE`,
			p.Description, nullInt(p.VendorID), p.OrderDate, nullTime(p.DeliveryDate),
			p.Quantity, p.DeliveryStatus, p.Price, p.TotalValue, p.Condition,
			p.Brand, p.Product, p.DOT, nullTime(p.EntryDate), p.Season, p.Note, p.UpdatedAt, p.ID,
		)
		if err := expectOne(res, classify(err, "update purchase"), notFound("purchase", p.ID)); err != nil {
			return err
		}

		if p.ItemID != nil && stockDelta != 0 {
			return a.adjustStock(ctx, tx, *p.ItemID, stockDelta)
		}
		return nil
	})
}

func (a *SQLAdapter) GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	p, err := scanPurchase(a.queryRow(ctx, a.db, `SELECT `+purchaseColumns+` FROM purchases WHERE id = ? AND is_removed = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("purchase", id)
	}
	return p, classify(err, "query purchase")
}

func (a *SQLAdapter) ListPurchases(ctx context.Context, scope domain.Scope) ([]domain.Purchase, error) {
	where, args := scopeClause(scope, "user_id")
	rows, err := a.query(ctx, a.db, `SELECT `+purchaseColumns+` FROM purchases WHERE is_removed = FALSE`+where+`
		ORDER BY order_date DESC, id DESC`, args...)
	if err != nil {
		return nil, classify(err, "list purchases")
	}
	defer rows.Close()

	var out []domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, classify(err, "scan purchase")
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (a *SQLAdapter) RemovePurchase(ctx context.Context, id int64) error {
	res, err := a.exec(ctx, a.db, `UPDATE purchases SET is_removed = TRUE, updated_at = ? WHERE id = ? AND is_removed = FALSE`, a.now(), id)
	return expectOne(res, classify(err, "remove purchase"), notFound("purchase", id))
}
