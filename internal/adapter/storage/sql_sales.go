package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/mestakip/internal/core/domain"
)

// CreateSale stores the sale with its details and takes the sold quantities
// off the items. A line whose item no longer has enough stock aborts the
// whole transaction with ErrOptimisticLock.
func (a *SQLAdapter) CreateSale(ctx context.Context, sale domain.Sale) error {
	return a.inTx(ctx, func(tx *sql.Tx) error {
		_, err := a.exec(ctx, tx, `
			INSERT INTO sales (id, request_id, user_id, customer_id, status, sub_total, tax_percentage,
				tax_amount, grand_total, amount_paid, amount_change, is_removed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, ?, ?)`,
			sale.ID, sale.RequestID, nullInt(sale.UserID), sale.CustomerID, sale.Status, sale.SubTotal,
			sale.TaxPercentage, sale.TaxAmount, sale.GrandTotal, sale.AmountPaid, sale.AmountChange,
			sale.CreatedAt, sale.UpdatedAt,
		)
		if err != nil {
			return classify(err, "insert sale")
		}

		for _, d := range sale.Details {
			_, err = a.exec(ctx, tx, `
				INSERT INTO sale_details (sale_id, item_id, price, quantity, total_detail)
				VALUES (?, ?, ?, ?, ?)`,
				sale.ID, d.ItemID, d.Price, d.Quantity, d.TotalDetail,
			)
			if err != nil {
				return classify(err, "insert sale detail")
			}

			result, err := a.exec(ctx, tx, `
				UPDATE items
				SET quantity = quantity - ?, version = version + 1, updated_at = ?
				WHERE id = ? AND quantity >= ?`,
				d.Quantity, a.now(), d.ItemID, d.Quantity,
			)
			if err != nil {
				return fmt.Errorf("update item stock: %w", err)
			}

			rows, _ := result.RowsAffected()
			if rows == 0 {
				return fmt.Errorf("item %d: %w", d.ItemID, ErrOptimisticLock)
			}
		}
		return nil
	})
}

const saleColumns = `id, request_id, user_id, customer_id, status, sub_total, tax_percentage, tax_amount,
	grand_total, amount_paid, amount_change, created_at, updated_at`

func scanSale(row interface{ Scan(...any) error }) (*domain.Sale, error) {
	var s domain.Sale
	var owner sql.NullInt64
	err := row.Scan(&s.ID, &s.RequestID, &owner, &s.CustomerID, &s.Status, &s.SubTotal, &s.TaxPercentage,
		&s.TaxAmount, &s.GrandTotal, &s.AmountPaid, &s.AmountChange, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.UserID = intPtr(owner)
	return &s, nil
}

func (a *SQLAdapter) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	sale, err := scanSale(a.queryRow(ctx, a.db, `SELECT `+saleColumns+` FROM sales WHERE id = ? AND is_removed = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("sale", id)
	}
	if err != nil {
		return nil, classify(err, "query sale")
	}

	rows, err := a.query(ctx, a.db, `
		SELECT d.id, d.sale_id, d.item_id, COALESCE(i.name, ''), d.price, d.quantity, d.total_detail
		FROM sale_details d LEFT JOIN items i ON i.id = d.item_id
		WHERE d.sale_id = ? ORDER BY d.id`, id)
	if err != nil {
		return nil, classify(err, "query sale details")
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.SaleDetail
		if err := rows.Scan(&d.ID, &d.SaleID, &d.ItemID, &d.ItemName, &d.Price, &d.Quantity, &d.TotalDetail); err != nil {
			return nil, classify(err, "scan sale detail")
		}
		sale.Details = append(sale.Details, d)
	}
	return sale, rows.Err()
}

// ListSales returns sales newest first, without their details.
func (a *SQLAdapter) ListSales(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.Sale, error) {
	where, args := scopeClause(scope, "user_id")
	args = append(args, limit, offset)
	rows, err := a.query(ctx, a.db, `SELECT `+saleColumns+` FROM sales WHERE is_removed = FALSE`+where+`
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, classify(err, "list sales")
	}
	defer rows.Close()

	var out []domain.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, classify(err, "scan sale")
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (a *SQLAdapter) RemoveSale(ctx context.Context, id string) error {
	res, err := a.exec(ctx, a.db, `UPDATE sales SET is_removed = TRUE, updated_at = ? WHERE id = ? AND is_removed = FALSE`, a.now(), id)
	return expectOne(res, classify(err, "remove sale"), notFound("sale", id))
}

func (a *SQLAdapter) DailyRevenue(ctx context.Context, scope domain.Scope) ([]domain.DailyRevenue, error) {
	where, args := scopeClause(scope, "user_id")
	rows, err := a.query(ctx, a.db, `
		SELECT DATE(created_at) AS day, SUM(grand_total)
		FROM sales WHERE is_removed = FALSE`+where+`
		GROUP BY DATE(created_at)
		ORDER BY day`, args...)
	if err != nil {
		return nil, classify(err, "daily revenue")
	}
	defer rows.Close()

	var out []domain.DailyRevenue
	for rows.Next() {
		var r domain.DailyRevenue
		if err := rows.Scan(&r.Day, &r.Total); err != nil {
			return nil, classify(err, "scan daily revenue")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
