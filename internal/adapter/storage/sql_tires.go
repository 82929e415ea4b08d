package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rl1809/mestakip/internal/core/domain"
)

const tireColumns = `id, user_id, account, product, brand, tire_group, season, quantity, unit_price,
	total_price, status, warehouse, note, payment, notification_sent, featured, cancel_reason,
	created_at, updated_at`

func scanTire(row interface{ Scan(...any) error }) (*domain.TireRecord, error) {
	var t domain.TireRecord
	var owner sql.NullInt64
	err := row.Scan(&t.ID, &owner, &t.Account, &t.Product, &t.Brand, &t.Group, &t.Season, &t.Quantity, &t.UnitPrice,
		&t.TotalPrice, &t.Status, &t.Warehouse, &t.Note, &t.Payment, &t.NotificationSent, &t.Featured, &t.CancelReason,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.UserID = intPtr(owner)
	return &t, nil
}

func (a *SQLAdapter) CreateTire(ctx context.Context, t *domain.TireRecord) error {
	id, err := a.insert(ctx, a.db, `
		INSERT INTO tire_records (user_id, account, product, brand, tire_group, season, quantity, unit_price,
			total_price, status, warehouse, note, payment, notification_sent, featured, cancel_reason,
			is_removed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, ?, ?)`,
		nullInt(t.UserID), t.Account, t.Product, t.Brand, t.Group, t.Season, t.Quantity, t.UnitPrice,
		t.TotalPrice, t.Status, t.Warehouse, t.Note, t.Payment, t.NotificationSent, t.Featured, t.CancelReason,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return classify(err, "tire record "+t.String())
	}
	t.ID = id
	return nil
}

func (a *SQLAdapter) UpdateTire(ctx context.Context, t *domain.TireRecord) error {
	res, err := a.exec(ctx, a.db, `
		UPDATE tire_records SET account = ?, product = ?, brand = ?, tire_group = ?, season = ?, quantity = ?,
			unit_price = ?, total_price = ?, status = ?, warehouse = ?, note = ?, payment = ?,
			notification_sent = ?, featured = ?, cancel_reason = ?, updated_at = ?
		WHERE id = ? AND is_removed = FALSE`,
		t.Account, t.Product, t.Brand, t.Group, t.Season, t.Quantity,
		t.UnitPrice, t.TotalPrice, t.Status, t.Warehouse, t.Note, t.Payment,
		t.NotificationSent, t.Featured, t.CancelReason, t.UpdatedAt, t.ID,
	)
	return expectOne(res, classify(err, "tire record "+t.String()), notFound("tire record", t.ID))
}

func (a *SQLAdapter) GetTire(ctx context.Context, id int64) (*domain.TireRecord, error) {
	t, err := scanTire(a.queryRow(ctx, a.db, `SELECT `+tireColumns+` FROM tire_records WHERE id = ? AND is_removed = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("tire record", id)
	}
	return t, classify(err, "query tire record")
}

func (a *SQLAdapter) FindTire(ctx context.Context, account, product string) (*domain.TireRecord, error) {
	t, err := scanTire(a.queryRow(ctx, a.db, `
		SELECT `+tireColumns+` FROM tire_records
		WHERE account = ? AND product = ? AND is_removed = FALSE
		ORDER BY id LIMIT 1`, account, product))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("tire record", account+" - "+product)
	}
	return t, classify(err, "query tire record")
}

// tireWhere renders f as SQL. It mirrors domain.TireFilter.Matches.
func tireWhere(scope domain.Scope, f domain.TireFilter) (string, []any) {
	where, args := scopeClause(scope, "user_id")
	if len(f.Statuses) > 0 {
		where += " AND status IN (" + placeholders(len(f.Statuses)) + ")"
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	if len(f.ExcludeStatuses) > 0 {
		where += " AND status NOT IN (" + placeholders(len(f.ExcludeStatuses)) + ")"
		for _, s := range f.ExcludeStatuses {
			args = append(args, s)
		}
	}
	if f.Account != "" {
		where += " AND UPPER(account) LIKE ?"
		args = append(args, "%"+likeEscaper.Replace(strings.ToUpper(f.Account))+"%")
	}
	if f.Brand != "" {
		where += " AND UPPER(brand) LIKE ?"
		args = append(args, "%"+likeEscaper.Replace(strings.ToUpper(f.Brand))+"%")
	}
	if f.Group != "" {
		where += " AND tire_group = ?"
		args = append(args, f.Group)
	}
	if f.Season != "" {
		where += " AND season = ?"
		args = append(args, f.Season)
	}
	if f.Warehouse != "" {
		where += " AND warehouse = ?"
		args = append(args, f.Warehouse)
	}
	if f.CreatedFrom != nil {
		where += " AND created_at >= ?"
		args = append(args, *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		where += " AND created_at <= ?"
		args = append(args, *f.CreatedTo)
	}
	return where, args
}

func (a *SQLAdapter) ListTires(ctx context.Context, scope domain.Scope, f domain.TireFilter) ([]domain.TireRecord, error) {
	where, args := tireWhere(scope, f)
	rows, err := a.query(ctx, a.db, `SELECT `+tireColumns+` FROM tire_records WHERE is_removed = FALSE`+where+`
		ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, classify(err, "list tire records")
	}
	defer rows.Close()

	var out []domain.TireRecord
	for rows.Next() {
		t, err := scanTire(rows)
		if err != nil {
			return nil, classify(err, "scan tire record")
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (a *SQLAdapter) RemoveTire(ctx context.Context, id int64) error {
	res, err := a.exec(ctx, a.db, `UPDATE tire_records SET is_removed = TRUE, updated_at = ? WHERE id = ? AND is_removed = FALSE`, a.now(), id)
	return expectOne(res, classify(err, "remove tire record"), notFound("tire record", id))
}
