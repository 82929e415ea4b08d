package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rl1809/mestakip/internal/core/domain"
)

func (a *SQLAdapter) CreateCategory(ctx context.Context, c *domain.Category) error {
	id, err := a.insert(ctx, a.db, `INSERT INTO categories (user_id, name, slug) VALUES (?, ?, ?)`,
		nullInt(c.UserID), c.Name, c.Slug)
	if err != nil {
		return classify(err, "category "+c.Name)
	}
	c.ID = id
	return nil
}

func (a *SQLAdapter) UpdateCategory(ctx context.Context, c *domain.Category) error {
	res, err := a.exec(ctx, a.db, `UPDATE categories SET name = ?, slug = ? WHERE id = ?`, c.Name, c.Slug, c.ID)
	return expectOne(res, classify(err, "category "+c.Name), notFound("category", c.ID))
}

func (a *SQLAdapter) DeleteCategory(ctx context.Context, id int64) error {
	res, err := a.exec(ctx, a.db, `DELETE FROM categories WHERE id = ?`, id)
	return expectOne(res, classify(err, "delete category"), notFound("category", id))
}

func (a *SQLAdapter) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	var owner sql.NullInt64
	err := a.queryRow(ctx, a.db, `
		SELECT c.id, c.user_id, c.name, c.slug, COUNT(i.id)
		FROM categories c LEFT JOIN items i ON i.category_id = c.id
		WHERE c.id = ?
		GROUP BY c.id, c.user_id, c.name, c.slug`, id,
	).Scan(&c.ID, &owner, &c.Name, &c.Slug, &c.ItemCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("category", id)
	}
	if err != nil {
		return nil, classify(err, "query category")
	}
	c.UserID = intPtr(owner)
	return &c, nil
}

func (a *SQLAdapter) ListCategories(ctx context.Context, scope domain.Scope) ([]domain.Category, error) {
	where, args := scopeClause(scope, "c.user_id")
	rows, err := a.query(ctx, a.db, `
		SELECT c.id, c.user_id, c.name, c.slug, COUNT(i.id)
		FROM categories c LEFT JOIN items i ON i.category_id = c.id
		WHERE 1 = 1`+where+`
		GROUP BY c.id, c.user_id, c.name, c.slug
		ORDER BY c.name`, args...)
	if err != nil {
		return nil, classify(err, "list categories")
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		var owner sql.NullInt64
		if err := rows.Scan(&c.ID, &owner, &c.Name, &c.Slug, &c.ItemCount); err != nil {
			return nil, classify(err, "scan category")
		}
		c.UserID = intPtr(owner)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (a *SQLAdapter) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	return a.exists(ctx, `SELECT 1 FROM categories WHERE slug = ?`, slug)
}

func (a *SQLAdapter) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := a.queryRow(ctx, a.db, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify(err, "exists")
	}
	return true, nil
}

const itemColumns = `i.id, i.user_id, i.slug, i.name, i.description, i.category_id, c.name,
	i.quantity, i.price, i.expiring_date, i.vendor_id, i.brand, i.item_group, i.season,
	i.currency, i.version, i.created_at, i.updated_at`

const itemFrom = ` FROM items i JOIN categories c ON c.id = i.category_id`

func scanItem(row interface{ Scan(...any) error }) (*domain.Item, error) {
	var it domain.Item
	var owner, vendor sql.NullInt64
	var expiring sql.NullTime
	err := row.Scan(&it.ID, &owner, &it.Slug, &it.Name, &it.Description, &it.CategoryID, &it.CategoryName,
		&it.Quantity, &it.Price, &expiring, &vendor, &it.Brand, &it.Group, &it.Season,
		&it.Currency, &it.Version, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.UserID = intPtr(owner)
	it.VendorID = intPtr(vendor)
	it.ExpiringDate = timePtr(expiring)
	return &it, nil
}

func (a *SQLAdapter) CreateItem(ctx context.Context, it *domain.Item) error {
	it.Version = 1
	id, err := a.insert(ctx, a.db, `
		INSERT INTO items (user_id, slug, name, description, category_id, quantity, price,
			expiring_date, vendor_id, brand, item_group, season, currency, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt(it.UserID), it.Slug, it.Name, it.Description, it.CategoryID, it.Quantity, it.Price,
		nullTime(it.ExpiringDate), nullInt(it.VendorID), it.Brand, it.Group, it.Season, it.Currency,
		it.Version, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return classify(err, "item "+it.Name)
	}
	it.ID = id
	return nil
}

func (a *SQLAdapter) GetItemByID(ctx context.Context, id int64) (*domain.Item, error) {
	it, err := scanItem(a.queryRow(ctx, a.db, `SELECT `+itemColumns+itemFrom+` WHERE i.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("item", id)
	}
	return it, classify(err, "query item")
}

func (a *SQLAdapter) GetItemBySlug(ctx context.Context, slug string) (*domain.Item, error) {
	it, err := scanItem(a.queryRow(ctx, a.db, `SELECT `+itemColumns+itemFrom+` WHERE i.slug = ?`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("item", slug)
	}
	return it, classify(err, "query item")
}

// UpdateItem writes the item if its version still matches and bumps the
// version on success.
func (a *SQLAdapter) UpdateItem(ctx context.Context, it *domain.Item) error {
	res, err := a.exec(ctx, a.db, `
		UPDATE items SET name = ?, description = ?, category_id = ?, quantity = ?, price = ?,
			expiring_date = ?, vendor_id = ?, brand = ?, item_group = ?, season = ?, currency = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		it.Name, it.Description, it.CategoryID, it.Quantity, it.Price,
		nullTime(it.ExpiringDate), nullInt(it.VendorID), it.Brand, it.Group, it.Season, it.Currency,
		it.UpdatedAt, it.ID, it.Version,
	)
	if err := expectOne(res, classify(err, "item "+it.Name), ErrOptimisticLock); err != nil {
		return err
	}
	it.Version++
	return nil
}

func (a *SQLAdapter) DeleteItem(ctx context.Context, id int64) error {
	res, err := a.exec(ctx, a.db, `DELETE FROM items WHERE id = ?`, id)
	return expectOne(res, classify(err, "delete item"), notFound("item", id))
}

func (a *SQLAdapter) ListItems(ctx context.Context, scope domain.Scope, f domain.ItemFilter) ([]domain.Item, error) {
	where, args := scopeClause(scope, "i.user_id")
	if f.CategoryID != 0 {
		where += " AND i.category_id = ?"
		args = append(args, f.CategoryID)
	}
	if f.Query != "" {
		where += " AND LOWER(i.name) LIKE ?"
		args = append(args, "%"+likeEscaper.Replace(lower(f.Query))+"%")
	}
	args = append(args, f.Limit, f.Offset)

	rows, err := a.query(ctx, a.db, `SELECT `+itemColumns+itemFrom+` WHERE 1 = 1`+where+`
		ORDER BY i.name, i.id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, classify(err, "list items")
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, classify(err, "scan item")
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (a *SQLAdapter) ItemSlugExists(ctx context.Context, slug string) (bool, error) {
	return a.exists(ctx, `SELECT 1 FROM items WHERE slug = ?`, slug)
}

func (a *SQLAdapter) ListStockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	rows, err := a.query(ctx, a.db, `SELECT id, quantity, version FROM items ORDER BY id`)
	if err != nil {
		return nil, classify(err, "list stock levels")
	}
	defer rows.Close()

	var out []domain.StockLevel
	for rows.Next() {
		var lvl domain.StockLevel
		if err := rows.Scan(&lvl.ItemID, &lvl.Quantity, &lvl.Version); err != nil {
			return nil, classify(err, "scan stock level")
		}
		out = append(out, lvl)
	}
	return out, rows.Err()
}

func (a *SQLAdapter) StockTotals(ctx context.Context, scope domain.Scope) (domain.StockTotals, error) {
	where, args := scopeClause(scope, "user_id")
	var t domain.StockTotals
	err := a.queryRow(ctx, a.db, `SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM items WHERE 1 = 1`+where, args...).
		Scan(&t.Items, &t.Quantity)
	return t, classify(err, "stock totals")
}
