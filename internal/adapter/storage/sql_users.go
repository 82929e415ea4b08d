package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rl1809/mestakip/internal/core/domain"
)

const userColumns = `id, username, email, first_name, last_name, password_hash,
	is_superuser, is_staff, is_active, role, status, telephone, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsSuperuser, &u.IsStaff, &u.IsActive, &u.Role, &u.Status, &u.Telephone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *SQLAdapter) CreateUser(ctx context.Context, u *domain.User) error {
	id, err := a.insert(ctx, a.db, `
		INSERT INTO users (username, email, first_name, last_name, password_hash,
			is_superuser, is_staff, is_active, role, status, telephone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.IsSuperuser, u.IsStaff, u.IsActive, u.Role, u.Status, u.Telephone, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return classify(err, "user "+u.Username)
	}
	u.ID = id
	return nil
}

func (a *SQLAdapter) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := a.exec(ctx, a.db, `
		UPDATE users SET email = ?, first_name = ?, last_name = ?, password_hash = ?,
			is_superuser = ?, is_staff = ?, is_active = ?, role = ?, status = ?, telephone = ?, updated_at = ?
		WHERE id = ?`,
		u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.IsSuperuser, u.IsStaff, u.IsActive, u.Role, u.Status, u.Telephone, u.UpdatedAt, u.ID,
	)
	return expectOne(res, classify(err, "user "+u.Username), notFound("user", u.ID))
}

func (a *SQLAdapter) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(a.queryRow(ctx, a.db, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	return u, classify(err, "query user")
}

func (a *SQLAdapter) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(a.queryRow(ctx, a.db, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", username)
	}
	return u, classify(err, "query user")
}

func (a *SQLAdapter) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := a.query(ctx, a.db, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, classify(err, "list users")
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, classify(err, "scan user")
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
