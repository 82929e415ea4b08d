package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/rl1809/mestakip/internal/core/domain"
)

// ErrOptimisticLock is returned when a conditional update matched no row:
// the version moved on or the stock is no longer there.
var ErrOptimisticLock = fmt.Errorf("%w: optimistic lock conflict", domain.ErrConflict)

type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// ParseDatabaseURL turns DATABASE_URL into a database/sql driver name and
// DSN. postgres:// and postgresql:// URLs go to lib/pq unchanged; mysql://
// URLs are rewritten into go-sql-driver DSN form.
func ParseDatabaseURL(raw string) (Dialect, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse database url: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return Postgres, raw, nil
	case "mysql":
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		if u.Port() == "" {
			cfg.Addr = u.Hostname() + ":3306"
		}
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.MultiStatements = true
		cfg.ClientFoundRows = true
		for k, v := range u.Query() {
			if cfg.Params == nil {
				cfg.Params = make(map[string]string)
			}
			cfg.Params[k] = v[0]
		}
		return MySQL, cfg.FormatDSN(), nil
	}
	return "", "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
}

// Open connects to DATABASE_URL with the pool settings used in production.
func Open(ctx context.Context, databaseURL string) (*sql.DB, Dialect, error) {
	dialect, dsn, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", dialect, err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}

// SQLAdapter implements every repository port on a single *sql.DB.
// Queries are written with ? placeholders and rebound for Postgres.
type SQLAdapter struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewSQLAdapter(db *sql.DB, dialect Dialect) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: dialect, now: time.Now}
}

func (a *SQLAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (a *SQLAdapter) rebind(query string) string {
	if a.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (a *SQLAdapter) exec(ctx context.Context, q queryer, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, a.rebind(query), args...)
}

func (a *SQLAdapter) query(ctx context.Context, q queryer, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, a.rebind(query), args...)
}

func (a *SQLAdapter) queryRow(ctx context.Context, q queryer, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, a.rebind(query), args...)
}

// insert runs an INSERT and returns the generated id.
func (a *SQLAdapter) insert(ctx context.Context, q queryer, query string, args ...any) (int64, error) {
	if a.dialect == Postgres {
		var id int64
		err := q.QueryRowContext(ctx, a.rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// inTx runs fn in a transaction, committing only when it returns nil.
func (a *SQLAdapter) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// expectOne maps "no row affected" to err.
func expectOne(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return notFound
	}
	return nil
}

// classify maps driver constraint errors onto domain errors.
func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s already exists", domain.ErrConflict, what)
		case "23503":
			return fmt.Errorf("%w: %s references a missing row", domain.ErrInvalidInput, what)
		case "23514":
			return fmt.Errorf("%w: %s violates %s", domain.ErrInvalidInput, what, pqErr.Constraint)
		}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return fmt.Errorf("%w: %s already exists", domain.ErrConflict, what)
		case 1451, 1452:
			return fmt.Errorf("%w: %s references a missing row", domain.ErrInvalidInput, what)
		case 3819:
			return fmt.Errorf("%w: %s violates a check constraint", domain.ErrInvalidInput, what)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

func notFound(what string, id any) error {
	return fmt.Errorf("%w: %s %v", domain.ErrNotFound, what, id)
}

// scopeClause restricts a query to the rows the scope may see.
func scopeClause(scope domain.Scope, column string) (string, []any) {
	if scope.All {
		return "", nil
	}
	return " AND " + column + " = ?", []any{scope.UserID}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
