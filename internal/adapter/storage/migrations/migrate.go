// Package migrations embeds the schema for both supported databases and
// applies it with golang-migrate.
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/mestakip/internal/adapter/storage"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

// Source returns the migration files for dialect.
func Source(dialect storage.Dialect) (source.Driver, error) {
	switch dialect {
	case storage.Postgres, storage.MySQL:
		return iofs.New(files, string(dialect))
	}
	return nil, fmt.Errorf("no migrations for dialect %q", dialect)
}

// Status is the schema version after a run.
type Status struct {
	Version uint
	Dirty   bool
	Applied bool // false when the schema was already current
}

// Up applies every pending migration. It opens its own connection because
// golang-migrate closes the database when it is done.
func Up(ctx context.Context, databaseURL string, log *logrus.Logger) (Status, error) {
	m, err := newMigrate(ctx, databaseURL, log)
	if err != nil {
		return Status{}, err
	}
	defer closeMigrate(m, log)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-stop:
		}
	}()

	st := Status{Applied: true}
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return st, fmt.Errorf("apply migrations: %w", err)
		}
		st.Applied = false
	}

	st.Version, st.Dirty, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return st, fmt.Errorf("read schema version: %w", err)
	}
	if st.Dirty {
		return st, fmt.Errorf("schema version %d is dirty, fix it by hand and force the version", st.Version)
	}
	log.WithFields(logrus.Fields{
		"version": st.Version,
		"dirty":   st.Dirty,
		"applied": st.Applied,
	}).Info("Database schema is up to date")
	return st, nil
}

// Version reports the current schema version without changing anything.
func Version(ctx context.Context, databaseURL string, log *logrus.Logger) (Status, error) {
	m, err := newMigrate(ctx, databaseURL, log)
	if err != nil {
		return Status{}, err
	}
	defer closeMigrate(m, log)

	var st Status
	st.Version, st.Dirty, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return st, fmt.Errorf("read schema version: %w", err)
	}
	return st, nil
}

// Down rolls back steps migrations.
func Down(ctx context.Context, databaseURL string, steps int, log *logrus.Logger) error {
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	m, err := newMigrate(ctx, databaseURL, log)
	if err != nil {
		return err
	}
	defer closeMigrate(m, log)

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("roll back migrations: %w", err)
	}
	return nil
}

func newMigrate(ctx context.Context, databaseURL string, log *logrus.Logger) (*migrate.Migrate, error) {
	db, dialect, err := storage.Open(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	var driver database.Driver
	switch dialect {
	case storage.Postgres:
		driver, err = migratepg.WithInstance(db, &migratepg.Config{})
	case storage.MySQL:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	src, err := Source(dialect)
	if err != nil {
		_ = driver.Close()
		return nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	m.Log = migrateLogger{log}
	return m, nil
}

func closeMigrate(m *migrate.Migrate, log *logrus.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.WithError(srcErr).Warn("Failed to close migration source")
	}
	if dbErr != nil {
		log.WithError(dbErr).Warn("Failed to close migration database")
	}
}

// migrateLogger routes golang-migrate output through logrus at debug level.
type migrateLogger struct {
	log *logrus.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debugf(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return l.log.IsLevelEnabled(logrus.DebugLevel)
}
