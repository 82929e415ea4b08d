// Package cli is the mestakip command tree. The container entrypoint is
// `mestakip start`, which migrates, bootstraps the administrator and serves.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rl1809/mestakip/internal/adapter/storage"
	"github.com/rl1809/mestakip/internal/config"
	"github.com/rl1809/mestakip/internal/logger"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(cfg.Debug, cfg.LogLevel, os.Stdout)
	if cfg.DotenvLoaded {
		a.log.Debug("Loaded configuration from .env")
	}
	return nil
}

// openStore connects to DATABASE_URL. The returned func closes the pool.
func (a *app) openStore(ctx context.Context) (*storage.SQLAdapter, func(), error) {
	db, dialect, err := storage.Open(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	a.log.Infof("Connected to %s", dialect)
	return storage.NewSQLAdapter(db, dialect), func() { _ = db.Close() }, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "mestakip",
		Short:        "MESTakip inventory, sales and tire ledger service",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	cmd.AddCommand(
		migrateCmd(a),
		setupAdminCmd(a),
		createUserCmd(a),
		seedTiresCmd(a),
		serveCmd(a),
		startCmd(a),
	)
	return cmd
}
