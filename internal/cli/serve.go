package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/rl1809/mestakip/internal/adapter/handler"
	"github.com/rl1809/mestakip/internal/adapter/storage"
	"github.com/rl1809/mestakip/internal/auth"
	"github.com/rl1809/mestakip/internal/core/service"
	"github.com/rl1809/mestakip/internal/metrics"
	"github.com/rl1809/mestakip/internal/port"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers with the sale worker pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// openCache connects to REDIS_URL, or falls back to an in-process cache
// when it is unset. The returned func releases the connection.
func (a *app) openCache(ctx context.Context) (port.CacheRepository, handler.Pinger, func(), error) {
	if a.cfg.RedisURL == "" {
		a.log.Warn("REDIS_URL is not set, using the in-process stock cache")
		return storage.NewMemoryCache(), nil, func() {}, nil
	}

	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	opts.PoolSize = 100
	rdb := redis.NewClient(opts)
	cache := storage.NewRedisAdapter(rdb)
	if err := cache.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	a.log.Info("Connected to redis")
	return cache, cache, func() { _ = rdb.Close() }, nil
}

func (a *app) serve(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cache, cachePinger, closeCache, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	catalog := service.NewCatalogService(store, store, store, cache, log)
	synced, err := catalog.SyncStock(ctx)
	if err != nil {
		return fmt.Errorf("sync stock: %w", err)
	}
	log.Infof("Synchronised stock of %d items into the cache", synced)

	sales := service.NewSaleService(store, store, store, cache, cfg.QueueSize, log)
	uc := handler.UseCases{
		Accounts:   service.NewAccountService(store, log),
		Catalog:    catalog,
		Parties:    service.NewPartyService(store, store, log),
		Deliveries: service.NewDeliveryService(store, store, log),
		Sales:      sales,
		Purchases:  service.NewPurchaseService(store, store, store, cache, log),
		Tires:      service.NewTireService(store, cfg.Location(), log),
		Dashboard:  service.NewDashboardService(store, store, store, store),
	}

	m := metrics.New()
	m.WatchQueue(sales.QueueDepth)
	workers := service.RunSaleWorkers(cfg.Workers, sales.GetSaleQueue(), store, cache, log, m)

	tokens := auth.NewJWTManager(cfg.SecretKey, cfg.TokenTTL)
	health := map[string]handler.Pinger{"database": store}
	if cachePinger != nil {
		health["cache"] = cachePinger
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	httpHandler := handler.NewHTTPHandler(uc, handler.Options{
		Tokens:     tokens,
		Debug:      cfg.Debug,
		LoginRate:  cfg.LoginRate,
		LoginBurst: cfg.LoginBurst,
		Metrics:    m,
		Health:     health,
	}, log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           httpHandler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
	}

	errCh := make(chan error, 2)
	var grpcServer *grpc.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", cfg.GRPCPort)
		if err != nil {
			sales.Close()
			workers.Wait()
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcHandler := handler.NewGRPCHandler(uc, tokens, log)
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(grpcHandler.UnaryAuth()))
		grpcHandler.Register(grpcServer)
		go func() {
			log.Infof("gRPC server listening on %s", cfg.GRPCPort)
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	go func() {
		log.Infof("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err = <-errCh:
		log.WithError(err).Error("Server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.WithError(shutdownErr).Warn("HTTP server did not stop cleanly")
	}
	log.Info("HTTP server stopped")

	if grpcServer != nil {
		grpcServer.GracefulStop()
		log.Info("gRPC server stopped")
	}

	sales.Close()
	workers.Wait()
	log.Info("Sale workers stopped")
	return err
}
