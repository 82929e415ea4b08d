package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rl1809/mestakip/internal/metrics"
	"github.com/rl1809/mestakip/internal/port"
)

type UseCases struct {
	Accounts   AccountUseCase
	Catalog    CatalogUseCase
	Parties    PartyUseCase
	Deliveries DeliveryUseCase
	Sales      SaleUseCase
	Purchases  PurchaseUseCase
	Tires      TireUseCase
	Dashboard  DashboardUseCase
}

type Options struct {
	Tokens     port.TokenIssuer
	Debug      bool
	LoginRate  float64
	LoginBurst int
	Metrics    *metrics.Metrics
	// Health lists the dependencies /health pings, by name
	Health map[string]Pinger
}

type HTTPHandler struct {
	accounts   AccountUseCase
	catalog    CatalogUseCase
	parties    PartyUseCase
	deliveries DeliveryUseCase
	sales      SaleUseCase
	purchases  PurchaseUseCase
	tires      TireUseCase
	dashboard  DashboardUseCase

	tokens  port.TokenIssuer
	debug   bool
	logins  *limiterSet
	metrics *metrics.Metrics
	health  map[string]Pinger
	log     *logrus.Logger
}

func NewHTTPHandler(uc UseCases, opts Options, log *logrus.Logger) *HTTPHandler {
	if opts.LoginBurst < 1 {
		opts.LoginBurst = 1
	}
	return &HTTPHandler{
		accounts:   uc.Accounts,
		catalog:    uc.Catalog,
		parties:    uc.Parties,
		deliveries: uc.Deliveries,
		sales:      uc.Sales,
		purchases:  uc.Purchases,
		tires:      uc.Tires,
		dashboard:  uc.Dashboard,
		tokens:     opts.Tokens,
		debug:      opts.Debug,
		logins:     newLimiterSet(rate.Limit(opts.LoginRate), opts.LoginBurst),
		metrics:    opts.Metrics,
		health:     opts.Health,
		log:        log,
	}
}

// Router builds the gin engine with every route registered.
func (h *HTTPHandler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.log))
	if h.metrics != nil {
		router.Use(h.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	api.POST("/auth/login", h.rateLimit(h.logins), h.Login)

	private := api.Group("", h.authenticate())
	h.RegisterRoutes(private)
	return router
}

// RegisterRoutes mounts the authenticated API on router.
func (h *HTTPHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/me", h.Me)
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
	}

	h.registerCatalogRoutes(router)
	h.registerPartyRoutes(router)
	h.registerDeliveryRoutes(router)
	h.registerSaleRoutes(router)
	h.registerPurchaseRoutes(router)
	h.registerTireRoutes(router)
	router.GET("/dashboard", h.Dashboard)
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.health))
	status := http.StatusOK
	for name, p := range h.health {
		if err := p.Ping(ctx); err != nil {
			h.log.WithError(err).Warnf("Health check %s failed", name)
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	if status != http.StatusOK {
		c.JSON(status, Response{Status: "Fail", Message: "unhealthy", Data: checks})
		return
	}
	SuccessResponse(c, status, "ok", checks)
}
