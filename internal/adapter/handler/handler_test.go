package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/core/service"
)

type fakeTokens struct{}

func (fakeTokens) Issue(u domain.User) (string, time.Time, error) {
	return "token-" + u.Username, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (fakeTokens) Verify(token string) (int64, error) {
	switch token {
	case "token-admin":
		return 1, nil
	case "token-clerk":
		return 2, nil
	case "token-gone":
		return 3, nil
	}
	return 0, errors.New("bad token")
}

var (
	adminUser = domain.User{ID: 1, Username: "admin", IsActive: true, Role: domain.RoleAdmin, Status: domain.ProfileActive}
	clerkUser = domain.User{ID: 2, Username: "clerk", IsActive: true, Role: domain.RoleOperative, Status: domain.ProfileActive}
	goneUser  = domain.User{ID: 3, Username: "gone", IsActive: false, Role: domain.RoleOperative}
)

type fakeAccounts struct {
	AccountUseCase
}

func (fakeAccounts) Authenticate(_ context.Context, username, password string) (*domain.User, error) {
	if username == "admin" && password == "secret" {
		u := adminUser
		return &u, nil
	}
	return nil, service.ErrInvalidCredentials
}

func (fakeAccounts) GetUser(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range []domain.User{adminUser, clerkUser, goneUser} {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeSales struct {
	SaleUseCase
	err error
}

func (f fakeSales) Checkout(_ context.Context, actor domain.User, req service.CheckoutRequest) (*domain.Sale, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Sale{ID: "sale-1", RequestID: req.RequestID, UserID: &actor.ID, Status: domain.SaleStatusPending}, nil
}

type fakeCatalog struct {
	CatalogUseCase
	err error
}

func (f fakeCatalog) GetItem(_ context.Context, _ domain.User, slug string) (*domain.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Item{ID: 7, Slug: slug, Name: "Lastik"}, nil
}

func (f fakeCatalog) GetItemByID(_ context.Context, _ domain.User, id int64) (*domain.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Item{ID: id, Slug: "lastik", Name: "Lastik"}, nil
}

func (f fakeCatalog) SearchItems(_ context.Context, _ domain.User, term string) ([]domain.ItemSearchResult, error) {
	return []domain.ItemSearchResult{{ID: 7, Text: term, Name: term}}, nil
}

type fakeTires struct {
	TireUseCase
	records []domain.TireRecord
	query   service.TireQuery
}

func (f *fakeTires) ListActive(_ context.Context, _ domain.User, q service.TireQuery) ([]domain.TireRecord, error) {
	f.query = q
	return f.records, nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestHandler(uc UseCases, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if uc.Accounts == nil {
		uc.Accounts = fakeAccounts{}
	}
	if opts.Tokens == nil {
		opts.Tokens = fakeTokens{}
	}
	if opts.LoginRate == 0 {
		opts.LoginRate = 100
		opts.LoginBurst = 100
	}
	return NewHTTPHandler(uc, opts, quietLogger()).Router()
}

func do(t *testing.T, router http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestLogin(t *testing.T) {
	router := newTestHandler(UseCases{}, Options{})

	w, resp := do(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "admin", Password: "secret"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Success", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "token-admin", data["token"])

	w, resp = do(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "admin", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Fail", resp.Status)
	assert.Equal(t, "invalid username or password", resp.Message)

	w, _ = do(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	router := newTestHandler(UseCases{}, Options{LoginRate: 0.001, LoginBurst: 2})

	for i := 0; i < 2; i++ {
		w, _ := do(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "admin", Password: "nope"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, resp := do(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "admin", Password: "secret"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Fail", resp.Status)
}

func TestAuthenticate(t *testing.T) {
	router := newTestHandler(UseCases{}, Options{})

	w, _ := do(t, router, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/me", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/me", "token-gone", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "inactive users are rejected even with a valid token")

	w, resp := do(t, router, http.MethodGet, "/api/me", "token-clerk", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "clerk", resp.Data.(map[string]any)["username"])
}

func TestCreateUser_RequiresAdmin(t *testing.T) {
	router := newTestHandler(UseCases{}, Options{})

	w, _ := do(t, router, http.MethodPost, "/api/users", "token-clerk", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCheckout(t *testing.T) {
	req := service.CheckoutRequest{
		RequestID:  "req-1",
		CustomerID: 1,
		Lines:      []service.CheckoutLine{{ItemID: 7, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(100),
	}

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "accepted", code: http.StatusAccepted, message: "sale accepted"},
		{name: "sold out", err: service.ErrInsufficientStock, code: http.StatusGone, message: "sold out"},
		{name: "duplicate", err: service.ErrDuplicateRequest, code: http.StatusConflict, message: "duplicate request"},
		{name: "shutting down", err: service.ErrShuttingDown, code: http.StatusServiceUnavailable, message: "service is shutting down"},
		{name: "invalid", err: errors.Join(domain.ErrInvalidInput, errors.New("customer is required")), code: http.StatusBadRequest},
		{name: "unexpected", err: errors.New("redis exploded"), code: http.StatusInternalServerError, message: "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestHandler(UseCases{Sales: fakeSales{err: tt.err}}, Options{})
			w, resp := do(t, router, http.MethodPost, "/api/sales", "token-clerk", req)
			assert.Equal(t, tt.code, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Message)
			}
		})
	}
}

func TestFail_DebugExposesInternalError(t *testing.T) {
	router := newTestHandler(UseCases{Sales: fakeSales{err: errors.New("redis exploded")}}, Options{Debug: true})

	w, resp := do(t, router, http.MethodPost, "/api/sales", "token-clerk", service.CheckoutRequest{RequestID: "r"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error: redis exploded", resp.Message)
}

func TestGetItem_NotFound(t *testing.T) {
	notFound := errors.Join(domain.ErrNotFound, errors.New("item \"missing\""))
	router := newTestHandler(UseCases{Catalog: fakeCatalog{err: notFound}}, Options{})

	w, resp := do(t, router, http.MethodGet, "/api/items/missing", "token-clerk", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Fail", resp.Status)
}

func TestListActiveTires_CSVExport(t *testing.T) {
	tires := &fakeTires{records: []domain.TireRecord{{
		Account:    "ACME",
		Product:    "205/55 R16",
		Brand:      "Michelin",
		Group:      domain.GroupPassenger,
		Season:     domain.SeasonSummer,
		Quantity:   4,
		UnitPrice:  decimal.NewFromInt(1000),
		TotalPrice: decimal.NewFromInt(4000),
		Status:     domain.TireInTransit,
		Warehouse:  domain.WarehouseStock,
		CreatedAt:  time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}}}
	router := newTestHandler(UseCases{Tires: tires}, Options{})

	w, _ := do(t, router, http.MethodGet, "/api/tires?format=csv&brand=mich&tarih_filtresi=3_ay", "token-clerk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "lastik_envanteri.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Cari,Ürün,Marka"))
	assert.Contains(t, lines[1], "ACME,205/55 R16,Michelin")
	assert.Contains(t, lines[1], "1000.00,4000.00,Yolda")

	assert.Equal(t, "mich", tires.query.Brand)
	assert.Equal(t, domain.WindowLast3Months, tires.query.Window)
}

func TestHealthCheck(t *testing.T) {
	router := newTestHandler(UseCases{}, Options{Health: map[string]Pinger{"database": pinger{}, "cache": pinger{}}})
	w, resp := do(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Success", resp.Status)

	router = newTestHandler(UseCases{}, Options{Health: map[string]Pinger{"database": pinger{err: errors.New("down")}}})
	w, resp = do(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", resp.Data.(map[string]any)["database"])
}
