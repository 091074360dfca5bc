package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/tmaseko/veldmarket-backend/internal/auth"
	"github.com/tmaseko/veldmarket-backend/internal/cart"
	"github.com/tmaseko/veldmarket-backend/internal/checkout"
	"github.com/tmaseko/veldmarket-backend/internal/orders"
	"github.com/tmaseko/veldmarket-backend/internal/products"
	"github.com/tmaseko/veldmarket-backend/internal/tenders"
	"github.com/tmaseko/veldmarket-backend/internal/wishlist"
	pkgAuth "github.com/tmaseko/veldmarket-backend/pkg/auth"
	"github.com/tmaseko/veldmarket-backend/pkg/auth/session"
	"github.com/tmaseko/veldmarket-backend/pkg/config"
	"github.com/tmaseko/veldmarket-backend/pkg/enums"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
	"github.com/tmaseko/veldmarket-backend/pkg/payfast"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "veldmarket", ExpirationMinutes: 30},
		Tenders: config.TendersConfig{
			BaseURL:        "https://ocds-api.etenders.gov.za/api",
			FetchTimeout:   time.Second,
			DateWindowDays: 90,
			UpstreamPage:   50,
		},
		Proxy: config.ProxyConfig{FetchTimeout: time.Second, PDFMaxBytes: 1 << 20},
		Cart:  config.CartConfig{SessionTTL: time.Hour},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cartStore, err := cart.NewStore(cart.StoreParams{Client: newFakeCartClient(), TTL: time.Hour})
	if err != nil {
		t.Fatalf("build cart store: %v", err)
	}

	return NewRouter(RouterParams{
		Config:          testConfig(),
		Logger:          logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
		DB:              stubPinger{},
		Redis:           nil,
		SessionManager:  stubSessionChecker{ok: true},
		AuthService:     stubAuthService{},
		ProductService:  stubProductService{},
		CartStore:       cartStore,
		WishlistService: stubWishlistService{},
		CheckoutService: stubCheckoutService{},
		OrderService:    stubOrderService{},
		TenderService:   stubTenderService{},
		ITNProcessor:    stubITNProcessor{},
		ProxyClient:     &http.Client{Timeout: time.Second},
	})
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(
		testConfig().JWT,
		time.Now(),
		pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role, JTI: session.NewAccessID()},
	)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterPublicCatalog(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterTenderSearch(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tenders?q=road&province=gauteng", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterCartMintsSessionToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Cart-Session") == "" {
		t.Fatal("expected a minted cart session token")
	}
}

func TestRouterCartKeepsSessionToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("X-Cart-Session", "existing-session")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Cart-Session"); got != "existing-session" {
		t.Fatalf("expected session token echo, got %q", got)
	}
}

func TestRouterWishlistRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/wishlist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouterAdminRouteForbiddenForCustomer(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouterAdminRouteAllowsAdmin(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleAdmin))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterWebhookAcknowledgesMalformedPayload(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/public/webhooks/payfast", strings.NewReader("%%%"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 ack, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "OK") {
		t.Fatalf("expected plain OK ack, got %q", rec.Body.String())
	}
}

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{ ok bool }

func (s stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return s.ok, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "not under test")
}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubAuthService) Logout(context.Context, string) error { return nil }

type stubProductService struct{}

func (stubProductService) List(context.Context, products.ListQuery) (*products.ListPage, error) {
	return &products.ListPage{Items: []products.ProductDTO{}}, nil
}

func (stubProductService) GetDetail(context.Context, uuid.UUID) (*products.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubProductService) Create(context.Context, products.CreateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: uuid.New()}, nil
}

func (stubProductService) Update(context.Context, uuid.UUID, products.UpdateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (stubProductService) Delete(context.Context, uuid.UUID) error { return nil }

func (stubProductService) CreateCollection(context.Context, products.CreateCollectionInput) (*products.CollectionDTO, error) {
	return &products.CollectionDTO{}, nil
}

func (stubProductService) ListCollections(context.Context) ([]products.CollectionDTO, error) {
	return nil, nil
}

func (stubProductService) DeleteCollection(context.Context, uuid.UUID) error { return nil }

type stubWishlistService struct{}

func (stubWishlistService) GetWishlistIDs(context.Context, uuid.UUID, string, int) (wishlist.IDsPage, error) {
	return wishlist.IDsPage{}, nil
}

func (stubWishlistService) AddItem(context.Context, uuid.UUID, uuid.UUID) error    { return nil }
func (stubWishlistService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubCheckoutService struct{}

func (stubCheckoutService) Execute(context.Context, uuid.UUID, string, orders.DeliveryDetails) (*checkout.Result, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
}

type stubOrderService struct{}

func (stubOrderService) GetOrder(context.Context, uuid.UUID, uuid.UUID) (*orders.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrderService) ListOrders(context.Context, uuid.UUID, string, int) (orders.ListPage, error) {
	return orders.ListPage{}, nil
}

func (stubOrderService) ListAllOrders(context.Context, string, int) (orders.ListPage, error) {
	return orders.ListPage{}, nil
}

func (stubOrderService) MarkPaid(context.Context, uuid.UUID, string) (*orders.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

type stubTenderService struct{}

func (stubTenderService) Search(context.Context, tenders.Input) (*tenders.Result, error) {
	return &tenders.Result{Releases: []tenders.Release{}, Page: 1, PageSize: 10}, nil
}

type stubITNProcessor struct{}

func (stubITNProcessor) Process(context.Context, *payfast.Notification) error { return nil }

type fakeCartClient struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeCartClient() *fakeCartClient {
	return &fakeCartClient{values: map[string]string{}}
}

func (f *fakeCartClient) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	return nil
}

func (f *fakeCartClient) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (f *fakeCartClient) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeCartClient) CartKey(sessionToken string) string {
	return "cart:" + sessionToken
}
