package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/tmaseko/veldmarket-backend/internal/cart"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
)

type fakeCartClient struct {
	values map[string]string
}

func newFakeCartClient() *fakeCartClient {
	return &fakeCartClient{values: map[string]string{}}
}

func (f *fakeCartClient) Set(_ context.Context, key string, value any, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	default:
		f.values[key] = fmt.Sprint(v)
	}
	return nil
}

func (f *fakeCartClient) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeCartClient) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeCartClient) CartKey(token string) string {
	return "cart:" + token
}

func newTestCartStore(t *testing.T) *cart.Store {
	t.Helper()
	store, err := cart.NewStore(cart.StoreParams{Client: newFakeCartClient(), TTL: time.Hour})
	if err != nil {
		t.Fatalf("new cart store: %v", err)
	}
	return store
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

type cartEnvelope struct {
	Data struct {
		Cart   cartView `json:"cart"`
		Notice string   `json:"notice"`
	} `json:"data"`
}

type cartStateEnvelope struct {
	Data cartView `json:"data"`
}

func postCartAdd(t *testing.T, handler http.HandlerFunc, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(CartSessionHeader, session)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCartAddMintsSessionAndReturnsNotice(t *testing.T) {
	store := newTestCartStore(t)
	handler := CartAdd(store, testLogger())

	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","title":"Karoo Lamb Throw","unit_price_cents":45000,"color":"rust","qty":2}`
	rec := postCartAdd(t, handler, "", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(CartSessionHeader) == "" {
		t.Fatal("expected minted session token header")
	}

	var envelope cartEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Notice != "Karoo Lamb Throw added to your cart" {
		t.Fatalf("unexpected notice %q", envelope.Data.Notice)
	}
	if got := envelope.Data.Cart.TotalItems; got != 2 {
		t.Fatalf("unexpected total items %d", got)
	}
	if got := envelope.Data.Cart.TotalCents; got != 90000 {
		t.Fatalf("unexpected total cents %d", got)
	}
}

func TestCartAddMergesSameProductAndColor(t *testing.T) {
	store := newTestCartStore(t)
	handler := CartAdd(store, testLogger())

	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","title":"Protea Print","unit_price_cents":12000,"color":"green"}`

	first := postCartAdd(t, handler, "session-merge", body)
	if first.Code != http.StatusOK {
		t.Fatalf("first add failed: %d", first.Code)
	}
	second := postCartAdd(t, handler, "session-merge", body)
	if second.Code != http.StatusOK {
		t.Fatalf("second add failed: %d", second.Code)
	}

	var envelope cartEnvelope
	if err := json.Unmarshal(second.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := len(envelope.Data.Cart.Items); got != 1 {
		t.Fatalf("expected merged line, got %d items", got)
	}
	if got := envelope.Data.Cart.Items[0].Qty; got != 2 {
		t.Fatalf("expected merged qty 2, got %d", got)
	}
}

func TestCartAddKeepsColorVariantsSeparate(t *testing.T) {
	store := newTestCartStore(t)
	handler := CartAdd(store, testLogger())

	productID := uuid.New()
	green := `{"product_id":"` + productID.String() + `","title":"Protea Print","unit_price_cents":12000,"color":"green"}`
	rust := `{"product_id":"` + productID.String() + `","title":"Protea Print","unit_price_cents":12000,"color":"rust"}`

	postCartAdd(t, handler, "session-variants", green)
	rec := postCartAdd(t, handler, "session-variants", rust)

	var envelope cartEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := len(envelope.Data.Cart.Items); got != 2 {
		t.Fatalf("expected two colour lines, got %d", got)
	}
}

func TestCartAddRejectsMissingProduct(t *testing.T) {
	store := newTestCartStore(t)
	handler := CartAdd(store, testLogger())

	rec := postCartAdd(t, handler, "session-invalid", `{"title":"No Product"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCartUpdateItemZeroQtyRemovesLine(t *testing.T) {
	store := newTestCartStore(t)
	productID := uuid.New()

	add := CartAdd(store, testLogger())
	body := `{"product_id":"` + productID.String() + `","title":"Veld Candle","unit_price_cents":8000}`
	postCartAdd(t, add, "session-update", body)

	update := CartUpdateItem(store, testLogger())
	req := httptest.NewRequest(http.MethodPatch, "/api/cart/items", strings.NewReader(`{"product_id":"`+productID.String()+`","qty":0}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(CartSessionHeader, "session-update")
	rec := httptest.NewRecorder()
	update.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var envelope cartStateEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := len(envelope.Data.Items); got != 0 {
		t.Fatalf("expected empty cart, got %d items", got)
	}
}

func TestCartClearKeepsDrawerOpen(t *testing.T) {
	store := newTestCartStore(t)
	productID := uuid.New()

	add := CartAdd(store, testLogger())
	postCartAdd(t, add, "session-clear", `{"product_id":"`+productID.String()+`","title":"Rooibos Gift Box","unit_price_cents":25000}`)

	toggle := CartToggle(store, testLogger())
	req := httptest.NewRequest(http.MethodPost, "/api/cart/toggle", nil)
	req.Header.Set(CartSessionHeader, "session-clear")
	toggle.ServeHTTP(httptest.NewRecorder(), req)

	clear := CartClear(store, testLogger())
	req = httptest.NewRequest(http.MethodDelete, "/api/cart", nil)
	req.Header.Set(CartSessionHeader, "session-clear")
	rec := httptest.NewRecorder()
	clear.ServeHTTP(rec, req)

	var envelope cartStateEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := len(envelope.Data.Items); got != 0 {
		t.Fatalf("expected empty cart, got %d items", got)
	}
	if !envelope.Data.Open {
		t.Fatal("expected drawer flag to survive clear")
	}
}

func TestCartFetchReturnsEmptyCartForNewSession(t *testing.T) {
	store := newTestCartStore(t)
	handler := CartFetch(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var envelope cartStateEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Items == nil || len(envelope.Data.Items) != 0 {
		t.Fatalf("expected empty items slice, got %#v", envelope.Data.Items)
	}
}
