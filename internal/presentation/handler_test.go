package presentation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ralet11/cocina-orders/internal/application"
	"github.com/Ralet11/cocina-orders/internal/domain"
	"github.com/Ralet11/cocina-orders/internal/payment"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubGateway struct{}

func (stubGateway) CreateIntent(context.Context, int64) (domain.PaymentIntent, error) {
	return domain.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_x"}, nil
}

type stubBackend struct {
	order *domain.Order
}

func (b *stubBackend) Submit(_ context.Context, sub domain.OrderSubmission) (*domain.Order, []domain.CartItem, error) {
	return b.order, sub.Items, nil
}

func (b *stubBackend) Fetch(context.Context, int64) (*domain.Order, error) {
	return b.order, nil
}

type testEnv struct {
	router *chi.Mux
	cart   *application.CartStore
	orders *application.OrderStore
	sheet  *payment.SheetBridge
}

func newTestEnv() *testEnv {
	cart := application.NewCartStore()
	orders := application.NewOrderStore(nil)
	addresses := application.NewAddressBook()
	sheet := payment.NewSheetBridge()
	backend := &stubBackend{order: &domain.Order{ID: 42, UserID: "u1", Status: domain.StatusPending}}
	coord := application.NewCoordinator(cart, orders, addresses, stubGateway{}, sheet, backend)

	h := NewHandler(cart, orders, addresses, coord, sheet)
	r := chi.NewRouter()
	h.Register(r, testSecret)
	return &testEnv{router: r, cart: cart, orders: orders, sheet: sheet}
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (env *testEnv) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	} else {
		rd = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet, "/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/cart", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv()
	token := signToken(t, "u1")

	w := env.do(t, http.MethodPost, "/cart/items", token,
		`{"product_id":1,"name":"burger","unit_price":8.5,"quantity":2}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var added domain.CartItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))
	require.NotEmpty(t, added.ID)

	w = env.do(t, http.MethodGet, "/cart", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var cart struct {
		Items    []domain.CartItem `json:"items"`
		Subtotal float64           `json:"subtotal"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Len(t, cart.Items, 1)
	assert.InDelta(t, 17.0, cart.Subtotal, 1e-9)

	w = env.do(t, http.MethodPatch, "/cart/items/"+added.ID+"/quantity", token, `{"quantity":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.InDelta(t, 25.5, cart.Subtotal, 1e-9)

	w = env.do(t, http.MethodDelete, "/cart/items/"+added.ID, token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, env.cart.Snapshot("u1"))
}

func TestCartIsPerUser(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/cart/items", signToken(t, "u1"),
		`{"product_id":1,"name":"burger","unit_price":8.5,"quantity":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/cart", signToken(t, "u2"), "")
	require.Equal(t, http.StatusOK, w.Code)
	var cart struct {
		Items []domain.CartItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Empty(t, cart.Items)
}

func TestCheckoutWithoutAddress(t *testing.T) {
	env := newTestEnv()
	token := signToken(t, "u1")

	w := env.do(t, http.MethodPost, "/cart/items", token,
		`{"product_id":1,"name":"burger","unit_price":8.5,"quantity":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/checkout", token, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "address_missing", resp["code"])
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv()
	token := signToken(t, "u1")

	w := env.do(t, http.MethodPut, "/address", token, `{"street":"Tverskaya, 1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/checkout", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentOutcomeValidation(t *testing.T) {
	env := newTestEnv()
	token := signToken(t, "u1")

	w := env.do(t, http.MethodPost, "/payment/outcome", token,
		`{"intent_id":"pi_1","outcome":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// nothing is parked on the intent
	w = env.do(t, http.MethodPost, "/payment/outcome", token,
		`{"intent_id":"pi_1","outcome":"confirmed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReturnUnknownRoute(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet, "/return/unknown-path?x=1", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestReturnUnparksCheckoutAndNavigates(t *testing.T) {
	env := newTestEnv()

	got := make(chan domain.PaymentOutcome, 1)
	go func() {
		outcome, _ := env.sheet.Present(context.Background(), domain.PaymentIntent{ID: "pi_1"})
		got <- outcome
	}()
	var w *httptest.ResponseRecorder
	require.Eventually(t, func() bool {
		w = env.do(t, http.MethodGet, "/return/payment-failure?intentId=pi_1", "", "")
		select {
		case <-got:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, w.Code)
	var nav struct {
		Screen string `json:"screen"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nav))
	assert.Equal(t, "checkout", nav.Screen)
}

func TestGetOrderHidesOtherUsers(t *testing.T) {
	env := newTestEnv()
	env.orders.CommitDraftAsOrder(context.Background(), "u1", &domain.Order{ID: 42}, nil)

	w := env.do(t, http.MethodGet, "/orders/42", signToken(t, "u2"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/orders/42", signToken(t, "u1"), "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Progress struct {
			DisplayStatus string `json:"display_status"`
		} `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Order received", resp.Progress.DisplayStatus)
}

func TestGetOrderDoesNotAdoptForeignOrders(t *testing.T) {
	env := newTestEnv()

	// the backend knows order 42 as u1's; u2 probing the id gets a 404
	// and the order is not pulled into the store
	w := env.do(t, http.MethodGet, "/orders/42", signToken(t, "u2"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Nil(t, env.orders.FindById(42))
}

func TestHealth(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
