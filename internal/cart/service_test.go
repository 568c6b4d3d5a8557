// AngelaMos | 2026
// service_test.go

package cart

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/carterperez-dev/agriconnect/internal/advisory"
	"github.com/carterperez-dev/agriconnect/internal/config"
	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/middleware"
	"github.com/carterperez-dev/agriconnect/internal/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

const jane = "jane@x.com"

var (
	mandiA = advisory.MarketInfo{ID: "m-1", Name: "Mandi A", City: "Nashik", State: "Maharashtra"}
	mandiB = advisory.MarketInfo{ID: "m-2", Name: "Mandi B", City: "Pune", State: "Maharashtra"}
	onion  = advisory.CropPrice{Name: "Onion", Price: 24.5, Unit: advisory.PriceUnitKg}
	tomato = advisory.CropPrice{Name: "Tomato", Price: 30, Unit: advisory.PriceUnitKg}
)

func newTestService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := record.NewStore(record.NewMemoryBackend(), "agriconnect", logger)
	return NewService(store, config.PaymentConfig{
		Payee:     "dummy-upi@pay",
		PayeeName: "AgriConnect",
	}, logger)
}

func TestAddSameLineSumsQuantities(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, jane, mandiA, onion, 3)
	require.NoError(t, err)
	cart, err := svc.Add(ctx, jane, mandiA, onion, 4)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)
	assert.InDelta(t, 7*24.5, cart.Total, 1e-9)

	stored := svc.Get(ctx, jane)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 7, stored.Items[0].Quantity)
}

func TestAddDistinctLines(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, jane, mandiA, onion, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, jane, mandiB, onion, 1)
	require.NoError(t, err)
	cart, err := svc.Add(ctx, jane, mandiA, tomato, 5)
	require.NoError(t, err)

	require.Len(t, cart.Items, 3)
	assert.InDelta(t, 2*24.5+24.5+5*30, cart.Total, 1e-9)
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService()

	for _, q := range []int{0, -3} {
		_, err := svc.Add(context.Background(), jane, mandiA, onion, q)
		require.ErrorIs(t, err, ErrInvalidQuantity)
		require.ErrorIs(t, err, core.ErrInvalidInput)
	}

	assert.Empty(t, svc.Get(context.Background(), jane).Items)
}

func TestRemove(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, jane, mandiA, onion, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, jane, mandiA, tomato, 1)
	require.NoError(t, err)

	cart := svc.Remove(ctx, jane, "m-1", "Onion")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Tomato", cart.Items[0].Crop.Name)

	cart = svc.Remove(ctx, jane, "m-9", "Onion")
	assert.Len(t, cart.Items, 1)
}

func TestLinesKeyOnMarketAndCropSeparately(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	rice := advisory.CropPrice{Name: "Rice", Price: 10, Unit: advisory.PriceUnitKg}
	oddRice := advisory.CropPrice{Name: "1-Rice", Price: 99, Unit: advisory.PriceUnitKg}

	_, err := svc.Add(ctx, jane, advisory.MarketInfo{ID: "m-1"}, rice, 3)
	require.NoError(t, err)
	cart, err := svc.Add(ctx, jane, advisory.MarketInfo{ID: "m"}, oddRice, 4)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 4, cart.Items[1].Quantity)
	assert.InDelta(t, 3*10+4*99, cart.Total, 1e-9)

	cart = svc.Remove(ctx, jane, "m", "1-Rice")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "m-1", cart.Items[0].Market.ID)
	assert.Equal(t, "Rice", cart.Items[0].Crop.Name)
}

func TestPaymentURLEscapesPayeeValues(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(record.NewStore(record.NewMemoryBackend(), "agriconnect", logger),
		config.PaymentConfig{Payee: "agri&co@upi", PayeeName: "Agri & Sons=Co+"}, logger)

	raw := svc.PaymentURL(12.5)
	assert.True(t, strings.HasSuffix(raw, "&am=12.50&cu=INR&tn=B2B%20Order"), raw)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Len(t, q, 5)
	assert.Equal(t, "agri&co@upi", q.Get("pa"))
	assert.Equal(t, "Agri & Sons=Co+", q.Get("pn"))
	assert.Equal(t, "12.50", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
	assert.Equal(t, "B2B Order", q.Get("tn"))
}

func TestCartsAreScopedPerUser(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, jane, mandiA, onion, 2)
	require.NoError(t, err)

	assert.Empty(t, svc.Get(ctx, "john@x.com").Items)
	assert.Len(t, svc.Get(ctx, "JANE@X.COM").Items, 1)
}

func TestCheckout(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		wantStatus string
		wantURL    string
	}{
		{
			name:       "gpay",
			method:     MethodGPay,
			wantStatus: StatusPaymentPending,
			wantURL:    "https://pay.google.com/gp/v/pay?pa=dummy-upi%40pay&pn=AgriConnect&am=73.50&cu=INR&tn=B2B%20Order",
		},
		{
			name:       "cash on delivery",
			method:     MethodCashOnDelivery,
			wantStatus: StatusBooked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			ctx := context.Background()

			_, err := svc.Add(ctx, jane, mandiA, onion, 3)
			require.NoError(t, err)

			order, err := svc.Checkout(ctx, jane, tt.method)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, order.Status)
			assert.Equal(t, tt.wantURL, order.PaymentURL)
			assert.InDelta(t, 73.5, order.Total, 1e-9)
			assert.Len(t, order.Items, 1)
			assert.NotEmpty(t, order.ID)

			assert.Empty(t, svc.Get(ctx, jane).Items, "checkout clears the cart")
		})
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc := newTestService()

	_, err := svc.Checkout(context.Background(), jane, MethodCashOnDelivery)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutUnknownMethodKeepsCart(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, jane, mandiA, onion, 1)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, jane, "barter")
	require.ErrorIs(t, err, ErrUnknownMethod)
	assert.Len(t, svc.Get(ctx, jane).Items, 1)
}

func withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithSessionUser(r.Context(), &middleware.SessionUser{
			ID: "u1", Name: "Jane", Email: jane,
		}, "token")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TestHandlerFlow(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(newTestService()).RegisterRoutes(r, withUser)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	add := `{"market":{"id":"m-1","name":"Mandi A","crops":[]},"crop":{"name":"Onion","price":24.5},"quantity":3}`
	require.Equal(t, http.StatusOK, send(http.MethodPost, "/cart/items", add).Code)
	require.Equal(t, http.StatusOK, send(http.MethodPost, "/cart/items",
		strings.Replace(add, `"quantity":3`, `"quantity":4`, 1)).Code)

	rec := send(http.MethodPost, "/cart/items", strings.Replace(add, `"quantity":3`, `"quantity":0`, 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Data Cart `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Data.Items, 1)
	assert.Equal(t, 7, got.Data.Items[0].Quantity)
	assert.Equal(t, advisory.PriceUnitKg, got.Data.Items[0].Crop.Unit)

	rec = send(http.MethodPost, "/cart/checkout", `{"method":"bitcoin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(http.MethodPost, "/cart/checkout", `{"method":"cod"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"booked"`)

	rec = send(http.MethodPost, "/cart/checkout", `{"method":"cod"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_CART")
}
