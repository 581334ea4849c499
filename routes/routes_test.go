package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/cart"
	"storefront/checkout"
	"storefront/daterange"
	"storefront/globals"
	"storefront/ratelim"
	"storefront/reports"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoutesWrapper(t *testing.T) {
	carts := &cart.Handler{Store: cart.NewMemoryStore(), Logger: zap.NewNop()}
	router := httprouter.New()

	require.NotPanics(t, func() {
		RoutesWrapper(router, Deps{
			Carts:       carts,
			Checkout:    &checkout.Handler{Service: checkout.NewService(checkout.Options{}), Carts: carts},
			Reports:     &reports.Handler{Resolver: daterange.NewResolver(time.UTC), Logger: zap.NewNop()},
			RateLimiter: ratelim.NewRateLimiter(100, 100),
			Logger:      zap.NewNop(),
		})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/carts", nil)
	req.Header.Set(globals.StoreIDHeader, "store-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/daterange?filter=thisMonth", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scan", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
