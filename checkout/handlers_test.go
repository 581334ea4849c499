package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"storefront/bill"
	"storefront/cart"
	"storefront/globals"
	"storefront/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	router  *httprouter.Router
	carts   *cart.MemoryStore
	backend *fakeBackend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fb := newFakeBackend()
	carts := cart.NewMemoryStore()
	require.NoError(t, carts.Save(context.Background(), testCart()))

	h := &Handler{
		Service: newTestService(fb, Options{}),
		Carts:   &cart.Handler{Store: carts, Logger: zap.NewNop()},
	}
	term := middleware.Terminal("")
	r := httprouter.New()
	r.POST("/api/carts/:cartid/checkout", term(h.Checkout))
	r.GET("/api/bills/:invoice/receipt", term(h.DownloadReceipt))
	r.GET("/api/bills/:invoice/qr", term(h.QRCode))
	r.GET("/api/scan", DecodeScan)
	return &fixture{router: r, carts: carts, backend: fb}
}

func (f *fixture) do(method, path, store, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(globals.StoreIDHeader, store)
	req.Header.Set(globals.OperatorIDHeader, "op-1")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type checkoutResponse struct {
	Bill struct {
		InvoiceNumber string `json:"invoiceNumber"`
		Total         string `json:"total"`
		Customer      *struct {
			Name string `json:"name"`
		} `json:"customer"`
	} `json:"bill"`
	ScanURI string `json:"scanUri"`
	QRCode  []byte `json:"qrCode"`
}

func TestCheckoutHandler(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/carts/c1/checkout", "store-1",
		`{"paymentMethod":"UPI","customer":{"name":" Asha ","phone":"555"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res checkoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "INV-0001", res.Bill.InvoiceNumber)
	assert.Equal(t, "240", res.Bill.Total)
	require.NotNil(t, res.Bill.Customer)
	assert.Equal(t, "Asha", res.Bill.Customer.Name)
	assert.NotEmpty(t, res.QRCode)
	assert.Equal(t, "op-1", f.backend.sales["INV-0001"].OperatorID)

	_, err := f.carts.Get(context.Background(), "c1")
	assert.ErrorIs(t, err, cart.ErrCartNotFound, "sold cart is discarded")

	rec = f.do(http.MethodGet, "/api/bills/INV-0001/receipt", "store-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Bill_INV-0001.pdf")

	rec = f.do(http.MethodGet, "/api/bills/INV-0001/qr", "store-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = f.do(http.MethodGet, "/api/bills/INV-0001/receipt", "store-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/scan?payload="+url.QueryEscape(res.ScanURI), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p bill.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "INV-0001", p.Inv)
	assert.Equal(t, "upi", p.Pm)
	assert.Equal(t, "Asha", p.Cst)
}

func TestCheckoutHandlerErrors(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		store string
		body  string
		want  int
	}{
		{"bad json", "/api/carts/c1/checkout", "store-1", `{`, http.StatusBadRequest},
		{"bad payment", "/api/carts/c1/checkout", "store-1", `{"paymentMethod":"cheque"}`, http.StatusBadRequest},
		{"unknown customer", "/api/carts/c1/checkout", "store-1", `{"paymentMethod":"cash","customerId":"nobody"}`, http.StatusBadRequest},
		{"unknown cart", "/api/carts/zzz/checkout", "store-1", `{"paymentMethod":"cash"}`, http.StatusNotFound},
		{"other store", "/api/carts/c1/checkout", "store-2", `{"paymentMethod":"cash"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(http.MethodPost, tt.path, tt.store, tt.body)
			assert.Equal(t, tt.want, rec.Code)

			_, err := f.carts.Get(context.Background(), "c1")
			assert.NoError(t, err, "cart survives a failed checkout")
		})
	}
}

func TestDecodeScanRejects(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/scan", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/scan?payload=%21%21", "", "").Code)
}
