package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/daterange"
	"storefront/globals"
	"storefront/middleware"
	"storefront/models"
	"storefront/rdx"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func f(v float64) *float64 { return &v }

var loc = time.FixedZone("IST", 5*3600+1800)

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, loc)
}

func sampleSales() []models.Sale {
	return []models.Sale{
		{
			InvoiceNumber: "INV-1", StoreID: "store-1", PaymentMethod: models.PaymentCash, CreatedAt: at(9, 10),
			Items: []models.SaleItem{
				{ProductID: "p1", Name: "Rice", Quantity: 4, UnitPrice: f(50), Discount: 10, Total: 190},
				{ProductID: "p2", Name: "Soap", Quantity: 2, Price: f(25), Total: 50},
			},
			Subtotal: 250, Discount: 10, Total: 240,
		},
		{
			InvoiceNumber: "INV-2", StoreID: "store-1", PaymentMethod: models.PaymentUPI, CreatedAt: at(10, 12),
			Items: []models.SaleItem{
				{ProductID: "p2", Name: "Soap", Quantity: 3, UnitPrice: f(25), Total: 75},
			},
			Subtotal: 75, Total: 75,
		},
		{
			InvoiceNumber: "INV-3", StoreID: "store-1", PaymentMethod: models.PaymentCash, CreatedAt: at(10, 18),
			Items: []models.SaleItem{
				{ProductID: "p3", Name: "Tea", Quantity: 1, UnitPrice: f(120), Total: 120},
			},
			Subtotal: 120, Total: 120,
		},
	}
}

func rangeOf(from, to int) daterange.Range {
	return daterange.Range{
		Start: time.Date(2024, time.March, from, 0, 0, 0, 0, loc),
		End:   time.Date(2024, time.March, to, 0, 0, 0, 0, loc),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarize(t *testing.T) {
	s := Summarize(rangeOf(9, 10), sampleSales(), 2)

	assert.Equal(t, "2024-03-09", s.Start)
	assert.Equal(t, "2024-03-10", s.End)
	assert.Equal(t, 3, s.Count)
	assert.True(t, s.Gross.Equal(dec("445")), s.Gross.String())
	assert.True(t, s.Discount.Equal(dec("10")))
	assert.True(t, s.Tax.IsZero())
	assert.True(t, s.Net.Equal(dec("435")))

	require.Len(t, s.ByPayment, 2)
	assert.Equal(t, models.PaymentCash, s.ByPayment[0].Method)
	assert.Equal(t, 2, s.ByPayment[0].Count)
	assert.True(t, s.ByPayment[0].Total.Equal(dec("360")))
	assert.Equal(t, models.PaymentUPI, s.ByPayment[1].Method)

	require.Len(t, s.BestSellers, 2)
	assert.Equal(t, "Soap", s.BestSellers[0].Name)
	assert.Equal(t, 5, s.BestSellers[0].Quantity)
	assert.True(t, s.BestSellers[0].Revenue.Equal(dec("125")))
	assert.Equal(t, "Rice", s.BestSellers[1].Name)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(rangeOf(9, 9), nil, 0)
	assert.Zero(t, s.Count)
	assert.True(t, s.Net.IsZero())
	assert.NotNil(t, s.ByPayment)
	assert.NotNil(t, s.BestSellers)
	assert.Equal(t, "Mar 9, 2024", s.Label)
}

func TestExport(t *testing.T) {
	sales := sampleSales()
	s := Summarize(rangeOf(9, 10), sales, 5)
	assert.Equal(t, "Sales_2024-03-09_2024-03-10.xlsx", ExportFileName(s))

	raw, err := Export(s, sales, loc)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(SalesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5, "header plus one row per line")
	assert.Equal(t, "Invoice", rows[0][0])
	assert.Equal(t, []string{"INV-1", "2024-03-09 10:00", "cash", "Rice", "4", "50", "10", "190", "240"}, rows[1])
	assert.Equal(t, "Soap", rows[2][3])
	assert.Len(t, rows[2], 8, "sale total only on the first line")

	summary, err := book.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales", "3"}, summary[4])
	assert.Equal(t, []string{"Net", "435"}, summary[8])
}

type fakeBackend struct {
	sales    []models.Sale
	from, to time.Time
	calls    int
	err      error
}

func (b *fakeBackend) CreateSale(context.Context, models.Sale) (models.Sale, error) {
	return models.Sale{}, errors.New("not used")
}
func (b *fakeBackend) GetSale(context.Context, string) (models.Sale, error) {
	return models.Sale{}, errors.New("not used")
}
func (b *fakeBackend) GetStore(context.Context, string) (models.Store, error) {
	return models.Store{}, errors.New("not used")
}
func (b *fakeBackend) GetCustomer(context.Context, string) (models.Customer, error) {
	return models.Customer{}, errors.New("not used")
}

func (b *fakeBackend) ListSales(_ context.Context, storeID string, from, to time.Time) ([]models.Sale, error) {
	b.calls++
	b.from, b.to = from, to
	if b.err != nil {
		return nil, b.err
	}
	var out []models.Sale
	for _, s := range b.sales {
		if s.StoreID == storeID && !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, rdx.ErrMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func newRouter(b *fakeBackend, cache Cache) *httprouter.Router {
	rs := daterange.NewResolver(loc)
	rs.Now = func() time.Time { return at(10, 20) }
	h := &Handler{Backend: b, Resolver: rs, Cache: cache, Logger: zap.NewNop()}

	term := middleware.Terminal("")
	r := httprouter.New()
	r.GET("/api/daterange", h.DateRange)
	r.GET("/api/reports/summary", term(h.Summary))
	r.GET("/api/reports/export", term(h.Export))
	return r
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(globals.StoreIDHeader, "store-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestDateRangeEndpoint(t *testing.T) {
	router := newRouter(&fakeBackend{}, nil)

	rec := get(router, "/api/daterange?filter=7days")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp RangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "2024-03-04", resp.Start)
	assert.Equal(t, "2024-03-10", resp.End)
	assert.Equal(t, "Mar 4 - Mar 10, 2024", resp.Label)

	rec = get(router, "/api/daterange?filter=custom&start=2024-03-10&end=2024-03-01")
	require.Equal(t, http.StatusOK, rec.Code, "a refused range is not an HTTP error")
	resp = RangeResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, daterange.RangeInverted, resp.Reason)
	assert.Equal(t, "Start date cannot be after end date", resp.Message)
	assert.Empty(t, resp.Start)

	rec = get(router, "/api/daterange?filter=decade")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryEndpointCaches(t *testing.T) {
	b := &fakeBackend{sales: sampleSales()}
	cache := &memCache{data: map[string][]byte{}}
	router := newRouter(b, cache)

	rec := get(router, "/api/reports/summary?filter=custom&start=2024-03-09&end=2024-03-10")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))
	assert.True(t, b.to.Equal(time.Date(2024, time.March, 11, 0, 0, 0, 0, loc)), "end bound is exclusive next midnight")

	var s Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 3, s.Count)
	assert.Contains(t, cache.data, "report:store-1:2024-03-09:2024-03-10")

	rec = get(router, "/api/reports/summary?filter=custom&start=2024-03-09&end=2024-03-10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, b.calls)
}

func TestSummaryEndpointErrors(t *testing.T) {
	router := newRouter(&fakeBackend{err: errors.New("timeout")}, nil)

	rec := get(router, "/api/reports/summary?filter=custom&start=2024-03-01&end=2024-03-30")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "future end date")

	rec = get(router, "/api/reports/summary?filter=today")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	router := newRouter(&fakeBackend{sales: sampleSales()}, nil)

	rec := get(router, "/api/reports/export?filter=yesterday")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, XLSXType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Sales_2024-03-09_2024-03-09.xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(SalesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
