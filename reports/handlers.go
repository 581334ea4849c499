package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/apperr"
	"storefront/backend"
	"storefront/daterange"
	"storefront/middleware"
	"storefront/models"
	"storefront/rdx"
	"storefront/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const requestTimeout = 20 * time.Second

// Cache stores rendered summaries. Get returns rdx.ErrMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Handler struct {
	Backend  backend.Backend
	Resolver *daterange.Resolver
	Cache    Cache
	Logger   *zap.Logger
	TopItems int
}

// RangeResponse answers the date filter endpoint.
type RangeResponse struct {
	daterange.Validation
	Filter daterange.Filter `json:"filter"`
	Start  string           `json:"start,omitempty"`
	End    string           `json:"end,omitempty"`
	Label  string           `json:"label,omitempty"`
	Days   int              `json:"days,omitempty"`
	From   *time.Time       `json:"from,omitempty"`
	To     *time.Time       `json:"to,omitempty"`
}

// resolve reads ?filter=&start=&end=. An empty filter means today. A refused custom
// range comes back as a Validation, never as an error.
func (h *Handler) resolve(r *http.Request) (daterange.Filter, daterange.Range, daterange.Validation, error) {
	q := r.URL.Query()
	f := daterange.Filter(strings.TrimSpace(q.Get("filter")))
	if f == "" {
		f = daterange.Today
	}

	if f == daterange.Custom {
		rg, v := h.Resolver.Custom(strings.TrimSpace(q.Get("start")), strings.TrimSpace(q.Get("end")))
		return f, rg, v, nil
	}

	rg, err := h.Resolver.Resolve(f)
	if errors.Is(err, daterange.ErrUnknownFilter) {
		return f, daterange.Range{}, daterange.Validation{}, apperr.BadRequest("unknown filter " + string(f))
	}
	if err != nil {
		return f, daterange.Range{}, daterange.Validation{}, apperr.BadRequest(err.Error())
	}
	return f, rg, daterange.Validation{Valid: true}, nil
}

// DateRange resolves a filter for the history screen.
func (h *Handler) DateRange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	f, rg, v, err := h.resolve(r)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	resp := RangeResponse{Validation: v, Filter: f}
	if v.Valid {
		from, to := rg.Bounds()
		resp.Start = rg.StartString()
		resp.End = rg.EndString()
		resp.Label = rg.Label()
		resp.Days = rg.Days()
		resp.From = &from
		resp.To = &to
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// validRange is resolve for endpoints that need a usable range.
func (h *Handler) validRange(r *http.Request) (daterange.Range, error) {
	_, rg, v, err := h.resolve(r)
	if err != nil {
		return daterange.Range{}, err
	}
	if !v.Valid {
		return daterange.Range{}, apperr.BadRequest(v.Message)
	}
	return rg, nil
}

func (h *Handler) sales(ctx context.Context, storeID string, rg daterange.Range) ([]models.Sale, error) {
	from, to := rg.Bounds()
	sales, err := h.Backend.ListSales(ctx, storeID, from, to)
	if err != nil {
		e := apperr.Wrap(apperr.KindBackend, "sales history unavailable", err)
		e.Retryable = true
		return nil, e
	}
	return sales, nil
}

// Summary returns the aggregates of the range, served from the cache when present.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rg, err := h.validRange(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	storeID := middleware.StoreIDFromContext(ctx)
	key := rdx.ReportKey(storeID, rg.StartString(), rg.EndString())

	if h.Cache != nil {
		if raw, err := h.Cache.Get(ctx, key); err == nil {
			w.Header().Set("X-Cache", "hit")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(raw)
			return
		} else if !errors.Is(err, rdx.ErrMiss) {
			h.Logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	sales, err := h.sales(ctx, storeID, rg)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sum := Summarize(rg, sales, h.TopItems)

	if h.Cache != nil {
		if raw, err := json.Marshal(sum); err == nil {
			if err := h.Cache.Set(ctx, key, raw); err != nil {
				h.Logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	w.Header().Set("X-Cache", "miss")
	utils.RespondWithJSON(w, http.StatusOK, sum)
}

// Export streams Sales_<start>_<end>.xlsx.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rg, err := h.validRange(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sales, err := h.sales(ctx, middleware.StoreIDFromContext(ctx), rg)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sum := Summarize(rg, sales, h.TopItems)
	book, err := Export(sum, sales, h.Resolver.Location)
	if err != nil {
		h.fail(w, r, apperr.DocumentGenerationFailure(err))
		return
	}
	utils.RespondWithFile(w, XLSXType, ExportFileName(sum), book)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	if e.Status() >= http.StatusInternalServerError {
		h.Logger.Error("report request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err))
	}
	utils.RespondWithAppError(w, e)
}
