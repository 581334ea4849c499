package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/apperr"
	"storefront/middleware"
	"storefront/models"
	"storefront/totals"
	"storefront/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// Handler serves the register's cart endpoints.
type Handler struct {
	Store  Store
	Policy totals.TaxPolicy
	Logger *zap.Logger
	Now    func() time.Time
}

// View is what every cart endpoint answers with.
type View struct {
	Cart     *Cart             `json:"cart"`
	Totals   models.CartTotals `json:"totals"`
	Warnings []Warning         `json:"warnings,omitempty"`
}

func (h *Handler) view(c *Cart) View {
	return View{Cart: c, Totals: c.Totals(h.Policy), Warnings: c.Warnings()}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Load returns the cart only when it belongs to the caller's store.
func (h *Handler) Load(ctx context.Context, cartID string) (*Cart, error) {
	c, err := h.Store.Get(ctx, cartID)
	if errors.Is(err, ErrCartNotFound) {
		return nil, apperr.NotFound("cart")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "cart lookup failed", err)
	}
	if c.StoreID != "" && c.StoreID != middleware.StoreIDFromContext(ctx) {
		return nil, apperr.NotFound("cart")
	}
	return c, nil
}

func (h *Handler) save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = h.now()
	if err := h.Store.Save(ctx, c); err != nil {
		return apperr.Wrap(apperr.KindInternal, "cart save failed", err)
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	if e.Status() >= http.StatusInternalServerError {
		h.Logger.Error("cart request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err))
	}
	utils.RespondWithAppError(w, e)
}

// CreateCart opens an empty cart for the caller's store.
func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c := New(uuid.NewString(), middleware.StoreIDFromContext(ctx))
	if err := h.save(ctx, c); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, h.view(c))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.Load(ctx, ps.ByName("cartid"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, h.view(c))
}

// AddItem adds a product row to the cart, or bumps its quantity if present.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p Product
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.RespondWithAppError(w, apperr.BadRequest("Invalid JSON payload"))
		return
	}
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" || p.Name == "" || p.Price.IsNegative() {
		utils.RespondWithAppError(w, apperr.BadRequest("Missing or invalid fields"))
		return
	}

	h.mutate(w, r, ps, http.StatusCreated, func(c *Cart) error {
		c.Add(p)
		return nil
	})
}

type quantityRequest struct {
	Quantity *float64 `json:"quantity"`
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req quantityRequest
	if err := utils.DecodeJSON(r, &req); err != nil || req.Quantity == nil {
		utils.RespondWithAppError(w, apperr.BadRequest("quantity is required"))
		return
	}
	h.mutate(w, r, ps, http.StatusOK, func(c *Cart) error {
		return c.SetQuantity(ps.ByName("itemid"), *req.Quantity)
	})
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.mutate(w, r, ps, http.StatusOK, func(c *Cart) error {
		return c.Increment(ps.ByName("itemid"))
	})
}

func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.mutate(w, r, ps, http.StatusOK, func(c *Cart) error {
		return c.Decrement(ps.ByName("itemid"))
	})
}

type discountRequest struct {
	Discount *decimal.Decimal `json:"discount"`
}

func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req discountRequest
	if err := utils.DecodeJSON(r, &req); err != nil || req.Discount == nil {
		utils.RespondWithAppError(w, apperr.BadRequest("discount is required"))
		return
	}
	h.mutate(w, r, ps, http.StatusOK, func(c *Cart) error {
		return c.SetDiscount(ps.ByName("itemid"), *req.Discount)
	})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.mutate(w, r, ps, http.StatusOK, func(c *Cart) error {
		return c.Remove(ps.ByName("itemid"))
	})
}

// DeleteCart drops the whole cart. Unknown carts are not an error.
func (h *Handler) DeleteCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := ps.ByName("cartid")
	if _, err := h.Load(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.fail(w, r, err)
		return
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		h.fail(w, r, apperr.Wrap(apperr.KindInternal, "cart delete failed", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, ps httprouter.Params, status int, fn func(*Cart) error) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.Load(ctx, ps.ByName("cartid"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := fn(c); err != nil {
		switch {
		case errors.Is(err, ErrItemNotFound):
			err = apperr.NotFound("cart item")
		case errors.Is(err, ErrQuantityOutOfRange):
			err = apperr.BadRequest(fmt.Sprintf("quantity must be at most %d", MaxQuantity))
		}
		h.fail(w, r, err)
		return
	}
	if err := h.save(ctx, c); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, status, h.view(c))
}
