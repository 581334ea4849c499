package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/apperr"
	"storefront/backend"
	"storefront/bill"
	"storefront/cart"
	"storefront/middleware"
	"storefront/models"
	"storefront/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

// Handler exposes the checkout flow and bill downloads over HTTP.
type Handler struct {
	Service *Service
	Carts   *cart.Handler
}

type customerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type checkoutRequest struct {
	PaymentMethod string         `json:"paymentMethod"`
	CustomerID    string         `json:"customerId,omitempty"`
	Customer      *customerInput `json:"customer,omitempty"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	if e.Status() >= http.StatusInternalServerError || e.Kind == apperr.KindDocumentGenerationFailure {
		h.Service.logger.Error("checkout request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err))
	}
	utils.RespondWithAppError(w, e)
}

// transaction builds the per-request checkout context.
func (h *Handler) transaction(ctx context.Context, req checkoutRequest) (Context, error) {
	pm, ok := models.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return Context{}, apperr.BadRequest("unknown payment method")
	}

	storeID := middleware.StoreIDFromContext(ctx)
	store, err := h.Service.backend.GetStore(ctx, storeID)
	if errors.Is(err, backend.ErrNotFound) {
		return Context{}, apperr.BadRequest("unknown store " + storeID)
	}
	if err != nil {
		return Context{}, backendError(err, "store")
	}

	txn := Context{
		Store:         store,
		Operator:      middleware.OperatorFromContext(ctx),
		PaymentMethod: pm,
	}

	switch {
	case strings.TrimSpace(req.CustomerID) != "":
		cu, err := h.Service.backend.GetCustomer(ctx, strings.TrimSpace(req.CustomerID))
		if errors.Is(err, backend.ErrNotFound) {
			return Context{}, apperr.BadRequest("unknown customer")
		}
		if err != nil {
			return Context{}, backendError(err, "customer")
		}
		txn.Customer = &cu
	case req.Customer != nil && strings.TrimSpace(req.Customer.Name) != "":
		txn.Customer = &models.Customer{
			Name:  strings.TrimSpace(req.Customer.Name),
			Phone: strings.TrimSpace(req.Customer.Phone),
		}
	}
	return txn, nil
}

// Checkout sells the cart and discards it.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req checkoutRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, apperr.BadRequest("Invalid JSON payload"))
		return
	}

	c, err := h.Carts.Load(ctx, ps.ByName("cartid"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	txn, err := h.transaction(ctx, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.Service.Checkout(ctx, txn, c)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Carts.Store.Delete(context.WithoutCancel(ctx), c.ID); err != nil {
		h.Service.logger.Warn("sold cart not deleted", zap.String("cart", c.ID), zap.Error(err))
	}
	utils.RespondWithJSON(w, http.StatusCreated, res)
}

// DownloadReceipt streams Bill_<invoice>.pdf.
func (h *Handler) DownloadReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	pdf, name, err := h.Service.Receipt(ctx, ps.ByName("invoice"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithFile(w, "application/pdf", name, pdf)
}

func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	png, err := h.Service.QRCode(ctx, ps.ByName("invoice"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithFile(w, "image/png", "", png)
}

// DecodeScan reads ?payload= (bare or full scan URI) back into a bill summary.
func DecodeScan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// an unescaped '+' in the query arrives as a space
	raw := strings.ReplaceAll(r.URL.Query().Get("payload"), " ", "+")
	if raw == "" {
		utils.RespondWithAppError(w, apperr.BadRequest("payload is required"))
		return
	}
	p, err := bill.DecodePayload(raw)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.KindBadRequest, err.Error(), err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
