package routes

import (
	"storefront/cart"
	"storefront/checkout"
	"storefront/middleware"
	"storefront/ratelim"
	"storefront/reports"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Deps is everything the route groups hand to their handlers.
type Deps struct {
	Carts          *cart.Handler
	Checkout       *checkout.Handler
	Reports        *reports.Handler
	Idempotency    middleware.IdempotencyStore
	RateLimiter    *ratelim.RateLimiter
	DefaultStoreID string
	Logger         *zap.Logger
}

func RoutesWrapper(router *httprouter.Router, d Deps) {
	terminal := middleware.Terminal(d.DefaultStoreID)
	idempotent := func(next httprouter.Handle) httprouter.Handle { return next }
	if d.Idempotency != nil {
		idempotent = middleware.Idempotent(d.Idempotency, d.Logger)
	}

	AddCartRoutes(router, d.Carts, terminal)
	AddCheckoutRoutes(router, d.Checkout, terminal, idempotent, d.RateLimiter)
	AddReportRoutes(router, d.Reports, terminal, d.RateLimiter)
}
