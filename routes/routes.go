package routes

import (
	"storefront/cart"
	"storefront/checkout"
	"storefront/middleware"
	"storefront/ratelim"
	"storefront/reports"

	"github.com/julienschmidt/httprouter"
)

func AddCartRoutes(router *httprouter.Router, h *cart.Handler, terminal func(httprouter.Handle) httprouter.Handle) {
	router.POST("/api/carts", terminal(h.CreateCart))
	router.GET("/api/carts/:cartid", terminal(h.GetCart))
	router.DELETE("/api/carts/:cartid", terminal(h.DeleteCart))

	router.POST("/api/carts/:cartid/items", terminal(h.AddItem))
	router.DELETE("/api/carts/:cartid/items/:itemid", terminal(h.RemoveItem))
	router.PUT("/api/carts/:cartid/items/:itemid/quantity", terminal(h.SetQuantity))
	router.PUT("/api/carts/:cartid/items/:itemid/discount", terminal(h.SetDiscount))
	router.POST("/api/carts/:cartid/items/:itemid/increment", terminal(h.Increment))
	router.POST("/api/carts/:cartid/items/:itemid/decrement", terminal(h.Decrement))
}

func AddCheckoutRoutes(router *httprouter.Router, h *checkout.Handler, terminal, idempotent func(httprouter.Handle) httprouter.Handle, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/carts/:cartid/checkout",
		middleware.Chain(
			rateLimiter.Limit,
			terminal,
			idempotent,
		)(h.Checkout),
	)
	router.GET("/api/bills/:invoice/receipt", terminal(h.DownloadReceipt))
	router.GET("/api/bills/:invoice/qr", terminal(h.QRCode))
	router.GET("/api/scan", checkout.DecodeScan)
}

func AddReportRoutes(router *httprouter.Router, h *reports.Handler, terminal func(httprouter.Handle) httprouter.Handle, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/daterange", h.DateRange)
	router.GET("/api/reports/summary", terminal(h.Summary))
	router.GET("/api/reports/export", middleware.Chain(rateLimiter.Limit, terminal)(h.Export))
}
