package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefront/globals"
	"storefront/models"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

// Terminal copies the register's store and operator headers into the request
// context. Requests without a store header fall back to defaultStoreID.
func Terminal(defaultStoreID string) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			storeID := strings.TrimSpace(r.Header.Get(globals.StoreIDHeader))
			if storeID == "" {
				storeID = defaultStoreID
			}
			if storeID == "" {
				http.Error(w, "Missing store", http.StatusBadRequest)
				return
			}

			reqID := r.Header.Get(globals.RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(globals.RequestIDHeader, reqID)

			ctx := context.WithValue(r.Context(), globals.StoreIDKey, storeID)
			ctx = context.WithValue(ctx, globals.OperatorIDKey, strings.TrimSpace(r.Header.Get(globals.OperatorIDHeader)))
			ctx = context.WithValue(ctx, globals.OperatorNameKey, strings.TrimSpace(r.Header.Get(globals.OperatorNameHeader)))
			ctx = context.WithValue(ctx, globals.RequestIDKey, reqID)

			next(w, r.WithContext(ctx), ps)
		}
	}
}

func StoreIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(globals.StoreIDKey).(string)
	return id
}

func OperatorFromContext(ctx context.Context) models.Operator {
	id, _ := ctx.Value(globals.OperatorIDKey).(string)
	name, _ := ctx.Value(globals.OperatorNameKey).(string)
	return models.Operator{ID: id, Name: name}
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(globals.RequestIDKey).(string)
	return id
}

// Chain applies wrappers so the first one listed runs first.
func Chain(wrappers ...func(httprouter.Handle) httprouter.Handle) func(httprouter.Handle) httprouter.Handle {
	return func(h httprouter.Handle) httprouter.Handle {
		for i := len(wrappers) - 1; i >= 0; i-- {
			h = wrappers[i](h)
		}
		return h
	}
}
