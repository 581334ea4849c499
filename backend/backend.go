// Package backend is the data-source collaborator: it persists sales and serves
// store, customer and sale records. Retries live here, never in the pricing core.
package backend

import (
	"context"
	"errors"
	"time"

	"storefront/models"
)

var ErrNotFound = errors.New("backend record not found")

// Backend is implemented by the hosted REST client and by the Mongo repository.
type Backend interface {
	// CreateSale persists sale and returns it with its assigned invoice number.
	CreateSale(ctx context.Context, sale models.Sale) (models.Sale, error)
	GetSale(ctx context.Context, invoiceNumber string) (models.Sale, error)
	// ListSales returns sales of storeID created in [from, to), oldest first.
	ListSales(ctx context.Context, storeID string, from, to time.Time) ([]models.Sale, error)
	GetStore(ctx context.Context, storeID string) (models.Store, error)
	GetCustomer(ctx context.Context, customerID string) (models.Customer, error)
}
