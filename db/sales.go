package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/backend"
	"storefront/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SalesRepository is the Mongo flavour of backend.Backend.
type SalesRepository struct {
	SalesCollection     *mongo.Collection
	StoresCollection    *mongo.Collection
	CustomersCollection *mongo.Collection

	now func() time.Time
}

func NewSalesRepository(database *mongo.Database) *SalesRepository {
	return &SalesRepository{
		SalesCollection:     database.Collection("sales"),
		StoresCollection:    database.Collection("stores"),
		CustomersCollection: database.Collection("customers"),
		now:                 time.Now,
	}
}

// EnsureIndexes creates the unique invoice index and the history lookup index.
func (s *SalesRepository) EnsureIndexes(ctx context.Context) error {
	idxs := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "invoiceNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_invoice"),
		},
		{
			Keys:    bson.D{{Key: "storeId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("store_created"),
		},
	}
	_, err := s.SalesCollection.Indexes().CreateMany(ctx, idxs)
	return err
}

// NewInvoiceNumber is INV-<yyyymmdd>-<6 upper hex>.
func NewInvoiceNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "INV-" + at.Format("20060102") + "-" + suffix
}

func (s *SalesRepository) CreateSale(ctx context.Context, sale models.Sale) (models.Sale, error) {
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = s.now()
	}
	sale.ID = uuid.NewString()

	// a collision on the 6-char suffix is retried with a fresh number
	for attempt := 0; attempt < 3; attempt++ {
		sale.InvoiceNumber = NewInvoiceNumber(sale.CreatedAt)
		_, err := s.SalesCollection.InsertOne(ctx, sale)
		if err == nil {
			return sale, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return models.Sale{}, fmt.Errorf("insert sale: %w", err)
		}
	}
	return models.Sale{}, fmt.Errorf("insert sale: invoice number collisions")
}

func (s *SalesRepository) GetSale(ctx context.Context, invoiceNumber string) (models.Sale, error) {
	var sale models.Sale
	err := s.SalesCollection.FindOne(ctx, bson.M{"invoiceNumber": invoiceNumber}).Decode(&sale)
	if err != nil {
		return models.Sale{}, notFound(err, "sale "+invoiceNumber)
	}
	return sale, nil
}

func (s *SalesRepository) ListSales(ctx context.Context, storeID string, from, to time.Time) ([]models.Sale, error) {
	filter := bson.M{
		"storeId": storeID,
		"createdAt": bson.M{
			"$gte": from,
			"$lt":  to,
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := s.SalesCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find sales: %w", err)
	}
	defer cursor.Close(ctx)

	sales := []models.Sale{}
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("read sales: %w", err)
	}
	return sales, nil
}

func (s *SalesRepository) GetStore(ctx context.Context, storeID string) (models.Store, error) {
	var st models.Store
	if err := s.StoresCollection.FindOne(ctx, bson.M{"_id": storeID}).Decode(&st); err != nil {
		return models.Store{}, notFound(err, "store "+storeID)
	}
	return st, nil
}

func (s *SalesRepository) GetCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	var cu models.Customer
	if err := s.CustomersCollection.FindOne(ctx, bson.M{"_id": customerID}).Decode(&cu); err != nil {
		return models.Customer{}, notFound(err, "customer "+customerID)
	}
	return cu, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", backend.ErrNotFound, what)
	}
	return fmt.Errorf("find %s: %w", what, err)
}

var _ backend.Backend = (*SalesRepository)(nil)
