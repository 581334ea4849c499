// Package checkout turns a cart into a persisted sale and its bill artifacts.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/apperr"
	"storefront/backend"
	"storefront/bill"
	"storefront/cart"
	"storefront/middleware"
	"storefront/models"
	"storefront/qr"
	"storefront/receipt"
	"storefront/totals"

	"go.uber.org/zap"
)

// Context is everything about one transaction that is not in the cart.
// It is built per request and passed explicitly.
type Context struct {
	Store         models.Store
	Operator      models.Operator
	Customer      *models.Customer
	PaymentMethod models.PaymentMethod
}

// Publisher is told about every completed sale.
type Publisher interface {
	SaleCompleted(ctx context.Context, sale models.Sale) error
}

// Renderer draws a printable receipt.
type Renderer interface {
	Render(b models.BillData) ([]byte, error)
}

// Result is what the register shows after a checkout.
type Result struct {
	Bill    models.BillData `json:"bill"`
	ScanURI string          `json:"scanUri,omitempty"`
	QRCode  []byte          `json:"qrCode,omitempty"`
	Notices []string        `json:"notices,omitempty"`
}

type Options struct {
	Backend   backend.Backend
	Receipts  Renderer
	QR        func(content string) ([]byte, error)
	Publisher Publisher
	Policy    totals.TaxPolicy
	Logger    *zap.Logger
	Now       func() time.Time
	Origin    string
	Location  *time.Location
}

type Service struct {
	backend   backend.Backend
	receipts  Renderer
	qr        func(string) ([]byte, error)
	publisher Publisher
	policy    totals.TaxPolicy
	logger    *zap.Logger
	now       func() time.Time
	origin    string
	loc       *time.Location
}

func NewService(opts Options) *Service {
	s := &Service{
		backend:   opts.Backend,
		receipts:  opts.Receipts,
		qr:        opts.QR,
		publisher: opts.Publisher,
		policy:    opts.Policy,
		logger:    opts.Logger,
		now:       opts.Now,
		origin:    opts.Origin,
		loc:       opts.Location,
	}
	if s.receipts == nil {
		s.receipts = receipt.NewRenderer(receipt.DefaultCurrency)
	}
	if s.qr == nil {
		s.qr = qr.Render
	}
	if s.policy == nil {
		s.policy = totals.ZeroTax{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// Validate rejects carts that cannot be sold as they are.
func Validate(txn Context, c *cart.Cart) error {
	if c == nil || c.Empty() {
		return apperr.BadRequest("cart is empty")
	}
	if !txn.PaymentMethod.Valid() {
		return apperr.BadRequest(fmt.Sprintf("unknown payment method %q", txn.PaymentMethod))
	}
	for _, it := range c.Items {
		if it.Quantity <= 0 {
			return apperr.BadRequest(fmt.Sprintf("quantity of %s must be positive", it.ItemName))
		}
		if !it.DiscountWithinBounds() {
			return apperr.BadRequest(fmt.Sprintf("discount on %s exceeds line amount %s",
				it.ItemName, it.Gross().StringFixed(2)))
		}
	}
	return nil
}

// Checkout persists the sale and builds its bill. Scan code problems are reported
// as notices; only validation and persistence failures are errors.
func (s *Service) Checkout(ctx context.Context, txn Context, c *cart.Cart) (Result, error) {
	if err := Validate(txn, c); err != nil {
		return Result{}, err
	}

	t := totals.ComputeWithPolicy(c.Items, s.policy)
	sale := models.Sale{
		StoreID:       txn.Store.ID,
		OperatorID:    txn.Operator.ID,
		Items:         make([]models.SaleItem, 0, len(c.Items)),
		Subtotal:      t.Subtotal.InexactFloat64(),
		Discount:      t.Discount.InexactFloat64(),
		Tax:           t.Tax.InexactFloat64(),
		Total:         t.Total.InexactFloat64(),
		PaymentMethod: txn.PaymentMethod,
		CreatedAt:     s.now(),
	}
	if txn.Customer != nil {
		sale.CustomerID = txn.Customer.ID
		sale.CustomerName = txn.Customer.Name
		sale.CustomerPhone = txn.Customer.Phone
	}
	for _, it := range c.Items {
		sale.Items = append(sale.Items, models.SaleItemFromLine(it, totals.LineTotal(it)))
	}

	saved, err := s.backend.CreateSale(ctx, sale)
	if err != nil {
		e := apperr.Wrap(apperr.KindBackend, "sale could not be saved", err)
		e.Retryable = true
		return Result{}, e
	}

	res := Result{Bill: bill.FromSale(txn.Store, txn.Customer, saved, s.loc)}
	s.logger.Info("sale completed",
		zap.String("invoice", saved.InvoiceNumber),
		zap.String("store", saved.StoreID),
		zap.String("operator", saved.OperatorID),
		zap.String("total", res.Bill.Total.StringFixed(2)),
		zap.Int("items", len(saved.Items)))

	uri, png, err := s.scan(res.Bill)
	if err != nil {
		e := apperr.As(err)
		s.logger.Warn("scan code unavailable", zap.String("invoice", saved.InvoiceNumber), zap.Error(e.Err))
		res.Notices = append(res.Notices, e.Message)
	}
	res.ScanURI = uri
	res.QRCode = png

	if s.publisher != nil {
		if err := s.publisher.SaleCompleted(context.WithoutCancel(ctx), saved); err != nil {
			s.logger.Warn("sale event not published", zap.String("invoice", saved.InvoiceNumber), zap.Error(err))
		}
	}
	return res, nil
}

// scan returns the scan URI and, when it could be drawn, the QR image.
func (s *Service) scan(b models.BillData) (string, []byte, error) {
	uri, err := bill.ScanURI(s.origin, b)
	if err != nil {
		return "", nil, apperr.EncodingFailure(err)
	}
	png, err := s.qr(uri)
	if err != nil {
		return uri, nil, apperr.EncodingFailure(err)
	}
	return uri, png, nil
}

// Bill reloads a persisted sale with its store and customer. A terminal only sees
// sales of its own store.
func (s *Service) Bill(ctx context.Context, invoiceNumber string) (models.BillData, error) {
	sale, err := s.backend.GetSale(ctx, invoiceNumber)
	if err != nil {
		return models.BillData{}, backendError(err, "sale")
	}
	if storeID := middleware.StoreIDFromContext(ctx); storeID != "" && storeID != sale.StoreID {
		return models.BillData{}, apperr.NotFound("sale")
	}

	store, err := s.backend.GetStore(ctx, sale.StoreID)
	if err != nil {
		if !errors.Is(err, backend.ErrNotFound) {
			return models.BillData{}, backendError(err, "store")
		}
		s.logger.Warn("bill store missing", zap.String("invoice", invoiceNumber), zap.String("store", sale.StoreID))
		store = models.Store{ID: sale.StoreID}
	}

	// walk-in customers only exist as the snapshot on the sale
	customer := sale.CustomerSnapshot()
	if sale.CustomerID != "" {
		cu, err := s.backend.GetCustomer(ctx, sale.CustomerID)
		switch {
		case err == nil:
			customer = &cu
		case errors.Is(err, backend.ErrNotFound):
			s.logger.Warn("bill customer missing", zap.String("invoice", invoiceNumber), zap.String("customer", sale.CustomerID))
		default:
			return models.BillData{}, backendError(err, "customer")
		}
	}
	return bill.FromSale(store, customer, sale, s.loc), nil
}

// Receipt renders the printable bill. Rendering failures are retryable and leave
// the sale untouched.
func (s *Service) Receipt(ctx context.Context, invoiceNumber string) ([]byte, string, error) {
	b, err := s.Bill(ctx, invoiceNumber)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.receipts.Render(b)
	if err != nil {
		s.logger.Error("receipt render failed", zap.String("invoice", invoiceNumber), zap.Error(err))
		return nil, "", apperr.DocumentGenerationFailure(err)
	}
	return pdf, receipt.FileName(b.InvoiceNumber), nil
}

// QRCode renders the scan code of a persisted sale.
func (s *Service) QRCode(ctx context.Context, invoiceNumber string) ([]byte, error) {
	b, err := s.Bill(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	_, png, err := s.scan(b)
	if err != nil {
		return nil, err
	}
	return png, nil
}

func backendError(err error, resource string) error {
	if errors.Is(err, backend.ErrNotFound) {
		return apperr.NotFound(resource)
	}
	e := apperr.Wrap(apperr.KindBackend, resource+" lookup failed", err)
	e.Retryable = true
	return e
}
