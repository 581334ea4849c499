package cart

import (
	"errors"
	"math"
	"time"

	"storefront/models"
	"storefront/totals"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound       = errors.New("cart item not found")
	ErrCartNotFound       = errors.New("cart not found")
	ErrQuantityOutOfRange = errors.New("quantity out of range")
)

// MaxQuantity is the largest quantity a single line may carry.
const MaxQuantity = math.MaxInt32

// Product is the already-fetched product row the UI adds to a cart.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Unit  string          `json:"unit,omitempty"`
}

// Cart holds the line items of one in-progress sale.
type Cart struct {
	ID        string            `json:"id"`
	StoreID   string            `json:"storeId,omitempty"`
	Items     []models.LineItem `json:"items"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Warning flags a line whose discount is larger than its gross amount.
// Such lines are left as entered; checkout refuses them.
type Warning struct {
	ItemID  string `json:"itemId"`
	Message string `json:"message"`
}

func New(id, storeID string) *Cart {
	return &Cart{ID: id, StoreID: storeID, Items: []models.LineItem{}}
}

func (c *Cart) index(itemID string) int {
	for i, it := range c.Items {
		if it.ItemID == itemID {
			return i
		}
	}
	return -1
}

// Item returns a copy of the line with the given id.
func (c *Cart) Item(itemID string) (models.LineItem, bool) {
	i := c.index(itemID)
	if i < 0 {
		return models.LineItem{}, false
	}
	return c.Items[i], true
}

// Add puts p in the cart with quantity 1 and no discount, or bumps the
// quantity of the existing line for the same product.
func (c *Cart) Add(p Product) models.LineItem {
	if i := c.index(p.ID); i >= 0 {
		c.Items[i].Quantity++
		return c.Items[i]
	}
	li := models.LineItem{
		ItemID:   p.ID,
		ItemName: p.Name,
		Unit:     p.Unit,
		Price:    p.Price,
		Quantity: 1,
		Discount: decimal.Zero,
	}
	c.Items = append(c.Items, li)
	return li
}

// SetQuantity rounds q to the nearest integer. Zero or less removes the line.
// Values that are not finite or exceed MaxQuantity leave the cart unchanged.
func (c *Cart) SetQuantity(itemID string, q float64) error {
	i := c.index(itemID)
	if i < 0 {
		return ErrItemNotFound
	}
	q = math.Round(q)
	if math.IsNaN(q) || math.IsInf(q, 0) || q > MaxQuantity {
		return ErrQuantityOutOfRange
	}
	if q <= 0 {
		c.removeAt(i)
		return nil
	}
	c.Items[i].Quantity = int(q)
	return nil
}

// Increment is the "+" stepper.
func (c *Cart) Increment(itemID string) error {
	i := c.index(itemID)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items[i].Quantity++
	return nil
}

// Decrement is the "-" stepper; it stops at 1 and never removes the line.
func (c *Cart) Decrement(itemID string) error {
	i := c.index(itemID)
	if i < 0 {
		return ErrItemNotFound
	}
	if c.Items[i].Quantity > 1 {
		c.Items[i].Quantity--
	} else {
		c.Items[i].Quantity = 1
	}
	return nil
}

// SetDiscount stores d for the line, clamping negatives to zero. There is no upper clamp.
func (c *Cart) SetDiscount(itemID string, d decimal.Decimal) error {
	i := c.index(itemID)
	if i < 0 {
		return ErrItemNotFound
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	c.Items[i].Discount = d
	return nil
}

func (c *Cart) Remove(itemID string) error {
	i := c.index(itemID)
	if i < 0 {
		return ErrItemNotFound
	}
	c.removeAt(i)
	return nil
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func (c *Cart) Clear() {
	c.Items = []models.LineItem{}
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// Totals recomputes the cart aggregates under policy (nil means zero tax).
func (c *Cart) Totals(policy totals.TaxPolicy) models.CartTotals {
	return totals.ComputeWithPolicy(c.Items, policy)
}

func (c *Cart) Warnings() []Warning {
	var out []Warning
	for _, it := range c.Items {
		if !it.DiscountWithinBounds() {
			out = append(out, Warning{
				ItemID:  it.ItemID,
				Message: "discount exceeds line amount " + it.Gross().StringFixed(2),
			})
		}
	}
	return out
}

// Clone returns a deep copy so stores never share item slices with callers.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]models.LineItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
