package entities

import (
	"math"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CartLineItem keeps the name/price/image seen when the product was added.
type CartLineItem struct {
	ProductId uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

func (li CartLineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart holds at most one line per product id, in insertion order.
type Cart struct {
	Items []CartLineItem
}

func (c *Cart) index(productId uuid.UUID) int {
	_, idx, ok := lo.FindIndexOf(c.Items, func(li CartLineItem) bool {
		return li.ProductId == productId
	})
	if !ok {
		return -1
	}
	return idx
}

// MaxLineQuantity matches the integer column orders.quantity is stored in.
const MaxLineQuantity = math.MaxInt32

// Add merges into an existing line or appends a snapshot of p. quantity must be positive.
// It reports false and leaves the cart unchanged when the line would exceed MaxLineQuantity.
func (c *Cart) Add(p Product, quantity int) bool {
	if quantity > MaxLineQuantity {
		return false
	}
	if i := c.index(p.Id); i >= 0 {
		if c.Items[i].Quantity > MaxLineQuantity-quantity {
			return false
		}
		c.Items[i].Quantity += quantity
		return true
	}
	c.Items = append(c.Items, CartLineItem{
		ProductId: p.Id,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	})
	return true
}

// Remove reports whether a line was dropped.
func (c *Cart) Remove(productId uuid.UUID) bool {
	i := c.index(productId)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// SetQuantity overwrites a line's quantity; zero or less removes the line. Quantities above
// MaxLineQuantity are ignored.
func (c *Cart) SetQuantity(productId uuid.UUID, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(productId)
	}
	i := c.index(productId)
	if i < 0 || quantity > MaxLineQuantity {
		return false
	}
	c.Items[i].Quantity = quantity
	return true
}

func (c Cart) Total() decimal.Decimal {
	return lo.Reduce(c.Items, func(sum decimal.Decimal, li CartLineItem, _ int) decimal.Decimal {
		return sum.Add(li.Subtotal())
	}, decimal.Zero)
}

func (c Cart) ItemCount() int {
	return lo.SumBy(c.Items, func(li CartLineItem) int {
		return li.Quantity
	})
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Response() CartResponse {
	items := c.Items
	if items == nil {
		items = []CartLineItem{}
	}
	return CartResponse{
		Items:      items,
		ItemCount:  c.ItemCount(),
		TotalPrice: c.Total(),
	}
}
