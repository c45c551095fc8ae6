package entities

import (
	"time"

	"combatStore/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	Id          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Category    string          `json:"category,omitempty"`
}

func ProductFromDb(p models.Product_db) Product {
	return Product{
		Id:          p.Id,
		Name:        p.Name,
		Description: p.Description.String,
		Price:       p.Price,
		Image:       p.Image.String,
		Category:    p.Category.String,
	}
}

func ProductsFromDb(rows []models.Product_db) []Product {
	prods := make([]Product, 0, len(rows))
	for _, r := range rows {
		prods = append(prods, ProductFromDb(r))
	}
	return prods
}

type CartRequest struct {
	ProductId uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type CartResponse struct {
	Items      []CartLineItem  `json:"items"`
	ItemCount  int             `json:"item_count"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Session is the explicit per-device context resolved from the session cookie.
type Session struct {
	Id     string    `json:"-"`
	UserId uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

func (s Session) CartKey() string {
	return "cart:" + s.Id
}

type OrderProduct struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

type Order struct {
	Id         uuid.UUID     `json:"id"`
	UserId     uuid.UUID     `json:"user_id"`
	ProductId  uuid.UUID     `json:"product_id"`
	Quantity   int           `json:"quantity"`
	OrderDate  time.Time     `json:"order_date"`
	CheckoutId uuid.UUID     `json:"checkout_id,omitempty"`
	Product    *OrderProduct `json:"product,omitempty"`
}

const MissingProductName = "product not found"

// OrderFromDb resolves the joined product; a deleted product gets a placeholder priced at zero.
func OrderFromDb(row models.OrderWithProduct_db) Order {
	ord := Order{
		Id:         row.Id,
		UserId:     row.UserId,
		ProductId:  row.ProductId,
		Quantity:   row.Quantity,
		OrderDate:  row.OrderDate,
		CheckoutId: row.CheckoutId.UUID,
		Product: &OrderProduct{
			Name:  MissingProductName,
			Price: decimal.Zero,
		},
	}
	if row.ProductName.Valid {
		ord.Product.Name = row.ProductName.String
	}
	if row.ProductPrice.Valid {
		ord.Product.Price = row.ProductPrice.Decimal
	}
	ord.Product.Image = row.ProductImage.String
	return ord
}

type CheckoutResult struct {
	CheckoutId uuid.UUID `json:"checkout_id"`
	Orders     []Order   `json:"orders"`
	Replayed   bool      `json:"replayed"`
}

type OrderPlacedItem struct {
	ProductId uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type OrderPlaced struct {
	CheckoutId uuid.UUID         `json:"checkout_id"`
	UserId     uuid.UUID         `json:"user_id"`
	Items      []OrderPlacedItem `json:"items"`
	PlacedAt   time.Time         `json:"placed_at"`
}

func (e OrderPlaced) Type() string {
	return "order.placed"
}

func (e OrderPlaced) Key() string {
	return e.UserId.String()
}
