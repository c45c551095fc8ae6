package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignupData struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserProfile mirrors the identity record; Role is the only authorization signal.
type UserProfile struct {
	Id       uuid.UUID `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
	Email    string    `json:"email" db:"email"`
	Role     Role      `json:"role" db:"role"`
}

type AuthUser_db struct {
	Id           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
}

type Product_db struct {
	Id          uuid.UUID       `db:"id"`
	Name        string          `db:"name"`
	Description sql.NullString  `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Image       sql.NullString  `db:"image"`
	Category    sql.NullString  `db:"category"`
}

// ProductFields is the raw admin form. Price stays a string until validated.
type ProductFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

type ProductFilter struct {
	Category    string
	Search      string
	OrderByName bool
	Limit       int
}

type Order_db struct {
	Id         uuid.UUID     `db:"id"`
	UserId     uuid.UUID     `db:"user_id"`
	ProductId  uuid.UUID     `db:"product_id"`
	Quantity   int           `db:"quantity"`
	OrderDate  time.Time     `db:"order_date"`
	CheckoutId uuid.NullUUID `db:"checkout_id"`
}

type OrderWithProduct_db struct {
	Order_db
	ProductName  sql.NullString      `db:"product_name"`
	ProductPrice decimal.NullDecimal `db:"product_price"`
	ProductImage sql.NullString      `db:"product_image"`
}
