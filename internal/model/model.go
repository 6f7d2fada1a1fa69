package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Storefront clients expect prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultCartKey identifies the single cart shared by every client.
const DefaultCartKey = "default"

// DefaultProductNum is the display count given to products created without one.
const DefaultProductNum = 10

type Product struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Content     string          `json:"content"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	OriginPrice decimal.Decimal `json:"origin_price"`
	ImageURL    string          `json:"imageUrl"`
	ImagesURL   []string        `json:"imagesUrl"`
	IsEnabled   bool            `json:"is_enabled"`
	Num         int             `json:"num"`
	CreatedAt   time.Time       `json:"-"`
}

type Coupon struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Title     string `json:"title"`
	Percent   int    `json:"percent"`
	DueDate   int64  `json:"due_date"`
	IsEnabled bool   `json:"is_enabled"`
}

// CartItem is one stored cart line. Total is frozen at the time of the write.
type CartItem struct {
	ID        string          `json:"id"`
	CartKey   string          `json:"-"`
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"-"`
}

// CartLine is a cart item joined with the live product. Product is nil when the
// referenced product no longer exists.
type CartLine struct {
	CartItem
	FinalTotal decimal.Decimal `json:"final_total"`
	Product    *Product        `json:"product"`
}

type OrderUser struct {
	Name    string `json:"name"`
	Tel     string `json:"tel"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// OrderProduct is the order snapshot of everything bought for one product.
type OrderProduct struct {
	ID         string          `json:"id"`
	Qty        int             `json:"qty"`
	Total      decimal.Decimal `json:"total"`
	FinalTotal decimal.Decimal `json:"final_total"`
	Product    Product         `json:"product"`
}

type Order struct {
	ID       string                  `json:"id"`
	CreateAt int64                   `json:"create_at"`
	IsPaid   bool                    `json:"is_paid"`
	Total    decimal.Decimal         `json:"total"`
	User     OrderUser               `json:"user"`
	Products map[string]OrderProduct `json:"products"`
}

// Customer is the directory entry maintained from placed orders.
type Customer struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Tel       string    `json:"tel"`
	Address   string    `json:"address"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeEmail is the customer directory key for an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Admin is the identity carried by an admin token.
type Admin struct {
	UID   string
	Email string
}

type OrderMessage struct {
	OrderID string    `json:"order_id"`
	User    OrderUser `json:"user"`
	Total   string    `json:"total"`
}

// NewID returns a time-ordered identifier, so ids sort by creation.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
