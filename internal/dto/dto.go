package dto

import (
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/pagination"
)

// Request wraps every write body as {"data": {...}}.
type Request[T any] struct {
	Data *T `json:"data"`
}

// --- Auth ---

type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignInResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UID     string `json:"uid"`
	Token   string `json:"token"`
	Expired int64  `json:"expired"`
}

// --- Product ---

// ProductInput is the single schema for product create and update.
type ProductInput struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Category    string           `json:"category" validate:"required,max=100"`
	Unit        string           `json:"unit" validate:"required,max=50"`
	Description string           `json:"description" validate:"required,max=500"`
	Content     string           `json:"content" validate:"required,max=1000"`
	ImageURL    string           `json:"imageUrl" validate:"required"`
	ImagesURL   []string         `json:"imagesUrl"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	OriginPrice *decimal.Decimal `json:"origin_price" validate:"omitempty,gte=0"`
	IsEnabled   bool             `json:"is_enabled"`
	Num         *int             `json:"num" validate:"omitempty,gte=0,max=1000000"`
}

type ProductListResponse struct {
	Success    bool                  `json:"success"`
	Products   []model.Product       `json:"products"`
	Pagination pagination.Pagination `json:"pagination"`
	Message    []string              `json:"message"`
}

type ProductResponse struct {
	Success bool           `json:"success"`
	Product *model.Product `json:"product"`
}

type ProductCreatedResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ProductID string `json:"productId"`
}

// --- Coupon ---

// CouponInput is the single schema for coupon create and update.
type CouponInput struct {
	Title     string `json:"title" validate:"required,max=200"`
	Code      string `json:"code" validate:"required,max=50"`
	Percent   *int   `json:"percent" validate:"required,min=1,max=100"`
	DueDate   *int64 `json:"due_date" validate:"required,gt=0"`
	IsEnabled *bool  `json:"is_enabled" validate:"required"`
}

type CouponListResponse struct {
	Success    bool                  `json:"success"`
	Coupons    []model.Coupon        `json:"coupons"`
	Pagination pagination.Pagination `json:"pagination"`
}

type CouponResponse struct {
	Success bool          `json:"success"`
	Coupon  *model.Coupon `json:"coupon"`
}

type CouponCreatedResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	CouponID string `json:"couponId"`
}

// --- Cart ---

type CartInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty" validate:"required,min=1,max=100000"`
}

type CartSummary struct {
	Carts      []model.CartLine `json:"carts"`
	FinalTotal decimal.Decimal  `json:"final_total"`
	Total      decimal.Decimal  `json:"total"`
}

type CartResponse struct {
	Success bool        `json:"success"`
	Data    CartSummary `json:"data"`
}

type CartLineResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    model.CartLine `json:"data"`
}

type CartUpdatedResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    CartInput `json:"data"`
}

// --- Order ---

type OrderUserInput struct {
	Name    string `json:"name" validate:"required"`
	Tel     string `json:"tel" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
}

type OrderRequest struct {
	User *OrderUserInput `json:"user" validate:"required"`
}

type OrderPlacedResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Total    decimal.Decimal `json:"total"`
	OrderID  string          `json:"orderId"`
	CreateAt int64           `json:"create_at"`
}

type OrderResponse struct {
	Success bool         `json:"success"`
	Order   *model.Order `json:"order"`
}

type OrderListResponse struct {
	Success    bool                  `json:"success"`
	Orders     []model.Order         `json:"orders"`
	Pagination pagination.Pagination `json:"pagination"`
}

// --- Customer ---

type CustomerResponse struct {
	Success  bool            `json:"success"`
	Customer *model.Customer `json:"customer"`
}

// --- Common ---

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}
