package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// BookSummary is the catalog data shown next to an order line.
type BookSummary struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// OrderItem is immutable once written. UnitPrice is the book price at the
// moment the order was placed.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	BookID    int64           `json:"bookId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Book      BookSummary     `json:"book"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	Status          Status          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	CustomerEmail   *string         `json:"customerEmail"`
	CustomerName    *string         `json:"customerName"`
	ShippingAddress *string         `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Items           []OrderItem     `json:"items"`
}

// LineInput is one requested (book, quantity) pair. Prices are never accepted
// from callers.
type LineInput struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

type PlaceOrderInput struct {
	Items           []LineInput `json:"items"`
	CustomerEmail   *string     `json:"customerEmail,omitempty"`
	CustomerName    *string     `json:"customerName,omitempty"`
	ShippingAddress *string     `json:"shippingAddress,omitempty"`
}

// DraftLine is a priced order line that has not been committed yet. Available
// is the stock observed while pricing; it only feeds the fast pre-check.
type DraftLine struct {
	BookID    int64
	Title     string
	Author    string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Available int
}

// Draft is a validated, priced order awaiting commit.
type Draft struct {
	Lines           []DraftLine
	Total           decimal.Decimal
	CustomerEmail   *string
	CustomerName    *string
	ShippingAddress *string
}

type ListFilter struct {
	Status string
	Page   int
	Limit  int
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type OrderPage struct {
	Orders     []*Order   `json:"data"`
	Pagination Pagination `json:"pagination"`
}
