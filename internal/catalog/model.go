package catalog

import "github.com/shopspring/decimal"

// Book is the inventory-bearing catalog entry. Orders only read Price and
// Quantity from it; Quantity is written exclusively through the inventory ledger.
type Book struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	IsArchived bool            `json:"isArchived"`
}

// Available reports whether the book can be sold at all.
func (b *Book) Available() bool {
	return b != nil && !b.IsArchived
}
