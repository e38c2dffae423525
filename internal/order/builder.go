package order

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bookstore-be/internal/catalog"
	"bookstore-be/internal/db"
	"bookstore-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Builder turns a placement request into a priced Draft. It reads the
// catalog but never touches inventory.
type Builder struct {
	books catalog.Repository
}

func NewBuilder(books catalog.Repository) *Builder {
	return &Builder{books: books}
}

// Validate checks the request shape and reports every bad field at once.
func Validate(in PlaceOrderInput) error {
	verr := newValidationError()

	if len(in.Items) == 0 {
		verr.add("items", "At least one item is required")
	}
	for i, item := range in.Items {
		if item.BookID <= 0 {
			verr.add(fmt.Sprintf("items[%d].bookId", i), "Valid bookId is required")
		}
		if item.Quantity <= 0 {
			verr.add(fmt.Sprintf("items[%d].quantity", i), "Quantity must be greater than 0")
		}
	}

	if email := normalize(in.CustomerEmail); email != nil && !emailRegex.MatchString(*email) {
		verr.add("customerEmail", "Invalid email format")
	}

	return verr.orNil()
}

// Build validates in and prices every line at the book's current price.
func (b *Builder) Build(ctx context.Context, q db.Querier, in PlaceOrderInput) (*Draft, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "BuildDraft"),
		zap.Int("item_count", len(in.Items)),
	)

	if err := Validate(in); err != nil {
		log.Warn("invalid order request", zap.Error(err))
		return nil, err
	}

	draft := &Draft{
		Lines:           make([]DraftLine, 0, len(in.Items)),
		Total:           decimal.Zero,
		CustomerEmail:   normalize(in.CustomerEmail),
		CustomerName:    normalize(in.CustomerName),
		ShippingAddress: normalize(in.ShippingAddress),
	}

	for _, item := range in.Items {
		book, err := b.books.LookupBook(ctx, q, item.BookID)
		if err != nil {
			return nil, err
		}
		if !book.Available() {
			log.Warn("book archived", zap.Int64("book_id", item.BookID))
			return nil, catalog.ErrBookNotFound
		}

		subtotal := LineSubtotal(book.Price, item.Quantity)
		draft.Lines = append(draft.Lines, DraftLine{
			BookID:    book.ID,
			Title:     book.Title,
			Author:    book.Author,
			Quantity:  item.Quantity,
			UnitPrice: book.Price,
			Subtotal:  subtotal,
			Available: book.Quantity,
		})
		draft.Total = draft.Total.Add(subtotal)
	}

	draft.Total = draft.Total.Round(2)

	log.Debug("draft priced", zap.String("total", draft.Total.StringFixed(2)))
	return draft, nil
}

// LineSubtotal is price × quantity rounded half-up to cents.
func LineSubtotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// normalize maps absent and blank optional fields to nil.
func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
