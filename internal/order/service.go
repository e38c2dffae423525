package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"bookstore-be/internal/auth"
	"bookstore-be/internal/catalog"
	"bookstore-be/internal/db"
	"bookstore-be/internal/events"
	"bookstore-be/internal/inventory"
	"bookstore-be/internal/logger"
	"bookstore-be/internal/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Service is the order-lifecycle API exposed to the request layer.
type Service interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error)
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	SetOrderStatus(ctx context.Context, orderID int64, status string) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) (*OrderPage, error)
}

type service struct {
	store     db.Transactor
	repo      Repository
	books     catalog.Repository
	ledger    inventory.Ledger
	builder   *Builder
	publisher events.Publisher
	metrics   *metrics.OrderMetrics

	now         func() time.Time
	orderNumber func(time.Time) string
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithOrderNumbers(gen func(time.Time) string) Option {
	return func(s *service) { s.orderNumber = gen }
}

func NewService(
	store db.Transactor,
	repo Repository,
	books catalog.Repository,
	ledger inventory.Ledger,
	publisher events.Publisher,
	m *metrics.OrderMetrics,
	opts ...Option,
) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if m == nil {
		m = &metrics.OrderMetrics{}
	}

	s := &service{
		store:       store,
		repo:        repo,
		books:       books,
		ledger:      ledger,
		builder:     NewBuilder(books),
		publisher:   publisher,
		metrics:     m,
		now:         time.Now,
		orderNumber: GenerateOrderNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder prices the request, fails fast on visibly short stock, then
// commits the order, its lines and every reservation as one unit. The guarded
// reservation inside the transaction is what prevents oversell; the
// pre-check only makes the common rejection cheap.
func (s *service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error) {
	timer := metrics.StartTimer()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.Int("item_count", len(in.Items)),
	)

	log.Debug("place order started")

	draft, err := s.builder.Build(ctx, s.store, in)
	if err != nil {
		return nil, s.reject(log, err)
	}

	if err := precheck(draft); err != nil {
		return nil, s.reject(log, err)
	}

	var placed *Order
	err = s.store.WithinTx(ctx, func(q db.Querier) error {
		o := &Order{
			OrderNumber:     s.orderNumber(s.now()),
			Status:          StatusConfirmed,
			Total:           decimal.Zero,
			CustomerEmail:   draft.CustomerEmail,
			CustomerName:    draft.CustomerName,
			ShippingAddress: draft.ShippingAddress,
		}
		if err := s.repo.InsertOrder(ctx, q, o); err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range draft.Lines {
			item, err := s.commitLine(ctx, q, o.ID, line)
			if err != nil {
				return err
			}
			total = total.Add(item.Subtotal)
		}

		if err := s.repo.UpdateTotal(ctx, q, o.ID, total.Round(2)); err != nil {
			return err
		}

		hydrated, err := s.repo.GetOrder(ctx, q, o.ID)
		if err != nil {
			return err
		}
		placed = hydrated
		return nil
	})
	if err != nil {
		return nil, s.reject(log, err)
	}

	s.metrics.Placed.Inc()
	s.metrics.ObservePlacement(timer)

	log.Info("order placed",
		zap.Int64("order_id", placed.ID),
		zap.String("order_number", placed.OrderNumber),
		zap.String("total", placed.Total.StringFixed(2)),
	)

	s.publish(ctx, events.OrderPlaced, placed)
	return placed, nil
}

// commitLine re-reads the book inside the transaction, reserves its stock and
// writes the line with the price seen there.
func (s *service) commitLine(ctx context.Context, q db.Querier, orderID int64, line DraftLine) (*OrderItem, error) {
	book, err := s.books.LookupBook(ctx, q, line.BookID)
	if err != nil {
		return nil, err
	}
	if !book.Available() {
		return nil, catalog.ErrBookNotFound
	}

	if err := s.ledger.Reserve(ctx, q, book.ID, line.Quantity); err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			stockErr.Title = book.Title
		}
		return nil, err
	}

	item := &OrderItem{
		OrderID:   orderID,
		BookID:    book.ID,
		Quantity:  line.Quantity,
		UnitPrice: book.Price,
		Subtotal:  LineSubtotal(book.Price, line.Quantity),
	}
	if err := s.repo.InsertItem(ctx, q, item); err != nil {
		return nil, err
	}
	return item, nil
}

// precheck compares each book's total requested quantity with the stock
// observed while pricing.
func precheck(d *Draft) error {
	requested := make(map[int64]int, len(d.Lines))
	for _, line := range d.Lines {
		requested[line.BookID] += line.Quantity
		if requested[line.BookID] > line.Available {
			return &InsufficientStockError{
				BookID:    line.BookID,
				Title:     line.Title,
				Requested: requested[line.BookID],
				Available: line.Available,
			}
		}
	}
	return nil
}

func (s *service) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	if orderID <= 0 {
		return nil, invalidOrderID()
	}
	return s.repo.GetOrder(ctx, s.store, orderID)
}

// SetOrderStatus applies a lifecycle transition. The order row is locked
// before the transition is decided, so concurrent cancellations serialise and
// only the first one releases stock.
func (s *service) SetOrderStatus(ctx context.Context, orderID int64, status string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SetOrderStatus"),
		zap.Int64("order_id", orderID),
		zap.String("target_status", status),
	)

	target, err := ParseStatus(status)
	if err != nil {
		return nil, s.reject(log, err)
	}
	if orderID <= 0 {
		return nil, s.reject(log, invalidOrderID())
	}

	var (
		updated *Order
		from    Status
		effect  Effect
	)
	err = s.store.WithinTx(ctx, func(q db.Querier) error {
		current, err := s.repo.LockOrder(ctx, q, orderID)
		if err != nil {
			return err
		}
		from = current.Status

		effect, err = Transition(current.Status, target)
		if err != nil {
			return err
		}

		switch effect {
		case EffectReleaseStock:
			for _, item := range current.Items {
				if err := s.ledger.Release(ctx, q, item.BookID, item.Quantity); err != nil {
					return err
				}
			}
			if err := s.repo.UpdateStatus(ctx, q, orderID, StatusCancelled); err != nil {
				return err
			}
		case EffectUpdateStatus:
			if err := s.repo.UpdateStatus(ctx, q, orderID, target); err != nil {
				return err
			}
		}

		updated, err = s.repo.GetOrder(ctx, q, orderID)
		return err
	})
	if err != nil {
		return nil, s.reject(log, err)
	}

	switch effect {
	case EffectReleaseStock:
		s.metrics.Cancelled.Inc()
		log.Info("order cancelled and stock released", zap.Int("line_count", len(updated.Items)))
		s.publish(ctx, events.OrderCancelled, updated)
	case EffectUpdateStatus:
		log.Info("order status changed", zap.String("from", string(from)))
		s.publish(ctx, events.OrderStatusChanged, updated)
	default:
		log.Debug("order already in target status")
	}

	return updated, nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) (*OrderPage, error) {
	verr := newValidationError()

	page := filter.Page
	if page == 0 {
		page = 1
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	switch {
	case page < 1:
		verr.add("page", "Page must be >= 1")
	case page-1 > math.MaxInt/limit:
		verr.add("page", "Page is too large")
	}

	var status *Status
	if filter.Status != "" {
		st, err := ParseStatus(filter.Status)
		if err != nil {
			verr.add("status", "Invalid status")
		} else {
			status = &st
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	offset := (page - 1) * limit

	orders, err := s.repo.ListOrders(ctx, s.store, status, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountOrders(ctx, s.store, status)
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders: orders,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

// reject counts and logs a failed operation and converts store conflicts into
// ErrTransactionAborted. Nothing was applied when it is called.
func (s *service) reject(log *zap.Logger, err error) error {
	var stockErr *InsufficientStockError

	switch {
	case errors.Is(err, ErrValidation):
		s.metrics.RejectedValidation.Inc()
		log.Warn("request rejected", zap.Error(err))
	case errors.As(err, &stockErr):
		s.metrics.RejectedStock.Inc()
		log.Warn("insufficient stock",
			zap.Int64("book_id", stockErr.BookID),
			zap.Int("requested", stockErr.Requested),
			zap.Int("available", stockErr.Available),
		)
	case errors.Is(err, ErrBookNotFound), errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrInvalidTransition):
		log.Warn("request rejected", zap.Error(err))
	case db.IsRetryable(err):
		s.metrics.TransactionsAborted.Inc()
		log.Warn("transaction aborted", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrTransactionAborted, err)
	default:
		log.Error("operation failed", zap.Error(err))
	}
	return err
}

// publish is best effort: the state change has already committed.
func (s *service) publish(ctx context.Context, typ events.EventType, o *Order) {
	lines := make([]events.OrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, events.OrderLine{BookID: item.BookID, Quantity: item.Quantity})
	}

	event := events.OrderEvent{
		Type:        typ,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		Total:       o.Total.StringFixed(2),
		Items:       lines,
		OccurredAt:  s.now().UTC(),
		RequestID:   logger.RequestIDFrom(ctx),
	}
	if claims, ok := auth.ClaimsFrom(ctx); ok {
		event.Actor = claims.Subject
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish order event",
			zap.String("event_type", string(typ)),
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}
}

func invalidOrderID() error {
	verr := newValidationError()
	verr.add("id", "Valid order id is required")
	return verr
}
