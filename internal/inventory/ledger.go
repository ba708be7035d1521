package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// Reservation identifies one (product, size) stock decrement.
type Reservation struct {
	ProductID uint64
	Size      string
	Quantity  int64
}

// Ledger applies stock effects against the catalog store. Each primitive is
// atomic per (product, size); Reserve composes them into an all-or-nothing
// multi-key operation for a whole checkout.
type Ledger struct {
	products repository.ProductRepository
	timeout  time.Duration
	logger   *zap.Logger
}

const defaultReserveTimeout = 3 * time.Second

func NewLedger(products repository.ProductRepository, logger *zap.Logger) *Ledger {
	return &Ledger{
		products: products,
		timeout:  defaultReserveTimeout,
		logger:   logger,
	}
}

// SetReserveTimeout bounds how long one Reserve may hold partially acquired
// stock before it compensates and reports a retryable conflict.
func (l *Ledger) SetReserveTimeout(d time.Duration) {
	l.timeout = d
}

// Reserve decrements stock for every reservation in the set, or for none of
// them. Keys are acquired in a fixed (productID, size) order; on the first
// failure every decrement already applied is put back before returning.
func (l *Ledger) Reserve(ctx context.Context, reservations []Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	sorted := make([]Reservation, len(reservations))
	copy(sorted, reservations)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID < sorted[j].ProductID
		}
		return sorted[i].Size < sorted[j].Size
	})

	applied := make([]Reservation, 0, len(sorted))
	for _, rsv := range sorted {
		err := l.products.DecrementStock(ctx, rsv.ProductID, rsv.Size, rsv.Quantity)
		if err == nil {
			applied = append(applied, rsv)
			continue
		}
		l.compensate(applied)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %v", domain.ErrConflictRetryable, err)
		}
		return fmt.Errorf("reserve %d/%s x%d: %w", rsv.ProductID, rsv.Size, rsv.Quantity, err)
	}
	return nil
}

// Release restores stock for a single key. Used as the compensating action on
// order deletion; it never reports insufficient stock.
func (l *Ledger) Release(ctx context.Context, productID uint64, size string, qty int64) error {
	if err := l.products.IncrementStock(ctx, productID, size, qty); err != nil {
		return fmt.Errorf("release %d/%s x%d: %w", productID, size, qty, err)
	}
	return nil
}

// MarkSold credits the product's sold counter on delivery. It does not touch
// stock: sold is a historical fact, not reservation state.
func (l *Ledger) MarkSold(ctx context.Context, productID uint64, qty int64) error {
	if err := l.products.IncrementSold(ctx, productID, qty); err != nil {
		return fmt.Errorf("mark sold %d x%d: %w", productID, qty, err)
	}
	return nil
}

// compensate runs outside the caller's deadline: a reservation that already
// hit the store must be reversed even when the checkout context expired.
func (l *Ledger) compensate(applied []Reservation) {
	for _, rsv := range applied {
		if err := l.products.IncrementStock(context.Background(), rsv.ProductID, rsv.Size, rsv.Quantity); err != nil {
			l.logger.Error("failed to compensate reservation",
				zap.Uint64("productId", rsv.ProductID),
				zap.String("size", rsv.Size),
				zap.Int64("quantity", rsv.Quantity),
				zap.Error(err))
		}
	}
}
