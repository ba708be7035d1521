package repository

import (
	"context"

	"storefront/internal/domain"
)

// ProductRepository is the catalog boundary the order core depends on. The
// three mutators are the inventory ledger primitives: DecrementStock is an
// atomic conditional decrement and fails with domain.ErrInsufficientStock
// instead of ever driving a size below zero.
type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	SizeStock(ctx context.Context, productID uint64, size string) (int64, error)
	DecrementStock(ctx context.Context, productID uint64, size string, qty int64) error
	IncrementStock(ctx context.Context, productID uint64, size string, qty int64) error
	IncrementSold(ctx context.Context, productID uint64, qty int64) error
}
