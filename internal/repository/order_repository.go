package repository

import (
	"context"

	"storefront/internal/domain"
)

type SortField string

const (
	SortNone       SortField = ""
	SortCreatedAt  SortField = "createdAt"
	SortTotalPrice SortField = "totalPrice"
	SortStatus     SortField = "status"
)

// OrderFilter narrows a listing. Query matches case-insensitively against
// buyer name, buyer email or order code.
type OrderFilter struct {
	Query  string
	Status domain.OrderStatus
}

type OrderSort struct {
	By   SortField
	Desc bool
}

// OrderPage is offset-based; Limit 0 returns all matches.
type OrderPage struct {
	Offset int
	Limit  int
}

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error)
	List(ctx context.Context, filter OrderFilter, sort OrderSort, page OrderPage) (orders []domain.Order, totalMatching int64, totalAll int64, err error)
	// UpdateStatus is a compare-and-swap: the write only lands if the stored
	// status still equals from. A concurrent transition that got there first
	// surfaces as domain.ErrConflictRetryable.
	UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus, paid bool) error
	Delete(ctx context.Context, id uint64) error
}
