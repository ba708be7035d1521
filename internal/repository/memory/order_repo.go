package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type OrderRepo struct {
	mu     sync.RWMutex
	byID   map[uint64]domain.Order
	ids    []uint64 // insertion order, the natural storage order for listings
	nextID uint64
}

func NewOrderRepository() *OrderRepo {
	return &OrderRepo{byID: make(map[uint64]domain.Order)}
}

var _ repository.OrderRepository = (*OrderRepo)(nil)

func (r *OrderRepo) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == 0 {
		r.nextID++
		order.ID = r.nextID
	}
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
	}
	r.byID[order.ID] = cloneOrder(*order)
	r.ids = append(r.ids, order.ID)
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	out := cloneOrder(o)
	return &out, nil
}

func (r *OrderRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Order
	for _, id := range r.ids {
		if o, ok := r.byID[id]; ok && o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r *OrderRepo) List(ctx context.Context, filter repository.OrderFilter, sortBy repository.OrderSort, page repository.OrderPage) ([]domain.Order, int64, int64, error) {
	r.mu.RLock()
	matched := make([]domain.Order, 0, len(r.ids))
	for _, id := range r.ids {
		o, ok := r.byID[id]
		if !ok {
			continue
		}
		if matches(o, filter) {
			matched = append(matched, cloneOrder(o))
		}
	}
	totalAll := int64(len(r.ids))
	r.mu.RUnlock()

	totalMatching := int64(len(matched))
	sortOrders(matched, sortBy)

	if page.Offset > 0 {
		if page.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[page.Offset:]
		}
	}
	if page.Limit > 0 && page.Limit < len(matched) {
		matched = matched[:page.Limit]
	}
	return matched, totalMatching, totalAll, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus, paid bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrConflictRetryable
	}
	o.Status = to
	o.Paid = paid
	r.byID[id] = o
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.byID, id)
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	return nil
}

func matches(o domain.Order, filter repository.OrderFilter) bool {
	if filter.Status != "" && o.Status != filter.Status {
		return false
	}
	if filter.Query == "" {
		return true
	}
	needle := strings.ToLower(filter.Query)
	return strings.Contains(strings.ToLower(o.BuyerName), needle) ||
		strings.Contains(strings.ToLower(o.BuyerEmail), needle) ||
		strings.Contains(strings.ToLower(o.OrderCode), needle)
}

func sortOrders(orders []domain.Order, by repository.OrderSort) {
	var less func(a, b domain.Order) bool
	switch by.By {
	case repository.SortCreatedAt:
		less = func(a, b domain.Order) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case repository.SortTotalPrice:
		less = func(a, b domain.Order) bool { return a.TotalPrice < b.TotalPrice }
	case repository.SortStatus:
		less = func(a, b domain.Order) bool { return a.Status < b.Status }
	default:
		return
	}
	sort.SliceStable(orders, func(i, j int) bool {
		if by.Desc {
			return less(orders[j], orders[i])
		}
		return less(orders[i], orders[j])
	})
}

func cloneOrder(o domain.Order) domain.Order {
	out := o
	out.Lines = make([]domain.OrderLine, len(o.Lines))
	copy(out.Lines, o.Lines)
	return out
}
