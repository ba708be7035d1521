package memory

import (
	"context"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// productRecord guards one product. Stock mutations for a (product, size)
// key serialize on this mutex, which keeps the conditional decrement atomic
// while leaving unrelated products fully parallel.
type productRecord struct {
	mu      sync.Mutex
	product domain.Product
}

type ProductRepo struct {
	mu     sync.RWMutex
	byID   map[uint64]*productRecord
	nextID uint64
}

func NewProductRepository() *ProductRepo {
	return &ProductRepo{byID: make(map[uint64]*productRecord)}
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Save(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == 0 {
		r.nextID++
		product.ID = r.nextID
	} else if product.ID > r.nextID {
		r.nextID = product.ID
	}
	r.byID[product.ID] = &productRecord{product: cloneProduct(product)}
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	rec := r.record(id)
	if rec == nil {
		return nil, nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	p := cloneProduct(&rec.product)
	return &p, nil
}

func (r *ProductRepo) SizeStock(ctx context.Context, productID uint64, size string) (int64, error) {
	rec := r.record(productID)
	if rec == nil {
		return 0, domain.ErrProductNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if entry, ok := rec.product.SizeEntry(size); ok {
		return entry.Stock, nil
	}
	return 0, nil
}

func (r *ProductRepo) DecrementStock(ctx context.Context, productID uint64, size string, qty int64) error {
	rec := r.record(productID)
	if rec == nil {
		return domain.ErrProductNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := range rec.product.Sizes {
		s := &rec.product.Sizes[i]
		if s.Size != size {
			continue
		}
		if s.Stock < qty {
			return domain.ErrInsufficientStock
		}
		s.Stock -= qty
		return nil
	}
	return domain.ErrInsufficientStock
}

func (r *ProductRepo) IncrementStock(ctx context.Context, productID uint64, size string, qty int64) error {
	rec := r.record(productID)
	if rec == nil {
		return domain.ErrProductNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := range rec.product.Sizes {
		s := &rec.product.Sizes[i]
		if s.Size == size {
			s.Stock += qty
			return nil
		}
	}
	rec.product.Sizes = append(rec.product.Sizes, domain.SizeStock{
		ProductID: productID,
		Size:      size,
		Stock:     qty,
	})
	return nil
}

func (r *ProductRepo) IncrementSold(ctx context.Context, productID uint64, qty int64) error {
	rec := r.record(productID)
	if rec == nil {
		return domain.ErrProductNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.product.Sold += qty
	return nil
}

func (r *ProductRepo) record(id uint64) *productRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

func cloneProduct(p *domain.Product) domain.Product {
	out := *p
	out.Sizes = make([]domain.SizeStock, len(p.Sizes))
	copy(out.Sizes, p.Sizes)
	return out
}
