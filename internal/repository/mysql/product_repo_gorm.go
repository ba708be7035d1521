package mysql

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Save(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Preload("Sizes").First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return &p, nil
}

func (r *productRepo) SizeStock(ctx context.Context, productID uint64, size string) (int64, error) {
	var row domain.SizeStock
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND size = ?", productID, size).
		First(&row).Error
	if err == nil {
		return row.Stock, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("size stock %d/%s: %w", productID, size, err)
	}
	exists, err := r.productExists(ctx, productID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, domain.ErrProductNotFound
	}
	return 0, nil
}

// DecrementStock is the reservation primitive: a single conditional UPDATE so
// the stock check and the decrement cannot be interleaved by another buyer.
func (r *productRepo) DecrementStock(ctx context.Context, productID uint64, size string, qty int64) error {
	res := r.db.WithContext(ctx).Model(&domain.SizeStock{}).
		Where("product_id = ? AND size = ? AND stock >= ?", productID, size, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("decrement stock %d/%s: %w", productID, size, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	exists, err := r.productExists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	return domain.ErrInsufficientStock
}

func (r *productRepo) IncrementStock(ctx context.Context, productID uint64, size string, qty int64) error {
	res := r.db.WithContext(ctx).Model(&domain.SizeStock{}).
		Where("product_id = ? AND size = ?", productID, size).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("increment stock %d/%s: %w", productID, size, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	exists, err := r.productExists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	// Size row was removed from the catalog; recreate it so released stock
	// is not lost.
	row := domain.SizeStock{ProductID: productID, Size: size, Stock: qty}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("restore size row %d/%s: %w", productID, size, err)
	}
	return nil
}

func (r *productRepo) IncrementSold(ctx context.Context, productID uint64, qty int64) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", productID).
		UpdateColumn("sold", gorm.Expr("sold + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("increment sold %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepo) productExists(ctx context.Context, productID uint64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", productID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup product %d: %w", productID, err)
	}
	return count > 0, nil
}
