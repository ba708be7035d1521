package mysql

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	if order.ID == 0 {
		return errors.New("order saved without an id")
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Lines").First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}
	return &o, nil
}

func (r *orderRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find orders for user %d: %w", userID, err)
	}
	return out, nil
}

// effectiveLimit normalizes the page for MySQL, which rejects OFFSET without
// LIMIT. An offset-only page still returns every remaining match.
func effectiveLimit(page repository.OrderPage) int {
	if page.Limit <= 0 && page.Offset > 0 {
		return math.MaxInt
	}
	return page.Limit
}

var sortColumns = map[repository.SortField]string{
	repository.SortCreatedAt:  "created_at",
	repository.SortTotalPrice: "total_price",
	repository.SortStatus:     "status",
}

func (r *orderRepo) List(ctx context.Context, filter repository.OrderFilter, sort repository.OrderSort, page repository.OrderPage) ([]domain.Order, int64, int64, error) {
	var totalAll int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Count(&totalAll).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("count orders: %w", err)
	}

	q := r.db.WithContext(ctx).Model(&domain.Order{})
	if filter.Query != "" {
		needle := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where(
			"LOWER(buyer_name) LIKE ? OR LOWER(buyer_email) LIKE ? OR LOWER(order_code) LIKE ?",
			needle, needle, needle,
		)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var totalMatching int64
	if err := q.Count(&totalMatching).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("count matching orders: %w", err)
	}

	if col, ok := sortColumns[sort.By]; ok {
		dir := "ASC"
		if sort.Desc {
			dir = "DESC"
		}
		q = q.Order(col + " " + dir)
	}
	if limit := effectiveLimit(page); limit > 0 {
		q = q.Limit(limit)
	}
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}

	var out []domain.Order
	if err := q.Preload("Lines").Find(&out).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("list orders: %w", err)
	}
	return out, totalMatching, totalAll, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus, paid bool) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "paid": paid})
	if res.Error != nil {
		return fmt.Errorf("update order %d status: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup order %d: %w", id, err)
	}
	if count == 0 {
		return domain.ErrOrderNotFound
	}
	return domain.ErrConflictRetryable
}

func (r *orderRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Select("Lines").Delete(&domain.Order{ID: id})
	if res.Error != nil {
		return fmt.Errorf("delete order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
