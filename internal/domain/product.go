package domain

import "time"

// SizeStock is the per-size inventory row for a product. It is the single
// source of truth for stock; the product-level aggregate is derived from it.
type SizeStock struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID uint64 `json:"productId" gorm:"not null;uniqueIndex:idx_product_size"`
	Size      string `json:"size" gorm:"size:16;not null;uniqueIndex:idx_product_size"`
	Stock     int64  `json:"stock" gorm:"not null"`
}

type Product struct {
	ID        uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string      `json:"name" gorm:"not null"`
	Image     string      `json:"image"`
	Price     int64       `json:"price" gorm:"not null"`
	Sizes     []SizeStock `json:"sizes" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Sold      int64       `json:"sold" gorm:"not null;default:0"`
	CreatedAt time.Time   `json:"createdAt" gorm:"autoCreateTime"`
}

// TotalStock derives the aggregate stock from the per-size rows.
func (p *Product) TotalStock() int64 {
	var total int64
	for _, s := range p.Sizes {
		total += s.Stock
	}
	return total
}

// SizeEntry returns the stock row for an exact size match.
func (p *Product) SizeEntry(size string) (SizeStock, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s, true
		}
	}
	return SizeStock{}, false
}
