package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryElectronics ProductCategory = "electronics"
	CategoryClothing    ProductCategory = "clothing"
	CategoryHome        ProductCategory = "home"
	CategoryBeauty      ProductCategory = "beauty"
	CategorySports      ProductCategory = "sports"
	CategoryBooks       ProductCategory = "books"
)

// カテゴリが固定セットに含まれるか
func IsValidCategory(c ProductCategory) bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryHome,
		CategoryBeauty, CategorySports, CategoryBooks:
		return true
	}
	return false
}

// Priceは最小通貨単位（パイサ）で保持する。
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID    int64           `gorm:"not null;index" json:"seller_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Category    ProductCategory `gorm:"type:varchar(50);not null;index" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	Price       int64           `gorm:"not null" json:"price"`
	Stock       int64           `gorm:"not null" json:"stock"`
	Images      pq.StringArray  `gorm:"type:text[]" json:"images"`

	//管理者承認フラグ。falseの間は公開一覧に出ない。
	IsApproved bool `gorm:"not null;default:false" json:"is_approved"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
