package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 承認済みかつ出品者が有効な商品のみを、検索/カテゴリ/価格帯/ソート/ページング付きで返す。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// 承認済み（is_approved=true）で、停止された出品者の商品は除く
	tx = tx.Where("is_approved = ?", true)
	tx = tx.Joins("JOIN users ON users.id = products.seller_id").
		Where("users.is_active = ?", true)

	// q nameを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("products.name ILIKE ?", like)
	}

	//カテゴリ
	if q.Category != "" {
		tx = tx.Where("products.category = ?", q.Category)
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("products.price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("products.price <= ?", *q.MaxPrice)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	//sort
	switch q.Sort {
	case "price_asc":
		tx = tx.Order("products.price asc").Order("products.id asc")
	case "price_desc":
		tx = tx.Order("products.price desc").Order("products.id desc")
	default:
		tx = tx.Order("products.created_at desc").Order("products.id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 出品者自身の商品一覧（未承認含む）
func (r *ProductGormRepository) ListBySellerID(ctx context.Context, sellerID int64) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("id desc").
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 管理者用の全件一覧（未承認含む）
func (r *ProductGormRepository) ListAll(ctx context.Context, page int, limit int) ([]model.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	var products []model.Product
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"category":    p.Category,
		"description": p.Description,
		"price":       p.Price,
		"stock":       p.Stock,
		"images":      p.Images,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 承認フラグの更新
func (r *ProductGormRepository) SetApproved(ctx context.Context, id int64, approved bool) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("is_approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
