package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
)

type sellerProfileGormRepository struct {
	db *gorm.DB
}

// DI
func NewSellerProfileGormRepository(db *gorm.DB) repo.SellerProfileRepository {
	return &sellerProfileGormRepository{db: db}
}

func (r *sellerProfileGormRepository) Create(ctx context.Context, profile *model.SellerProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return err
	}
	return nil
}

func (r *sellerProfileGormRepository) FindByID(ctx context.Context, id int64) (model.SellerProfile, error) {
	var p model.SellerProfile
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SellerProfile{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SellerProfile{}, err
	}
	return p, nil
}

// 出品者ユーザーIDから1件取得
func (r *sellerProfileGormRepository) FindByUserID(ctx context.Context, userID int64) (model.SellerProfile, error) {
	var p model.SellerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SellerProfile{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SellerProfile{}, err
	}
	return p, nil
}

func (r *sellerProfileGormRepository) Update(ctx context.Context, profile model.SellerProfile) error {
	res := r.db.WithContext(ctx).
		Model(&model.SellerProfile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"shop_name":   profile.ShopName,
			"description": profile.Description,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *sellerProfileGormRepository) ExistsByTaxID(ctx context.Context, taxID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SellerProfile{}).
		Where("tax_id = ?", taxID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *sellerProfileGormRepository) SetVerified(ctx context.Context, id int64, verified bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.SellerProfile{}).
		Where("id = ?", id).
		Update("is_verified", verified)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
