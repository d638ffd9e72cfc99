package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
)

type reviewGormRepository struct {
	db *gorm.DB
}

// DI
func NewReviewGormRepository(db *gorm.DB) repo.ReviewRepository {
	return &reviewGormRepository{db: db}
}

func (r *reviewGormRepository) Create(ctx context.Context, review *model.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return err
	}
	return nil
}

func (r *reviewGormRepository) FindByID(ctx context.Context, reviewID int64) (model.Review, error) {
	var rv model.Review
	err := r.db.WithContext(ctx).First(&rv, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Review{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Review{}, err
	}
	return rv, nil
}

func (r *reviewGormRepository) ListByProductID(ctx context.Context, productID int64, page int, limit int) ([]model.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return []model.Review{}, 0, err
	}

	var reviews []model.Review
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("helpful_count desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return []model.Review{}, 0, err
	}

	return reviews, total, nil
}

// ユーザー×商品の既存レビュー有無
func (r *reviewGormRepository) ExistsByUserAndProduct(ctx context.Context, userID int64, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// 「参考になった」を+1
func (r *reviewGormRepository) IncrementHelpful(ctx context.Context, reviewID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("helpful_count", gorm.Expr("helpful_count + ?", 1))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *reviewGormRepository) Delete(ctx context.Context, reviewID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Review{}, reviewID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
