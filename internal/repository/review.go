package repository

import (
	"context"

	"app/internal/domain/model"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, reviewID int64) (model.Review, error)
	ListByProductID(ctx context.Context, productID int64, page int, limit int) ([]model.Review, int64, error)

	//ユーザー×商品の既存レビュー有無
	ExistsByUserAndProduct(ctx context.Context, userID int64, productID int64) (bool, error)

	//「参考になった」を+1
	IncrementHelpful(ctx context.Context, reviewID int64) error

	Delete(ctx context.Context, reviewID int64) error
}
