package repository

import (
	"app/internal/domain/model"
	"context"
)

// ショップ情報の保存・取得の約束。
type SellerProfileRepository interface {
	Create(ctx context.Context, profile *model.SellerProfile) error
	FindByID(ctx context.Context, id int64) (model.SellerProfile, error)
	//出品者ユーザーIDから1件取得
	FindByUserID(ctx context.Context, userID int64) (model.SellerProfile, error)
	Update(ctx context.Context, profile model.SellerProfile) error
	SetVerified(ctx context.Context, id int64, verified bool) error
	//税番号の重複チェック用
	ExistsByTaxID(ctx context.Context, taxID string) (bool, error)
}
