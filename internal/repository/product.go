package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	//承認済みの商品だけを返す公開一覧
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//出品者自身の商品一覧（未承認含む）
	ListBySellerID(ctx context.Context, sellerID int64) ([]model.Product, error)

	//管理者用の全件一覧（未承認含む）
	ListAll(ctx context.Context, page int, limit int) ([]model.Product, int64, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SetApproved(ctx context.Context, id int64, approved bool) error
	SoftDelete(ctx context.Context, id int64) error
}
