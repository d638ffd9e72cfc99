package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//配達済みへの更新はフラグと時刻も一緒に入れる
	MarkDelivered(ctx context.Context, orderID int64, deliveredAt time.Time) error

	//通知メール送信済みフラグ
	SetSellerNotified(ctx context.Context, orderID int64, notified bool) error

	//出品者の商品を1つ以上含む注文の一覧
	ListBySellerID(ctx context.Context, sellerID int64, page int, limit int) ([]model.Order, int64, error)

	//注文にその出品者の商品が含まれるか
	ContainsSeller(ctx context.Context, orderID int64, sellerID int64) (bool, error)

	//レビュー資格判定：配達済み注文にその商品が含まれるか
	HasDeliveredOrderWithProduct(ctx context.Context, userID int64, productID int64) (bool, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
