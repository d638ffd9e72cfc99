package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 管理者の注文一覧。絞り込み付き。
type AdminOrderUsecase struct {
	orderRepo repo.OrderRepository
}

// DI
func NewAdminOrderUsecase(orderRepo repo.OrderRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{orderRepo: orderRepo}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (OrderListOutput, error) {
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Status != "" {
		switch model.OrderStatus(in.Status) {
		case model.OrderStatusPending, model.OrderStatusProcessing, model.OrderStatusShipped,
			model.OrderStatusDelivered, model.OrderStatusCancelled:
		default:
			return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	items, total, err := u.orderRepo.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: in.Status,
		UserID: in.UserID,
		From:   in.From,
		To:     in.To,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}
