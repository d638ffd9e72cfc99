package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// レビュー。投稿資格は「配達済み注文にその商品を含む」かつ「未投稿」。
type ReviewUsecase struct {
	reviewRepo  repo.ReviewRepository
	orderRepo   repo.OrderRepository
	productRepo repo.ProductRepository
}

// DI
func NewReviewUsecase(
	reviewRepo repo.ReviewRepository,
	orderRepo repo.OrderRepository,
	productRepo repo.ProductRepository,
) *ReviewUsecase {
	return &ReviewUsecase{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

type CreateReviewInput struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// 投稿。資格チェック→重複チェック→保存。
func (u *ReviewUsecase) Create(ctx context.Context, userID int64, productID int64, in CreateReviewInput) (model.Review, error) {
	if userID <= 0 {
		return model.Review{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "title is required")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Review{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Review{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsApproved {
		return model.Review{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	eligible, err := u.orderRepo.HasDeliveredOrderWithProduct(ctx, userID, productID)
	if err != nil {
		return model.Review{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !eligible {
		return model.Review{}, NewHTTPError(http.StatusForbidden, "purchase and delivery required to review")
	}

	exists, err := u.reviewRepo.ExistsByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return model.Review{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return model.Review{}, NewHTTPError(http.StatusConflict, "review already exists")
	}

	review := model.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Title:     strings.TrimSpace(in.Title),
		Comment:   in.Comment,
	}
	if err := u.reviewRepo.Create(ctx, &review); err != nil {
		return model.Review{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return review, nil
}

type ReviewListOutput struct {
	Items []model.Review `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// 商品のレビュー一覧（公開）
func (u *ReviewUsecase) ListByProduct(ctx context.Context, productID int64, page int, limit int) (ReviewListOutput, error) {
	if productID <= 0 {
		return ReviewListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if page < 1 {
		return ReviewListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return ReviewListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.reviewRepo.ListByProductID(ctx, productID, page, limit)
	if err != nil {
		return ReviewListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ReviewListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 「参考になった」を+1する。ログイン必須、重複は許容。
func (u *ReviewUsecase) MarkHelpful(ctx context.Context, userID int64, reviewID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if reviewID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.reviewRepo.IncrementHelpful(ctx, reviewID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 削除は投稿者本人か管理者のみ。
func (u *ReviewUsecase) Delete(ctx context.Context, actorUserID int64, actorRole model.Role, reviewID int64) error {
	if actorUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if reviewID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	review, err := u.reviewRepo.FindByID(ctx, reviewID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if review.UserID != actorUserID && actorRole != model.RoleAdmin {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	if err := u.reviewRepo.Delete(ctx, reviewID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
