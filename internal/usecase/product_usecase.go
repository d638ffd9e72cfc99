package usecase

import (
	"context"
	"errors"
	"log"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 商品詳細のキャッシュの約束（Redis実装はinfra側）。
type ProductCache interface {
	Get(ctx context.Context, productID int64) (*model.Product, error)
	Set(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, productID int64) error
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	userRepo    repo.UserRepository
	cache       ProductCache
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, userRepo repo.UserRepository, cache ProductCache) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		userRepo:    userRepo,
		cache:       cache,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 公開商品一覧（承認済みのみ）
func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Category != "" && !model.IsValidCategory(model.ProductCategory(in.Category)) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid min_price")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid max_price")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        in.Q,
		Category: in.Category,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 商品詳細。cache-aside：ヒットすればDBに行かない。
// 未承認の商品は「存在しない扱い」（404）。
func (u *ProductUsecase) GetProductDetail(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var p model.Product
	if cached, err := u.cache.Get(ctx, id); err == nil {
		p = *cached
	} else {
		if !errors.Is(err, ErrCacheMiss) {
			//Redis障害はDBへフォールバック
			log.Printf("product cache get failed: %v", err)
		}

		found, err := u.productRepo.FindByID(ctx, id)
		if err == repo.ErrNotFound {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !found.IsApproved {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}

		if err := u.cache.Set(ctx, &found); err != nil {
			log.Printf("product cache set failed: %v", err)
		}
		p = found
	}

	// 出品者の有効性はキャッシュに載せず、毎回確認する
	seller, err := u.userRepo.FindByID(ctx, p.SellerID)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if seller == nil || !seller.IsActive {
		// 停止された出品者の商品は見せない
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return p, nil
}
