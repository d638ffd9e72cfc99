package usecase

import (
	"context"
	"log"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/lib/pq"
)

// 出品者自身の商品CRUD。
type SellerProductUsecase struct {
	productRepo repo.ProductRepository
	cache       ProductCache
}

// DI
func NewSellerProductUsecase(productRepo repo.ProductRepository, cache ProductCache) *SellerProductUsecase {
	return &SellerProductUsecase{
		productRepo: productRepo,
		cache:       cache,
	}
}

type SellerProductInput struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Stock       int64    `json:"stock"`
	Images      []string `json:"images"`
}

func validateSellerProductInput(in SellerProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if !model.IsValidCategory(model.ProductCategory(in.Category)) {
		return NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	if in.Price <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid stock")
	}
	return nil
}

// 作成。承認フラグは必ずfalseで入る（承認は管理者のみ）。
func (u *SellerProductUsecase) Create(ctx context.Context, sellerID int64, in SellerProductInput) (model.Product, error) {
	if sellerID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateSellerProductInput(in); err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		SellerID:    sellerID,
		Name:        strings.TrimSpace(in.Name),
		Category:    model.ProductCategory(in.Category),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Images:      pq.StringArray(in.Images),
		IsApproved:  false,
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

// 自分の商品一覧（未承認含む）
func (u *SellerProductUsecase) ListMine(ctx context.Context, sellerID int64) ([]model.Product, error) {
	if sellerID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.productRepo.ListBySellerID(ctx, sellerID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// 更新。他の出品者の商品は404扱い。
func (u *SellerProductUsecase) Update(ctx context.Context, sellerID int64, productID int64, in SellerProductInput) (model.Product, error) {
	if sellerID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateSellerProductInput(in); err != nil {
		return model.Product{}, err
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.SellerID != sellerID {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Category = model.ProductCategory(in.Category)
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.Images = pq.StringArray(in.Images)

	if err := u.productRepo.Update(ctx, p); err != nil {
		if err == repo.ErrNotFound {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//キャッシュは古くなるので消す
	if err := u.cache.Delete(ctx, productID); err != nil {
		log.Printf("product cache delete failed: %v", err)
	}

	return p, nil
}

// 削除（ソフトデリート）。
func (u *SellerProductUsecase) Delete(ctx context.Context, sellerID int64, productID int64) error {
	if sellerID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.SellerID != sellerID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.productRepo.SoftDelete(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cache.Delete(ctx, productID); err != nil {
		log.Printf("product cache delete failed: %v", err)
	}

	return nil
}
