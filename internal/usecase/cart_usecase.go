package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// カート操作。カートはユーザーにつきACTIVEが1つだけ。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

// DI
func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

type CartItemOutput struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	ProductName       string `json:"product_name"`
	Quantity          int64  `json:"quantity"`
	UnitPriceSnapshot int64  `json:"unit_price_snapshot"`
	Subtotal          int64  `json:"subtotal"`
}

type CartOutput struct {
	CartID      int64            `json:"cart_id"`
	Items       []CartItemOutput `json:"items"`
	TotalAmount int64            `json:"total_amount"`
}

// カートを取得（なければ空で作る）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartOutput(ctx, cart.ID)
}

type AddToCartInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// 商品をカートに入れる。既にある商品は数量を加算する。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddToCartInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//未承認の商品は一般ユーザーからは存在しない扱い
	if !p.IsApproved {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//加算後の数量が在庫を超えないかを先に見る
	existingQty := int64(0)
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for _, it := range items {
		if it.ProductID == in.ProductID {
			existingQty = it.Quantity
			break
		}
	}
	if existingQty+in.Quantity > p.Stock {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.Quantity, p.Price); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartOutput(ctx, cart.ID)
}

type UpdateCartItemInput struct {
	Quantity int64 `json:"quantity"`
}

// 明細の数量を変更する。0は削除扱いにはせずエラー。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, cartItemID int64, in UpdateCartItemInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}

	item, err := u.mustOwnCartItem(ctx, userID, cartItemID)
	if err != nil {
		return CartOutput{}, err
	}

	p, err := u.productRepo.FindByID(ctx, item.ProductID)
	if err == repo.ErrNotFound {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if in.Quantity > p.Stock {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartOutput(ctx, item.CartID)
}

// 明細を1件削除する。
func (u *CartUsecase) RemoveCartItem(ctx context.Context, userID int64, cartItemID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.mustOwnCartItem(ctx, userID, cartItemID)
	if err != nil {
		return CartOutput{}, err
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartOutput(ctx, item.CartID)
}

// カートを空にする。
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		//カートがなければ空と同じなのでOK
		return nil
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 他人のカート明細は404で返す（存在を教えない）。
func (u *CartUsecase) mustOwnCartItem(ctx context.Context, userID int64, cartItemID int64) (model.CartItem, error) {
	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return model.CartItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return model.CartItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return item, nil
}

func (u *CartUsecase) buildCartOutput(ctx context.Context, cartID int64) (CartOutput, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := CartOutput{CartID: cartID, Items: make([]CartItemOutput, 0, len(items))}
	for _, it := range items {
		name := ""
		if p, err := u.productRepo.FindByID(ctx, it.ProductID); err == nil {
			name = p.Name
		}
		sub := it.UnitPriceSnapshot * it.Quantity
		out.Items = append(out.Items, CartItemOutput{
			ID:                it.ID,
			ProductID:         it.ProductID,
			ProductName:       name,
			Quantity:          it.Quantity,
			UnitPriceSnapshot: it.UnitPriceSnapshot,
			Subtotal:          sub,
		})
		out.TotalAmount += sub
	}
	return out, nil
}
