package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCartFixture() (*CartRepoMock, *CartItemRepoMock, *OrdProductRepoMock, *usecase.CartUsecase) {
	cartRepo := new(CartRepoMock)
	cartItemRepo := new(CartItemRepoMock)
	productRepo := new(OrdProductRepoMock)
	return cartRepo, cartItemRepo, productRepo, usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo)
}

func TestAddToCart_UpsertsWithCurrentPrice(t *testing.T) {
	cartRepo, cartItemRepo, productRepo, uc := newCartFixture()
	ctx := context.Background()

	productRepo.On("FindByID", ctx, int64(100)).Return(model.Product{
		ID: 100, Name: "USB cable", Price: 5000, Stock: 10, IsApproved: true,
	}, nil)
	cartRepo.On("GetOrCreateActiveByUserID", ctx, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	cartItemRepo.On("ListByCartID", ctx, int64(7)).Return([]model.CartItem{}, nil).Once()
	cartItemRepo.On("UpsertByCartAndProduct", ctx, int64(7), int64(100), int64(2), int64(5000)).Return(nil)
	cartItemRepo.On("ListByCartID", ctx, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 5000},
	}, nil)

	out, err := uc.AddToCart(ctx, 1, usecase.AddToCartInput{ProductID: 100, Quantity: 2})

	assert.NoError(t, err)
	assert.Equal(t, int64(10000), out.TotalAmount)
	cartItemRepo.AssertExpectations(t)
}

// 既存数量＋追加数量が在庫を超えると追加できない
func TestAddToCart_StockCeiling(t *testing.T) {
	cartRepo, cartItemRepo, productRepo, uc := newCartFixture()
	ctx := context.Background()

	productRepo.On("FindByID", ctx, int64(100)).Return(model.Product{
		ID: 100, Price: 5000, Stock: 3, IsApproved: true,
	}, nil)
	cartRepo.On("GetOrCreateActiveByUserID", ctx, int64(1)).Return(model.Cart{ID: 7}, nil)
	cartItemRepo.On("ListByCartID", ctx, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 100, Quantity: 2},
	}, nil)

	_, err := uc.AddToCart(ctx, 1, usecase.AddToCartInput{ProductID: 100, Quantity: 2})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	cartItemRepo.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 未承認の商品はカートに入れられない（存在しない扱い）
func TestAddToCart_UnapprovedProductGets404(t *testing.T) {
	_, _, productRepo, uc := newCartFixture()
	ctx := context.Background()

	productRepo.On("FindByID", ctx, int64(100)).Return(model.Product{
		ID: 100, Price: 5000, Stock: 10, IsApproved: false,
	}, nil)

	_, err := uc.AddToCart(ctx, 1, usecase.AddToCartInput{ProductID: 100, Quantity: 1})

	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestUpdateCartItem_OtherUsersItemGets404(t *testing.T) {
	_, cartItemRepo, _, uc := newCartFixture()
	ctx := context.Background()

	cartItemRepo.On("IsOwnedByUser", ctx, int64(1), int64(2)).Return(false, nil)

	_, err := uc.UpdateCartItem(ctx, 2, 1, usecase.UpdateCartItemInput{Quantity: 1})

	assertHTTPStatus(t, err, http.StatusNotFound)
	cartItemRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCartItem_QuantityMustBePositive(t *testing.T) {
	_, _, _, uc := newCartFixture()

	_, err := uc.UpdateCartItem(context.Background(), 1, 1, usecase.UpdateCartItemInput{Quantity: 0})

	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestClearCart_NoActiveCartIsFine(t *testing.T) {
	cartRepo, _, _, uc := newCartFixture()
	ctx := context.Background()

	cartRepo.On("FindActiveByUserID", ctx, int64(1)).Return(model.Cart{}, repo.ErrNotFound)

	err := uc.ClearCart(ctx, 1)

	assert.NoError(t, err)
	cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}
