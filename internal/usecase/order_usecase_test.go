package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkDelivered(ctx context.Context, orderID int64, deliveredAt time.Time) error {
	args := m.Called(ctx, orderID, deliveredAt)
	return args.Error(0)
}

func (m *OrderRepoMock) SetSellerNotified(ctx context.Context, orderID int64, notified bool) error {
	args := m.Called(ctx, orderID, notified)
	return args.Error(0)
}

func (m *OrderRepoMock) ListBySellerID(ctx context.Context, sellerID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, sellerID, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ContainsSeller(ctx context.Context, orderID int64, sellerID int64) (bool, error) {
	args := m.Called(ctx, orderID, sellerID)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) HasDeliveredOrderWithProduct(ctx context.Context, userID int64, productID int64) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	args := m.Called(ctx, cartID, status)
	return args.Error(0)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPriceSnapshot int64) error {
	args := m.Called(ctx, cartID, productID, addQty, unitPriceSnapshot)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

type OrdProductRepoMock struct{ mock.Mock }

func (m *OrdProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("unused in OrderUsecase tests")
}

func (m *OrdProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *OrdProductRepoMock) ListBySellerID(ctx context.Context, sellerID int64) ([]model.Product, error) {
	panic("unused in OrderUsecase tests")
}

func (m *OrdProductRepoMock) ListAll(ctx context.Context, page int, limit int) ([]model.Product, int64, error) {
	panic("unused in OrderUsecase tests")
}

func (m *OrdProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("unused in OrderUsecase tests")
}

func (m *OrdProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("unused in OrderUsecase tests")
}

func (m *OrdProductRepoMock) SetApproved(ctx context.Context, id int64, approved bool) error {
	panic("unused in OrderUsecase tests")
}

func (m *OrdProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("unused in OrderUsecase tests")
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.User)
	return items, args.Get(1).(int64), args.Error(2)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Address)
	return items, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, address model.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *AddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

func (m *AddressRepoMock) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	args := m.Called(ctx, addressID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *AddressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.AuditLog)
	return items, args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) NotifyOrderPlaced(ctx context.Context, to string, order model.Order, items []model.OrderItem) error {
	args := m.Called(ctx, to, order, items)
	return args.Error(0)
}

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerStub は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerStub struct {
	Repos repo.TxRepos
}

func (m *TxManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.Repos)
}

type TxReposStub struct {
	orders         repo.OrderRepository
	orderItems     repo.OrderItemRepository
	carts          repo.CartRepository
	cartItems      repo.CartItemRepository
	inventory      repo.InventoryRepository
	products       repo.ProductRepository
	users          repo.UserRepository
	sellerProfiles repo.SellerProfileRepository
}

func (r *TxReposStub) Orders() repo.OrderRepository                 { return r.orders }
func (r *TxReposStub) OrderItems() repo.OrderItemRepository         { return r.orderItems }
func (r *TxReposStub) Carts() repo.CartRepository                   { return r.carts }
func (r *TxReposStub) CartItems() repo.CartItemRepository           { return r.cartItems }
func (r *TxReposStub) Inventory() repo.InventoryRepository          { return r.inventory }
func (r *TxReposStub) Products() repo.ProductRepository             { return r.products }
func (r *TxReposStub) Users() repo.UserRepository                   { return r.users }
func (r *TxReposStub) SellerProfiles() repo.SellerProfileRepository { return r.sellerProfiles }

// =====================
// Fixtures
// =====================

type orderFixture struct {
	orderRepo     *OrderRepoMock
	orderItemRepo *OrderItemRepoMock
	cartRepo      *CartRepoMock
	cartItemRepo  *CartItemRepoMock
	inventoryRepo *InventoryRepoMock
	productRepo   *OrdProductRepoMock
	userRepo      *UserRepoMock
	addressRepo   *AddressRepoMock
	auditRepo     *AuditRepoMock
	notifier      *NotifierMock
	uc            *usecase.OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orderRepo:     new(OrderRepoMock),
		orderItemRepo: new(OrderItemRepoMock),
		cartRepo:      new(CartRepoMock),
		cartItemRepo:  new(CartItemRepoMock),
		inventoryRepo: new(InventoryRepoMock),
		productRepo:   new(OrdProductRepoMock),
		userRepo:      new(UserRepoMock),
		addressRepo:   new(AddressRepoMock),
		auditRepo:     new(AuditRepoMock),
		notifier:      new(NotifierMock),
	}
	txRepos := &TxReposStub{
		orders:     f.orderRepo,
		orderItems: f.orderItemRepo,
		carts:      f.cartRepo,
		cartItems:  f.cartItemRepo,
		inventory:  f.inventoryRepo,
		products:   f.productRepo,
	}
	f.uc = usecase.NewOrderUsecase(
		f.orderRepo, f.orderItemRepo, f.userRepo, f.addressRepo, f.auditRepo,
		&TxManagerStub{Repos: txRepos}, f.notifier,
	)
	return f
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "expected HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status)
	}
}

// =====================
// PlaceOrder
// =====================

func TestPlaceOrder_Success(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.addressRepo.On("IsOwnedByUser", ctx, int64(5), int64(1)).Return(true, nil)
	f.addressRepo.On("FindByID", ctx, int64(5)).Return(model.Address{
		ID: 5, UserID: 1, Line1: "1-2-3", City: "Pune", State: "MH",
		PostalCode: "411001", Country: "IN",
	}, nil)

	f.productRepo.On("FindByID", ctx, int64(100)).Return(model.Product{
		ID: 100, SellerID: 10, Name: "USB cable", Price: 5000, Stock: 9,
		IsApproved: true, Images: pq.StringArray{"https://img/usb.jpg"},
	}, nil)
	f.productRepo.On("FindByID", ctx, int64(200)).Return(model.Product{
		ID: 200, SellerID: 11, Name: "Keyboard", Price: 30000, Stock: 3, IsApproved: true,
	}, nil)

	f.inventoryRepo.On("DecreaseStockIfEnough", ctx, int64(100), int64(2)).Return(true, nil)
	f.inventoryRepo.On("DecreaseStockIfEnough", ctx, int64(200), int64(1)).Return(true, nil)

	//合計は注文時点の価格×数量、代引きは未払いのまま
	f.orderRepo.On("Create", ctx, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 1 &&
			o.Status == model.OrderStatusPending &&
			o.PaymentMethod == model.PaymentMethodCashOnDelivery &&
			!o.IsPaid &&
			o.TotalAmount == 2*5000+30000
	})).Return(int64(55), nil)

	f.orderItemRepo.On("CreateBulk", ctx, int64(55), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].SellerID == 10 && items[0].ProductNameSnapshot == "USB cable" &&
			items[0].ImageSnapshot == "https://img/usb.jpg" &&
			items[1].SellerID == 11
	})).Return(nil)

	//注文後にカートを空にする
	f.cartRepo.On("FindActiveByUserID", ctx, int64(1)).Return(model.Cart{ID: 7, UserID: 1, Status: model.CartStatusActive}, nil)
	f.cartRepo.On("Clear", ctx, int64(7)).Return(nil)
	f.cartRepo.On("UpdateStatus", ctx, int64(7), model.CartStatusCheckedOut).Return(nil)

	placedOrder := model.Order{ID: 55, UserID: 1, Status: model.OrderStatusPending, TotalAmount: 40000}
	placedItems := []model.OrderItem{
		{OrderID: 55, ProductID: 100, SellerID: 10, Quantity: 2},
		{OrderID: 55, ProductID: 200, SellerID: 11, Quantity: 1},
	}
	f.orderRepo.On("FindByID", ctx, int64(55)).Return(placedOrder, nil)
	f.orderItemRepo.On("ListByOrderID", ctx, int64(55)).Return(placedItems, nil)

	//出品者ごとに1通
	f.userRepo.On("FindByID", ctx, int64(10)).Return(&model.User{ID: 10, Email: "s10@example.com", IsActive: true}, nil)
	f.userRepo.On("FindByID", ctx, int64(11)).Return(&model.User{ID: 11, Email: "s11@example.com", IsActive: true}, nil)
	f.notifier.On("NotifyOrderPlaced", ctx, "s10@example.com", placedOrder, mock.Anything).Return(nil)
	f.notifier.On("NotifyOrderPlaced", ctx, "s11@example.com", placedOrder, mock.Anything).Return(nil)
	f.orderRepo.On("SetSellerNotified", ctx, int64(55), true).Return(nil)

	out, err := f.uc.PlaceOrder(ctx, 1, usecase.PlaceOrderInput{
		Items: []usecase.PlaceOrderItemInput{
			{ProductID: 100, Quantity: 2},
			{ProductID: 200, Quantity: 1},
		},
		AddressID:     5,
		PaymentMethod: "COD",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.Order.ID)
	assert.Len(t, out.Items, 2)

	f.orderRepo.AssertExpectations(t)
	f.inventoryRepo.AssertExpectations(t)
	f.cartRepo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

// オンライン決済は支払い済みで注文を作る（決済検証が先に済んでいる前提）
func TestPlaceOrder_GatewayMethodMarkedPaid(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.addressRepo.On("IsOwnedByUser", ctx, int64(5), int64(1)).Return(true, nil)
	f.addressRepo.On("FindByID", ctx, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)
	f.productRepo.On("FindByID", ctx, int64(100)).Return(model.Product{
		ID: 100, SellerID: 10, Price: 5000, Stock: 2, IsApproved: true,
	}, nil)
	f.inventoryRepo.On("DecreaseStockIfEnough", ctx, int64(100), int64(1)).Return(true, nil)

	f.orderRepo.On("Create", ctx, mock.MatchedBy(func(o model.Order) bool {
		return o.PaymentMethod == model.PaymentMethodRazorpay &&
			o.IsPaid && o.PaidAt != nil
	})).Return(int64(55), nil)
	f.orderItemRepo.On("CreateBulk", ctx, int64(55), mock.Anything).Return(nil)

	//カートがないユーザーでも注文はできる
	f.cartRepo.On("FindActiveByUserID", ctx, int64(1)).Return(model.Cart{}, repo.ErrNotFound)

	f.orderRepo.On("FindByID", ctx, int64(55)).Return(model.Order{ID: 55, UserID: 1, IsPaid: true}, nil)
	f.orderItemRepo.On("ListByOrderID", ctx, int64(55)).Return([]model.OrderItem{
		{OrderID: 55, ProductID: 100, SellerID: 10, Quantity: 1},
	}, nil)
	f.userRepo.On("FindByID", ctx, int64(10)).Return(&model.User{ID: 10, Email: "s10@example.com", IsActive: true}, nil)
	f.notifier.On("NotifyOrderPlaced", ctx, "s10@example.com", mock.Anything, mock.Anything).Return(nil)
	f.orderRepo.On("SetSellerNotified", ctx, int64(55), true).Return(nil)

	out, err := f.uc.PlaceOrder(ctx, 1, usecase.PlaceOrderInput{
		Items:         []usecase.PlaceOrderItemInput{{ProductID: 100, Quantity: 1}},
		AddressID:     5,
		PaymentMethod: "RAZORPAY",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.Order.ID)
	f.orderRepo.AssertExpectations(t)
	f.cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestPlaceOrder_OutOfStock(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.addressRepo.On("IsOwnedByUser", ctx, int64(5), int64(1)).Return(true, nil)
	f.addressRepo.On("FindByID", ctx, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)

	f.productRepo.On("FindByID", ctx, int64(100)).Return(model.Product{
		ID: 100, SellerID: 10, Price: 5000, Stock: 2, IsApproved: true,
	}, nil)
	f.userRepo.On("FindByID", ctx, int64(10)).Return(&model.User{ID: 10, IsActive: true}, nil)

	//在庫不足
	f.inventoryRepo.On("DecreaseStockIfEnough", ctx, int64(100), int64(5)).Return(false, nil)

	_, err := f.uc.PlaceOrder(ctx, 1, usecase.PlaceOrderInput{
		Items:         []usecase.PlaceOrderItemInput{{ProductID: 100, Quantity: 5}},
		AddressID:     5,
		PaymentMethod: "COD",
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "NotifyOrderPlaced", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 出品者が停止されていたら、承認済み商品でも購入できない
func TestPlaceOrder_InactiveSellerRejected(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.addressRepo.On("IsOwnedByUser", ctx, int64(5), int64(1)).Return(true, nil)
	f.addressRepo.On("FindByID", ctx, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)
	f.productRepo.On("FindByID", ctx, int64(100)).Return(model.Product{
		ID: 100, SellerID: 10, Price: 5000, Stock: 2, IsApproved: true,
	}, nil)
	f.userRepo.On("FindByID", ctx, int64(10)).Return(&model.User{ID: 10, IsActive: false}, nil)

	_, err := f.uc.PlaceOrder(ctx, 1, usecase.PlaceOrderInput{
		Items:         []usecase.PlaceOrderItemInput{{ProductID: 100, Quantity: 1}},
		AddressID:     5,
		PaymentMethod: "COD",
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	f.inventoryRepo.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_NoItems(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		AddressID: 5, PaymentMethod: "RAZORPAY",
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_InvalidPaymentMethod(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		Items:         []usecase.PlaceOrderItemInput{{ProductID: 100, Quantity: 1}},
		AddressID:     5,
		PaymentMethod: "BITCOIN",
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// 通知が失敗しても注文は成立し、通知済みフラグは立てない
func TestPlaceOrder_NotifyFailureDoesNotFailOrder(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.addressRepo.On("IsOwnedByUser", ctx, int64(5), int64(1)).Return(true, nil)
	f.addressRepo.On("FindByID", ctx, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)
	f.productRepo.On("FindByID", ctx, int64(100)).Return(model.Product{
		ID: 100, SellerID: 10, Price: 5000, Stock: 2, IsApproved: true,
	}, nil)
	f.inventoryRepo.On("DecreaseStockIfEnough", ctx, int64(100), int64(1)).Return(true, nil)
	f.orderRepo.On("Create", ctx, mock.Anything).Return(int64(55), nil)
	f.orderItemRepo.On("CreateBulk", ctx, int64(55), mock.Anything).Return(nil)
	f.cartRepo.On("FindActiveByUserID", ctx, int64(1)).Return(model.Cart{ID: 7}, nil)
	f.cartRepo.On("Clear", ctx, int64(7)).Return(nil)
	f.cartRepo.On("UpdateStatus", ctx, int64(7), model.CartStatusCheckedOut).Return(nil)

	placedOrder := model.Order{ID: 55, UserID: 1}
	f.orderRepo.On("FindByID", ctx, int64(55)).Return(placedOrder, nil)
	f.orderItemRepo.On("ListByOrderID", ctx, int64(55)).Return([]model.OrderItem{
		{OrderID: 55, ProductID: 100, SellerID: 10, Quantity: 1},
	}, nil)

	f.userRepo.On("FindByID", ctx, int64(10)).Return(&model.User{ID: 10, Email: "s10@example.com", IsActive: true}, nil)
	f.notifier.On("NotifyOrderPlaced", ctx, "s10@example.com", placedOrder, mock.Anything).
		Return(assert.AnError)

	out, err := f.uc.PlaceOrder(ctx, 1, usecase.PlaceOrderInput{
		Items:         []usecase.PlaceOrderItemInput{{ProductID: 100, Quantity: 1}},
		AddressID:     5,
		PaymentMethod: "COD",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.Order.ID)
	f.orderRepo.AssertNotCalled(t, "SetSellerNotified", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// UpdateStatus
// =====================

func TestUpdateStatus_SingleStepForward(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("FindByID", ctx, int64(55)).Return(model.Order{ID: 55, Status: model.OrderStatusPending}, nil)
	f.orderRepo.On("UpdateStatus", ctx, int64(55), model.OrderStatusProcessing).Return(nil)
	f.auditRepo.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus && l.ResourceID == 55
	})).Return(nil)

	err := f.uc.UpdateStatus(ctx, 99, model.RoleAdmin, 55, usecase.UpdateOrderStatusInput{Status: "PROCESSING"})

	assert.NoError(t, err)
	f.orderRepo.AssertExpectations(t)
	f.auditRepo.AssertExpectations(t)
}

func TestUpdateStatus_SkipRejected(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("FindByID", ctx, int64(55)).Return(model.Order{ID: 55, Status: model.OrderStatusPending}, nil)

	err := f.uc.UpdateStatus(ctx, 99, model.RoleAdmin, 55, usecase.UpdateOrderStatusInput{Status: "SHIPPED"})

	assertHTTPStatus(t, err, http.StatusConflict)
	f.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_DeliveredStampsTimestamp(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("FindByID", ctx, int64(55)).Return(model.Order{ID: 55, Status: model.OrderStatusShipped}, nil)
	f.orderRepo.On("MarkDelivered", ctx, int64(55), mock.AnythingOfType("time.Time")).Return(nil)
	f.auditRepo.On("Create", ctx, mock.Anything).Return(nil)

	err := f.uc.UpdateStatus(ctx, 99, model.RoleAdmin, 55, usecase.UpdateOrderStatusInput{Status: "DELIVERED"})

	assert.NoError(t, err)
	f.orderRepo.AssertExpectations(t)
}

// 自分の商品を含まない注文は操作できない
func TestUpdateStatus_UninvolvedSellerForbidden(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("FindByID", ctx, int64(55)).Return(model.Order{ID: 55, Status: model.OrderStatusPending}, nil)
	f.orderRepo.On("ContainsSeller", ctx, int64(55), int64(42)).Return(false, nil)

	err := f.uc.UpdateStatus(ctx, 42, model.RoleSeller, 55, usecase.UpdateOrderStatusInput{Status: "PROCESSING"})

	assertHTTPStatus(t, err, http.StatusForbidden)
	f.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// Cancel
// =====================

func TestCancel_RestoresStock(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("FindByID", ctx, int64(55)).Return(model.Order{ID: 55, UserID: 1, Status: model.OrderStatusPending}, nil)
	f.orderItemRepo.On("ListByOrderID", ctx, int64(55)).Return([]model.OrderItem{
		{OrderID: 55, ProductID: 100, Quantity: 2},
		{OrderID: 55, ProductID: 200, Quantity: 1},
	}, nil)
	f.inventoryRepo.On("IncreaseStock", ctx, int64(100), int64(2)).Return(nil)
	f.inventoryRepo.On("IncreaseStock", ctx, int64(200), int64(1)).Return(nil)
	f.orderRepo.On("UpdateStatus", ctx, int64(55), model.OrderStatusCancelled).Return(nil)

	err := f.uc.Cancel(ctx, 1, model.RoleUser, 55)

	assert.NoError(t, err)
	f.inventoryRepo.AssertExpectations(t)
	f.orderRepo.AssertExpectations(t)
	//本人のキャンセルは監査ログ対象外
	f.auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCancel_RejectedAfterShipped(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("FindByID", ctx, int64(55)).Return(model.Order{ID: 55, UserID: 1, Status: model.OrderStatusShipped}, nil)

	err := f.uc.Cancel(ctx, 1, model.RoleUser, 55)

	assertHTTPStatus(t, err, http.StatusConflict)
	f.inventoryRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_ByAdminWritesAuditLog(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("FindByID", ctx, int64(55)).Return(model.Order{ID: 55, UserID: 1, Status: model.OrderStatusProcessing}, nil)
	f.orderItemRepo.On("ListByOrderID", ctx, int64(55)).Return([]model.OrderItem{
		{OrderID: 55, ProductID: 100, Quantity: 1},
	}, nil)
	f.inventoryRepo.On("IncreaseStock", ctx, int64(100), int64(1)).Return(nil)
	f.orderRepo.On("UpdateStatus", ctx, int64(55), model.OrderStatusCancelled).Return(nil)
	f.auditRepo.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCancelOrder && l.ActorUserID == 99
	})).Return(nil)

	err := f.uc.Cancel(ctx, 99, model.RoleAdmin, 55)

	assert.NoError(t, err)
	f.auditRepo.AssertExpectations(t)
}

func TestCancel_StrangerGets404(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("FindByID", ctx, int64(55)).Return(model.Order{ID: 55, UserID: 1, Status: model.OrderStatusPending}, nil)

	err := f.uc.Cancel(ctx, 2, model.RoleUser, 55)

	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestCancel_UninvolvedSellerForbidden(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("FindByID", ctx, int64(55)).Return(model.Order{ID: 55, UserID: 1, Status: model.OrderStatusPending}, nil)
	f.orderRepo.On("ContainsSeller", ctx, int64(55), int64(42)).Return(false, nil)

	err := f.uc.Cancel(ctx, 42, model.RoleSeller, 55)

	assertHTTPStatus(t, err, http.StatusForbidden)
	f.inventoryRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}
