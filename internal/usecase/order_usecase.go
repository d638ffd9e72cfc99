package usecase

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 注文確定後に出品者へメールを送る窓口。
// 送信失敗で注文を失敗させないため、Usecase側でbest-effortに扱う。
type SellerNotifier interface {
	NotifyOrderPlaced(ctx context.Context, to string, order model.Order, items []model.OrderItem) error
}

// 注文のライフサイクル全般。確定・一覧・状態遷移・キャンセル。
type OrderUsecase struct {
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	userRepo      repo.UserRepository
	addressRepo   repo.AddressRepository
	auditRepo     repo.AuditLogRepository
	txManager     repo.TransactionManager
	notifier      SellerNotifier
}

// DI
func NewOrderUsecase(
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	userRepo repo.UserRepository,
	addressRepo repo.AddressRepository,
	auditRepo repo.AuditLogRepository,
	txManager repo.TransactionManager,
	notifier SellerNotifier,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		userRepo:      userRepo,
		addressRepo:   addressRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		notifier:      notifier,
	}
}

type PlaceOrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type PlaceOrderInput struct {
	Items         []PlaceOrderItemInput `json:"items"`
	AddressID     int64                 `json:"address_id"`
	PaymentMethod string                `json:"payment_method"`
}

type OrderOutput struct {
	Order model.Order       `json:"order"`
	Items []model.OrderItem `json:"items"`
}

type OrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 注文確定。リクエストの明細をトランザクションで注文に変換する。
//   - 在庫は「足りるときだけ減算」を商品ごとに行い、1つでも失敗したら全体を巻き戻す
//   - 価格・商品名・画像・出品者はこの時点のスナップショットを保存する
//   - 代引き以外は決済完了後に呼ばれる前提なので、この時点でis_paidを立てる
//   - 成功したらアクティブなカートを空にする
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "items are required")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}

	method := model.PaymentMethod(in.PaymentMethod)
	if method != model.PaymentMethodRazorpay && method != model.PaymentMethodCashOnDelivery {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}

	//配送先は本人の住所のみ
	owned, err := u.addressRepo.IsOwnedByUser(ctx, in.AddressID, userID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "address not found")
	}
	addr, err := u.addressRepo.FindByID(ctx, in.AddressID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var placed model.Order
	var placedItems []model.OrderItem

	txErr := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		var total int64
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("product %d is no longer available", it.ProductID))
			}
			if err != nil {
				return err
			}
			if !p.IsApproved {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("product %d is no longer available", it.ProductID))
			}

			// 停止された出品者の商品は購入不可
			seller, err := u.userRepo.FindByID(ctx, p.SellerID)
			if err != nil {
				return err
			}
			if seller == nil || !seller.IsActive {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("product %d is no longer available", it.ProductID))
			}

			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("product %d is out of stock", p.ID))
			}

			image := ""
			if len(p.Images) > 0 {
				image = p.Images[0]
			}
			//カート投入時ではなく「いまの価格」で確定する
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           p.ID,
				SellerID:            p.SellerID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				ImageSnapshot:       image,
				Quantity:            it.Quantity,
			})
			total += p.Price * it.Quantity
		}

		order := model.Order{
			UserID:         userID,
			Status:         model.OrderStatusPending,
			PaymentMethod:  method,
			TotalAmount:    total,
			ShipAddress:    strings.TrimSpace(addr.Line1 + " " + addr.Line2),
			ShipCity:       addr.City,
			ShipState:      addr.State,
			ShipPostalCode: addr.PostalCode,
			ShipCountry:    addr.Country,
			ShipPhone:      addr.Phone,
		}
		//オンライン決済はクライアント側で支払い→署名検証を済ませてから注文するフロー
		if method != model.PaymentMethodCashOnDelivery {
			now := time.Now()
			order.IsPaid = true
			order.PaidAt = &now
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return err
		}

		//注文に使ったカートを空にする。カートがなければ何もしない。
		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == nil {
			if err := r.Carts().Clear(ctx, cart.ID); err != nil {
				return err
			}
			if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
				return err
			}
		} else if err != repo.ErrNotFound {
			return err
		}

		placed, err = r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		placedItems, err = r.OrderItems().ListByOrderID(ctx, orderID)
		return err
	})
	if txErr != nil {
		if _, ok := AsHTTPError(txErr); ok {
			return OrderOutput{}, txErr
		}
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//通知はトランザクションの外。失敗しても注文は成立させる。
	u.notifySellers(ctx, placed, placedItems)

	return OrderOutput{Order: placed, Items: placedItems}, nil
}

// 出品者ごとに1通ずつ。全員に送れたときだけフラグを立てる。
func (u *OrderUsecase) notifySellers(ctx context.Context, order model.Order, items []model.OrderItem) {
	bySeller := map[int64][]model.OrderItem{}
	for _, it := range items {
		bySeller[it.SellerID] = append(bySeller[it.SellerID], it)
	}

	allSent := true
	for sellerID, sellerItems := range bySeller {
		seller, err := u.userRepo.FindByID(ctx, sellerID)
		if err != nil || seller == nil {
			log.Printf("order %d: seller %d lookup failed: %v", order.ID, sellerID, err)
			allSent = false
			continue
		}
		if err := u.notifier.NotifyOrderPlaced(ctx, seller.Email, order, sellerItems); err != nil {
			log.Printf("order %d: notify seller %d failed: %v", order.ID, sellerID, err)
			allSent = false
		}
	}

	if allSent {
		if err := u.orderRepo.SetSellerNotified(ctx, order.ID, true); err != nil {
			log.Printf("order %d: set seller_notified failed: %v", order.ID, err)
		}
	}
}

// 自分の注文一覧
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.orderRepo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 注文詳細（本人のみ）
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他人の注文は存在を教えない
	if order.UserID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	items, err := u.orderItemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderOutput{Order: order, Items: items}, nil
}

// 自分の商品を含む注文の一覧（出品者用）
func (u *OrderUsecase) ListSellerOrders(ctx context.Context, sellerID int64, page int, limit int) (OrderListOutput, error) {
	if sellerID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.orderRepo.ListBySellerID(ctx, sellerID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

var statusNext = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusPending:    model.OrderStatusProcessing,
	model.OrderStatusProcessing: model.OrderStatusShipped,
	model.OrderStatusShipped:    model.OrderStatusDelivered,
}

type UpdateOrderStatusInput struct {
	Status string `json:"status"`
}

// 状態を1段階だけ進める。飛ばし・巻き戻しは不可。
// 出品者は自分の商品を含む注文のみ、管理者は全注文を操作できる。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorUserID int64, actorRole model.Role, orderID int64, in UpdateOrderStatusInput) error {
	if actorUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	next := model.OrderStatus(in.Status)
	switch next {
	case model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusDelivered:
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if actorRole != model.RoleAdmin {
		involved, err := u.orderRepo.ContainsSeller(ctx, orderID, actorUserID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//自分の商品を含まない注文には触れない
		if !involved {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}

	if statusNext[order.Status] != next {
		return NewHTTPError(http.StatusConflict, fmt.Sprintf("cannot move from %s to %s", order.Status, next))
	}

	if next == model.OrderStatusDelivered {
		if err := u.orderRepo.MarkDelivered(ctx, orderID, time.Now()); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	} else {
		if err := u.orderRepo.UpdateStatus(ctx, orderID, next); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	//★監査ログ（UPDATE_ORDER_STATUS）
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateOrderStatus,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   fmt.Sprintf(`{"status":%q}`, order.Status),
		AfterJSON:    fmt.Sprintf(`{"status":%q}`, next),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// キャンセル。PENDING/PROCESSINGのみ可で、減らした在庫を戻す。
// 本人・関与する出品者・管理者が呼べる。
func (u *OrderUsecase) Cancel(ctx context.Context, actorUserID int64, actorRole model.Role, orderID int64) error {
	if actorUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	allowed := order.UserID == actorUserID || actorRole == model.RoleAdmin
	if !allowed && actorRole == model.RoleSeller {
		involved, err := u.orderRepo.ContainsSeller(ctx, orderID, actorUserID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !involved {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}
		allowed = true
	}
	//本人でも出品者でも管理者でもない相手には存在を教えない
	if !allowed {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if order.Status != model.OrderStatusPending && order.Status != model.OrderStatusProcessing {
		return NewHTTPError(http.StatusConflict, fmt.Sprintf("cannot cancel order in %s", order.Status))
	}

	txErr := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled)
	})
	if txErr != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//本人以外の操作は監査ログに残す
	if actorUserID != order.UserID {
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionCancelOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, order.Status),
			AfterJSON:    fmt.Sprintf(`{"status":%q}`, model.OrderStatusCancelled),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return nil
}
