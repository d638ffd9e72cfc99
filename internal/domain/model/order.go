package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentMethodRazorpay       PaymentMethod = "RAZORPAY"
	PaymentMethodCashOnDelivery PaymentMethod = "COD"
)

// 配送先は注文時点のスナップショットとして埋め込む。
type Order struct {
	ID     int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64       `gorm:"not null;index" json:"user_id"`
	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	IsPaid        bool          `gorm:"not null;default:false" json:"is_paid"`
	PaidAt        *time.Time    `json:"paid_at"`
	IsDelivered   bool          `gorm:"not null;default:false" json:"is_delivered"`
	DeliveredAt   *time.Time    `json:"delivered_at"`

	//出品者への通知メールが全員分送れたか
	SellerNotified bool `gorm:"not null;default:false" json:"seller_notified"`

	TotalAmount int64 `gorm:"not null" json:"total_amount"`

	//配送先
	ShipAddress    string `gorm:"type:varchar(255);not null" json:"ship_address"`
	ShipCity       string `gorm:"type:varchar(255);not null" json:"ship_city"`
	ShipState      string `gorm:"type:varchar(100);not null" json:"ship_state"`
	ShipPostalCode string `gorm:"type:varchar(20);not null" json:"ship_postal_code"`
	ShipCountry    string `gorm:"type:varchar(100);not null" json:"ship_country"`
	ShipPhone      string `gorm:"type:varchar(30)" json:"ship_phone"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
