package model

import "time"

// 出品者のショップ情報。
// usersのrole=SELLERの行と1:1で対応する。
type SellerProfile struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;uniqueIndex" json:"user_id"`

	//ショップ名
	ShopName string `gorm:"type:varchar(255);not null" json:"shop_name"`

	//ショップ説明
	Description string `gorm:"type:text" json:"description"`

	//税番号（15桁の英数字、大文字）
	TaxID string `gorm:"type:varchar(15);not null;uniqueIndex" json:"tax_id"`

	//管理者が確認済みか
	IsVerified bool `gorm:"not null;default:false" json:"is_verified"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
