package model

import "time"

// レビュー。ユーザー×商品で1件まで。
// 投稿資格は保存せず、配達済み注文の有無から毎回判定する。
type Review struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"not null;index:idx_reviews_product_user,unique" json:"product_id"`
	UserID    int64 `gorm:"not null;index:idx_reviews_product_user,unique" json:"user_id"`

	//1〜5
	Rating int `gorm:"not null" json:"rating"`

	Title   string `gorm:"type:varchar(255);not null" json:"title"`
	Comment string `gorm:"type:text" json:"comment"`

	//「参考になった」カウンタ
	HelpfulCount int64 `gorm:"not null;default:0" json:"helpful_count"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
