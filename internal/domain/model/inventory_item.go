package model

import "time"

// 在庫アイテム。作成したユーザーだけが読み書きできる。
// UserIDは作成時に確定し、以後変更されない。
type InventoryItem struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64   `gorm:"not null;index" json:"user_id"`
	Name        string  `gorm:"type:varchar(200);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Quantity    int64   `gorm:"not null;default:0" json:"quantity"`
	Price       float64 `gorm:"type:numeric(10,2);not null" json:"price"`

	// カテゴリ削除時はNULLに戻す（アイテム自体は残す）
	CategoryID *int64    `gorm:"index" json:"category_id"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
