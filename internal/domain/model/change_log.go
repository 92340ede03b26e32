package model

import "time"

// 数量変更の種類
type ChangeType string

const (
	// 数量が増えた
	ChangeTypeRestock ChangeType = "restock"

	// 数量が減った
	ChangeTypeSale ChangeType = "sale"

	// その他の調整
	ChangeTypeAdjustment ChangeType = "adjustment"
)

// 在庫変更ログ（追記専用）。
// 「誰が」「どのアイテムを」「いくつからいくつへ」変えたかを残す。
// クライアントからの作成・更新・削除は一切受け付けない。
type InventoryChangeLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// 親アイテム。アイテム削除時はログも一緒に消す。
	InventoryItemID int64          `gorm:"not null;index" json:"inventory_item"`
	InventoryItem   *InventoryItem `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	// 操作したユーザー
	UserID int64 `gorm:"not null;index" json:"user"`

	PreviousQuantity int64      `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int64      `gorm:"not null" json:"new_quantity"`
	ChangeType       ChangeType `gorm:"type:varchar(20);not null;index" json:"change_type"`

	// 作成時刻が唯一の並び順キー
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"timestamp"`
}
