package repository

import (
	"app/internal/domain/model"
	"context"
)

// 変更ログの絞り込み条件。
type ChangeLogFilter struct {
	InventoryItemID *int64
	ChangeType      *model.ChangeType
	Limit           int
	Offset          int
}

// 在庫変更ログの保存・取得の約束。
// 読み取りは親アイテムの所有者経由で絞り込む。Createは
// アイテム更新トランザクションの中からだけ呼ばれる。
type ChangeLogRepository interface {
	// ログを1件保存
	Create(ctx context.Context, log model.InventoryChangeLog) error

	// 呼び出しユーザーが所有するアイテムのログを新しい順で返す
	ListByOwner(ctx context.Context, ownerID int64, filter ChangeLogFilter) ([]model.InventoryChangeLog, error)

	// 所有者経由で1件取得。他人のものはErrNotFound。
	FindByIDForOwner(ctx context.Context, ownerID int64, id int64) (model.InventoryChangeLog, error)
}
