package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧検索。すべて呼び出しユーザーのアイテムに限定される。
type ItemListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	Sort       string
}

// levelsクエリの絞り込み条件。すべて任意でAND結合。
type LevelsQuery struct {
	LowStock     *int64
	CategoryName *string
	MinPrice     *float64
	MaxPrice     *float64
}

// 在庫アイテムの永続化。取得・更新系は常にownerIDで絞り込み、
// 他ユーザーのアイテムは存在しないものとして扱う（ErrNotFound）。
type ItemRepository interface {
	ListByOwner(ctx context.Context, ownerID int64, q ItemListQuery) ([]model.InventoryItem, int64, error)
	FindByIDForOwner(ctx context.Context, ownerID int64, id int64) (model.InventoryItem, error)
	Levels(ctx context.Context, ownerID int64, q LevelsQuery) ([]model.InventoryItem, error)

	Create(ctx context.Context, item model.InventoryItem) (model.InventoryItem, error)
	// 行ロック付きで取得。更新トランザクション内でのみ使う。
	FindByIDForOwnerLocked(ctx context.Context, ownerID int64, id int64) (model.InventoryItem, error)
	Update(ctx context.Context, item model.InventoryItem) error
	Delete(ctx context.Context, ownerID int64, id int64) error
}
