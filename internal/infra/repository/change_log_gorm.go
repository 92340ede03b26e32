package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type changeLogGormRepository struct {
	db *gorm.DB
}

func NewChangeLogGormRepository(db *gorm.DB) repo.ChangeLogRepository {
	return &changeLogGormRepository{db: db}
}

// 変更ログを1件保存
func (r *changeLogGormRepository) Create(ctx context.Context, log model.InventoryChangeLog) error {
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return err
	}
	return nil
}

// 所有アイテムのログを新しい順で返す。所有判定はitems経由のJOIN。
func (r *changeLogGormRepository) ListByOwner(ctx context.Context, ownerID int64, filter repo.ChangeLogFilter) ([]model.InventoryChangeLog, error) {
	q := r.db.WithContext(ctx).
		Model(&model.InventoryChangeLog{}).
		Preload("InventoryItem").
		Joins("JOIN inventory_items ON inventory_items.id = inventory_change_logs.inventory_item_id").
		Where("inventory_items.user_id = ?", ownerID)

	if filter.InventoryItemID != nil {
		q = q.Where("inventory_change_logs.inventory_item_id = ?", *filter.InventoryItemID)
	}
	if filter.ChangeType != nil {
		q = q.Where("inventory_change_logs.change_type = ?", *filter.ChangeType)
	}

	// 新しい順
	q = q.Order("inventory_change_logs.created_at DESC").Order("inventory_change_logs.id DESC")

	// limit/offset
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	q = q.Limit(limit).Offset(filter.Offset)

	var logs []model.InventoryChangeLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// 所有者経由で1件取得。他人のログはErrNotFound。
func (r *changeLogGormRepository) FindByIDForOwner(ctx context.Context, ownerID int64, id int64) (model.InventoryChangeLog, error) {
	var log model.InventoryChangeLog
	err := r.db.WithContext(ctx).
		Preload("InventoryItem").
		Joins("JOIN inventory_items ON inventory_items.id = inventory_change_logs.inventory_item_id").
		Where("inventory_items.user_id = ?", ownerID).
		First(&log, "inventory_change_logs.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryChangeLog{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryChangeLog{}, err
	}
	return log, nil
}
