package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewItemGormRepository(db *gorm.DB) *ItemGormRepository {
	return &ItemGormRepository{db: db}
}

// 所有者のアイテムだけを、検索/カテゴリ/ソート/ページング付きで返す。
func (r *ItemGormRepository) ListByOwner(ctx context.Context, ownerID int64, q repo.ItemListQuery) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.InventoryItem{})

	// 所有者で必ず絞る
	tx = tx.Where("user_id = ?", ownerID)

	// q はname/descriptionを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}

	// total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.InventoryItem{}, 0, err
	}

	// sort
	switch q.Sort {
	case "name":
		tx = tx.Order("name asc").Order("id asc")
	case "price_asc":
		tx = tx.Order("price asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("id desc")
	case "quantity":
		tx = tx.Order("quantity asc").Order("id asc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Preload("Category").Offset(offset).Limit(q.Limit).Find(&items).Error; err != nil {
		return []model.InventoryItem{}, 0, err
	}

	return items, total, nil
}

// 所有者経由でIDから1件取得。他人のアイテムはErrNotFound。
func (r *ItemGormRepository) FindByIDForOwner(ctx context.Context, ownerID int64, id int64) (model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", ownerID).
		First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryItem{}, err
	}
	return item, nil
}

// 行ロック付き取得。更新トランザクション内で前の数量を確定させるために使う。
func (r *ItemGormRepository) FindByIDForOwnerLocked(ctx context.Context, ownerID int64, id int64) (model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", ownerID).
		First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryItem{}, err
	}
	return item, nil
}

// levels: 低在庫・カテゴリ名・価格帯の任意フィルタをANDで重ねる。
func (r *ItemGormRepository) Levels(ctx context.Context, ownerID int64, q repo.LevelsQuery) ([]model.InventoryItem, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.InventoryItem{}).
		Where("inventory_items.user_id = ?", ownerID)

	if q.LowStock != nil {
		tx = tx.Where("inventory_items.quantity < ?", *q.LowStock)
	}
	if q.CategoryName != nil {
		tx = tx.Joins("JOIN categories ON categories.id = inventory_items.category_id").
			Where("categories.name = ?", *q.CategoryName)
	}
	if q.MinPrice != nil {
		tx = tx.Where("inventory_items.price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("inventory_items.price <= ?", *q.MaxPrice)
	}

	var items []model.InventoryItem
	if err := tx.Order("inventory_items.id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// アイテムの作成
func (r *ItemGormRepository) Create(ctx context.Context, item model.InventoryItem) (model.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.InventoryItem{}, err
	}
	return item, nil
}

// アイテムの更新。user_idは更新対象に含めない（所有者は不変）。
func (r *ItemGormRepository) Update(ctx context.Context, item model.InventoryItem) error {
	res := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("id = ? AND user_id = ?", item.ID, item.UserID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"quantity":    item.Quantity,
			"price":       item.Price,
			"category_id": item.CategoryID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// アイテム削除。変更ログはFKのCASCADEで一緒に消える。
func (r *ItemGormRepository) Delete(ctx context.Context, ownerID int64, id int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Delete(&model.InventoryItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
