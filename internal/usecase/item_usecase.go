package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ItemUsecase struct {
	itemRepo     repo.ItemRepository
	categoryRepo repo.CategoryRepository
	tx           repo.TransactionManager
}

// DI
func NewItemUsecase(
	itemRepo repo.ItemRepository,
	categoryRepo repo.CategoryRepository,
	tx repo.TransactionManager,
) *ItemUsecase {
	return &ItemUsecase{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
	}
}

// GET /itemsの入力DTO
type ListItemsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	Sort       string
}

// APIに返すアイテム。category_nameは読み取り専用の付加情報。
type ItemOutput struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Quantity     int64     `json:"quantity"`
	Price        float64   `json:"price"`
	CategoryID   *int64    `json:"category"`
	CategoryName string    `json:"category_name,omitempty"`
	CreatedAt    time.Time `json:"date_added"`
	UpdatedAt    time.Time `json:"last_updated"`
}

type ItemListOutput struct {
	Items []ItemOutput `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func toItemOutput(item model.InventoryItem) ItemOutput {
	out := ItemOutput{
		ID:          item.ID,
		UserID:      item.UserID,
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       item.Price,
		CategoryID:  item.CategoryID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.Category != nil {
		out.CategoryName = item.Category.Name
	}
	return out
}

func toItemOutputs(items []model.InventoryItem) []ItemOutput {
	outs := make([]ItemOutput, 0, len(items))
	for _, it := range items {
		outs = append(outs, toItemOutput(it))
	}
	return outs
}

// 自分のアイテム一覧。他ユーザーのアイテムは絶対に混ざらない。
func (u *ItemUsecase) List(ctx context.Context, userID int64, in ListItemsInput) (ItemListOutput, error) {
	if userID <= 0 {
		return ItemListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return ItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ItemListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	switch in.Sort {
	case "", "new", "name", "price_asc", "price_desc", "quantity":
	default:
		return ItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.itemRepo.ListByOwner(ctx, userID, repo.ItemListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		Sort:       in.Sort,
	})
	if err != nil {
		return ItemListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ItemListOutput{
		Items: toItemOutputs(items),
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 自分のアイテムを1件取得。他人のアイテムIDは存在しない扱い（404）。
func (u *ItemUsecase) Get(ctx context.Context, userID int64, itemID int64) (ItemOutput, error) {
	if userID <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	item, err := u.itemRepo.FindByIDForOwner(ctx, userID, itemID)
	if err == repo.ErrNotFound {
		return ItemOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ItemOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toItemOutput(item), nil
}

type CreateItemInput struct {
	Name        string
	Description string
	Quantity    *int64
	Price       *float64
	CategoryID  *int64
}

// アイテム作成。所有者はリクエストの内容に関わらず呼び出しユーザー。
func (u *ItemUsecase) Create(ctx context.Context, userID int64, in CreateItemInput) (ItemOutput, error) {
	if userID <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Quantity == nil {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "quantity required")
	}
	if in.Price == nil {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "price required")
	}
	if *in.Price < 0 {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}

	// カテゴリは任意。指定されたら実在チェック。
	if in.CategoryID != nil {
		if _, err := u.categoryRepo.FindByID(ctx, *in.CategoryID); err != nil {
			if err == repo.ErrNotFound {
				return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid category")
			}
			return ItemOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	item, err := u.itemRepo.Create(ctx, model.InventoryItem{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Quantity:    *in.Quantity,
		Price:       *in.Price,
		CategoryID:  in.CategoryID,
	})
	if err != nil {
		return ItemOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toItemOutput(item), nil
}

// 更新リクエスト。nilのフィールドは変更しない（PATCH）。
// PUTの場合はhandlerが全フィールドを詰めてくる。
type UpdateItemInput struct {
	Name        *string
	Description *string
	Quantity    *int64
	Price       *float64
	CategoryID  *int64
	// カテゴリ参照を外すときtrue
	ClearCategory bool
}

// アイテム更新。所有者以外は404。数量が変わったときだけ、
// 同じトランザクションの中で変更ログを1件追加する。
// ログの保存に失敗したら数量の変更ごとロールバックされる。
func (u *ItemUsecase) Update(ctx context.Context, userID int64, itemID int64, in UpdateItemInput) (ItemOutput, error) {
	if userID <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price != nil && *in.Price < 0 {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}

	if in.CategoryID != nil {
		if _, err := u.categoryRepo.FindByID(ctx, *in.CategoryID); err != nil {
			if err == repo.ErrNotFound {
				return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid category")
			}
			return ItemOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	var updated model.InventoryItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 行ロック付きで取得。前の数量はこのロック下で確定する。
		item, err := r.Items().FindByIDForOwnerLocked(ctx, userID, itemID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		previousQuantity := item.Quantity

		// 指定されたフィールドだけ反映。user_idは絶対に触らない。
		if in.Name != nil {
			item.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			item.Description = *in.Description
		}
		if in.Quantity != nil {
			item.Quantity = *in.Quantity
		}
		if in.Price != nil {
			item.Price = *in.Price
		}
		if in.ClearCategory {
			item.CategoryID = nil
		} else if in.CategoryID != nil {
			item.CategoryID = in.CategoryID
		}

		if err := r.Items().Update(ctx, item); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 数量が変わったときだけログを1件残す。同数なら何も記録しない。
		if previousQuantity != item.Quantity {
			changeType := model.ChangeTypeSale
			if item.Quantity > previousQuantity {
				changeType = model.ChangeTypeRestock
			}

			log := model.InventoryChangeLog{
				InventoryItemID:  item.ID,
				UserID:           userID,
				PreviousQuantity: previousQuantity,
				NewQuantity:      item.Quantity,
				ChangeType:       changeType,
			}
			if err := r.ChangeLogs().Create(ctx, log); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		// 保存後の状態を読み直す。DB側で進んだupdated_atと
		// カテゴリ名をレスポンスに反映するため。
		fresh, err := r.Items().FindByIDForOwner(ctx, userID, itemID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		updated = fresh
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return ItemOutput{}, err
		}
		return ItemOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toItemOutput(updated), nil
}

// アイテム削除。変更ログはDBのCASCADEで一緒に消える。
func (u *ItemUsecase) Delete(ctx context.Context, userID int64, itemID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	err := u.itemRepo.Delete(ctx, userID, itemID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// GET /items/levelsの入力DTO。すべて任意でAND。
type LevelsInput struct {
	LowStock     *int64
	CategoryName *string
	MinPrice     *float64
	MaxPrice     *float64
}

// 在庫レベル照会。low_stockは「数量がしきい値より小さい」の厳密な比較。
func (u *ItemUsecase) Levels(ctx context.Context, userID int64, in LevelsInput) ([]ItemOutput, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return nil, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}

	items, err := u.itemRepo.Levels(ctx, userID, repo.LevelsQuery{
		LowStock:     in.LowStock,
		CategoryName: in.CategoryName,
		MinPrice:     in.MinPrice,
		MaxPrice:     in.MaxPrice,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toItemOutputs(items), nil
}
