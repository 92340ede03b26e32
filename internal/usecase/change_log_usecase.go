package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ChangeLogUsecase struct {
	changeLogRepo repo.ChangeLogRepository
}

// DI
func NewChangeLogUsecase(changeLogRepo repo.ChangeLogRepository) *ChangeLogUsecase {
	return &ChangeLogUsecase{changeLogRepo: changeLogRepo}
}

type ListChangeLogsInput struct {
	InventoryItemID *int64
	ChangeType      *string
	Limit           int
	Offset          int
}

type ChangeLogOutput struct {
	ID               int64     `json:"id"`
	InventoryItemID  int64     `json:"inventory_item"`
	ItemName         string    `json:"item_name,omitempty"`
	UserID           int64     `json:"user"`
	PreviousQuantity int64     `json:"previous_quantity"`
	NewQuantity      int64     `json:"new_quantity"`
	ChangeType       string    `json:"change_type"`
	Timestamp        time.Time `json:"timestamp"`
}

func toChangeLogOutput(log model.InventoryChangeLog) ChangeLogOutput {
	out := ChangeLogOutput{
		ID:               log.ID,
		InventoryItemID:  log.InventoryItemID,
		UserID:           log.UserID,
		PreviousQuantity: log.PreviousQuantity,
		NewQuantity:      log.NewQuantity,
		ChangeType:       string(log.ChangeType),
		Timestamp:        log.CreatedAt,
	}
	if log.InventoryItem != nil {
		out.ItemName = log.InventoryItem.Name
	}
	return out
}

// 自分のアイテムの変更ログを新しい順で返す。
// 他ユーザーのアイテムのログは一切見えない。
func (u *ChangeLogUsecase) List(ctx context.Context, userID int64, in ListChangeLogsInput) ([]ChangeLogOutput, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var changeType *model.ChangeType
	if in.ChangeType != nil {
		switch model.ChangeType(*in.ChangeType) {
		case model.ChangeTypeRestock, model.ChangeTypeSale, model.ChangeTypeAdjustment:
			ct := model.ChangeType(*in.ChangeType)
			changeType = &ct
		default:
			return nil, NewHTTPError(http.StatusBadRequest, "invalid change_type")
		}
	}

	logs, err := u.changeLogRepo.ListByOwner(ctx, userID, repo.ChangeLogFilter{
		InventoryItemID: in.InventoryItemID,
		ChangeType:      changeType,
		Limit:           in.Limit,
		Offset:          in.Offset,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]ChangeLogOutput, 0, len(logs))
	for _, log := range logs {
		outs = append(outs, toChangeLogOutput(log))
	}
	return outs, nil
}

// 変更ログを1件取得。所有権マスクでそれ以外は404。
func (u *ChangeLogUsecase) Get(ctx context.Context, userID int64, logID int64) (ChangeLogOutput, error) {
	if userID <= 0 {
		return ChangeLogOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if logID <= 0 {
		return ChangeLogOutput{}, NewHTTPError(http.StatusBadRequest, "invalid log id")
	}

	log, err := u.changeLogRepo.FindByIDForOwner(ctx, userID, logID)
	if err == repo.ErrNotFound {
		return ChangeLogOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ChangeLogOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toChangeLogOutput(log), nil
}
