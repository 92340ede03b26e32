package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 一覧は所有アイテムのログだけ。ownerIDがそのままrepoに渡る。
func TestChangeLogUsecase_List_ScopedToOwner(t *testing.T) {
	changeLogRepo := new(ChangeLogRepoMock)
	uc := usecase.NewChangeLogUsecase(changeLogRepo)

	changeLogRepo.On("ListByOwner", mock.Anything, int64(7), mock.Anything).
		Return([]model.InventoryChangeLog{
			{ID: 2, InventoryItemID: 1, UserID: 7, PreviousQuantity: 5, NewQuantity: 7, ChangeType: model.ChangeTypeRestock},
		}, nil)

	out, err := uc.List(context.Background(), 7, usecase.ListChangeLogsInput{})
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, "restock", out[0].ChangeType)
	assert.Equal(t, int64(5), out[0].PreviousQuantity)
	assert.Equal(t, int64(7), out[0].NewQuantity)

	changeLogRepo.AssertExpectations(t)
}

func TestChangeLogUsecase_List_FilterByChangeType(t *testing.T) {
	changeLogRepo := new(ChangeLogRepoMock)
	uc := usecase.NewChangeLogUsecase(changeLogRepo)

	changeLogRepo.On("ListByOwner", mock.Anything, int64(7), mock.MatchedBy(func(f repo.ChangeLogFilter) bool {
		return f.ChangeType != nil && *f.ChangeType == model.ChangeTypeSale
	})).Return([]model.InventoryChangeLog{}, nil)

	ct := "sale"
	_, err := uc.List(context.Background(), 7, usecase.ListChangeLogsInput{ChangeType: &ct})
	assert.NoError(t, err)

	changeLogRepo.AssertExpectations(t)
}

func TestChangeLogUsecase_List_InvalidChangeType(t *testing.T) {
	uc := usecase.NewChangeLogUsecase(new(ChangeLogRepoMock))

	ct := "theft"
	_, err := uc.List(context.Background(), 7, usecase.ListChangeLogsInput{ChangeType: &ct})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// 他人のアイテムのログは存在しない扱い（404）
func TestChangeLogUsecase_Get_OtherOwner_NotFound(t *testing.T) {
	changeLogRepo := new(ChangeLogRepoMock)
	uc := usecase.NewChangeLogUsecase(changeLogRepo)

	changeLogRepo.On("FindByIDForOwner", mock.Anything, int64(2), int64(5)).
		Return(model.InventoryChangeLog{}, repo.ErrNotFound)

	_, err := uc.Get(context.Background(), 2, 5)
	assertHTTPStatus(t, err, http.StatusNotFound)
}
