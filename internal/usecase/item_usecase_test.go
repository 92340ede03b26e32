package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	items      repo.ItemRepository
	changeLogs repo.ChangeLogRepository
	categories repo.CategoryRepository
}

func (r *TxReposMock) Items() repo.ItemRepository           { return r.items }
func (r *TxReposMock) ChangeLogs() repo.ChangeLogRepository { return r.changeLogs }
func (r *TxReposMock) Categories() repo.CategoryRepository  { return r.categories }

// =====================
// Repository mocks
// =====================

type ItemRepoMock struct{ mock.Mock }

func (m *ItemRepoMock) ListByOwner(ctx context.Context, ownerID int64, q repo.ItemListQuery) ([]model.InventoryItem, int64, error) {
	args := m.Called(ctx, ownerID, q)
	items, _ := args.Get(0).([]model.InventoryItem)
	total, _ := args.Get(1).(int64)
	return items, total, args.Error(2)
}

func (m *ItemRepoMock) FindByIDForOwner(ctx context.Context, ownerID int64, id int64) (model.InventoryItem, error) {
	args := m.Called(ctx, ownerID, id)
	item, _ := args.Get(0).(model.InventoryItem)
	return item, args.Error(1)
}

func (m *ItemRepoMock) Levels(ctx context.Context, ownerID int64, q repo.LevelsQuery) ([]model.InventoryItem, error) {
	args := m.Called(ctx, ownerID, q)
	items, _ := args.Get(0).([]model.InventoryItem)
	return items, args.Error(1)
}

func (m *ItemRepoMock) Create(ctx context.Context, item model.InventoryItem) (model.InventoryItem, error) {
	args := m.Called(ctx, item)
	out, _ := args.Get(0).(model.InventoryItem)
	return out, args.Error(1)
}

func (m *ItemRepoMock) FindByIDForOwnerLocked(ctx context.Context, ownerID int64, id int64) (model.InventoryItem, error) {
	args := m.Called(ctx, ownerID, id)
	item, _ := args.Get(0).(model.InventoryItem)
	return item, args.Error(1)
}

func (m *ItemRepoMock) Update(ctx context.Context, item model.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ItemRepoMock) Delete(ctx context.Context, ownerID int64, id int64) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

var _ repo.ItemRepository = (*ItemRepoMock)(nil)

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) List(ctx context.Context, search string) ([]model.Category, error) {
	args := m.Called(ctx, search)
	cs, _ := args.Get(0).([]model.Category)
	return cs, args.Error(1)
}

func (m *CategoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) FindByName(ctx context.Context, name string) (model.Category, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(model.Category)
	return out, args.Error(1)
}

func (m *CategoryRepoMock) Update(ctx context.Context, c model.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CategoryRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repo.CategoryRepository = (*CategoryRepoMock)(nil)

type ChangeLogRepoMock struct{ mock.Mock }

func (m *ChangeLogRepoMock) Create(ctx context.Context, log model.InventoryChangeLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *ChangeLogRepoMock) ListByOwner(ctx context.Context, ownerID int64, filter repo.ChangeLogFilter) ([]model.InventoryChangeLog, error) {
	args := m.Called(ctx, ownerID, filter)
	logs, _ := args.Get(0).([]model.InventoryChangeLog)
	return logs, args.Error(1)
}

func (m *ChangeLogRepoMock) FindByIDForOwner(ctx context.Context, ownerID int64, id int64) (model.InventoryChangeLog, error) {
	args := m.Called(ctx, ownerID, id)
	log, _ := args.Get(0).(model.InventoryChangeLog)
	return log, args.Error(1)
}

var _ repo.ChangeLogRepository = (*ChangeLogRepoMock)(nil)

// =====================
// helper
// =====================

func newItemUsecaseForTest(itemRepo *ItemRepoMock, categoryRepo *CategoryRepoMock, changeLogRepo *ChangeLogRepoMock) (*usecase.ItemUsecase, *TxManagerMock) {
	tx := &TxManagerMock{
		Repos: &TxReposMock{
			items:      itemRepo,
			changeLogs: changeLogRepo,
			categories: categoryRepo,
		},
	}
	return usecase.NewItemUsecase(itemRepo, categoryRepo, tx), tx
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()

	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "expected HTTPError, got %v", err) {
		assert.Equal(t, want, he.Status)
	}
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
func strPtr(v string) *string       { return &v }

// =====================
// List
// =====================

func TestItemUsecase_List_InvalidPage(t *testing.T) {
	uc, _ := newItemUsecaseForTest(new(ItemRepoMock), new(CategoryRepoMock), new(ChangeLogRepoMock))

	_, err := uc.List(context.Background(), 1, usecase.ListItemsInput{Page: 0, Limit: 20})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestItemUsecase_List_InvalidLimit(t *testing.T) {
	uc, _ := newItemUsecaseForTest(new(ItemRepoMock), new(CategoryRepoMock), new(ChangeLogRepoMock))

	_, err := uc.List(context.Background(), 1, usecase.ListItemsInput{Page: 1, Limit: 101})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestItemUsecase_List_InvalidSort(t *testing.T) {
	uc, _ := newItemUsecaseForTest(new(ItemRepoMock), new(CategoryRepoMock), new(ChangeLogRepoMock))

	_, err := uc.List(context.Background(), 1, usecase.ListItemsInput{Page: 1, Limit: 20, Sort: "color"})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// 一覧は必ず呼び出しユーザーのIDで絞られる
func TestItemUsecase_List_ScopedToOwner(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	uc, _ := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), new(ChangeLogRepoMock))

	itemRepo.On("ListByOwner", mock.Anything, int64(42), mock.Anything).
		Return([]model.InventoryItem{{ID: 1, UserID: 42, Name: "bolt"}}, int64(1), nil)

	out, err := uc.List(context.Background(), 42, usecase.ListItemsInput{Page: 1, Limit: 20})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(42), out.Items[0].UserID)

	itemRepo.AssertExpectations(t)
}

// =====================
// Get（所有権マスク）
// =====================

// 他人のアイテムIDは403ではなく404
func TestItemUsecase_Get_OtherOwner_NotFound(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	uc, _ := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), new(ChangeLogRepoMock))

	itemRepo.On("FindByIDForOwner", mock.Anything, int64(2), int64(10)).
		Return(model.InventoryItem{}, repo.ErrNotFound)

	_, err := uc.Get(context.Background(), 2, 10)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

// =====================
// Create
// =====================

// ボディのowner指定に関係なく、作成されるアイテムの所有者は呼び出しユーザー
func TestItemUsecase_Create_ForcesCallerAsOwner(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	uc, _ := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), new(ChangeLogRepoMock))

	itemRepo.On("Create", mock.Anything, mock.MatchedBy(func(item model.InventoryItem) bool {
		return item.UserID == 7
	})).Return(model.InventoryItem{ID: 1, UserID: 7, Name: "bolt", Quantity: 3, Price: 1.5}, nil)

	out, err := uc.Create(context.Background(), 7, usecase.CreateItemInput{
		Name:     "bolt",
		Quantity: int64Ptr(3),
		Price:    float64Ptr(1.5),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.UserID)

	itemRepo.AssertExpectations(t)
}

func TestItemUsecase_Create_MissingQuantity(t *testing.T) {
	uc, _ := newItemUsecaseForTest(new(ItemRepoMock), new(CategoryRepoMock), new(ChangeLogRepoMock))

	_, err := uc.Create(context.Background(), 7, usecase.CreateItemInput{
		Name:  "bolt",
		Price: float64Ptr(1.5),
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestItemUsecase_Create_NegativePrice(t *testing.T) {
	uc, _ := newItemUsecaseForTest(new(ItemRepoMock), new(CategoryRepoMock), new(ChangeLogRepoMock))

	_, err := uc.Create(context.Background(), 7, usecase.CreateItemInput{
		Name:     "bolt",
		Quantity: int64Ptr(3),
		Price:    float64Ptr(-1),
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestItemUsecase_Create_UnknownCategory(t *testing.T) {
	categoryRepo := new(CategoryRepoMock)
	uc, _ := newItemUsecaseForTest(new(ItemRepoMock), categoryRepo, new(ChangeLogRepoMock))

	categoryRepo.On("FindByID", mock.Anything, int64(99)).
		Return(model.Category{}, repo.ErrNotFound)

	_, err := uc.Create(context.Background(), 7, usecase.CreateItemInput{
		Name:       "bolt",
		Quantity:   int64Ptr(3),
		Price:      float64Ptr(1.5),
		CategoryID: int64Ptr(99),
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// =====================
// Update（数量変更と変更ログ）
// =====================

// 5→7: restockログが1件、prev/newが正しい
func TestItemUsecase_Update_QuantityIncrease_RecordsRestock(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	changeLogRepo := new(ChangeLogRepoMock)
	uc, tx := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), changeLogRepo)

	tx.On("WithinTx", mock.Anything).Return(nil)

	itemRepo.On("FindByIDForOwnerLocked", mock.Anything, int64(7), int64(1)).
		Return(model.InventoryItem{ID: 1, UserID: 7, Name: "bolt", Quantity: 5, Price: 1.5}, nil)
	itemRepo.On("Update", mock.Anything, mock.MatchedBy(func(item model.InventoryItem) bool {
		return item.Quantity == 7
	})).Return(nil)
	itemRepo.On("FindByIDForOwner", mock.Anything, int64(7), int64(1)).
		Return(model.InventoryItem{ID: 1, UserID: 7, Name: "bolt", Quantity: 7, Price: 1.5}, nil)

	changeLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(log model.InventoryChangeLog) bool {
		return log.InventoryItemID == 1 &&
			log.UserID == 7 &&
			log.PreviousQuantity == 5 &&
			log.NewQuantity == 7 &&
			log.ChangeType == model.ChangeTypeRestock
	})).Return(nil)

	out, err := uc.Update(context.Background(), 7, 1, usecase.UpdateItemInput{
		Quantity: int64Ptr(7),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.Quantity)

	itemRepo.AssertExpectations(t)
	changeLogRepo.AssertExpectations(t)
}

// 7→3: saleログが1件
func TestItemUsecase_Update_QuantityDecrease_RecordsSale(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	changeLogRepo := new(ChangeLogRepoMock)
	uc, tx := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), changeLogRepo)

	tx.On("WithinTx", mock.Anything).Return(nil)

	itemRepo.On("FindByIDForOwnerLocked", mock.Anything, int64(7), int64(1)).
		Return(model.InventoryItem{ID: 1, UserID: 7, Name: "bolt", Quantity: 7, Price: 1.5}, nil)
	itemRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	itemRepo.On("FindByIDForOwner", mock.Anything, int64(7), int64(1)).
		Return(model.InventoryItem{ID: 1, UserID: 7, Name: "bolt", Quantity: 3, Price: 1.5}, nil)

	changeLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(log model.InventoryChangeLog) bool {
		return log.PreviousQuantity == 7 &&
			log.NewQuantity == 3 &&
			log.ChangeType == model.ChangeTypeSale
	})).Return(nil)

	_, err := uc.Update(context.Background(), 7, 1, usecase.UpdateItemInput{
		Quantity: int64Ptr(3),
	})
	assert.NoError(t, err)

	changeLogRepo.AssertExpectations(t)
}

// 同じ数量で保存してもログは増えない
func TestItemUsecase_Update_SameQuantity_NoLog(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	changeLogRepo := new(ChangeLogRepoMock)
	uc, tx := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), changeLogRepo)

	tx.On("WithinTx", mock.Anything).Return(nil)

	itemRepo.On("FindByIDForOwnerLocked", mock.Anything, int64(7), int64(1)).
		Return(model.InventoryItem{ID: 1, UserID: 7, Name: "bolt", Quantity: 5, Price: 1.5}, nil)
	itemRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	itemRepo.On("FindByIDForOwner", mock.Anything, int64(7), int64(1)).
		Return(model.InventoryItem{ID: 1, UserID: 7, Name: "bolt M6", Quantity: 5, Price: 1.5}, nil)

	_, err := uc.Update(context.Background(), 7, 1, usecase.UpdateItemInput{
		Quantity: int64Ptr(5),
		Name:     strPtr("bolt M6"),
	})
	assert.NoError(t, err)

	changeLogRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// レスポンスは保存後の再読込の結果。ロック時の古いupdated_atや
// 空のcategory_nameをそのまま返さない。
func TestItemUsecase_Update_ReturnsFreshState(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	uc, tx := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), new(ChangeLogRepoMock))

	tx.On("WithinTx", mock.Anything).Return(nil)

	staleTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	freshTime := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	// ロック付き読みはPreloadなし・保存前のupdated_at
	itemRepo.On("FindByIDForOwnerLocked", mock.Anything, int64(7), int64(1)).
		Return(model.InventoryItem{ID: 1, UserID: 7, Name: "bolt", Quantity: 5, Price: 1.5, UpdatedAt: staleTime}, nil)
	itemRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	categoryID := int64(3)
	itemRepo.On("FindByIDForOwner", mock.Anything, int64(7), int64(1)).
		Return(model.InventoryItem{
			ID:         1,
			UserID:     7,
			Name:       "bolt M6",
			Quantity:   5,
			Price:      1.5,
			CategoryID: &categoryID,
			Category:   &model.Category{ID: 3, Name: "hardware"},
			UpdatedAt:  freshTime,
		}, nil)

	out, err := uc.Update(context.Background(), 7, 1, usecase.UpdateItemInput{
		Name: strPtr("bolt M6"),
	})
	assert.NoError(t, err)
	assert.Equal(t, freshTime, out.UpdatedAt)
	assert.Equal(t, "hardware", out.CategoryName)

	itemRepo.AssertExpectations(t)
}

// 他人のアイテムの更新は404
func TestItemUsecase_Update_OtherOwner_NotFound(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	uc, tx := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), new(ChangeLogRepoMock))

	tx.On("WithinTx", mock.Anything).Return(nil)

	itemRepo.On("FindByIDForOwnerLocked", mock.Anything, int64(2), int64(1)).
		Return(model.InventoryItem{}, repo.ErrNotFound)

	_, err := uc.Update(context.Background(), 2, 1, usecase.UpdateItemInput{
		Quantity: int64Ptr(9),
	})
	assertHTTPStatus(t, err, http.StatusNotFound)
}

// ログ保存が失敗したら更新全体がエラー（トランザクションごと失敗）
func TestItemUsecase_Update_LogFailure_FailsWholeUpdate(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	changeLogRepo := new(ChangeLogRepoMock)
	uc, tx := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), changeLogRepo)

	tx.On("WithinTx", mock.Anything).Return(nil)

	itemRepo.On("FindByIDForOwnerLocked", mock.Anything, int64(7), int64(1)).
		Return(model.InventoryItem{ID: 1, UserID: 7, Quantity: 5}, nil)
	itemRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	changeLogRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := uc.Update(context.Background(), 7, 1, usecase.UpdateItemInput{
		Quantity: int64Ptr(9),
	})
	assertHTTPStatus(t, err, http.StatusInternalServerError)
}

// =====================
// Delete
// =====================

func TestItemUsecase_Delete_OtherOwner_NotFound(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	uc, _ := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), new(ChangeLogRepoMock))

	itemRepo.On("Delete", mock.Anything, int64(2), int64(1)).Return(repo.ErrNotFound)

	err := uc.Delete(context.Background(), 2, 1)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

// =====================
// Levels
// =====================

func TestItemUsecase_Levels_MinAboveMax(t *testing.T) {
	uc, _ := newItemUsecaseForTest(new(ItemRepoMock), new(CategoryRepoMock), new(ChangeLogRepoMock))

	_, err := uc.Levels(context.Background(), 1, usecase.LevelsInput{
		MinPrice: float64Ptr(10),
		MaxPrice: float64Ptr(5),
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// low_stockは厳密な「より小さい」。フィルタの値がそのままrepoへ渡る。
func TestItemUsecase_Levels_PassesFilters(t *testing.T) {
	itemRepo := new(ItemRepoMock)
	uc, _ := newItemUsecaseForTest(itemRepo, new(CategoryRepoMock), new(ChangeLogRepoMock))

	itemRepo.On("Levels", mock.Anything, int64(1), mock.MatchedBy(func(q repo.LevelsQuery) bool {
		return q.LowStock != nil && *q.LowStock == 7 &&
			q.CategoryName != nil && *q.CategoryName == "hardware"
	})).Return([]model.InventoryItem{
		{ID: 1, UserID: 1, Quantity: 5},
	}, nil)

	out, err := uc.Levels(context.Background(), 1, usecase.LevelsInput{
		LowStock:     int64Ptr(7),
		CategoryName: strPtr("hardware"),
	})
	assert.NoError(t, err)
	assert.Len(t, out, 1)

	itemRepo.AssertExpectations(t)
}
