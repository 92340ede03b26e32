package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// モック（handler経由のルーティング確認用）
// =====================

type userRepoStub struct{ mock.Mock }

func (m *userRepoStub) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoStub) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoStub) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoStub) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoStub) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	us, _ := args.Get(0).([]model.User)
	return us, args.Error(1)
}

func (m *userRepoStub) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoStub) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repository.UserRepository = (*userRepoStub)(nil)

type changeLogRepoStub struct{ mock.Mock }

func (m *changeLogRepoStub) Create(ctx context.Context, log model.InventoryChangeLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *changeLogRepoStub) ListByOwner(ctx context.Context, ownerID int64, filter repository.ChangeLogFilter) ([]model.InventoryChangeLog, error) {
	args := m.Called(ctx, ownerID, filter)
	logs, _ := args.Get(0).([]model.InventoryChangeLog)
	return logs, args.Error(1)
}

func (m *changeLogRepoStub) FindByIDForOwner(ctx context.Context, ownerID int64, id int64) (model.InventoryChangeLog, error) {
	args := m.Called(ctx, ownerID, id)
	log, _ := args.Get(0).(model.InventoryChangeLog)
	return log, args.Error(1)
}

var _ repository.ChangeLogRepository = (*changeLogRepoStub)(nil)

// =====================
// helper
// =====================

func setupChangeLogServer(t *testing.T, role string, changeLogRepo *changeLogRepoStub) (*echo.Echo, string) {
	t.Helper()

	cfg := config.Config{JWTSecret: "test-secret"}

	userRepo := new(userRepoStub)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:           1,
		Role:         model.Role(role),
		TokenVersion: 0,
		IsActive:     true,
	}, nil)

	e := echo.New()
	h := handler.NewChangeLogHandler(usecase.NewChangeLogUsecase(changeLogRepo))
	h.RegisterRoutes(e, cfg, userRepo)

	claims := jwt.MapClaims{
		"sub":  int64(1),
		"role": role,
		"tv":   0,
		"iat":  1,
		"exp":  9999999999,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	return e, raw
}

func doJSON(e *echo.Echo, method string, path string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// =====================
// 読み取り
// =====================

func TestChangeLogRoutes_List_Success(t *testing.T) {
	changeLogRepo := new(changeLogRepoStub)
	changeLogRepo.On("ListByOwner", mock.Anything, int64(1), mock.Anything).
		Return([]model.InventoryChangeLog{
			{ID: 1, InventoryItemID: 1, UserID: 1, PreviousQuantity: 5, NewQuantity: 7, ChangeType: model.ChangeTypeRestock},
		}, nil)

	e, token := setupChangeLogServer(t, "USER", changeLogRepo)

	rec := doJSON(e, http.MethodGet, "/change-logs", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangeLogRoutes_List_RequiresAuth(t *testing.T) {
	e, _ := setupChangeLogServer(t, "USER", new(changeLogRepoStub))

	req := httptest.NewRequest(http.MethodGet, "/change-logs", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// 書き込みは405
// =====================

// 一般ユーザーの書き込みは全部405
func TestChangeLogRoutes_Mutations_MethodNotAllowed(t *testing.T) {
	e, token := setupChangeLogServer(t, "USER", new(changeLogRepoStub))

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/change-logs"},
		{http.MethodPut, "/change-logs/1"},
		{http.MethodPatch, "/change-logs/1"},
		{http.MethodDelete, "/change-logs/1"},
	}

	for _, tc := range cases {
		rec := doJSON(e, tc.method, tc.path, token)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", tc.method, tc.path)
	}
}

// 管理者でも履歴は書き換えられない
func TestChangeLogRoutes_Mutations_MethodNotAllowed_ForAdmin(t *testing.T) {
	e, token := setupChangeLogServer(t, "ADMIN", new(changeLogRepoStub))

	rec := doJSON(e, http.MethodDelete, "/change-logs/1", token)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
