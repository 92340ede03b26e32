package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
}

// DI
func NewCategoryUsecase(categoryRepo repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo}
}

type CategoryOutput struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCategoryOutput(c model.Category) CategoryOutput {
	return CategoryOutput{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

// カテゴリ一覧。認証済みなら誰でも見られる。
func (u *CategoryUsecase) List(ctx context.Context, search string) ([]CategoryOutput, error) {
	if len(search) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "search too long")
	}

	categories, err := u.categoryRepo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]CategoryOutput, 0, len(categories))
	for _, c := range categories {
		outs = append(outs, toCategoryOutput(c))
	}
	return outs, nil
}

func (u *CategoryUsecase) Get(ctx context.Context, categoryID int64) (CategoryOutput, error) {
	if categoryID <= 0 {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	c, err := u.categoryRepo.FindByID(ctx, categoryID)
	if err == repo.ErrNotFound {
		return CategoryOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toCategoryOutput(c), nil
}

type CategoryInput struct {
	Name        string
	Description string
}

// カテゴリ作成（管理者のみ、権限チェックはmiddleware側）。
// name重複は409でサーバー側は何も変えない。
func (u *CategoryUsecase) AdminCreate(ctx context.Context, adminUserID int64, in CategoryInput) (CategoryOutput, error) {
	if adminUserID <= 0 {
		return CategoryOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if len(in.Name) > 100 {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "name too long")
	}

	c, err := u.categoryRepo.Create(ctx, model.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	})
	if err == repo.ErrConflict {
		return CategoryOutput{}, NewHTTPError(http.StatusConflict, "category name already exists")
	}
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toCategoryOutput(c), nil
}

func (u *CategoryUsecase) AdminUpdate(ctx context.Context, adminUserID int64, categoryID int64, in CategoryInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}

	err := u.categoryRepo.Update(ctx, model.Category{
		ID:          categoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	})
	if err == repo.ErrConflict {
		return NewHTTPError(http.StatusConflict, "category name already exists")
	}
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// カテゴリ削除。参照中のアイテムは消えず、category_idだけNULLに戻る。
func (u *CategoryUsecase) AdminDelete(ctx context.Context, adminUserID int64, categoryID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	err := u.categoryRepo.Delete(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
