package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	items      repo.ItemRepository
	changeLogs repo.ChangeLogRepository
	categories repo.CategoryRepository
}

func (r *txReposGorm) Items() repo.ItemRepository           { return r.items }
func (r *txReposGorm) ChangeLogs() repo.ChangeLogRepository { return r.changeLogs }
func (r *txReposGorm) Categories() repo.CategoryRepository  { return r.categories }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			items:      NewItemGormRepository(tx),
			changeLogs: NewChangeLogGormRepository(tx),
			categories: NewCategoryGormRepository(tx),
		}
		return fn(r)
	})
}
