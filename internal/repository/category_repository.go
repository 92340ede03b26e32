package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// name重複などの一意制約違反
var ErrConflict = errors.New("conflict")

// カテゴリの永続化。共有リソースなのでownerによる絞り込みはない。
type CategoryRepository interface {
	// searchが空でなければname部分一致で絞り込む
	List(ctx context.Context, search string) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	FindByName(ctx context.Context, name string) (model.Category, error)

	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error
}
