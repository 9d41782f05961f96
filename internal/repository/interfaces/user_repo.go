package interfaces

import (
	"context"
	"errors"

	"yatube/internal/model"
)

// ErrNotFound 表示查询的记录不存在，所有仓库实现统一返回它
var ErrNotFound = errors.New("record not found")

// UserRepository 接口定义了用户仓库应该实现的方法
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}
