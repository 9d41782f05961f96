package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"yatube/internal/model"
	"yatube/internal/repository/interfaces"
	"yatube/internal/util"

	"go.uber.org/zap"
)

const userColumns = `id, username, first_name, last_name, email, password_hash, role, created_at`

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

var _ interfaces.UserRepository = (*userRepository)(nil)

// Create 创建一个新用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser // 设置默认角色
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO users (username, first_name, last_name, email, password_hash, role, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		user.Username, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		util.Logger.Error("创建用户失败", zap.Error(err), zap.String("username", user.Username))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新用户ID失败", zap.Error(err))
		return err
	}
	user.ID = int(id)
	util.Logger.Info("用户创建成功", zap.Int("user_id", user.ID))
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// FindByEmail 通过邮箱查找用户，多个账号共用邮箱时取最早注册的
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? ORDER BY id LIMIT 1`, email)
}

// FindByUsername 通过用户名查找用户
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.Email,
		&user.PasswordHash, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		util.Logger.Error("查找用户失败", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// Update 更新用户资料（不含密码）
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET username = ?, first_name = ?, last_name = ?, email = ?, role = ?
		WHERE id = ?`,
		user.Username, user.FirstName, user.LastName, user.Email, user.Role, user.ID)
	if err != nil {
		util.Logger.Error("更新用户失败", zap.Error(err), zap.Int("user_id", user.ID))
		return err
	}
	return requireAffected(res)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		util.Logger.Error("更新用户密码失败", zap.Error(err), zap.Int("user_id", id))
		return err
	}
	return requireAffected(res)
}

// Delete 删除用户及其全部帖子、评论和关注关系
func (r *userRepository) Delete(ctx context.Context, id int) error {
	util.Logger.Info("开始删除用户", zap.Int("user_id", id))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 外键级联在 SQLite 未开启 foreign_keys 时不会生效，这里显式删除
	cascade := []string{
		`DELETE FROM posts_comment WHERE author_id = ? OR post_id IN (SELECT id FROM posts_post WHERE author_id = ?)`,
		`DELETE FROM posts_post WHERE author_id = ?`,
		`DELETE FROM posts_follow WHERE user_id = ? OR author_id = ?`,
	}
	if _, err := tx.ExecContext(ctx, cascade[0], id, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, cascade[1], id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, cascade[2], id, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除用户失败", zap.Error(err), zap.Int("user_id", id))
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return err
	}
	util.Logger.Info("用户删除成功", zap.Int("user_id", id))
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM users`)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func count(ctx context.Context, db *sql.DB, query string, args ...interface{}) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}
