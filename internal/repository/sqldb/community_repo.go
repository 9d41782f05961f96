package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"yatube/internal/model"
	"yatube/internal/repository/interfaces"
	"yatube/internal/util"

	"go.uber.org/zap"
)

type communityRepository struct {
	db *sql.DB
}

func NewCommunityRepository(db *sql.DB) *communityRepository {
	return &communityRepository{db: db}
}

var _ interfaces.CommunityRepository = (*communityRepository)(nil)

// ---- 分组 ----

func (r *communityRepository) CreateGroup(ctx context.Context, group *model.Group) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO posts_group (title, slug, description) VALUES (?, ?, ?)`,
		group.Title, group.Slug, group.Description)
	if err != nil {
		util.Logger.Error("创建分组失败", zap.Error(err), zap.String("slug", group.Slug))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	group.ID = int(id)
	util.Logger.Info("分组创建成功", zap.Int("group_id", group.ID), zap.String("slug", group.Slug))
	return nil
}

func (r *communityRepository) GetGroupByID(ctx context.Context, id int) (*model.Group, error) {
	return r.getGroup(ctx, `SELECT id, title, slug, description FROM posts_group WHERE id = ?`, id)
}

func (r *communityRepository) GetGroupBySlug(ctx context.Context, slug string) (*model.Group, error) {
	return r.getGroup(ctx, `SELECT id, title, slug, description FROM posts_group WHERE slug = ?`, slug)
}

func (r *communityRepository) getGroup(ctx context.Context, query string, arg interface{}) (*model.Group, error) {
	var g model.Group
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *communityRepository) ListGroups(ctx context.Context) ([]*model.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, slug, description FROM posts_group ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*model.Group
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

// DeleteGroup 删除分组，所属帖子保留并把 group_id 置空
func (r *communityRepository) DeleteGroup(ctx context.Context, id int) error {
	util.Logger.Info("开始删除分组", zap.Int("group_id", id))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	detached, err := tx.ExecContext(ctx, `UPDATE posts_post SET group_id = NULL WHERE group_id = ?`, id)
	if err != nil {
		util.Logger.Error("解除帖子分组失败", zap.Error(err), zap.Int("group_id", id))
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts_group WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除分组失败", zap.Error(err), zap.Int("group_id", id))
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return err
	}

	n, _ := detached.RowsAffected()
	util.Logger.Info("分组删除成功", zap.Int("group_id", id), zap.Int64("detached_posts", n))
	return nil
}

func (r *communityRepository) CountGroups(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM posts_group`)
}

// ---- 帖子 ----

const postSelect = `
        SELECT p.id, p.text, p.pub_date, p.image, p.author_id, p.group_id,
               u.username, u.first_name, u.last_name,
               g.title, g.slug, g.description
        FROM posts_post p
        JOIN users u ON p.author_id = u.id
        LEFT JOIN posts_group g ON p.group_id = g.id`

func (r *communityRepository) CreatePost(ctx context.Context, post *model.Post) error {
	if post.PubDate.IsZero() {
		post.PubDate = time.Now().UTC()
	}

	query := `INSERT INTO posts_post (text, pub_date, image, author_id, group_id)
              VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, post.Text, post.PubDate, post.Image, post.AuthorID, nullableID(post.GroupID))
	if err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err))
		return err
	}

	postID, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新帖子ID失败", zap.Error(err))
		return err
	}
	post.ID = int(postID)

	util.Logger.Info("帖子创建成功", zap.Int("post_id", post.ID), zap.Int("author_id", post.AuthorID))
	return nil
}

func (r *communityRepository) GetPostByID(ctx context.Context, id int) (*model.Post, error) {
	row := r.db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// UpdatePost 只更新正文、分组和图片，pub_date 创建后不可变
func (r *communityRepository) UpdatePost(ctx context.Context, post *model.Post) error {
	query := `UPDATE posts_post SET text = ?, group_id = ?, image = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, post.Text, nullableID(post.GroupID), post.Image, post.ID)
	if err != nil {
		util.Logger.Error("更新帖子失败", zap.Error(err), zap.Int("post_id", post.ID))
		return err
	}
	return requireAffected(res)
}

func (r *communityRepository) DeletePost(ctx context.Context, id int) error {
	util.Logger.Info("开始删除帖子", zap.Int("post_id", id))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts_comment WHERE post_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts_post WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除帖子失败", zap.Error(err), zap.Int("post_id", id))
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	util.Logger.Info("帖子删除成功", zap.Int("post_id", id))
	return nil
}

func (r *communityRepository) CountPosts(ctx context.Context, filter model.PostFilter) (int, error) {
	where, args := postWhere(filter)
	return count(ctx, r.db, `SELECT COUNT(*) FROM posts_post p`+where, args...)
}

// ListPosts 按发布时间倒序返回一页帖子
func (r *communityRepository) ListPosts(ctx context.Context, filter model.PostFilter, limit, offset int) ([]*model.Post, error) {
	where, args := postWhere(filter)
	query := postSelect + where + `
        ORDER BY p.pub_date DESC, p.id DESC
        LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		util.Logger.Error("查询帖子列表失败", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// postWhere 关注流用 IN 子查询，重复的关注记录不会让帖子重复出现
func postWhere(filter model.PostFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.GroupID != 0 {
		conds = append(conds, "p.group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.AuthorID != 0 {
		conds = append(conds, "p.author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if filter.FollowerID != 0 {
		conds = append(conds, "p.author_id IN (SELECT f.author_id FROM posts_follow f WHERE f.user_id = ?)")
		args = append(args, filter.FollowerID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		post       model.Post
		author     model.User
		groupID    sql.NullInt64
		groupTitle sql.NullString
		groupSlug  sql.NullString
		groupDesc  sql.NullString
	)
	err := row.Scan(
		&post.ID, &post.Text, &post.PubDate, &post.Image, &post.AuthorID, &groupID,
		&author.Username, &author.FirstName, &author.LastName,
		&groupTitle, &groupSlug, &groupDesc,
	)
	if err != nil {
		return nil, err
	}

	author.ID = post.AuthorID
	post.Author = &author
	if groupID.Valid {
		id := int(groupID.Int64)
		post.GroupID = &id
		post.Group = &model.Group{ID: id, Title: groupTitle.String, Slug: groupSlug.String, Description: groupDesc.String}
	}
	return &post, nil
}

func nullableID(id *int) interface{} {
	if id == nil || *id == 0 {
		return nil
	}
	return *id
}

// ---- 评论 ----

func (r *communityRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	if comment.Created.IsZero() {
		comment.Created = time.Now().UTC()
	}

	query := `INSERT INTO posts_comment (post_id, author_id, text, created) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, comment.PostID, comment.AuthorID, comment.Text, comment.Created)
	if err != nil {
		util.Logger.Error("创建评论失败", zap.Error(err), zap.Int("post_id", comment.PostID))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新评论ID失败", zap.Error(err))
		return err
	}
	comment.ID = int(id)

	util.Logger.Info("评论创建成功", zap.Int("comment_id", comment.ID), zap.Int("post_id", comment.PostID))
	return nil
}

func (r *communityRepository) GetCommentByID(ctx context.Context, id int) (*model.Comment, error) {
	var c model.Comment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, post_id, author_id, text, created FROM posts_comment WHERE id = ?`, id,
	).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetCommentsByPostID 返回帖子的全部评论，按时间正序
func (r *communityRepository) GetCommentsByPostID(ctx context.Context, postID int) ([]*model.Comment, error) {
	query := `
        SELECT c.id, c.post_id, c.author_id, c.text, c.created,
               u.username, u.first_name, u.last_name
        FROM posts_comment c
        JOIN users u ON c.author_id = u.id
        WHERE c.post_id = ?
        ORDER BY c.created ASC, c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		var comment model.Comment
		var user model.User
		err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.AuthorID, &comment.Text, &comment.Created,
			&user.Username, &user.FirstName, &user.LastName,
		)
		if err != nil {
			return nil, err
		}
		user.ID = comment.AuthorID
		comment.Author = &user
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

func (r *communityRepository) DeleteComment(ctx context.Context, id int) error {
	util.Logger.Info("开始删除评论", zap.Int("comment_id", id))

	res, err := r.db.ExecContext(ctx, `DELETE FROM posts_comment WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除评论失败", zap.Error(err), zap.Int("comment_id", id))
		return err
	}
	return requireAffected(res)
}

func (r *communityRepository) CountComments(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM posts_comment`)
}

// ---- 关注 ----

// CreateFollow 无条件插入，是否已关注由调用方先检查
func (r *communityRepository) CreateFollow(ctx context.Context, follow *model.Follow) error {
	util.Logger.Info("开始创建关注", zap.Int("user_id", follow.UserID), zap.Int("author_id", follow.AuthorID))

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO posts_follow (user_id, author_id) VALUES (?, ?)`, follow.UserID, follow.AuthorID)
	if err != nil {
		util.Logger.Error("创建关注失败", zap.Error(err))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新关注ID失败", zap.Error(err))
		return err
	}
	follow.ID = int(id)
	return nil
}

func (r *communityRepository) DeleteFollow(ctx context.Context, userID, authorID int) error {
	util.Logger.Info("开始删除关注", zap.Int("user_id", userID), zap.Int("author_id", authorID))

	_, err := r.db.ExecContext(ctx, `DELETE FROM posts_follow WHERE user_id = ? AND author_id = ?`, userID, authorID)
	if err != nil {
		util.Logger.Error("删除关注失败", zap.Error(err))
		return err
	}
	return nil
}

func (r *communityRepository) IsFollowing(ctx context.Context, userID, authorID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS(
            SELECT 1 FROM posts_follow
            WHERE user_id = ? AND author_id = ?
        )`, userID, authorID).Scan(&exists)
	return exists, err
}

func (r *communityRepository) CountFollows(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM posts_follow`)
}
