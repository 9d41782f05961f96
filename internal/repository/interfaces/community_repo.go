package interfaces

import (
	"context"

	"yatube/internal/model"
)

// CommunityRepository 定义了分组、帖子、评论和关注相关的数据库操作接口
type CommunityRepository interface {
	CreateGroup(ctx context.Context, group *model.Group) error
	GetGroupByID(ctx context.Context, id int) (*model.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*model.Group, error)
	ListGroups(ctx context.Context) ([]*model.Group, error)
	DeleteGroup(ctx context.Context, id int) error
	CountGroups(ctx context.Context) (int, error)

	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id int) (*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id int) error
	CountPosts(ctx context.Context, filter model.PostFilter) (int, error)
	ListPosts(ctx context.Context, filter model.PostFilter, limit, offset int) ([]*model.Post, error)

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id int) (*model.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID int) ([]*model.Comment, error)
	DeleteComment(ctx context.Context, id int) error
	CountComments(ctx context.Context) (int, error)

	CreateFollow(ctx context.Context, follow *model.Follow) error
	DeleteFollow(ctx context.Context, userID, authorID int) error
	IsFollowing(ctx context.Context, userID, authorID int) (bool, error)
	CountFollows(ctx context.Context) (int, error)
}
