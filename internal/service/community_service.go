package service

import (
	"context"
	stderrors "errors"
	"mime/multipart"
	"strings"

	"yatube/config"
	"yatube/internal/errors"
	"yatube/internal/model"
	"yatube/internal/pagination"
	"yatube/internal/repository/interfaces"
	"yatube/internal/storage"
	"yatube/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Feed 是一页帖子
type Feed struct {
	Posts []*model.Post
	Page  pagination.Page
}

// Profile 作者主页
type Profile struct {
	Author    *model.User
	Feed      *Feed
	Following bool
}

// PostDetail 帖子详情页需要的全部数据
type PostDetail struct {
	Post            *model.Post
	Comments        []*model.Comment
	AuthorPostCount int
}

// PostInput 创建或编辑帖子的表单数据
type PostInput struct {
	Text    string
	GroupID *int
	Image   *multipart.FileHeader
}

type CommunityService struct {
	repo    interfaces.CommunityRepository
	users   interfaces.UserRepository
	storage storage.FileStorage
	perPage int
}

func NewCommunityService(repo interfaces.CommunityRepository, users interfaces.UserRepository, fs storage.FileStorage) *CommunityService {
	perPage := config.AppConfig.PostsPerPage
	if perPage <= 0 {
		perPage = 10
	}
	return &CommunityService{repo: repo, users: users, storage: fs, perPage: perPage}
}

// WithPerPage 修改每页条数
func (s *CommunityService) WithPerPage(n int) *CommunityService {
	if n > 0 {
		s.perPage = n
	}
	return s
}

func (s *CommunityService) feed(ctx context.Context, filter model.PostFilter, rawPage string) (*Feed, error) {
	total, err := s.repo.CountPosts(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "统计帖子失败", err)
	}

	page := pagination.New(total, s.perPage).GetPage(rawPage)
	posts, err := s.repo.ListPosts(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询帖子失败", err)
	}
	return &Feed{Posts: posts, Page: page}, nil
}

// IndexFeed 全站帖子
func (s *CommunityService) IndexFeed(ctx context.Context, rawPage string) (*Feed, error) {
	return s.feed(ctx, model.PostFilter{}, rawPage)
}

// GroupFeed 分组帖子，分组不存在返回 ErrGroupNotFound
func (s *CommunityService) GroupFeed(ctx context.Context, slug, rawPage string) (*model.Group, *Feed, error) {
	group, err := s.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	feed, err := s.feed(ctx, model.PostFilter{GroupID: group.ID}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return group, feed, nil
}

// ProfileFeed 作者帖子，viewer 为空表示匿名访问
func (s *CommunityService) ProfileFeed(ctx context.Context, username, rawPage string, viewer *model.User) (*Profile, error) {
	author, err := s.findAuthor(ctx, username)
	if err != nil {
		return nil, err
	}
	feed, err := s.feed(ctx, model.PostFilter{AuthorID: author.ID}, rawPage)
	if err != nil {
		return nil, err
	}

	profile := &Profile{Author: author, Feed: feed}
	if viewer != nil {
		profile.Following, err = s.repo.IsFollowing(ctx, viewer.ID, author.ID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "查询关注关系失败", err)
		}
	}
	return profile, nil
}

// FollowFeed 当前用户关注的作者的帖子
func (s *CommunityService) FollowFeed(ctx context.Context, viewer *model.User, rawPage string) (*Feed, error) {
	return s.feed(ctx, model.PostFilter{FollowerID: viewer.ID}, rawPage)
}

func (s *CommunityService) GetPost(ctx context.Context, id int) (*model.Post, error) {
	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, interfaces.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrPostNotFound, "post not found", err)
		}
		return nil, errors.Wrap(errors.ErrDatabase, "查询帖子失败", err)
	}
	return post, nil
}

// GetPostDetail 并行加载评论和作者帖子数
func (s *CommunityService) GetPostDetail(ctx context.Context, id int) (*PostDetail, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &PostDetail{Post: post}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		comments, err := s.repo.GetCommentsByPostID(gctx, post.ID)
		if err != nil {
			return errors.Wrap(errors.ErrDatabase, "查询评论失败", err)
		}
		detail.Comments = comments
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountPosts(gctx, model.PostFilter{AuthorID: post.AuthorID})
		if err != nil {
			return errors.Wrap(errors.ErrDatabase, "统计帖子失败", err)
		}
		detail.AuthorPostCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *CommunityService) CreatePost(ctx context.Context, author *model.User, input PostInput) (*model.Post, error) {
	post := &model.Post{AuthorID: author.ID, Author: author}
	if err := s.applyInput(ctx, post, input); err != nil {
		return nil, err
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建帖子失败", err)
	}

	util.Logger.Info("帖子创建成功", zap.Int("post_id", post.ID), zap.Int("author_id", author.ID))
	return post, nil
}

// EditPost 只有作者可以编辑，其他人返回 ErrForbidden 和原帖
func (s *CommunityService) EditPost(ctx context.Context, editor *model.User, postID int, input PostInput) (*model.Post, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthor(editor) {
		return post, errors.New(errors.ErrForbidden, "only the author can edit this post")
	}

	if err := s.applyInput(ctx, post, input); err != nil {
		return post, err
	}
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "更新帖子失败", err)
	}

	util.Logger.Info("帖子更新成功", zap.Int("post_id", post.ID))
	return post, nil
}

func (s *CommunityService) applyInput(ctx context.Context, post *model.Post, input PostInput) error {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return fieldError("text", "This field is required.")
	}
	post.Text = text

	post.GroupID, post.Group = nil, nil
	if input.GroupID != nil {
		group, err := s.repo.GetGroupByID(ctx, *input.GroupID)
		if err != nil {
			if stderrors.Is(err, interfaces.ErrNotFound) {
				return fieldError("group", "Select a valid choice. That choice is not one of the available choices.")
			}
			return errors.Wrap(errors.ErrDatabase, "查询分组失败", err)
		}
		post.GroupID, post.Group = &group.ID, group
	}

	if input.Image != nil {
		if s.storage == nil {
			return errors.New(errors.ErrInternal, "未配置文件存储")
		}
		url, err := s.storage.UploadFile(ctx, input.Image, storage.ObjectPath(util.GenerateUniqueFilename(input.Image.Filename)))
		if err != nil {
			util.Logger.Error("上传图片失败", zap.Error(err))
			return errors.Wrap(errors.ErrInternal, "上传图片失败", err)
		}
		post.Image = url
	}
	return nil
}

// AddComment 给帖子添加评论
func (s *CommunityService) AddComment(ctx context.Context, author *model.User, postID int, text string) (*model.Comment, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fieldError("text", "This field is required.")
	}

	comment := &model.Comment{PostID: post.ID, AuthorID: author.ID, Text: text, Author: author}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建评论失败", err)
	}
	return comment, nil
}

// Follow 关注作者。已关注或关注自己时什么都不做
func (s *CommunityService) Follow(ctx context.Context, user *model.User, username string) (*model.User, error) {
	author, err := s.findAuthor(ctx, username)
	if err != nil {
		return nil, err
	}
	if author.ID == user.ID {
		return author, nil
	}

	// 先查后插没有事务保护，并发请求仍可能写入重复记录
	following, err := s.repo.IsFollowing(ctx, user.ID, author.ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询关注关系失败", err)
	}
	if following {
		return author, nil
	}

	if err := s.repo.CreateFollow(ctx, &model.Follow{UserID: user.ID, AuthorID: author.ID}); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建关注失败", err)
	}
	util.Logger.Info("关注成功", zap.Int("user_id", user.ID), zap.Int("author_id", author.ID))
	return author, nil
}

// Unfollow 取消关注，未关注时什么都不做
func (s *CommunityService) Unfollow(ctx context.Context, user *model.User, username string) (*model.User, error) {
	author, err := s.findAuthor(ctx, username)
	if err != nil {
		return nil, err
	}

	following, err := s.repo.IsFollowing(ctx, user.ID, author.ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询关注关系失败", err)
	}
	if !following {
		return author, nil
	}

	if err := s.repo.DeleteFollow(ctx, user.ID, author.ID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "取消关注失败", err)
	}
	return author, nil
}

func (s *CommunityService) ListGroups(ctx context.Context) ([]*model.Group, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询分组失败", err)
	}
	return groups, nil
}

func (s *CommunityService) GetGroupBySlug(ctx context.Context, slug string) (*model.Group, error) {
	group, err := s.repo.GetGroupBySlug(ctx, slug)
	if err != nil {
		if stderrors.Is(err, interfaces.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrGroupNotFound, "group not found", err)
		}
		return nil, errors.Wrap(errors.ErrDatabase, "查询分组失败", err)
	}
	return group, nil
}

func (s *CommunityService) findAuthor(ctx context.Context, username string) (*model.User, error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, userLookupError(err)
	}
	return author, nil
}
