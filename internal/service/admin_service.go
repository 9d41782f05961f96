package service

import (
	"context"
	stderrors "errors"
	"strings"

	"yatube/internal/errors"
	"yatube/internal/model"
	"yatube/internal/repository/interfaces"
	"yatube/internal/util"

	"go.uber.org/zap"
)

// AdminService 管理接口的业务逻辑
type AdminService struct {
	userRepo      interfaces.UserRepository
	communityRepo interfaces.CommunityRepository
	stats         *StatsService
}

// NewAdminService 创建一个新的 AdminService 实例
func NewAdminService(userRepo interfaces.UserRepository, communityRepo interfaces.CommunityRepository, stats *StatsService) *AdminService {
	return &AdminService{
		userRepo:      userRepo,
		communityRepo: communityRepo,
		stats:         stats,
	}
}

// 分组管理
func (s *AdminService) CreateGroup(ctx context.Context, group *model.Group) error {
	group.Slug = strings.TrimSpace(group.Slug)
	if !util.IsSlug(group.Slug) {
		return errors.New(errors.ErrValidation, "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}

	if _, err := s.communityRepo.GetGroupBySlug(ctx, group.Slug); err == nil {
		return errors.New(errors.ErrResourceExists, "group with this slug already exists")
	} else if !stderrors.Is(err, interfaces.ErrNotFound) {
		return errors.Wrap(errors.ErrDatabase, "查询分组失败", err)
	}

	if err := s.communityRepo.CreateGroup(ctx, group); err != nil {
		return errors.Wrap(errors.ErrDatabase, "创建分组失败", err)
	}
	util.Logger.Info("分组创建成功", zap.Int("group_id", group.ID), zap.String("slug", group.Slug))
	return nil
}

// DeleteGroup 删除分组，帖子保留但不再属于任何分组
func (s *AdminService) DeleteGroup(ctx context.Context, slug string) error {
	group, err := s.communityRepo.GetGroupBySlug(ctx, slug)
	if err != nil {
		return notFoundOr(err, errors.ErrGroupNotFound, "group not found")
	}
	if err := s.communityRepo.DeleteGroup(ctx, group.ID); err != nil {
		return notFoundOr(err, errors.ErrGroupNotFound, "group not found")
	}
	util.Logger.Info("分组已删除", zap.String("slug", slug))
	return nil
}

// 用户管理
func (s *AdminService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return notFoundOr(err, errors.ErrUserNotFound, "user not found")
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return notFoundOr(err, errors.ErrUserNotFound, "user not found")
	}
	util.Logger.Info("用户已删除", zap.Int("user_id", user.ID))
	return nil
}

// 内容管理
func (s *AdminService) DeletePost(ctx context.Context, id int) error {
	if err := s.communityRepo.DeletePost(ctx, id); err != nil {
		return notFoundOr(err, errors.ErrPostNotFound, "post not found")
	}
	util.Logger.Info("帖子已删除", zap.Int("post_id", id))
	return nil
}

func (s *AdminService) DeleteComment(ctx context.Context, id int) error {
	if err := s.communityRepo.DeleteComment(ctx, id); err != nil {
		return notFoundOr(err, errors.ErrCommentNotFound, "comment not found")
	}
	return nil
}

// 系统管理
func (s *AdminService) GetSystemStats(ctx context.Context) (*model.SystemStats, error) {
	return s.stats.GetSystemStats(ctx)
}

func notFoundOr(err error, code errors.ErrorCode, message string) error {
	if stderrors.Is(err, interfaces.ErrNotFound) {
		return errors.Wrap(code, message, err)
	}
	return errors.Wrap(errors.ErrDatabase, "数据库操作失败", err)
}
