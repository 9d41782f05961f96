package service

import (
	"context"

	"yatube/internal/errors"
	"yatube/internal/model"
	"yatube/internal/repository/interfaces"

	"golang.org/x/sync/errgroup"
)

// ErrorCounter 提供按错误码聚合的请求错误次数
type ErrorCounter interface {
	GetErrorCounts() map[string]int
}

type StatsService struct {
	userRepo      interfaces.UserRepository
	communityRepo interfaces.CommunityRepository
	errors        ErrorCounter
}

func NewStatsService(userRepo interfaces.UserRepository, communityRepo interfaces.CommunityRepository, counter ErrorCounter) *StatsService {
	return &StatsService{
		userRepo:      userRepo,
		communityRepo: communityRepo,
		errors:        counter,
	}
}

func (s *StatsService) GetSystemStats(ctx context.Context) (*model.SystemStats, error) {
	stats := &model.SystemStats{}

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(&stats.TotalUsers, s.userRepo.Count)
	count(&stats.TotalGroups, s.communityRepo.CountGroups)
	count(&stats.TotalComments, s.communityRepo.CountComments)
	count(&stats.TotalFollows, s.communityRepo.CountFollows)
	count(&stats.TotalPosts, func(ctx context.Context) (int, error) {
		return s.communityRepo.CountPosts(ctx, model.PostFilter{})
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "统计数据查询失败", err)
	}

	if s.errors != nil {
		stats.ErrorCounts = s.errors.GetErrorCounts()
	}
	return stats, nil
}
