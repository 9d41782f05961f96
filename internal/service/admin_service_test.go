package service

import (
	"context"
	"testing"

	"yatube/internal/errors"
	"yatube/internal/model"
	"yatube/internal/repository/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticCounter map[string]int

func (c staticCounter) GetErrorCounts() map[string]int { return c }

func TestAdminCreateGroup(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCommunityRepository)
	s := NewAdminService(new(MockUserRepository), repo, nil)

	err := s.CreateGroup(ctx, &model.Group{Title: "Bad", Slug: "bad slug"})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	repo.On("GetGroupBySlug", ctx, "taken").Return(&model.Group{ID: 1}, nil)
	err = s.CreateGroup(ctx, &model.Group{Title: "Taken", Slug: "taken"})
	assert.True(t, errors.HasCode(err, errors.ErrResourceExists))

	repo.On("GetGroupBySlug", ctx, "fresh").Return(nil, interfaces.ErrNotFound)
	repo.On("CreateGroup", ctx, mock.AnythingOfType("*model.Group")).Return(nil)
	require.NoError(t, s.CreateGroup(ctx, &model.Group{Title: "Fresh", Slug: "fresh"}))
}

func TestAdminDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCommunityRepository)
	users := new(MockUserRepository)
	s := NewAdminService(users, repo, nil)

	repo.On("DeletePost", ctx, 5).Return(interfaces.ErrNotFound)
	assert.True(t, errors.HasCode(s.DeletePost(ctx, 5), errors.ErrPostNotFound))

	users.On("FindByUsername", ctx, "ghost").Return(nil, interfaces.ErrNotFound)
	assert.True(t, errors.HasCode(s.DeleteUser(ctx, "ghost"), errors.ErrUserNotFound))

	repo.On("GetGroupBySlug", ctx, "gone").Return(nil, interfaces.ErrNotFound)
	assert.True(t, errors.HasCode(s.DeleteGroup(ctx, "gone"), errors.ErrGroupNotFound))
}

func TestSystemStats(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCommunityRepository)
	users := new(MockUserRepository)

	users.On("Count", mock.Anything).Return(3, nil)
	repo.On("CountGroups", mock.Anything).Return(2, nil)
	repo.On("CountComments", mock.Anything).Return(4, nil)
	repo.On("CountFollows", mock.Anything).Return(1, nil)
	repo.On("CountPosts", mock.Anything, model.PostFilter{}).Return(9, nil)

	stats := NewStatsService(users, repo, staticCounter{"4003": 2})
	got, err := NewAdminService(users, repo, stats).GetSystemStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.SystemStats{
		TotalUsers:    3,
		TotalPosts:    9,
		TotalGroups:   2,
		TotalComments: 4,
		TotalFollows:  1,
		ErrorCounts:   map[string]int{"4003": 2},
	}, got)
}
