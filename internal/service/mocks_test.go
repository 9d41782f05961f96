package service

import (
	"context"

	"yatube/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockCommunityRepository 是 CommunityRepository 接口的模拟实现
type MockCommunityRepository struct {
	mock.Mock
}

func (m *MockCommunityRepository) CreateGroup(ctx context.Context, group *model.Group) error {
	return m.Called(ctx, group).Error(0)
}

func (m *MockCommunityRepository) GetGroupByID(ctx context.Context, id int) (*model.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockCommunityRepository) GetGroupBySlug(ctx context.Context, slug string) (*model.Group, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockCommunityRepository) ListGroups(ctx context.Context) ([]*model.Group, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.Group), args.Error(1)
}

func (m *MockCommunityRepository) DeleteGroup(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCommunityRepository) CountGroups(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCommunityRepository) CreatePost(ctx context.Context, post *model.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockCommunityRepository) GetPostByID(ctx context.Context, id int) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockCommunityRepository) UpdatePost(ctx context.Context, post *model.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockCommunityRepository) DeletePost(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCommunityRepository) CountPosts(ctx context.Context, filter model.PostFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockCommunityRepository) ListPosts(ctx context.Context, filter model.PostFilter, limit, offset int) ([]*model.Post, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockCommunityRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockCommunityRepository) GetCommentByID(ctx context.Context, id int) (*model.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommunityRepository) GetCommentsByPostID(ctx context.Context, postID int) ([]*model.Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]*model.Comment), args.Error(1)
}

func (m *MockCommunityRepository) DeleteComment(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCommunityRepository) CountComments(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCommunityRepository) CreateFollow(ctx context.Context, follow *model.Follow) error {
	return m.Called(ctx, follow).Error(0)
}

func (m *MockCommunityRepository) DeleteFollow(ctx context.Context, userID, authorID int) error {
	return m.Called(ctx, userID, authorID).Error(0)
}

func (m *MockCommunityRepository) IsFollowing(ctx context.Context, userID, authorID int) (bool, error) {
	args := m.Called(ctx, userID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommunityRepository) CountFollows(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
