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

func newCommunity() (*CommunityService, *MockCommunityRepository, *MockUserRepository) {
	repo := new(MockCommunityRepository)
	users := new(MockUserRepository)
	return NewCommunityService(repo, users, nil).WithPerPage(10), repo, users
}

func TestIndexFeed_ClampsPage(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newCommunity()

	repo.On("CountPosts", ctx, model.PostFilter{}).Return(13, nil)
	repo.On("ListPosts", ctx, model.PostFilter{}, 10, 10).Return([]*model.Post{{ID: 3}, {ID: 2}, {ID: 1}}, nil)

	for _, raw := range []string{"2", "99", "-1"} {
		feed, err := s.IndexFeed(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, 2, feed.Page.Number, raw)
		assert.Len(t, feed.Posts, 3)
	}
	repo.AssertExpectations(t)
}

func TestGroupFeed_UnknownSlug(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newCommunity()
	repo.On("GetGroupBySlug", ctx, "nope").Return(nil, interfaces.ErrNotFound)

	_, _, err := s.GroupFeed(ctx, "nope", "1")
	assert.True(t, errors.HasCode(err, errors.ErrGroupNotFound))
}

func TestProfileFeed_FollowingFlag(t *testing.T) {
	ctx := context.Background()
	s, repo, users := newCommunity()

	author := &model.User{ID: 2, Username: "author"}
	viewer := &model.User{ID: 1, Username: "viewer"}
	users.On("FindByUsername", ctx, "author").Return(author, nil)
	filter := model.PostFilter{AuthorID: 2}
	repo.On("CountPosts", ctx, filter).Return(0, nil)
	repo.On("ListPosts", ctx, filter, 10, 0).Return([]*model.Post{}, nil)
	repo.On("IsFollowing", ctx, 1, 2).Return(true, nil)

	profile, err := s.ProfileFeed(ctx, "author", "", viewer)
	require.NoError(t, err)
	assert.True(t, profile.Following)
	assert.Equal(t, 1, profile.Feed.Page.NumPages)

	anon, err := s.ProfileFeed(ctx, "author", "", nil)
	require.NoError(t, err)
	assert.False(t, anon.Following)
	repo.AssertNumberOfCalls(t, "IsFollowing", 1)
}

func TestEditPost_OnlyAuthor(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newCommunity()

	post := &model.Post{ID: 10, Text: "original", AuthorID: 2}
	repo.On("GetPostByID", ctx, 10).Return(post, nil)

	got, err := s.EditPost(ctx, &model.User{ID: 3}, 10, PostInput{Text: "hacked"})
	assert.True(t, errors.HasCode(err, errors.ErrForbidden))
	assert.Equal(t, 2, got.AuthorID)
	assert.Equal(t, "original", post.Text)
	repo.AssertNotCalled(t, "UpdatePost", mock.Anything, mock.Anything)

	repo.On("UpdatePost", ctx, post).Return(nil)
	got, err = s.EditPost(ctx, &model.User{ID: 2}, 10, PostInput{Text: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Nil(t, got.GroupID)
}

func TestCreatePost_Validation(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newCommunity()
	author := &model.User{ID: 1}

	_, err := s.CreatePost(ctx, author, PostInput{Text: "   "})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	missing := 42
	repo.On("GetGroupByID", ctx, 42).Return(nil, interfaces.ErrNotFound)
	_, err = s.CreatePost(ctx, author, PostInput{Text: "hi", GroupID: &missing})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	groupID := 1
	repo.On("GetGroupByID", ctx, 1).Return(&model.Group{ID: 1, Slug: "test"}, nil)
	repo.On("CreatePost", ctx, mock.AnythingOfType("*model.Post")).Return(nil)
	post, err := s.CreatePost(ctx, author, PostInput{Text: "hi", GroupID: &groupID})
	require.NoError(t, err)
	assert.Equal(t, 1, *post.GroupID)
	assert.Equal(t, 1, post.AuthorID)
}

func TestCreatePost_TrimsText(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newCommunity()
	repo.On("CreatePost", ctx, mock.AnythingOfType("*model.Post")).Return(nil)

	post, err := s.CreatePost(ctx, &model.User{ID: 1}, PostInput{Text: "  \n hello world \t "})
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Text)
	repo.AssertCalled(t, "CreatePost", ctx, mock.MatchedBy(func(p *model.Post) bool {
		return p.Text == "hello world"
	}))
}

func TestFollow_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, repo, users := newCommunity()

	me := &model.User{ID: 1, Username: "me"}
	author := &model.User{ID: 2, Username: "author"}
	users.On("FindByUsername", ctx, "author").Return(author, nil)
	users.On("FindByUsername", ctx, "me").Return(me, nil)

	repo.On("IsFollowing", ctx, 1, 2).Return(false, nil).Once()
	repo.On("CreateFollow", ctx, &model.Follow{UserID: 1, AuthorID: 2}).Return(nil).Once()
	_, err := s.Follow(ctx, me, "author")
	require.NoError(t, err)

	repo.On("IsFollowing", ctx, 1, 2).Return(true, nil)
	_, err = s.Follow(ctx, me, "author")
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "CreateFollow", 1)

	// 关注自己不产生任何记录
	_, err = s.Follow(ctx, me, "me")
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "CreateFollow", 1)
}

func TestUnfollow_NotFollowing(t *testing.T) {
	ctx := context.Background()
	s, repo, users := newCommunity()

	me := &model.User{ID: 1, Username: "me"}
	users.On("FindByUsername", ctx, "author").Return(&model.User{ID: 2, Username: "author"}, nil)
	repo.On("IsFollowing", ctx, 1, 2).Return(false, nil)

	_, err := s.Unfollow(ctx, me, "author")
	require.NoError(t, err)
	repo.AssertNotCalled(t, "DeleteFollow", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddComment_UnknownPost(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newCommunity()
	repo.On("GetPostByID", ctx, 99).Return(nil, interfaces.ErrNotFound)

	_, err := s.AddComment(ctx, &model.User{ID: 1}, 99, "hello")
	assert.True(t, errors.HasCode(err, errors.ErrPostNotFound))
}

func TestGetPostDetail(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newCommunity()

	repo.On("GetPostByID", ctx, 1).Return(&model.Post{ID: 1, AuthorID: 2}, nil)
	repo.On("GetCommentsByPostID", mock.Anything, 1).Return([]*model.Comment{{ID: 1, Text: "nice"}}, nil)
	repo.On("CountPosts", mock.Anything, model.PostFilter{AuthorID: 2}).Return(5, nil)

	detail, err := s.GetPostDetail(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 1)
	assert.Equal(t, 5, detail.AuthorPostCount)
}
