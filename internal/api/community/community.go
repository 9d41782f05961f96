// Package community 渲染帖子、分组、作者主页和关注相关的页面。
package community

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"yatube/internal/errors"
	"yatube/internal/model"
	"yatube/internal/service"
	"yatube/internal/util"
	"yatube/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommunityHandler struct {
	service *service.CommunityService
}

func NewCommunityHandler(s *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{s}
}

// currentUser 返回当前登录用户，匿名访问返回 nil
func currentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(web.UserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

func postID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无效的帖子ID", err))
		return 0, false
	}
	return id, true
}

func (h *CommunityHandler) Index(c *gin.Context) {
	feed, err := h.service.IndexFeed(c.Request.Context(), c.Query("page"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	web.Render(c, http.StatusOK, "posts/index.html", gin.H{
		"title": "Yatube home page",
		"posts": feed.Posts,
		"page":  feed.Page,
	})
}

func (h *CommunityHandler) GroupPosts(c *gin.Context) {
	group, feed, err := h.service.GroupFeed(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	web.Render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"title": group.Title,
		"group": group,
		"posts": feed.Posts,
		"page":  feed.Page,
	})
}

func (h *CommunityHandler) Profile(c *gin.Context) {
	profile, err := h.service.ProfileFeed(c.Request.Context(), c.Param("username"), c.Query("page"), currentUser(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	web.Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"title":      "Profile of " + profile.Author.DisplayName(),
		"author":     profile.Author,
		"following":  profile.Following,
		"post_count": profile.Feed.Page.Count,
		"posts":      profile.Feed.Posts,
		"page":       profile.Feed.Page,
	})
}

func (h *CommunityHandler) PostDetail(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	detail, err := h.service.GetPostDetail(c.Request.Context(), id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	web.Render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"title":      "Post " + detail.Post.String(),
		"post":       detail.Post,
		"comments":   detail.Comments,
		"post_count": detail.AuthorPostCount,
		"can_edit":   detail.Post.IsAuthor(currentUser(c)),
	})
}

func (h *CommunityHandler) renderPostForm(c *gin.Context, status int, form postForm, errs web.FormErrors, isEdit bool) {
	groups, err := h.service.ListGroups(c.Request.Context())
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	title := "New post"
	if isEdit {
		title = "Edit post"
	}
	web.Render(c, status, "posts/create_post.html", gin.H{
		"title":   title,
		"form":    form,
		"errors":  errs,
		"groups":  groups,
		"is_edit": isEdit,
	})
}

func (h *CommunityHandler) CreatePostForm(c *gin.Context) {
	h.renderPostForm(c, http.StatusOK, postForm{}, nil, false)
}

func (h *CommunityHandler) CreatePost(c *gin.Context) {
	user := currentUser(c)
	form, input, errs := h.bindPostForm(c)
	if errs.Any() {
		h.renderPostForm(c, http.StatusOK, form, errs, false)
		return
	}

	if _, err := h.service.CreatePost(c.Request.Context(), user, input); err != nil {
		if h.formError(c, err, form, false) {
			return
		}
		errors.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", user.Username))
}

func (h *CommunityHandler) EditPostForm(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	post, err := h.service.GetPost(c.Request.Context(), id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if !post.IsAuthor(currentUser(c)) {
		c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", post.Author.Username))
		return
	}

	form := postForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = strconv.Itoa(*post.GroupID)
	}
	h.renderPostForm(c, http.StatusOK, form, nil, true)
}

func (h *CommunityHandler) EditPost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	form, input, errs := h.bindPostForm(c)

	// 非作者无论表单是否合法都直接跳回作者主页
	if errs.Any() {
		post, err := h.service.GetPost(c.Request.Context(), id)
		if err != nil {
			errors.HandleError(c, err)
			return
		}
		if !post.IsAuthor(currentUser(c)) {
			c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", post.Author.Username))
			return
		}
		h.renderPostForm(c, http.StatusOK, form, errs, true)
		return
	}

	post, err := h.service.EditPost(c.Request.Context(), currentUser(c), id, input)
	if err != nil {
		if errors.HasCode(err, errors.ErrForbidden) && post != nil {
			c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", post.Author.Username))
			return
		}
		if h.formError(c, err, form, true) {
			return
		}
		errors.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
}

func (h *CommunityHandler) bindPostForm(c *gin.Context) (postForm, service.PostInput, web.FormErrors) {
	var form postForm
	errs := web.FormErrors{}
	if err := c.ShouldBind(&form); err != nil {
		errs = web.BindErrors(err)
	}

	input := form.input()
	image, err := imageFromForm(c)
	switch {
	case stderrors.Is(err, errNotImage):
		imageError(errs)
	case err != nil:
		util.Logger.Warn("读取上传文件失败", zap.Error(err))
		imageError(errs)
	default:
		input.Image = image
	}
	return form, input, errs
}

// formError 把字段校验错误重新渲染到表单上，其他错误返回 false
func (h *CommunityHandler) formError(c *gin.Context, err error, form postForm, isEdit bool) bool {
	if !errors.HasCode(err, errors.ErrValidation) {
		return false
	}
	errs := web.FormErrors{}
	field := web.NonFieldErrors
	var fe *service.FieldError
	if stderrors.As(err, &fe) {
		field = fe.Field
	}
	var appErr *errors.AppError
	stderrors.As(err, &appErr)
	errs.Add(field, appErr.Message)
	h.renderPostForm(c, http.StatusOK, form, errs, isEdit)
	return true
}

// AddComment 不合法的评论直接丢弃，始终跳回帖子详情
func (h *CommunityHandler) AddComment(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	var form commentForm
	if err := c.ShouldBind(&form); err == nil {
		_, err := h.service.AddComment(c.Request.Context(), currentUser(c), id, form.Text)
		switch {
		case err == nil:
		case errors.IsNotFound(err):
			errors.HandleError(c, err)
			return
		case !errors.HasCode(err, errors.ErrValidation):
			errors.HandleError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", id))
}

func (h *CommunityHandler) FollowIndex(c *gin.Context) {
	feed, err := h.service.FollowFeed(c.Request.Context(), currentUser(c), c.Query("page"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	web.Render(c, http.StatusOK, "posts/follow.html", gin.H{
		"title": "Subscriptions",
		"posts": feed.Posts,
		"page":  feed.Page,
	})
}

func (h *CommunityHandler) ProfileFollow(c *gin.Context) {
	author, err := h.service.Follow(c.Request.Context(), currentUser(c), c.Param("username"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", author.Username))
}

func (h *CommunityHandler) ProfileUnfollow(c *gin.Context) {
	author, err := h.service.Unfollow(c.Request.Context(), currentUser(c), c.Param("username"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", author.Username))
}
