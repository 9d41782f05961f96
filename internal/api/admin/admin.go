package admin

import (
	"strconv"

	"yatube/internal/cache"
	"yatube/internal/errors"
	"yatube/internal/model"
	"yatube/internal/service"
	"yatube/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler 按功能模块组织处理方法
type AdminHandler struct {
	adminService *service.AdminService
	pageCache    *cache.PageCache
}

// NewAdminHandler 创建一个新的 AdminHandler 实例
func NewAdminHandler(adminService *service.AdminService, pageCache *cache.PageCache) *AdminHandler {
	return &AdminHandler{adminService, pageCache}
}

// 分组管理
func (h *AdminHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,max=200"`
		Slug        string `json:"slug" binding:"required,slug"`
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的分组数据", err))
		return
	}

	group := &model.Group{Title: req.Title, Slug: req.Slug, Description: req.Description}
	if err := h.adminService.CreateGroup(c.Request.Context(), group); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, group, "分组创建成功")
}

func (h *AdminHandler) DeleteGroup(c *gin.Context) {
	if err := h.adminService.DeleteGroup(c.Request.Context(), c.Param("slug")); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "分组已删除")
}

// 用户管理
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.adminService.DeleteUser(c.Request.Context(), c.Param("username")); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "用户已删除")
}

// 内容管理
func (h *AdminHandler) DeletePost(c *gin.Context) {
	id, ok := paramID(c, "无效的帖子ID")
	if !ok {
		return
	}
	if err := h.adminService.DeletePost(c.Request.Context(), id); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "帖子已删除")
}

func (h *AdminHandler) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "无效的评论ID")
	if !ok {
		return
	}
	if err := h.adminService.DeleteComment(c.Request.Context(), id); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "评论已删除")
}

// 系统管理
func (h *AdminHandler) GetSystemStats(c *gin.Context) {
	stats, err := h.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, stats, "")
}

// PurgeCache 清空页面缓存，新帖子立即可见
func (h *AdminHandler) PurgeCache(c *gin.Context) {
	n := h.pageCache.Len()
	h.pageCache.Purge()
	util.Logger.Info("页面缓存已清空", zap.Int("entries", n))
	errors.HandleSuccess(c, gin.H{"purged": n}, "缓存已清空")
}

func paramID(c *gin.Context, message string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, message, err))
		return 0, false
	}
	return id, true
}
