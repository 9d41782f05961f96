package user

import (
	"strings"

	"yatube/internal/errors"
	"yatube/internal/util"
	"yatube/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Token 用邮箱和密码换取 API 令牌
func (h *AuthHandler) Token(c *gin.Context) {
	var loginData struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, err := h.userService.LoginByEmail(c.Request.Context(), loginData.Email, loginData.Password)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	token, err := h.userService.IssueToken(user)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"token": token,
		"user":  user,
	}, "登录成功")
}

// RefreshToken 用未过期的令牌换一个新令牌，旧令牌作废
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	oldToken := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	newToken, err := util.RefreshToken(oldToken)
	if err != nil {
		util.Logger.Info("刷新令牌失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "无效或过期的令牌", err))
		return
	}
	h.userService.Logout(oldToken)

	errors.HandleSuccess(c, gin.H{
		"token": newToken,
	}, "令牌刷新成功")
}

// Me 返回令牌对应的用户
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), c.GetInt(web.UserIDKey))
	if err != nil {
		util.Logger.Error("获取用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}
