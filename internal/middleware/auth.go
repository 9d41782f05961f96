package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"yatube/config"
	"yatube/internal/errors"
	"yatube/internal/service"
	"yatube/internal/util"
	"yatube/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenKey 上下文中保存当前会话令牌的键，注销时使用
const TokenKey = "session_token"

// Session 从会话 cookie 中恢复当前用户，匿名访问不会被拦截
func Session(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(config.AppConfig.SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		if userService.IsTokenBlacklisted(token) {
			ClearSession(c)
			c.Next()
			return
		}

		userID, err := util.ValidateToken(token)
		if err != nil {
			util.Logger.Debug("会话令牌无效", zap.Error(err))
			ClearSession(c)
			c.Next()
			return
		}

		user, err := userService.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			util.Logger.Info("会话用户不存在", zap.Int("user_id", userID), zap.Error(err))
			ClearSession(c)
			c.Next()
			return
		}

		c.Set(web.UserKey, user)
		c.Set(web.UserIDKey, user.ID)
		c.Set(TokenKey, token)
		c.Next()
	}
}

// StartSession 写入会话 cookie
func StartSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.AppConfig.SessionCookie, token, int(config.AppConfig.SessionMaxAge.Seconds()), "/", "", false, true)
}

// ClearSession 删除会话 cookie
func ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.AppConfig.SessionCookie, "", -1, "/", "", false, true)
}

// LoginRequired 未登录时重定向到登录页，并通过 next 参数带回原地址
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(web.UserKey); ok {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// LoginURL 构造登录地址，next 中的斜杠保持原样
func LoginURL(next string) string {
	return "/auth/login/?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// AuthMiddleware 校验 API 请求的 Bearer 令牌
func AuthMiddleware(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "需要认证"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "无效的认证格式"))
			return
		}

		if userService.IsTokenBlacklisted(parts[1]) {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "令牌已被撤销"))
			return
		}

		userID, err := util.ValidateToken(parts[1])
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "无效或过期的令牌", err))
			return
		}

		c.Set(web.UserIDKey, userID)
		c.Next()
	}
}
