package middleware

import (
	"yatube/internal/errors"
	"yatube/internal/service"
	"yatube/internal/util"
	"yatube/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminMiddleware 确保只有管理员可以访问某些路由，需放在 AuthMiddleware 之后
func AdminMiddleware(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt(web.UserIDKey)
		if userID == 0 {
			util.Logger.Warn("用户ID不存在")
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "需要认证"))
			return
		}

		user, err := userService.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrUnauthorized, "需要认证", err))
			return
		}
		if !user.IsAdmin() {
			util.Logger.Warn("非管理员访问", zap.Int("user_id", userID))
			errors.HandleError(c, errors.New(errors.ErrForbidden, "需要管理员权限"))
			return
		}

		c.Set(web.UserKey, user)
		c.Next()
	}
}
