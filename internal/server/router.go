// Package server 组装依赖并注册全部路由。
package server

import (
	"database/sql"
	"net/http"

	"yatube/config"
	"yatube/internal/api/admin"
	"yatube/internal/api/community"
	"yatube/internal/api/user"
	"yatube/internal/cache"
	"yatube/internal/errors"
	"yatube/internal/middleware"
	"yatube/internal/repository/sqldb"
	"yatube/internal/service"
	"yatube/internal/storage"
	"yatube/internal/util"
	"yatube/internal/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps 路由需要的全部服务
type Deps struct {
	Users        *service.UserService
	Community    *service.CommunityService
	Admin        *service.AdminService
	PageCache    *cache.PageCache
	ErrorMonitor *middleware.ErrorMonitor
	Storage      storage.FileStorage
}

// NewDeps 初始化存储库和服务
func NewDeps(db *sql.DB, fs storage.FileStorage, cfg config.Config) *Deps {
	userRepo := sqldb.NewUserRepository(db)
	communityRepo := sqldb.NewCommunityRepository(db)
	errorMonitor := middleware.NewErrorMonitor()

	return &Deps{
		Users:        service.NewUserService(userRepo),
		Community:    service.NewCommunityService(communityRepo, userRepo, fs).WithPerPage(cfg.PostsPerPage),
		Admin:        service.NewAdminService(userRepo, communityRepo, service.NewStatsService(userRepo, communityRepo, errorMonitor)),
		PageCache:    cache.New(cfg.CacheSize, cfg.IndexCacheTTL),
		ErrorMonitor: errorMonitor,
		Storage:      fs,
	}
}

// NewRouter 注册页面路由和 /api 路由
func NewRouter(d *Deps) (*gin.Engine, error) {
	util.RegisterValidators()

	r := gin.New()
	if err := web.LoadTemplates(r); err != nil {
		return nil, err
	}

	r.Use(gin.Logger())
	r.Use(middleware.ErrorMonitorMiddleware(d.ErrorMonitor))
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.Session(d.Users))

	if local, ok := d.Storage.(*storage.LocalStorage); ok {
		r.Static(config.AppConfig.MediaURL, local.BasePath())
	}

	r.NoRoute(func(c *gin.Context) {
		errors.HandleError(c, errors.New(errors.ErrResourceNotFound, "page not found"))
	})

	registerPages(r, d)
	registerAPI(r, d)

	if config.AppConfig.Debug {
		for _, route := range r.Routes() {
			util.Logger.Debug("路由",
				zap.String("method", route.Method),
				zap.String("path", route.Path),
				zap.String("handler", route.Handler))
		}
	}
	return r, nil
}

func registerPages(r *gin.Engine, d *Deps) {
	posts := community.NewCommunityHandler(d.Community)
	auth := user.NewAuthHandler(d.Users)

	pages := r.Group("/", middleware.CSRF())
	{
		pages.GET("/", middleware.CachePage(d.PageCache), posts.Index)
		pages.GET("/group/:slug/", posts.GroupPosts)
		pages.GET("/profile/:username/", posts.Profile)
		pages.GET("/posts/:id/", posts.PostDetail)
	}

	// 需要登录的页面
	private := pages.Group("/", middleware.LoginRequired())
	{
		private.GET("/create/", posts.CreatePostForm)
		private.POST("/create/", posts.CreatePost)
		private.GET("/posts/:id/edit/", posts.EditPostForm)
		private.POST("/posts/:id/edit/", posts.EditPost)
		private.POST("/posts/:id/comment/", posts.AddComment)
		private.GET("/follow/", posts.FollowIndex)
		private.GET("/profile/:username/follow/", posts.ProfileFollow)
		private.GET("/profile/:username/unfollow/", posts.ProfileUnfollow)
	}

	authPages := pages.Group("/auth")
	{
		authPages.GET("/signup/", auth.SignupForm)
		authPages.POST("/signup/", auth.Signup)
		authPages.GET("/login/", auth.LoginForm)
		authPages.POST("/login/", auth.Login)
		authPages.GET("/logout/", auth.Logout)
		authPages.GET("/password_reset/", auth.PasswordResetForm)
		authPages.POST("/password_reset/", auth.PasswordReset)
		authPages.GET("/password_reset/done/", auth.PasswordResetDone)
		authPages.GET("/reset/:token/", auth.PasswordResetConfirmForm)
		authPages.POST("/reset/:token/", auth.PasswordResetConfirm)
	}
}

func registerAPI(r *gin.Engine, d *Deps) {
	auth := user.NewAuthHandler(d.Users)
	adminHandler := admin.NewAdminHandler(d.Admin, d.PageCache)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	api := r.Group("/api", cors.New(corsConfig))
	{
		api.POST("/auth/token", auth.Token)

		authorized := api.Group("/", middleware.AuthMiddleware(d.Users))
		{
			authorized.POST("/auth/token/refresh", auth.RefreshToken)
			authorized.GET("/auth/me", auth.Me)
		}

		// 管理员路由组
		adminRoutes := api.Group("/admin", middleware.AuthMiddleware(d.Users), middleware.AdminMiddleware(d.Users))
		{
			adminRoutes.POST("/groups", adminHandler.CreateGroup)
			adminRoutes.DELETE("/groups/:slug", adminHandler.DeleteGroup)
			adminRoutes.DELETE("/users/:username", adminHandler.DeleteUser)
			adminRoutes.DELETE("/posts/:id", adminHandler.DeletePost)
			adminRoutes.DELETE("/comments/:id", adminHandler.DeleteComment)
			adminRoutes.GET("/stats", adminHandler.GetSystemStats)
			adminRoutes.POST("/cache/purge", adminHandler.PurgeCache)
		}
	}
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}
