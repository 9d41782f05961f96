package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yatube/config"
	"yatube/internal/database"
	"yatube/internal/server"
	"yatube/internal/storage"
	"yatube/internal/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	util.Logger.Info("应用程序启动")
	ctx := cmd.Context()

	db, err := database.Open(ctx, config.AppConfig)
	if err != nil {
		return err
	}
	defer db.Close()
	util.Logger.Info("数据库连接成功", zap.String("driver", config.AppConfig.DBDriver))

	if err := database.Migrate(ctx, db, config.AppConfig.DBDriver); err != nil {
		return err
	}

	fs, err := storage.New(ctx, config.AppConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(fs); err != nil {
			util.Logger.Error("关闭存储后端失败", zap.Error(err))
		}
	}()

	r, err := server.NewRouter(server.NewDeps(db, fs, config.AppConfig))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              config.AppConfig.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 在一个新的 goroutine 中启动服务器
	errCh := make(chan error, 1)
	go func() {
		util.Logger.Info("服务器正在启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		util.Logger.Error("启动服务器失败", zap.Error(err))
		return err
	case <-quit:
	}
	util.Logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.Logger.Error("服务器强制关闭", zap.Error(err))
		return err
	}

	util.Logger.Info("服务器已优雅关闭")
	return nil
}
