package main

import (
	"fmt"
	"os"

	"yatube/config"
	"yatube/internal/util"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "yatube",
	Short:         "Yatube 博客服务",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// 初始化配置
		config.Init()
		// 初始化日志
		util.InitLogger(config.AppConfig.LogLevel)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

func main() {
	defer util.Logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		util.Logger.Error("命令执行失败", util.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
