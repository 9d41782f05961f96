package main

import (
	"yatube/config"
	"yatube/internal/database"
	"yatube/internal/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或补齐数据库表结构",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cmd.Context(), config.AppConfig)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db, config.AppConfig.DBDriver); err != nil {
			return err
		}
		util.Logger.Info("数据库迁移完成", zap.String("driver", config.AppConfig.DBDriver))
		return nil
	},
}
