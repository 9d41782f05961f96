package main

import (
	"fmt"

	"yatube/config"
	"yatube/internal/database"
	"yatube/internal/repository/sqldb"
	"yatube/internal/service"

	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "创建管理员账户",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "管理员用户名")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "管理员邮箱")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "管理员密码")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := database.Open(ctx, config.AppConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, config.AppConfig.DBDriver); err != nil {
		return err
	}

	users := service.NewUserService(sqldb.NewUserRepository(db))
	user, err := users.CreateAdmin(ctx, adminUsername, adminEmail, adminPassword)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "管理员 %s 已创建 (id=%d)\n", user.Username, user.ID)
	return nil
}
