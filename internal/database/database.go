// Package database 负责打开 MySQL/SQLite 连接、配置连接池并建表。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"yatube/config"
	"yatube/internal/common"
	"yatube/internal/util"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// DSN 根据配置拼接连接字符串
func DSN(cfg config.Config) (string, error) {
	switch cfg.DBDriver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName), nil
	case DriverSQLite:
		return "file:" + cfg.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	}
	return "", fmt.Errorf("不支持的数据库驱动: %s", cfg.DBDriver)
}

// Open 打开数据库并测试连接
func Open(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	return OpenDSN(ctx, cfg.DBDriver, dsn)
}

// OpenDSN 用指定驱动打开数据库。SQLite 只允许一个连接，保证内存库在连接间共享
func OpenDSN(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := common.WithRetry(ctx, func() error { return db.PingContext(ctx) }, 5, time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	util.Logger.Info("数据库连接成功", zap.String("driver", driver))
	return db, nil
}

// Migrate 按驱动方言创建缺失的表
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts, ok := schemas[driver]
	if !ok {
		return fmt.Errorf("不支持的数据库驱动: %s", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			util.Logger.Error("建表失败", zap.Error(err), zap.String("stmt", stmt))
			return fmt.Errorf("执行迁移失败: %w", err)
		}
	}
	util.Logger.Info("数据库迁移完成", zap.String("driver", driver), zap.Int("statements", len(stmts)))
	return nil
}
