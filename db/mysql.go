package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"next_read/config"
)

var (
	DB *sql.DB // 数据库连接，未配置时为 nil
)

// InitMySQLWithConfig 使用配置初始化数据库连接池
// Returns (false, nil) when no DSN is configured; the lead log is then disabled.
func InitMySQLWithConfig(ctx context.Context, cfg *config.Config) (bool, error) {
	if !cfg.DatabaseEnabled() {
		return false, nil
	}

	conn, err := sql.Open("mysql", cfg.DB.DSN)
	if err != nil {
		return false, err
	}

	// 从配置读取连接池参数，提供默认值保护
	maxOpenConns := cfg.DB.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 10 // 默认最大连接数
	}

	maxIdleConns := cfg.DB.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 2 // 默认最大空闲连接数
	}

	connMaxLifetime := cfg.DB.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 60 // 默认连接最大生命周期（分钟）
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return false, err
	}
	DB = conn
	return true, nil
}

// Close 关闭连接池
func Close() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}
