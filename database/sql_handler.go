package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLHandler ...
type SQLHandler struct {
	Db *gorm.DB
}

// NewSQLHandler opens a mysql connection pool for dsn,
// e.g. "user:pass@tcp(127.0.0.1:3306)/klinedl?parseTime=true".
func NewSQLHandler(dsn string) (*SQLHandler, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// 一回の実行で使うだけなので小さく
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(100 * time.Second)

	return &SQLHandler{Db: db}, nil
}

// Close ...
func (h *SQLHandler) Close() error {
	sqlDB, err := h.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
