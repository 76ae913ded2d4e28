package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ValueRadar/pkg/config"
	"ValueRadar/pkg/model"
)

// TimescaleDB TimescaleDB数据库连接
type TimescaleDB struct {
	db *gorm.DB
}

// NewTimescaleDB 创建新的TimescaleDB连接
func NewTimescaleDB(cfg *config.Config) (*TimescaleDB, error) {
	dbCfg := cfg.Database.TimescaleDB

	// 构建连接字符串
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host, dbCfg.Port, dbCfg.User, dbCfg.Password, dbCfg.DBName, dbCfg.SSLMode,
	)

	// 连接数据库
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("测试数据库连接失败: %w", err)
	}

	return &TimescaleDB{db: db}, nil
}

// Migrate 同步全部业务表结构
func (t *TimescaleDB) Migrate() error {
	err := t.db.AutoMigrate(
		&model.Stock{},
		&model.StockFundamentals{},
		&model.NewsEvent{},
		&model.RedditPost{},
		&model.QueueItem{},
		&model.BatchMapping{},
		&model.CalculatedMetrics{},
	)
	if err != nil {
		return fmt.Errorf("迁移表结构失败: %w", err)
	}
	return nil
}

// Ping 探测数据库连接
func (t *TimescaleDB) Ping() error {
	sqlDB, err := t.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close 关闭数据库连接
func (t *TimescaleDB) Close() error {
	sqlDB, err := t.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
