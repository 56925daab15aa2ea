package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// blobRecord blobs 表
type blobRecord struct {
	Key       string    `gorm:"column:blob_key;primaryKey;size:191"`
	Value     []byte    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (blobRecord) TableName() string {
	return "blobs"
}

// SQL 基于 gorm 的存储，支持 sqlite / mysql / postgres
type SQL struct {
	db *gorm.DB
}

// OpenSQL 打开数据库并自动建表
func OpenSQL(driver, dsn string) (*SQL, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case DriverSQLite:
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}
	return NewSQL(db)
}

// NewSQL 使用已有连接创建存储
func NewSQL(db *gorm.DB) (*SQL, error) {
	if err := db.AutoMigrate(&blobRecord{}); err != nil {
		return nil, fmt.Errorf("storage: migrate blobs: %w", err)
	}
	return &SQL{db: db}, nil
}

// Get 读取
func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var rec blobRecord
	err := s.db.WithContext(ctx).Where("blob_key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: sql get %s: %w", key, err)
	}
	return rec.Value, nil
}

// Set 写入（存在则更新）
func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	rec := blobRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("storage: sql set %s: %w", key, err)
	}
	return nil
}

// Delete 删除
func (s *SQL) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("blob_key = ?", key).Delete(&blobRecord{}).Error; err != nil {
		return fmt.Errorf("storage: sql delete %s: %w", key, err)
	}
	return nil
}

// Close 关闭底层连接
func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
