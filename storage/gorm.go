package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVItem kv_items 表的一行
type KVItem struct {
	Key       string    `gorm:"column:kv_key;primaryKey;size:191"`
	Value     string    `gorm:"column:kv_value;type:longtext"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (KVItem) TableName() string {
	return "kv_items"
}

// GormStore 基于关系数据库的实现
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建存储并自动迁移 kv_items 表
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&KVItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_items: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) SetItem(ctx context.Context, key, value string) error {
	item := KVItem{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kv_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"kv_value", "updated_at"}),
		}).
		Create(&item).Error
	if err != nil {
		return fmt.Errorf("kv upsert %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var item KVItem
	err := s.db.WithContext(ctx).Where("kv_key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return item.Value, true, nil
}

func (s *GormStore) RemoveItem(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("kv_key = ?", key).Delete(&KVItem{}).Error; err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) ListKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&KVItem{}).Order("kv_key").Pluck("kv_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("kv list: %w", err)
	}
	return keys, nil
}
