// Package store 提供摘要记录的持久化实现。
package store

import (
	"Abridge_1.0/backend/go/internal/models"
	"context"

	"gorm.io/gorm"
)

// GormRecordStore 把摘要记录保存在关系型数据库 (MySQL/SQLite) 中。
type GormRecordStore struct {
	db *gorm.DB
}

// NewGormRecordStore 创建 GormRecordStore。
func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{db: db}
}

// Create 插入一条记录。ID 和创建时间由 BeforeCreate 钩子补齐。
func (s *GormRecordStore) Create(ctx context.Context, record *models.SummaryRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

// ListByUser 按创建时间倒序分页返回用户的记录以及记录总数。
func (s *GormRecordStore) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]models.SummaryRecord, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.SummaryRecord{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []models.SummaryRecord
	err := q.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// DeleteByUser 删除用户的全部记录。
func (s *GormRecordStore) DeleteByUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.SummaryRecord{}).Error
}
