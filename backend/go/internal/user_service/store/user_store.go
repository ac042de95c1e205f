package store

import (
	"Abridge_1.0/backend/go/internal/models"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicate 表示违反了唯一约束。
var ErrDuplicate = errors.New("duplicate key")

// Store 封装了所有与账户相关的数据库操作。
type Store struct {
	DB *gorm.DB
}

// NewStore 创建一个新的 Store 实例。
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Migrate 创建账户表。
func (s *Store) Migrate() error {
	return models.AutoMigrate(s.DB)
}

// CreateUser 在数据库中创建一个新用户。用户名或邮箱冲突时返回 ErrDuplicate。
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.DB.WithContext(ctx).Create(user).Error
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// GetUserByUsername 通过用户名查找用户。不存在时返回 gorm.ErrRecordNotFound。
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID 通过 ID 查找用户。
func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameExists 报告用户名是否已被使用。
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username = ?", username)
}

// EmailExists 报告邮箱是否已被使用，比较时忽略大小写。
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

func (s *Store) exists(ctx context.Context, query string, arg string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).Where(query, arg).Count(&count).Error
	return count > 0, err
}

// DeleteUser 永久删除用户，数据库外键会级联删除其摘要记录。
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Unscoped().Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Ping 检查数据库连接。
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// isDuplicate 识别各驱动的唯一约束冲突。
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
