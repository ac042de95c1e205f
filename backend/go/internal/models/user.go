package models

import (
	"gorm.io/gorm"
)

// User 代表系统中的一个用户账户。
type User struct {
	gorm.Model

	Username string `gorm:"uniqueIndex;size:150;not null"`
	Email    string `gorm:"uniqueIndex;size:254;not null"`
	Password string `gorm:"size:255;not null" json:"-"` // 存储哈希后的密码，json中忽略

	// 删除用户时级联删除其摘要记录。
	Summaries []SummaryRecord `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

// --- 自定义表名 ---

func (User) TableName() string {
	return "users"
}

// AutoMigrate 创建或更新用户与摘要记录表。
// 两个模型需要一起迁移，摘要表上的外键约束才会被创建。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &SummaryRecord{})
}
