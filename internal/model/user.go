package model

import (
	"time"
)

// User 身份凭据，社交档案在文档库（usuarios）中以相同 ID 对齐
type User struct {
	ID        uint64 `gorm:"primaryKey"`
	Username  string `gorm:"type:varchar(50);uniqueIndex:idx_username"`
	Email     string `gorm:"type:varchar(120);uniqueIndex:idx_email"`
	Password  string `gorm:"type:varchar(255)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
