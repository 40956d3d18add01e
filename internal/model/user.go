package model

import "time"

// User 注册身份；ID 由调用方选择，大小写敏感，创建后不可变
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(128);not null"`
	Email       string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"` // 小写规范化
	Phone       string    `json:"phone" gorm:"type:varchar(32)"`
	Credential  string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }
