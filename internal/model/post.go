package model

import "time"

// Post 内容主体；ID 由存储自增分配
type Post struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthorID  string    `json:"author_id" gorm:"type:varchar(64);not null;index:idx_post_author"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_post_created"`
}

func (Post) TableName() string { return "posts" }
