package model

import (
	"time"
)

// Follow 关注关系（A 关注 B）
type Follow struct {
	// 复合主键 (follower_id, followee_id)，避免重复关注
	FollowerID string    `gorm:"primaryKey;type:varchar(64);check:chk_follows_not_self,follower_id <> followee_id"`
	FolloweeID string    `gorm:"primaryKey;type:varchar(64);index:idx_follow_followee"`
	CreatedAt  time.Time `gorm:"index:idx_follow_created"`
}

func (Follow) TableName() string { return "follows" }

// Connection 关注/粉丝列表中的一项：对端用户快照与关系建立时间
type Connection struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Since       time.Time `json:"since"`
}
