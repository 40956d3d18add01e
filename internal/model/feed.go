package model

import "time"

// FeedEntry 时间线项，每次读取时由关注/拉黑/帖子实时推导，不落表
type FeedEntry struct {
	PostID            uint64    `json:"post_id"`
	AuthorID          string    `json:"author_id"`
	AuthorDisplayName string    `json:"author_display_name"`
	Content           string    `json:"content"`
	CreatedAt         time.Time `json:"created_at"`
}
