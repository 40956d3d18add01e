package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/minitwit/internal/model"
)

// FeedRepository 读时推导时间线：关注的人的帖子，排除任一方向存在拉黑的作者
type FeedRepository interface {
	List(ctx context.Context, viewerID string, offset, limit int) ([]*model.FeedEntry, error)
}

type feedRepository struct{ db *gorm.DB }

func NewFeedRepository(db *gorm.DB) FeedRepository { return &feedRepository{db: db} }

// List 单条语句完成，读到的是同一快照，不会看到执行一半的拉黑
func (r *feedRepository) List(ctx context.Context, viewerID string, offset, limit int) ([]*model.FeedEntry, error) {
	var rows []*model.FeedEntry
	err := r.db.WithContext(ctx).
		Table("posts AS p").
		Select("p.id AS post_id, p.author_id, u.display_name AS author_display_name, p.content, p.created_at").
		Joins("JOIN follows f ON f.followee_id = p.author_id").
		Joins("JOIN users u ON u.id = p.author_id").
		Where("f.follower_id = ?", viewerID).
		Where(`NOT EXISTS (
			SELECT 1 FROM blocks b
			WHERE (b.blocker_id = p.author_id AND b.blocked_id = ?)
			   OR (b.blocker_id = ? AND b.blocked_id = p.author_id)
		)`, viewerID, viewerID).
		Order("p.created_at DESC, p.id DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, TranslateError(err)
}
