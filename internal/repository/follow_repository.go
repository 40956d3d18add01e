package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/minitwit/internal/model"
)

type FollowRepository interface {
	WithTx(tx *gorm.DB) FollowRepository
	Create(ctx context.Context, followerID, followeeID string) error
	// Delete 返回删除行数
	Delete(ctx context.Context, followerID, followeeID string) (int64, error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	// ListFollowings 按 created_at 倒序列出 followerID 关注的人
	ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error)
	// ListFollowers 按 created_at 倒序列出关注 followeeID 的人
	ListFollowers(ctx context.Context, followeeID string, offset, limit int) ([]*model.Follow, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) WithTx(tx *gorm.DB) FollowRepository { return &followRepository{db: tx} }

func (r *followRepository) Create(ctx context.Context, followerID, followeeID string) error {
	f := &model.Follow{FollowerID: followerID, FolloweeID: followeeID}
	// 重复关注由唯一键拒绝，上层转成 AlreadyFollowing / ConcurrentWrite
	return TranslateError(r.db.WithContext(ctx).Create(f).Error)
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{})
	return res.RowsAffected, TranslateError(res.Error)
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, TranslateError(err)
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ?", followerID).
		Order("created_at DESC, followee_id").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, TranslateError(err)
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("followee_id = ?", followeeID).
		Order("created_at DESC, follower_id").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, TranslateError(err)
}
