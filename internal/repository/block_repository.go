package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/minitwit/internal/model"
)

type BlockRepository interface {
	WithTx(tx *gorm.DB) BlockRepository
	Create(ctx context.Context, blockerID, blockedID string) error
	Exists(ctx context.Context, blockerID, blockedID string) (bool, error)
	// Between 任一方向存在拉黑即为 true
	Between(ctx context.Context, a, b string) (bool, error)
}

type blockRepository struct{ db *gorm.DB }

func NewBlockRepository(db *gorm.DB) BlockRepository { return &blockRepository{db: db} }

func (r *blockRepository) WithTx(tx *gorm.DB) BlockRepository { return &blockRepository{db: tx} }

func (r *blockRepository) Create(ctx context.Context, blockerID, blockedID string) error {
	b := &model.Block{BlockerID: blockerID, BlockedID: blockedID}
	return TranslateError(r.db.WithContext(ctx).Create(b).Error)
}

func (r *blockRepository) Exists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&cnt).Error; err != nil {
		return false, TranslateError(err)
	}
	return cnt > 0, nil
}

func (r *blockRepository) Between(ctx context.Context, a, b string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&cnt).Error; err != nil {
		return false, TranslateError(err)
	}
	return cnt > 0, nil
}
