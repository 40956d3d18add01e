package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/minitwit/internal/model"
)

type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	Create(ctx context.Context, p *model.Post) error
	// GetForUpdate 读取并锁定帖子行
	GetForUpdate(ctx context.Context, id uint64) (*model.Post, error)
	Delete(ctx context.Context, id uint64) (int64, error)
	// ListByAuthor 按 created_at DESC, id DESC 排序
	ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*model.Post, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository { return &postRepository{db: tx} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	return TranslateError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *postRepository) GetForUpdate(ctx context.Context, id uint64) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &p, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{})
	return res.RowsAffected, TranslateError(res.Error)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, TranslateError(err)
}
