package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/minitwit/internal/apperr"
	"github.com/d60-Lab/minitwit/internal/model"
	"github.com/d60-Lab/minitwit/internal/repository"
	"github.com/d60-Lab/minitwit/pkg/logger"
	"github.com/d60-Lab/minitwit/pkg/pagination"
)

// MaxContentLength 帖子正文上限（按 Unicode 码点计，去首尾空白后）
const MaxContentLength = 360

// PostService 帖子写入、删除与作者维度列表
type PostService interface {
	Create(ctx context.Context, authorID, content string) (*model.Post, error)
	Delete(ctx context.Context, postID uint64, requesterID string) error
	ListByAuthor(ctx context.Context, authorID string, page, pageSize int) (pagination.Page[*model.Post], error)
	AuthorCursor(authorID string, pageSize int) *pagination.Cursor[*model.Post]
}

type postService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

func NewPostService(db *gorm.DB, userRepo repository.UserRepository, postRepo repository.PostRepository) PostService {
	return &postService{db: db, userRepo: userRepo, postRepo: postRepo}
}

// ValidateContent trims content and checks its length.
func ValidateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", apperr.ErrContentTooLong
	}
	return content, nil
}

func (s *postService) Create(ctx context.Context, authorID, content string) (*model.Post, error) {
	content, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}
	post := &model.Post{AuthorID: authorID, Content: content}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住作者行，保证提交时作者仍存在
		found, err := s.userRepo.WithTx(tx).Lock(ctx, authorID)
		if err != nil {
			return err
		}
		if !found[authorID] {
			return apperr.ErrUnknownUser
		}
		return s.postRepo.WithTx(tx).Create(ctx, post)
	})
	if err != nil {
		return nil, storageErr(err)
	}
	logger.Debug("post created", zap.String("author", authorID), zap.Uint64("post_id", post.ID))
	return post, nil
}

func (s *postService) Delete(ctx context.Context, postID uint64, requesterID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := s.postRepo.WithTx(tx)
		p, err := posts.GetForUpdate(ctx, postID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.ErrPostNotFound
			}
			return err
		}
		if p.AuthorID != requesterID {
			return apperr.ErrNotOwner
		}
		n, err := posts.Delete(ctx, postID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.ErrPostNotFound
		}
		return nil
	})
	if err != nil {
		return storageErr(err)
	}
	logger.Debug("post deleted", zap.String("author", requesterID), zap.Uint64("post_id", postID))
	return nil
}

func (s *postService) ListByAuthor(ctx context.Context, authorID string, page, pageSize int) (pagination.Page[*model.Post], error) {
	ok, err := s.userRepo.Exists(ctx, authorID)
	if err != nil {
		return pagination.Page[*model.Post]{}, storageErr(err)
	}
	if !ok {
		return pagination.Page[*model.Post]{}, apperr.ErrUnknownUser
	}
	p, err := pagination.FetchPage(ctx, s.authorFetcher(authorID), page, pageSize)
	return p, storageErr(err)
}

func (s *postService) AuthorCursor(authorID string, pageSize int) *pagination.Cursor[*model.Post] {
	return pagination.NewCursor(s.authorFetcher(authorID), pageSize)
}

func (s *postService) authorFetcher(authorID string) pagination.Fetcher[*model.Post] {
	return func(ctx context.Context, offset, limit int) ([]*model.Post, error) {
		return s.postRepo.ListByAuthor(ctx, authorID, offset, limit)
	}
}
