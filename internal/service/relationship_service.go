package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/minitwit/internal/apperr"
	"github.com/d60-Lab/minitwit/internal/cache"
	"github.com/d60-Lab/minitwit/internal/model"
	"github.com/d60-Lab/minitwit/internal/repository"
	"github.com/d60-Lab/minitwit/pkg/logger"
	"github.com/d60-Lab/minitwit/pkg/pagination"
)

// RelationshipService 关系链服务：关注/取关/拉黑及其不变量
type RelationshipService interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	Block(ctx context.Context, blockerID, blockedID string) error
	IsFollowing(ctx context.Context, a, b string) (bool, error)
	IsBlocked(ctx context.Context, a, b string) (bool, error)
	ListFollowing(ctx context.Context, userID string, page, pageSize int) (pagination.Page[model.Connection], error)
	ListFollowers(ctx context.Context, userID string, page, pageSize int) (pagination.Page[model.Connection], error)
	FollowingCursor(userID string, pageSize int) *pagination.Cursor[model.Connection]
	FollowersCursor(userID string, pageSize int) *pagination.Cursor[model.Connection]
}

type relationshipService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	blockRepo  repository.BlockRepository
	profiles   *cache.ProfileCache
}

func NewRelationshipService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	blockRepo repository.BlockRepository,
	profiles *cache.ProfileCache,
) RelationshipService {
	return &relationshipService{
		db:         db,
		userRepo:   userRepo,
		followRepo: followRepo,
		blockRepo:  blockRepo,
		profiles:   profiles,
	}
}

// pairTx runs fn in a transaction holding row locks on both users. Every
// writer touching the pair takes the same locks, so fn sees preconditions that
// stay valid until commit.
func (s *relationshipService) pairTx(ctx context.Context, a, b string, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.userRepo.WithTx(tx).Lock(ctx, a, b)
		if err != nil {
			return err
		}
		if !found[a] || !found[b] {
			return apperr.ErrUnknownUser
		}
		return fn(tx)
	})
	return storageErr(err)
}

func (s *relationshipService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return apperr.ErrSelfReference
	}
	err := s.pairTx(ctx, followerID, followeeID, func(tx *gorm.DB) error {
		follows, blocks := s.followRepo.WithTx(tx), s.blockRepo.WithTx(tx)

		if ok, err := follows.Exists(ctx, followerID, followeeID); err != nil {
			return err
		} else if ok {
			return apperr.ErrAlreadyFollowing
		}
		if ok, err := blocks.Exists(ctx, followeeID, followerID); err != nil {
			return err
		} else if ok {
			return apperr.ErrBlockedByTarget
		}
		if ok, err := blocks.Exists(ctx, followerID, followeeID); err != nil {
			return err
		} else if ok {
			return apperr.ErrHasBlockedTarget
		}
		return follows.Create(ctx, followerID, followeeID)
	})
	if err != nil {
		return err
	}
	logger.Debug("follow", zap.String("follower", followerID), zap.String("followee", followeeID))
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return apperr.ErrSelfReference
	}
	err := s.pairTx(ctx, followerID, followeeID, func(tx *gorm.DB) error {
		n, err := s.followRepo.WithTx(tx).Delete(ctx, followerID, followeeID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.ErrNotFollowing
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Debug("unfollow", zap.String("follower", followerID), zap.String("followee", followeeID))
	return nil
}

// Block 拉黑当前粉丝：插入 block(blocker, blocked)，同时删除双向关注，三步同一事务提交
func (s *relationshipService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return apperr.ErrSelfReference
	}
	err := s.pairTx(ctx, blockerID, blockedID, func(tx *gorm.DB) error {
		follows, blocks := s.followRepo.WithTx(tx), s.blockRepo.WithTx(tx)

		if ok, err := blocks.Exists(ctx, blockerID, blockedID); err != nil {
			return err
		} else if ok {
			return apperr.ErrAlreadyBlocked
		}
		if ok, err := follows.Exists(ctx, blockedID, blockerID); err != nil {
			return err
		} else if !ok {
			return apperr.ErrNotAFollower
		}

		if err := blocks.Create(ctx, blockerID, blockedID); err != nil {
			return err
		}
		n, err := follows.Delete(ctx, blockedID, blockerID)
		if err != nil {
			return err
		}
		if n != 1 {
			return apperr.ErrConcurrentWrite
		}
		_, err = follows.Delete(ctx, blockerID, blockedID)
		return err
	})
	if err != nil {
		return err
	}
	logger.Debug("block", zap.String("blocker", blockerID), zap.String("blocked", blockedID))
	return nil
}

func (s *relationshipService) IsFollowing(ctx context.Context, a, b string) (bool, error) {
	ok, err := s.followRepo.Exists(ctx, a, b)
	return ok, storageErr(err)
}

// IsBlocked reports whether a has blocked b; direction matters.
func (s *relationshipService) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	ok, err := s.blockRepo.Exists(ctx, a, b)
	return ok, storageErr(err)
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, page, pageSize int) (pagination.Page[model.Connection], error) {
	if err := s.mustExist(ctx, userID); err != nil {
		return pagination.Page[model.Connection]{}, err
	}
	p, err := pagination.FetchPage(ctx, s.followingFetcher(userID), page, pageSize)
	return p, storageErr(err)
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID string, page, pageSize int) (pagination.Page[model.Connection], error) {
	if err := s.mustExist(ctx, userID); err != nil {
		return pagination.Page[model.Connection]{}, err
	}
	p, err := pagination.FetchPage(ctx, s.followersFetcher(userID), page, pageSize)
	return p, storageErr(err)
}

func (s *relationshipService) FollowingCursor(userID string, pageSize int) *pagination.Cursor[model.Connection] {
	return pagination.NewCursor(s.followingFetcher(userID), pageSize)
}

func (s *relationshipService) FollowersCursor(userID string, pageSize int) *pagination.Cursor[model.Connection] {
	return pagination.NewCursor(s.followersFetcher(userID), pageSize)
}

func (s *relationshipService) followingFetcher(userID string) pagination.Fetcher[model.Connection] {
	return func(ctx context.Context, offset, limit int) ([]model.Connection, error) {
		edges, err := s.followRepo.ListFollowings(ctx, userID, offset, limit)
		if err != nil {
			return nil, err
		}
		return s.hydrate(ctx, edges, func(f *model.Follow) string { return f.FolloweeID })
	}
}

func (s *relationshipService) followersFetcher(userID string) pagination.Fetcher[model.Connection] {
	return func(ctx context.Context, offset, limit int) ([]model.Connection, error) {
		edges, err := s.followRepo.ListFollowers(ctx, userID, offset, limit)
		if err != nil {
			return nil, err
		}
		return s.hydrate(ctx, edges, func(f *model.Follow) string { return f.FollowerID })
	}
}

// hydrate 通过资料缓存批量补齐对端用户，保持边的顺序
func (s *relationshipService) hydrate(ctx context.Context, edges []*model.Follow, other func(*model.Follow) string) ([]model.Connection, error) {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = other(e)
	}
	snaps, err := s.profiles.Load(ctx, ids, s.userRepo.GetMany)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]cache.UserSnapshot, len(snaps))
	for _, snap := range snaps {
		byID[snap.ID] = snap
	}
	out := make([]model.Connection, 0, len(edges))
	for _, e := range edges {
		snap, ok := byID[other(e)]
		if !ok {
			continue
		}
		out = append(out, model.Connection{
			UserID:      snap.ID,
			DisplayName: snap.DisplayName,
			Email:       snap.Email,
			Since:       e.CreatedAt,
		})
	}
	return out, nil
}

func (s *relationshipService) mustExist(ctx context.Context, userID string) error {
	ok, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return storageErr(err)
	}
	if !ok {
		return apperr.ErrUnknownUser
	}
	return nil
}
