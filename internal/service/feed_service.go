package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/d60-Lab/minitwit/internal/apperr"
	"github.com/d60-Lab/minitwit/internal/model"
	"github.com/d60-Lab/minitwit/internal/repository"
	"github.com/d60-Lab/minitwit/pkg/pagination"
)

var tracer = otel.Tracer("github.com/d60-Lab/minitwit/internal/service")

// FeedService 读时推导的时间线；每次读取都重新查询，不缓存、不物化
type FeedService interface {
	Feed(ctx context.Context, viewerID string, page, pageSize int) (pagination.Page[*model.FeedEntry], error)
	FeedCursor(viewerID string, pageSize int) *pagination.Cursor[*model.FeedEntry]
}

type feedService struct {
	userRepo    repository.UserRepository
	feedRepo    repository.FeedRepository
	defaultSize int
}

// NewFeedService builds the feed reader; defaultSize applies when a caller
// passes no page size.
func NewFeedService(userRepo repository.UserRepository, feedRepo repository.FeedRepository, defaultSize int) FeedService {
	if defaultSize < 1 {
		defaultSize = pagination.DefaultPageSize
	}
	return &feedService{userRepo: userRepo, feedRepo: feedRepo, defaultSize: defaultSize}
}

func (s *feedService) Feed(ctx context.Context, viewerID string, page, pageSize int) (_ pagination.Page[*model.FeedEntry], err error) {
	ctx, span := tracer.Start(ctx, "FeedService.Feed")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if pageSize < 1 {
		pageSize = s.defaultSize
	}
	span.SetAttributes(
		attribute.String("feed.viewer", viewerID),
		attribute.Int("feed.page", page),
		attribute.Int("feed.page_size", pageSize),
	)

	ok, err := s.userRepo.Exists(ctx, viewerID)
	if err != nil {
		return pagination.Page[*model.FeedEntry]{}, storageErr(err)
	}
	if !ok {
		return pagination.Page[*model.FeedEntry]{}, apperr.ErrUnknownUser
	}

	p, err := pagination.FetchPage(ctx, s.fetcher(viewerID), page, pageSize)
	if err != nil {
		return pagination.Page[*model.FeedEntry]{}, storageErr(err)
	}
	span.SetAttributes(attribute.Int("feed.items", len(p.Items)))
	return p, nil
}

func (s *feedService) FeedCursor(viewerID string, pageSize int) *pagination.Cursor[*model.FeedEntry] {
	if pageSize < 1 {
		pageSize = s.defaultSize
	}
	return pagination.NewCursor(s.fetcher(viewerID), pageSize)
}

func (s *feedService) fetcher(viewerID string) pagination.Fetcher[*model.FeedEntry] {
	return func(ctx context.Context, offset, limit int) ([]*model.FeedEntry, error) {
		return s.feedRepo.List(ctx, viewerID, offset, limit)
	}
}
