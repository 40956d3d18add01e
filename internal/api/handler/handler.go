package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/minitwit/internal/service"
)

// Handler 聚合所有 HTTP 处理器依赖
type Handler struct {
	identity    service.IdentityService
	relService  service.RelationshipService
	postService service.PostService
	feedService service.FeedService

	db    *gorm.DB
	redis *redis.Client
}

func NewHandler(
	identity service.IdentityService,
	relService service.RelationshipService,
	postService service.PostService,
	feedService service.FeedService,
	db *gorm.DB,
	rdb *redis.Client,
) *Handler {
	return &Handler{
		identity:    identity,
		relService:  relService,
		postService: postService,
		feedService: feedService,
		db:          db,
		redis:       rdb,
	}
}

// pageQuery 通用分页参数；page_size 为 0 时使用各接口默认值
type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func bindPage(c *gin.Context) (pageQuery, error) {
	q := pageQuery{Page: 1}
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, err
	}
	if q.Page == 0 {
		q.Page = 1
	}
	return q, nil
}
