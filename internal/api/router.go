package api

import (
	"github.com/gin-contrib/gzip"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/minitwit/config"
	_ "github.com/d60-Lab/minitwit/docs"
	"github.com/d60-Lab/minitwit/internal/api/handler"
	"github.com/d60-Lab/minitwit/internal/api/middleware"
	"github.com/d60-Lab/minitwit/internal/service"
)

// NewRouter 组装 gin 引擎：公共中间件、鉴权分组与全部业务路由
func NewRouter(cfg *config.Config, h *handler.Handler, creds *service.CredentialService) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		service.RegisterRules(v)
	}

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logger())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
	}

	authed := v1.Group("", middleware.Auth(creds))
	{
		authed.GET("/users", h.ListUsers)
		authed.GET("/users/:user_id", h.GetUser)
		authed.GET("/users/:user_id/posts", h.ListUserPosts)

		authed.POST("/relations/follow", h.Follow)
		authed.POST("/relations/unfollow", h.Unfollow)
		authed.POST("/relations/block", h.Block)
		authed.GET("/relations/following", h.ListFollowing)
		authed.GET("/relations/followers", h.ListFollowers)

		authed.POST("/posts", h.CreatePost)
		authed.DELETE("/posts/:post_id", h.DeletePost)

		authed.GET("/feed", h.Feed)
	}
	return r
}
