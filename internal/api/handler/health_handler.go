package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health 检查数据库与（可选）redis 连通性
// @Summary 健康检查
// @Tags 系统
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "ok"}
	code := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil {
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	} else if err := sqlDB.PingContext(ctx); err != nil {
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		status["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			// 缓存失效只降级，不影响可用性
			status["redis"] = err.Error()
		}
	}
	c.JSON(code, status)
}
