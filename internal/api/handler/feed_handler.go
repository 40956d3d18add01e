package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/minitwit/internal/api/middleware"
	"github.com/d60-Lab/minitwit/pkg/response"
)

// Feed 当前用户时间线
// @Summary 时间线
// @Description 关注的人的帖子，排除任一方向存在拉黑的作者，按时间倒序
// @Tags 时间线
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=pagination.Page[model.FeedEntry]}
// @Router /api/v1/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	q, err := bindPage(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, err := h.feedService.Feed(c.Request.Context(), middleware.UserID(c), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}
