package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/minitwit/internal/api/middleware"
	"github.com/d60-Lab/minitwit/pkg/response"
)

type relationRequest struct {
	TargetID string `json:"target_id" binding:"required,userid"`
}

// Follow 关注
// @Summary 关注用户
// @Tags 关系链
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body relationRequest true "被关注者"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/relations/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	var req relationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.relService.Follow(c.Request.Context(), middleware.UserID(c), req.TargetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body relationRequest true "被取关者"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/unfollow [post]
func (h *Handler) Unfollow(c *gin.Context) {
	var req relationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.relService.Unfollow(c.Request.Context(), middleware.UserID(c), req.TargetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Block 拉黑当前粉丝（同时解除双向关注）
// @Summary 拉黑粉丝
// @Tags 关系链
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body relationRequest true "被拉黑者"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/relations/block [post]
func (h *Handler) Block(c *gin.Context) {
	var req relationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.relService.Block(c.Request.Context(), middleware.UserID(c), req.TargetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFollowing 当前用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=pagination.Page[model.Connection]}
// @Router /api/v1/relations/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	q, err := bindPage(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, err := h.relService.ListFollowing(c.Request.Context(), middleware.UserID(c), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// ListFollowers 当前用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=pagination.Page[model.Connection]}
// @Router /api/v1/relations/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	q, err := bindPage(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, err := h.relService.ListFollowers(c.Request.Context(), middleware.UserID(c), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}
