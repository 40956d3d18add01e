package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/minitwit/pkg/response"
)

// ListUsers 用户列表（按显示名、邮箱排序）
// @Summary 用户列表
// @Tags 用户
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=pagination.Page[model.User]}
// @Router /api/v1/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	q, err := bindPage(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, err := h.identity.List(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// GetUser 用户资料
// @Summary 查询用户
// @Tags 用户
// @Security Bearer
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=cache.UserSnapshot}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{user_id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	snap, err := h.identity.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snap)
}

// ListUserPosts 某用户的帖子
// @Summary 作者帖子列表
// @Tags 帖子
// @Security Bearer
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=pagination.Page[model.Post]}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{user_id}/posts [get]
func (h *Handler) ListUserPosts(c *gin.Context) {
	q, err := bindPage(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, err := h.postService.ListByAuthor(c.Request.Context(), c.Param("user_id"), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}
