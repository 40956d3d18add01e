package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/minitwit/internal/api/middleware"
	"github.com/d60-Lab/minitwit/pkg/response"
)

type createPostRequest struct {
	Content string `json:"content"`
}

// CreatePost 发帖
// @Summary 发布帖子
// @Tags 帖子
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body createPostRequest true "帖子内容（去空白后 1-360 字符）"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.postService.Create(c.Request.Context(), middleware.UserID(c), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// DeletePost 删除自己的帖子
// @Summary 删除帖子
// @Tags 帖子
// @Security Bearer
// @Param post_id path int true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}
	if err := h.postService.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
