package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feedgraph/internal/api/middleware"
	"github.com/d60-Lab/feedgraph/internal/service"
	"github.com/d60-Lab/feedgraph/pkg/response"
)

type relationRequest struct {
	TargetID string `json:"target_id" binding:"required,max=36"`
}

// relationError 业务错误返回 4xx；缓存失效失败等基础设施错误返回 500，写操作不能静默成功
func relationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFollowSelf),
		errors.Is(err, service.ErrBlockSelf),
		errors.Is(err, service.ErrMuteSelf),
		errors.Is(err, service.ErrBlocked):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNoPendingRequest):
		response.NotFound(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

// bindRelation 解析 body，成功时返回 (当前用户, 目标用户)
func bindRelation(c *gin.Context) (string, string, bool) {
	var req relationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return "", "", false
	}
	return middleware.ViewerID(c), req.TargetID, true
}

// Follow 建立关注
// @Summary 关注用户（私密账号进入待审批）
// @Tags 关系链
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body relationRequest true "目标用户"
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/relations/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	from, to, ok := bindRelation(c)
	if !ok {
		return
	}
	status, err := h.relService.Follow(c.Request.Context(), from, to)
	if err != nil {
		relationError(c, err)
		return
	}
	response.Success(c, gin.H{"status": status})
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body relationRequest true "目标用户"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/relations/unfollow [post]
func (h *Handler) Unfollow(c *gin.Context) {
	h.mutate(c, h.relService.Unfollow)
}

// AcceptFollow 同意关注请求
// @Summary 同意关注请求
// @Tags 关系链
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body relationRequest true "发起请求的用户"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/requests/accept [post]
func (h *Handler) AcceptFollow(c *gin.Context) {
	h.mutate(c, h.relService.AcceptFollow)
}

// RejectFollow 拒绝关注请求
// @Summary 拒绝关注请求
// @Tags 关系链
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body relationRequest true "发起请求的用户"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/requests/reject [post]
func (h *Handler) RejectFollow(c *gin.Context) {
	h.mutate(c, h.relService.RejectFollow)
}

// ListPendingRequests 待审批的关注请求
// @Summary 待审批的关注请求
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]string}
// @Router /api/v1/relations/requests [get]
func (h *Handler) ListPendingRequests(c *gin.Context) {
	ids, err := h.relService.ListPendingRequests(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, ids)
}

// Block 拉黑
// @Summary 拉黑用户（同时解除双方关注）
// @Tags 关系链
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body relationRequest true "目标用户"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/relations/block [post]
func (h *Handler) Block(c *gin.Context) {
	h.mutate(c, h.relService.Block)
}

// Unblock 取消拉黑
// @Summary 取消拉黑
// @Tags 关系链
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body relationRequest true "目标用户"
// @Success 200 {object} response.Response
// @Router /api/v1/relations/unblock [post]
func (h *Handler) Unblock(c *gin.Context) {
	h.mutate(c, h.relService.Unblock)
}

// Mute 静音
// @Summary 静音用户（仅影响自己的 feed）
// @Tags 关系链
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body relationRequest true "目标用户"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/mute [post]
func (h *Handler) Mute(c *gin.Context) {
	h.mutate(c, h.relService.Mute)
}

// Unmute 取消静音
// @Summary 取消静音
// @Tags 关系链
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body relationRequest true "目标用户"
// @Success 200 {object} response.Response
// @Router /api/v1/relations/unmute [post]
func (h *Handler) Unmute(c *gin.Context) {
	h.mutate(c, h.relService.Unmute)
}

func (h *Handler) mutate(c *gin.Context, op func(ctx context.Context, from, to string) error) {
	from, to, ok := bindRelation(c)
	if !ok {
		return
	}
	if err := op(c.Request.Context(), from, to); err != nil {
		relationError(c, err)
		return
	}
	response.Success(c, nil)
}
