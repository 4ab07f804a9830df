package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feedgraph/internal/api/middleware"
	"github.com/d60-Lab/feedgraph/internal/service"
	"github.com/d60-Lab/feedgraph/pkg/response"
)

// feedRequest 非法的 limit 按未传处理，由服务层收敛到默认值，不在这里拒绝
func feedRequest(c *gin.Context) service.FeedRequest {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}
	return service.FeedRequest{ViewerID: middleware.ViewerID(c), Cursor: c.Query("cursor"), Limit: limit}
}

// Home 首页 feed
// @Summary 首页 feed（自己 + 关注的人的公开帖子）
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "分页游标"
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/feed/home [get]
func (h *Handler) Home(c *gin.Context) {
	page, err := h.feedService.Home(c.Request.Context(), feedRequest(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, page)
}

// Following 关注 feed
// @Summary 关注 feed（关注的人的全部顶层帖子）
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "分页游标"
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/feed/following [get]
func (h *Handler) Following(c *gin.Context) {
	page, err := h.feedService.Following(c.Request.Context(), feedRequest(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, page)
}

// Explore 发现 feed
// @Summary 发现 feed（近期公开帖子按互动排序，登录可选）
// @Tags Feed
// @Produce json
// @Param cursor query string false "分页游标"
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Failure 500 {object} response.Response
// @Router /api/v1/feed/explore [get]
func (h *Handler) Explore(c *gin.Context) {
	page, err := h.feedService.Explore(c.Request.Context(), feedRequest(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, page)
}

// GetPost 单帖详情
// @Summary 帖子详情（浏览数 +1）
// @Tags Feed
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response{data=service.FeedPost}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid post id")
		return
	}
	post, err := h.feedService.GetPost(c.Request.Context(), middleware.ViewerID(c), id)
	if errors.Is(err, service.ErrPostNotFound) {
		response.NotFound(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, post)
}

// TrendingHashtags 热门话题
// @Summary 热门话题（近似快照）
// @Tags Feed
// @Produce json
// @Param n query int false "数量" default(10)
// @Success 200 {object} response.Response{data=[]model.Hashtag}
// @Router /api/v1/trending/hashtags [get]
func (h *Handler) TrendingHashtags(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("n", "0"))
	tags, err := h.trendingService.TopHashtags(c.Request.Context(), n)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, tags)
}
