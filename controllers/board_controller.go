package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openparish/parishboard/middleware"
	"github.com/openparish/parishboard/models"
	"github.com/openparish/parishboard/services"
	"github.com/openparish/parishboard/utils"
)

// BoardController exposes the board read and write paths over HTTP.
type BoardController struct {
	board *services.BoardService
	cache services.Cache
}

// NewBoardController creates a BoardController.
func NewBoardController(db *gorm.DB, cache services.Cache) *BoardController {
	return &BoardController{
		board: services.NewBoardService(db, cache),
		cache: cache,
	}
}

// ListPosts returns one page of a board category, newest first.
func (b *BoardController) ListPosts(ctx *gin.Context) {
	category := ctx.Param("category")
	if !models.ValidCategory(category) {
		utils.Error(ctx, http.StatusNotFound, 40410, "unknown board category")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := services.BoardListKey(category, page, pageSize)
	if bytes, ok := b.cache.GetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", bytes)
		return
	}

	result := b.board.ListPosts(category, page, pageSize)
	payload := gin.H{
		"items": result.Posts,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       result.TotalCount,
			"total_pages": (result.TotalCount + int64(pageSize) - 1) / int64(pageSize),
		},
	}
	b.cache.SetJSON(cacheKey, wrap(payload), time.Hour)
	utils.Success(ctx, payload)
}

// GetPost returns a single post with attachments, comments, comment
// count, and prev/next navigation, and bumps the view counter.
func (b *BoardController) GetPost(ctx *gin.Context) {
	category := ctx.Param("category")
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	cacheKey := services.BoardDetailKey(category, id)
	if bytes, ok := b.cache.GetBytes(cacheKey); ok {
		// Views still count on cache hits.
		_ = b.board.IncrementViews(id)
		ctx.Data(200, "application/json", bytes)
		return
	}

	detail, err := b.board.GetPostDetail(id)
	if err != nil {
		serviceError(ctx, err, 50020, "failed to load post")
		return
	}
	if detail.Category != category {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	prev, next, err := b.board.GetAdjacentPosts(id, category)
	if err != nil {
		serviceError(ctx, err, 50021, "failed to load adjacent posts")
		return
	}

	_ = b.board.IncrementViews(id)

	payload := gin.H{
		"post":          detail,
		"comment_count": detail.CommentCount,
		"prev":          prev,
		"next":          next,
	}
	b.cache.SetJSON(cacheKey, wrap(payload), time.Hour)
	utils.Success(ctx, payload)
}

// CreatePost persists a new post with its attachments atomically.
func (b *BoardController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title       string                     `json:"title" binding:"required"`
		Content     string                     `json:"content"`
		Author      string                     `json:"author"`
		Category    string                     `json:"category"`
		Attachments []services.AttachmentInput `json:"attachments"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	sess := middleware.GetSession(ctx)
	if sess == nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	author := req.Author
	if author == "" {
		author = sess.Nickname
	}
	if author == "" {
		author = sess.Name
	}

	userID := sess.UserID
	post, err := b.board.CreatePost(services.CreatePostInput{
		Title:       req.Title,
		Content:     utils.Sanitize(req.Content),
		Author:      author,
		Category:    req.Category,
		UserID:      &userID,
		Attachments: req.Attachments,
	})
	if err != nil {
		serviceError(ctx, err, 50022, "failed to create post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// CreateComment appends a comment to a post.
func (b *BoardController) CreateComment(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	var req struct {
		Author  string `json:"author" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	comment, err := b.board.CreateComment(id, req.Author, utils.Sanitize(req.Content))
	if err != nil {
		serviceError(ctx, err, 50023, "failed to post your comment, please try again")
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeletePost removes a post; owner or admin only.
func (b *BoardController) DeletePost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	sess := middleware.GetSession(ctx)
	if sess == nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := b.board.DeletePost(sess, id); err != nil {
		serviceError(ctx, err, 50024, "failed to delete post")
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted"})
}
