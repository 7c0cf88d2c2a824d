package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	posts repository.PostRepository
	likes repository.LikeRepository
	users repository.UserRepository
}

func NewPostHandler(posts repository.PostRepository, likes repository.LikeRepository, users repository.UserRepository) *PostHandler {
	return &PostHandler{posts: posts, likes: likes, users: users}
}

// postBody is the JSON request body for create and edit.
type postBody struct {
	Post string `json:"post"`
}

// serializeFeed fills like counts and the viewer's liked flags, then
// projects each post relative to the viewer.
func (h *PostHandler) serializeFeed(c *gin.Context, posts []models.Post, viewerID uint) ([]models.PostView, error) {
	ctx := c.Request.Context()
	if err := h.likes.FillCounts(ctx, posts); err != nil {
		return nil, err
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	likedSet, err := h.likes.LikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}

	return feedViews(posts, likedSet, viewerID), nil
}

func feedViews(posts []models.Post, likedSet map[uint]bool, viewerID uint) []models.PostView {
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, models.NewPostView(p, likedSet[p.ID], viewerID))
	}
	return views
}

// invalidateFrontPage drops the cached first page after a mutation.
func invalidateFrontPage() {
	utils.GetCache().Delete("feed:all:page:1")
}

// renderedPost carries a post with its sanitized HTML for the templates.
type renderedPost struct {
	models.Post
	ContentHTML template.HTML
}

// frontPage is the cached feed data. Viewer state (CurrentUser and
// friends) must never go through the cache, Render injects it into a
// fresh map per request.
type frontPage struct {
	Posts []renderedPost
	Page  repository.Page
}

// Index - 首页，服务端渲染第一页动态
func (h *PostHandler) Index(c *gin.Context) {
	page := pageParam(c)

	cacheKey := fmt.Sprintf("feed:all:page:%d", page)
	fp, hit := utils.GetCache().Get(cacheKey).(frontPage)
	if !hit {
		posts, pageInfo, err := h.posts.ListFeed(c.Request.Context(), repository.FeedQuery{
			Feed: repository.FeedAll,
			Page: page,
		})
		if err != nil {
			RenderError(c, http.StatusInternalServerError, "Something went wrong.")
			return
		}
		if err := h.likes.FillCounts(c.Request.Context(), posts); err != nil {
			RenderError(c, http.StatusInternalServerError, "Something went wrong.")
			return
		}

		rendered := make([]renderedPost, len(posts))
		for i, p := range posts {
			rendered[i] = renderedPost{
				Post:        p,
				ContentHTML: utils.RenderMarkdown(p.Content),
			}
		}
		fp = frontPage{Posts: rendered, Page: pageInfo}

		// 写入缓存，有效期 1 分钟
		utils.GetCache().Set(cacheKey, fp, 1*time.Minute)
	}

	Render(c, http.StatusOK, "feed/index.html", gin.H{
		"Title": "All Posts",
		"Posts": fp.Posts,
		"Page":  fp.Page,
	})
}

// Create - POST /new_post
func (h *PostHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var body postBody
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Post) == "" {
		JSONError(c, http.StatusBadRequest, "Post must have content.")
		return
	}

	post := models.Post{
		UserID:  user.ID,
		Content: body.Post,
	}
	if err := h.posts.Create(c.Request.Context(), &post); err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not save post.")
		return
	}
	post.User = *user

	invalidateFrontPage()

	c.JSON(http.StatusCreated, models.NewPostView(post, false, user.ID))
}

// GetPosts - GET /posts?feed={all|following|profile}&username=&page=
func (h *PostHandler) GetPosts(c *gin.Context) {
	feedType := c.DefaultQuery("feed", "all")
	username := c.Query("username")
	page := pageParam(c)

	viewer, _ := middleware.CurrentUser(c)
	viewerID := uint(0)
	if viewer != nil {
		viewerID = viewer.ID
	}

	q := repository.FeedQuery{Feed: repository.FeedAll, ViewerID: viewerID, Page: page}
	switch {
	case feedType == repository.FeedFollowing:
		if viewer == nil {
			JSONError(c, http.StatusUnauthorized, "Authentication required for following feed.")
			return
		}
		q.Feed = repository.FeedFollowing
	case feedType == repository.FeedProfile && username != "":
		author, err := h.users.ByUsername(c.Request.Context(), username)
		if err != nil {
			JSONError(c, http.StatusNotFound, "User not found.")
			return
		}
		q.Feed = repository.FeedProfile
		q.AuthorID = author.ID
	}

	h.respondFeed(c, q, feedType, viewer != nil, viewerID)
}

// Following - GET /following, the authenticated viewer's following feed
func (h *PostHandler) Following(c *gin.Context) {
	viewer, ok := middleware.CurrentUser(c)
	if !ok {
		JSONError(c, http.StatusUnauthorized, "Authentication required for following feed.")
		return
	}

	q := repository.FeedQuery{
		Feed:     repository.FeedFollowing,
		ViewerID: viewer.ID,
		Page:     pageParam(c),
	}
	h.respondFeed(c, q, repository.FeedFollowing, true, viewer.ID)
}

func (h *PostHandler) respondFeed(c *gin.Context, q repository.FeedQuery, feedType string, authenticated bool, viewerID uint) {
	posts, page, err := h.posts.ListFeed(c.Request.Context(), q)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	views, err := h.serializeFeed(c, posts, viewerID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":            views,
		"has_next":         page.HasNext,
		"has_previous":     page.HasPrev,
		"page_number":      page.Number,
		"num_pages":        page.NumPages,
		"current_page":     page.Number,
		"is_authenticated": authenticated,
		"feed_type":        feedType,
	})
}

// Like - POST /like/:id, toggles the viewer's like
func (h *PostHandler) Like(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	post, err := h.posts.ByID(c.Request.Context(), idParam(c, "id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			JSONError(c, http.StatusNotFound, "Post not found.")
			return
		}
		JSONError(c, http.StatusInternalServerError, "Could not load post.")
		return
	}

	liked, likes, err := h.likes.Toggle(c.Request.Context(), user.ID, post.ID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not update like.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": likes, "liked": liked})
}

// Edit - PUT|POST /edit/:id
func (h *PostHandler) Edit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	ctx := c.Request.Context()
	post, err := h.posts.ByID(ctx, idParam(c, "id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			JSONError(c, http.StatusNotFound, "Post not found.")
			return
		}
		JSONError(c, http.StatusInternalServerError, "Could not load post.")
		return
	}
	if post.UserID != user.ID {
		JSONError(c, http.StatusForbidden, "User must be author of post")
		return
	}

	var body postBody
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Post) == "" {
		JSONError(c, http.StatusBadRequest, "Post must have content.")
		return
	}

	post.Content = body.Post
	if err := h.posts.Save(ctx, post); err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not save post.")
		return
	}

	likes, err := h.likes.Count(ctx, post.ID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not save post.")
		return
	}
	post.LikeCount = likes
	liked, _ := h.likes.Liked(ctx, user.ID, post.ID)

	invalidateFrontPage()

	c.JSON(http.StatusOK, models.NewPostView(*post, liked, user.ID))
}

// Delete - DELETE /delete/:id
func (h *PostHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	post, err := h.posts.ByID(c.Request.Context(), idParam(c, "id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			JSONError(c, http.StatusNotFound, "Post not found.")
			return
		}
		JSONError(c, http.StatusInternalServerError, "Could not delete post.")
		return
	}
	if post.UserID != user.ID {
		JSONError(c, http.StatusForbidden, "User must be author of post")
		return
	}

	if err := h.posts.Delete(c.Request.Context(), post.ID); err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not delete post.")
		return
	}

	invalidateFrontPage()

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully."})
}
