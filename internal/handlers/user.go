package handlers

import (
	"net/http"

	"ripple/internal/middleware"
	"ripple/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users   repository.UserRepository
	posts   repository.PostRepository
	likes   repository.LikeRepository
	follows repository.FollowRepository
}

func NewUserHandler(users repository.UserRepository, posts repository.PostRepository, likes repository.LikeRepository, follows repository.FollowRepository) *UserHandler {
	return &UserHandler{users: users, posts: posts, likes: likes, follows: follows}
}

// Profile - GET /profile/:username, the user's posts plus follow metadata
func (h *UserHandler) Profile(c *gin.Context) {
	viewer, ok := middleware.CurrentUser(c)
	if !ok {
		JSONError(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.ByUsername(ctx, c.Param("username"))
	if err != nil {
		JSONError(c, http.StatusNotFound, "User not found.")
		return
	}

	isFollowing, err := h.follows.IsFollowing(ctx, viewer.ID, user.ID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not load profile.")
		return
	}
	followers, following, err := h.follows.Counts(ctx, user.ID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not load profile.")
		return
	}

	posts, page, err := h.posts.ListFeed(ctx, repository.FeedQuery{
		Feed:     repository.FeedProfile,
		AuthorID: user.ID,
		Page:     pageParam(c),
	})
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not load profile.")
		return
	}

	if err := h.likes.FillCounts(ctx, posts); err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not load profile.")
		return
	}
	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	likedSet, err := h.likes.LikedPostIDs(ctx, viewer.ID, postIDs)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not load profile.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":            feedViews(posts, likedSet, viewer.ID),
		"is_following":     isFollowing,
		"followers_count":  followers,
		"following_count":  following,
		"has_next":         page.HasNext,
		"has_previous":     page.HasPrev,
		"page_number":      page.Number,
		"num_pages":        page.NumPages,
		"current_page":     page.Number,
		"profile_username": user.Username,
		"is_authenticated": true,
	})
}

// ToggleFollow - POST /follow/:username
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	viewer, ok := middleware.CurrentUser(c)
	if !ok {
		JSONError(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	ctx := c.Request.Context()
	target, err := h.users.ByUsername(ctx, c.Param("username"))
	if err != nil {
		JSONError(c, http.StatusNotFound, "User not found.")
		return
	}

	if target.ID == viewer.ID {
		JSONError(c, http.StatusBadRequest, "Users cannot follow themselves.")
		return
	}

	isFollowing, err := h.follows.Toggle(ctx, viewer.ID, target.ID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not update follow.")
		return
	}
	followers, following, err := h.follows.Counts(ctx, target.ID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not update follow.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_following":    isFollowing,
		"followers_count": followers,
		"following_count": following,
	})
}

// DeleteAccount - DELETE /account, hard delete with cascade
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	viewer, ok := middleware.CurrentUser(c)
	if !ok {
		JSONError(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	if err := h.users.Delete(c.Request.Context(), viewer.ID); err != nil {
		JSONError(c, http.StatusInternalServerError, "Could not delete account.")
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Save()

	invalidateFrontPage()

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully."})
}
