package repository

import (
	"context"
	"testing"
	"time"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFeedAllNewestFirst(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	seedPosts(t, gdb, alice, 15)

	posts, page, err := repo.ListFeed(ctx, FeedQuery{Feed: FeedAll, Page: 1})
	require.NoError(t, err)
	require.Len(t, posts, PerPage)
	assert.Equal(t, "post 15", posts[0].Content)
	assert.Equal(t, "post 6", posts[9].Content)
	assert.Equal(t, "alice", posts[0].User.Username)
	assert.Equal(t, Page{Number: 1, NumPages: 2, HasNext: true}, page)

	posts, page, err = repo.ListFeed(ctx, FeedQuery{Feed: FeedAll, Page: 2})
	require.NoError(t, err)
	require.Len(t, posts, 5)
	assert.Equal(t, "post 1", posts[4].Content)
	assert.Equal(t, Page{Number: 2, NumPages: 2, HasPrev: true}, page)

	// Out-of-range pages clamp to the last page
	posts, page, err = repo.ListFeed(ctx, FeedQuery{Feed: FeedAll, Page: 99})
	require.NoError(t, err)
	assert.Len(t, posts, 5)
	assert.Equal(t, 2, page.Number)
}

func TestListFeedFollowing(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewPostRepository(gdb)
	follows := NewFollowRepository(gdb)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	carol := createUser(t, gdb, "carol")

	now := time.Now()
	createPost(t, gdb, bob, "from bob", now.Add(-2*time.Minute))
	createPost(t, gdb, carol, "from carol", now.Add(-time.Minute))
	createPost(t, gdb, alice, "from alice", now)

	_, err := follows.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	posts, page, err := repo.ListFeed(ctx, FeedQuery{Feed: FeedFollowing, ViewerID: alice.ID, Page: 1})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "from bob", posts[0].Content)
	assert.Equal(t, 1, page.NumPages)

	// Nobody followed: empty single page
	posts, page, err = repo.ListFeed(ctx, FeedQuery{Feed: FeedFollowing, ViewerID: carol.ID, Page: 1})
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, Page{Number: 1, NumPages: 1}, page)
}

func TestListFeedProfile(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	seedPosts(t, gdb, alice, 3)
	seedPosts(t, gdb, bob, 2)

	posts, _, err := repo.ListFeed(ctx, FeedQuery{Feed: FeedProfile, AuthorID: alice.ID, Page: 1})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for _, p := range posts {
		assert.Equal(t, alice.ID, p.UserID)
	}
}

func TestDeleteRemovesLikes(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	post := createPost(t, gdb, alice, "doomed", time.Now())
	require.NoError(t, gdb.Create(&models.Like{UserID: bob.ID, PostID: post.ID}).Error)

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err := repo.ByID(ctx, post.ID)
	assert.Error(t, err)

	var likeCount int64
	require.NoError(t, gdb.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount).Error)
	assert.Zero(t, likeCount)
}

func TestEditedAtAdvancesOnSave(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	post := createPost(t, gdb, alice, "first draft", time.Now())

	firstEdited := post.EditedAt
	assert.False(t, post.EditedAt.Before(post.CreatedAt))

	time.Sleep(10 * time.Millisecond)
	post.Content = "second draft"
	require.NoError(t, repo.Save(ctx, post))

	reloaded, err := repo.ByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "second draft", reloaded.Content)
	assert.True(t, reloaded.EditedAt.After(firstEdited))
	assert.False(t, reloaded.EditedAt.Before(reloaded.CreatedAt))
}
