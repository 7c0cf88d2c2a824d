package repository

import (
	"fmt"
	"testing"
	"time"

	"ripple/internal/db"
	"ripple/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A fresh connection would see an empty in-memory database
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
	}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

func createPost(t *testing.T, gdb *gorm.DB, author *models.User, content string, createdAt time.Time) *models.Post {
	t.Helper()
	post := models.Post{
		UserID:    author.ID,
		Content:   content,
		CreatedAt: createdAt,
	}
	require.NoError(t, gdb.Create(&post).Error)
	return &post
}

func seedPosts(t *testing.T, gdb *gorm.DB, author *models.User, n int) []*models.Post {
	t.Helper()
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	posts := make([]*models.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = createPost(t, gdb, author, fmt.Sprintf("post %d", i+1), base.Add(time.Duration(i)*time.Minute))
	}
	return posts
}
