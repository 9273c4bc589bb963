package repository

import (
	"context"
	"testing"

	"careerhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCommunity(t *testing.T, db *gorm.DB) (*models.User, *models.Community) {
	t.Helper()
	user := &models.User{Email: "mina@example.com", Nickname: "mina"}
	require.NoError(t, db.Create(user).Error)
	post := &models.Community{UserID: user.ID, Path: "free", Title: "hello", Content: "first post"}
	require.NoError(t, NewCommunityRepository(db).Create(context.Background(), post))
	return user, post
}

func TestCommunityRepository_ToggleLikeTwiceRestoresState(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()
	user, post := seedCommunity(t, db)

	liked, err := repo.ToggleLike(ctx, user.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	likes, err := repo.Likes(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "mina", likes[0].User.Nickname)

	var stored models.Community
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, 1, stored.LikeCount)

	liked, err = repo.ToggleLike(ctx, user.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	likes, err = repo.Likes(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, 0, stored.LikeCount)
}

func TestCommunityRepository_GetByIDAndIncrementView(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()
	user, post := seedCommunity(t, db)

	require.NoError(t, repo.CreateComment(ctx, &models.Comment{CommunityID: post.ID, UserID: user.ID, Comment: "older"}))
	require.NoError(t, repo.CreateComment(ctx, &models.Comment{CommunityID: post.ID, UserID: user.ID, Comment: "newer"}))

	for want := 1; want <= 3; want++ {
		got, err := repo.GetByIDAndIncrementView(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.View)
		assert.Equal(t, "mina", got.User.Nickname)
		require.Len(t, got.Comments, 2)
		assert.Equal(t, "newer", got.Comments[0].Comment)
		assert.Equal(t, 2, got.CommentCount)
	}

	_, err := repo.GetByIDAndIncrementView(ctx, post.ID+100)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCommunityRepository_ListAndBest(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()
	user, first := seedCommunity(t, db)

	second := &models.Community{UserID: user.ID, Path: "study", Title: "study group", Content: "join", View: 10}
	require.NoError(t, repo.Create(ctx, second))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	free, err := repo.List(ctx, "free")
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, first.ID, free[0].ID)

	assert.Equal(t, second.ID, all[0].ID, "newest first")
}

func TestCommunityRepository_ToggleCommentLike(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()
	user, post := seedCommunity(t, db)

	comment := &models.Comment{CommunityID: post.ID, UserID: user.ID, Comment: "nice"}
	require.NoError(t, repo.CreateComment(ctx, comment))

	exists, err := repo.CommentExists(ctx, comment.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	liked, err := repo.ToggleCommentLike(ctx, user.ID, comment.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	likes, err := repo.CommentLikes(ctx, comment.ID)
	require.NoError(t, err)
	assert.Len(t, likes, 1)

	liked, err = repo.ToggleCommentLike(ctx, user.ID, comment.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	likes, err = repo.CommentLikes(ctx, comment.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)
}
