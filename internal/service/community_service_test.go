package service

import (
	"context"
	"strings"
	"testing"

	"careerhub/internal/models"
	"careerhub/internal/repository"
	"careerhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// communityRepoStub is a stub for repository.CommunityRepository. Unset funcs fail the test.
type communityRepoStub struct {
	t            *testing.T
	createFn     func(context.Context, *models.Community) error
	existsFn     func(context.Context, uint) (bool, error)
	toggleLikeFn func(context.Context, uint, uint) (bool, error)
}

func (s *communityRepoStub) Create(ctx context.Context, post *models.Community) error {
	if s.createFn == nil {
		s.t.Fatal("unexpected Create")
	}
	return s.createFn(ctx, post)
}
func (s *communityRepoStub) List(context.Context, string) ([]*models.Community, error) {
	return nil, nil
}
func (s *communityRepoStub) GetByIDAndIncrementView(_ context.Context, id uint) (*models.Community, error) {
	return &models.Community{ID: id}, nil
}
func (s *communityRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	if s.existsFn == nil {
		return true, nil
	}
	return s.existsFn(ctx, id)
}
func (s *communityRepoStub) ToggleLike(ctx context.Context, userID, communityID uint) (bool, error) {
	if s.toggleLikeFn == nil {
		s.t.Fatal("unexpected ToggleLike")
	}
	return s.toggleLikeFn(ctx, userID, communityID)
}
func (s *communityRepoStub) Likes(context.Context, uint) ([]models.CommunityLike, error) {
	return nil, nil
}
func (s *communityRepoStub) CreateComment(context.Context, *models.Comment) error {
	s.t.Fatal("unexpected CreateComment")
	return nil
}
func (s *communityRepoStub) Comments(context.Context, uint) ([]models.Comment, error) {
	return nil, nil
}
func (s *communityRepoStub) CommentExists(context.Context, uint) (bool, error) {
	return true, nil
}
func (s *communityRepoStub) ToggleCommentLike(context.Context, uint, uint) (bool, error) {
	s.t.Fatal("unexpected ToggleCommentLike")
	return false, nil
}
func (s *communityRepoStub) CommentLikes(context.Context, uint) ([]models.CommentLike, error) {
	return nil, nil
}

func TestCommunityService_UnknownUserNeverWrites(t *testing.T) {
	t.Parallel()

	svc := NewCommunityService(&communityRepoStub{t: t}, knownUsers())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePostInput{UserID: 9, Path: "free", Title: "t", Content: "c"})
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.ToggleLike(ctx, 9, 1)
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.CreateComment(ctx, CreateCommentInput{UserID: 9, CommunityID: 1, Comment: "hi"})
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.CommentLike(ctx, 9, 1)
	assertCode(t, err, models.CodeNotFound)
}

func TestCommunityService_Create_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommunityService(&communityRepoStub{t: t}, knownUsers(1))
	ctx := context.Background()

	cases := map[string]CreatePostInput{
		"missing path":    {UserID: 1, Title: "t", Content: "c"},
		"malformed path":  {UserID: 1, Path: "Job Talk", Title: "t", Content: "c"},
		"missing title":   {UserID: 1, Path: "free", Title: "  ", Content: "c"},
		"missing content": {UserID: 1, Path: "free", Title: "t"},
		"title too long":  {UserID: 1, Path: "free", Title: strings.Repeat("x", 201), Content: "c"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, in)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestCommunityService_ToggleLike_MissingPost(t *testing.T) {
	t.Parallel()

	repo := &communityRepoStub{t: t, existsFn: func(context.Context, uint) (bool, error) { return false, nil }}
	svc := NewCommunityService(repo, knownUsers(1))

	_, err := svc.ToggleLike(context.Background(), 1, 42)
	assertCode(t, err, models.CodeNotFound)
}

func TestCommunityService_Flow(t *testing.T) {
	db := testutil.OpenSQLite(t)
	users := repository.NewUserRepository(db)
	svc := NewCommunityService(repository.NewCommunityRepository(db), users)
	ctx := context.Background()

	author := &models.User{Email: "author@example.com", Nickname: "author"}
	require.NoError(t, users.Create(ctx, author))

	post, err := svc.Create(ctx, CreatePostInput{UserID: author.ID, Path: "free", Title: "Hello", Content: "First"})
	require.NoError(t, err)

	first, err := svc.ToggleLike(ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Len(t, first.Likes, 1)

	second, err := svc.ToggleLike(ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Empty(t, second.Likes)

	_, err = svc.CreateComment(ctx, CreateCommentInput{UserID: author.ID, CommunityID: post.ID, Comment: "one"})
	require.NoError(t, err)
	comments, err := svc.CreateComment(ctx, CreateCommentInput{UserID: author.ID, CommunityID: post.ID, Comment: "two"})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "two", comments[0].Comment)

	liked, err := svc.CommentLike(ctx, author.ID, comments[0].ID)
	require.NoError(t, err)
	assert.True(t, liked.Liked)

	detail, err := svc.FindOne(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.View)
	assert.Equal(t, 0, detail.LikeCount)
	assert.Equal(t, 2, detail.CommentCount)
	assert.Equal(t, "author", detail.User.Nickname)

	posts, err := svc.FindMany(ctx, "free")
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	posts, err = svc.FindMany(ctx, "study")
	require.NoError(t, err)
	assert.Empty(t, posts)
}
