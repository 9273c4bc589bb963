package service

import (
	"context"
	"strings"

	"careerhub/internal/models"
	"careerhub/internal/repository"
	"careerhub/internal/validation"
)

const (
	maxTitleLen   = 200
	maxContentLen = 10000
)

// CommunityService owns the community board: posts, comments and the like toggles.
// Every mutation checks that the acting user exists before writing.
type CommunityService struct {
	communityRepo repository.CommunityRepository
	userRepo      repository.UserRepository
}

type CreatePostInput struct {
	UserID  uint
	Path    string
	Title   string
	Content string
}

type CreateCommentInput struct {
	UserID      uint
	CommunityID uint
	Comment     string
}

// PostLikeResult is the state of a post after a like toggle.
type PostLikeResult struct {
	Liked bool                   `json:"liked"`
	Likes []models.CommunityLike `json:"communityLikes"`
}

// CommentLikeResult is the state of a comment after a like toggle.
type CommentLikeResult struct {
	Liked bool                 `json:"liked"`
	Likes []models.CommentLike `json:"commentLikes"`
}

func NewCommunityService(communityRepo repository.CommunityRepository, userRepo repository.UserRepository) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
		userRepo:      userRepo,
	}
}

func (s *CommunityService) requireUser(ctx context.Context, userID uint) error {
	ok, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}

func (s *CommunityService) requirePost(ctx context.Context, id uint) error {
	ok, err := s.communityRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Community", id)
	}
	return nil
}

func (s *CommunityService) Create(ctx context.Context, in CreatePostInput) (*models.Community, error) {
	if err := s.requireUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	in.Path = strings.TrimSpace(in.Path)
	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Path == "":
		return nil, models.NewValidationError("Path is required")
	case in.Title == "":
		return nil, models.NewValidationError("Title is required")
	case len(in.Title) > maxTitleLen:
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	case in.Content == "":
		return nil, models.NewValidationError("Content is required")
	case len(in.Content) > maxContentLen:
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	if err := validation.ValidateBoardPath(in.Path); err != nil {
		return nil, models.NewValidationError("Invalid path: " + err.Error())
	}

	post := &models.Community{
		UserID:  in.UserID,
		Path:    in.Path,
		Title:   in.Title,
		Content: in.Content,
	}
	if err := s.communityRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// FindMany lists the posts of a board; an empty path lists every board.
func (s *CommunityService) FindMany(ctx context.Context, path string) ([]*models.Community, error) {
	return s.communityRepo.List(ctx, strings.TrimSpace(path))
}

// FindOne returns the post with its author, comments and likes, counting the view.
func (s *CommunityService) FindOne(ctx context.Context, id uint) (*models.Community, error) {
	return s.communityRepo.GetByIDAndIncrementView(ctx, id)
}

func (s *CommunityService) ToggleLike(ctx context.Context, userID, communityID uint) (*PostLikeResult, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, communityID); err != nil {
		return nil, err
	}

	liked, err := s.communityRepo.ToggleLike(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}
	likes, err := s.communityRepo.Likes(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return &PostLikeResult{Liked: liked, Likes: likes}, nil
}

// CreateComment adds a comment and returns every comment of the post, newest first.
func (s *CommunityService) CreateComment(ctx context.Context, in CreateCommentInput) ([]models.Comment, error) {
	if err := s.requireUser(ctx, in.UserID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Comment) == "" {
		return nil, models.NewValidationError("Comment is required")
	}
	if len(in.Comment) > maxContentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}
	if err := s.requirePost(ctx, in.CommunityID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		CommunityID: in.CommunityID,
		UserID:      in.UserID,
		Comment:     in.Comment,
	}
	if err := s.communityRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.communityRepo.Comments(ctx, in.CommunityID)
}

func (s *CommunityService) CommentLike(ctx context.Context, userID, commentID uint) (*CommentLikeResult, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	ok, err := s.communityRepo.CommentExists(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Comment", commentID)
	}

	liked, err := s.communityRepo.ToggleCommentLike(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	likes, err := s.communityRepo.CommentLikes(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return &CommentLikeResult{Liked: liked, Likes: likes}, nil
}
