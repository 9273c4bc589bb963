package repository

import (
	"context"
	"errors"

	"careerhub/internal/models"
	"careerhub/internal/observability"

	"gorm.io/gorm"
)

// CommunityRepository defines persistence operations for community posts,
// their comments and the like relations on both.
type CommunityRepository interface {
	Create(ctx context.Context, post *models.Community) error
	// List returns the posts of a board, newest first. An empty path lists every board.
	List(ctx context.Context, path string) ([]*models.Community, error)
	// GetByIDAndIncrementView bumps the view counter and returns the post with its
	// author, comments and likes.
	GetByIDAndIncrementView(ctx context.Context, id uint) (*models.Community, error)
	Exists(ctx context.Context, id uint) (bool, error)
	// ToggleLike removes the user's like when present and adds it otherwise, keeping
	// like_count in step. It reports whether the post is liked afterwards.
	ToggleLike(ctx context.Context, userID, communityID uint) (bool, error)
	Likes(ctx context.Context, communityID uint) ([]models.CommunityLike, error)
	// CreateComment stores the comment and increments comment_count.
	CreateComment(ctx context.Context, comment *models.Comment) error
	// Comments returns the comments of a post, newest first.
	Comments(ctx context.Context, communityID uint) ([]models.Comment, error)
	CommentExists(ctx context.Context, id uint) (bool, error)
	ToggleCommentLike(ctx context.Context, userID, commentID uint) (bool, error)
	CommentLikes(ctx context.Context, commentID uint) ([]models.CommentLike, error)
}

type communityRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommunityRepository returns a new CommunityRepository implementation.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db, log: observability.NewRepoLogger("communities")}
}

func (r *communityRepository) Create(ctx context.Context, post *models.Community) error {
	defer observability.TrackQuery("create", "communities")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"community_id": post.ID, "path": post.Path})
	return nil
}

func (r *communityRepository) List(ctx context.Context, path string) ([]*models.Community, error) {
	defer observability.TrackQuery("list", "communities")()
	q := r.db.WithContext(ctx).Preload("User")
	if path != "" {
		q = q.Where("path = ?", path)
	}
	var posts []*models.Community
	err := q.Order("created_at desc").Order("id desc").Find(&posts).Error
	return posts, err
}

func (r *communityRepository) GetByIDAndIncrementView(ctx context.Context, id uint) (*models.Community, error) {
	defer observability.TrackQuery("detail", "communities")()
	var post models.Community
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Community{}).Where("id = ?", id).
			UpdateColumn("view", gorm.Expr("view + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Community", id)
		}
		return tx.
			Preload("User").
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at desc").Order("id desc")
			}).
			Preload("Comments.User").
			Preload("Comments.Likes").
			Preload("Likes").
			Preload("Likes.User").
			First(&post, id).Error
	})
	if err != nil {
		return nil, err
	}
	r.log.LogUpdate(ctx, map[string]any{"community_id": id, "view": post.View})
	return &post, nil
}

func (r *communityRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Community{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *communityRepository) ToggleLike(ctx context.Context, userID, communityID uint) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var like models.CommunityLike
		err := tx.Where("user_id = ? AND community_id = ?", userID, communityID).First(&like).Error
		switch {
		case err == nil:
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
			return tx.Model(&models.Community{}).Where("id = ?", communityID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			if err := tx.Create(&models.CommunityLike{UserID: userID, CommunityID: communityID}).Error; err != nil {
				return err
			}
			return tx.Model(&models.Community{}).Where("id = ?", communityID).
				UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
		default:
			return err
		}
	})
	if err != nil {
		r.log.LogError(ctx, err, "toggle_like")
		return false, err
	}
	r.log.LogUpdate(ctx, map[string]any{"community_id": communityID, "user_id": userID, "liked": liked})
	return liked, nil
}

func (r *communityRepository) Likes(ctx context.Context, communityID uint) ([]models.CommunityLike, error) {
	var likes []models.CommunityLike
	err := r.db.WithContext(ctx).Preload("User").
		Where("community_id = ?", communityID).
		Order("id").
		Find(&likes).Error
	return likes, err
}

func (r *communityRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Community{}).Where("id = ?", comment.CommunityID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "create_comment")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"comment_id": comment.ID, "community_id": comment.CommunityID})
	return nil
}

func (r *communityRepository) Comments(ctx context.Context, communityID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Likes").
		Where("community_id = ?", communityID).
		Order("created_at desc").Order("id desc").
		Find(&comments).Error
	return comments, err
}

func (r *communityRepository) CommentExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *communityRepository) ToggleCommentLike(ctx context.Context, userID, commentID uint) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var like models.CommentLike
		err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&like).Error
		switch {
		case err == nil:
			return tx.Delete(&like).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.CommentLike{UserID: userID, CommentID: commentID}).Error
		default:
			return err
		}
	})
	if err != nil {
		r.log.LogError(ctx, err, "toggle_comment_like")
		return false, err
	}
	return liked, nil
}

func (r *communityRepository) CommentLikes(ctx context.Context, commentID uint) ([]models.CommentLike, error) {
	var likes []models.CommentLike
	err := r.db.WithContext(ctx).Preload("User").
		Where("comment_id = ?", commentID).
		Order("id").
		Find(&likes).Error
	return likes, err
}
