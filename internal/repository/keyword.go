package repository

import (
	"context"

	"careerhub/internal/models"
	"careerhub/internal/observability"

	"gorm.io/gorm"
)

// KeywordRepository stores the interest keywords a user saved per category.
type KeywordRepository interface {
	List(ctx context.Context, userID uint, path string) ([]string, error)
	Replace(ctx context.Context, userID uint, path string, keywords []string) error
}

type keywordRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewKeywordRepository returns a new KeywordRepository implementation.
func NewKeywordRepository(db *gorm.DB) KeywordRepository {
	return &keywordRepository{db: db, log: observability.NewRepoLogger("user_keywords")}
}

func (r *keywordRepository) List(ctx context.Context, userID uint, path string) ([]string, error) {
	var keywords []string
	err := r.db.WithContext(ctx).
		Model(&models.UserKeyword{}).
		Where("user_id = ? AND path = ?", userID, path).
		Order("id").
		Pluck("keyword", &keywords).Error
	if err != nil {
		return nil, err
	}
	r.log.LogRead(ctx, map[string]any{"user_id": userID, "path": path, "count": len(keywords)})
	return keywords, nil
}

func (r *keywordRepository) Replace(ctx context.Context, userID uint, path string, keywords []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND path = ?", userID, path).Delete(&models.UserKeyword{})
		if res.Error != nil {
			return res.Error
		}
		r.log.LogDelete(ctx, map[string]any{"user_id": userID, "path": path, "rows": res.RowsAffected})
		if len(keywords) == 0 {
			return nil
		}
		rows := make([]models.UserKeyword, 0, len(keywords))
		for _, k := range keywords {
			rows = append(rows, models.UserKeyword{UserID: userID, Path: path, Keyword: k})
		}
		return tx.Create(&rows).Error
	})
}
