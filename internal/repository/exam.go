package repository

import (
	"context"
	"errors"

	"careerhub/internal/models"
	"careerhub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExamRepository writes language exam sessions, certification exams and the
// certification taxonomy.
type ExamRepository interface {
	CreateLanguage(ctx context.Context, lang *models.Language) error
	CreateQnet(ctx context.Context, qnet *models.Qnet) error
	// GetOrCreateSubCategory returns the sub category with subKeyword, creating it
	// and, if needed, its main category mainKeyword.
	GetOrCreateSubCategory(ctx context.Context, mainKeyword, subKeyword string) (*models.SubCategory, error)
}

type examRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewExamRepository returns a new ExamRepository implementation.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db, log: observability.NewRepoLogger("exams")}
}

func (r *examRepository) CreateLanguage(ctx context.Context, lang *models.Language) error {
	defer observability.TrackQuery("create", "languages")()
	if err := r.db.WithContext(ctx).Create(lang).Error; err != nil {
		r.log.LogError(ctx, err, "create_language")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"language_id": lang.ID, "test": lang.Test})
	return nil
}

func (r *examRepository) CreateQnet(ctx context.Context, qnet *models.Qnet) error {
	defer observability.TrackQuery("create", "qnets")()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(qnet).Error; err != nil {
		r.log.LogError(ctx, err, "create_qnet")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"qnet_id": qnet.ID, "title": qnet.Title})
	return nil
}

func (r *examRepository) GetOrCreateSubCategory(ctx context.Context, mainKeyword, subKeyword string) (*models.SubCategory, error) {
	var sub models.SubCategory
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("MainCategory").Where("keyword = ?", subKeyword).First(&sub).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		main := models.MainCategory{Keyword: mainKeyword}
		if err := tx.Where(models.MainCategory{Keyword: mainKeyword}).FirstOrCreate(&main).Error; err != nil {
			return err
		}
		sub = models.SubCategory{Keyword: subKeyword, MainCategoryID: main.ID}
		if err := tx.Omit(clause.Associations).Create(&sub).Error; err != nil {
			return err
		}
		sub.MainCategory = main
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "get_or_create_sub_category")
		return nil, err
	}
	return &sub, nil
}
