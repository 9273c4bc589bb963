package service

import (
	"context"
	"strings"
	"time"

	"careerhub/internal/listing"
	"careerhub/internal/models"
	"careerhub/internal/observability"
	"careerhub/internal/repository"
)

// IngestService stores crawled records in the store that serves their category.
type IngestService struct {
	registry *listing.Registry
	index    repository.SearchIndexer
	exams    repository.ExamRepository
	log      *observability.StructuredLogger
}

// LinkareerInput is one crawled activity board post. Month and Scale are stored
// only when positive.
type LinkareerInput struct {
	Category string
	Data     map[string]any
	Month    int
	Scale    int
}

type LanguageInput struct {
	Test       string
	Classify   string
	ExamDate   time.Time
	CloseDate  time.Time
	ResultDate time.Time
	HomePage   string
}

type QnetInput struct {
	MainCategory  string
	SubCategory   string
	Title         string
	Institution   string
	Summary       string
	ExamSchedules []models.ExamSchedule
}

func NewIngestService(registry *listing.Registry, index repository.SearchIndexer, exams repository.ExamRepository) *IngestService {
	return &IngestService{registry: registry, index: index, exams: exams, log: observability.NewStructuredLogger()}
}

// IndexLinkareer adds a crawled outside, intern or competition post to the search index.
func (s *IngestService) IndexLinkareer(ctx context.Context, in LinkareerInput) (string, error) {
	h, err := s.registry.Lookup(in.Category)
	if err != nil {
		return "", unknownCategory(err)
	}
	if h.Backend() != listing.BackendSearch {
		return "", models.NewValidationError("Category " + in.Category + " is not indexed")
	}
	if len(in.Data) == 0 {
		return "", models.NewValidationError("Document is empty")
	}

	doc := make(map[string]any, len(in.Data)+2)
	for k, v := range in.Data {
		doc[k] = v
	}
	if in.Month > 0 {
		doc["month"] = in.Month
	}
	if in.Scale > 0 {
		doc["scale"] = in.Scale
	}
	s.log.LogServiceCall(ctx, "ingest", "IndexLinkareer", map[string]any{"category": in.Category})
	return s.index.Index(ctx, h, doc)
}

func (s *IngestService) IndexLanguage(ctx context.Context, in LanguageInput) (*models.Language, error) {
	if strings.TrimSpace(in.Test) == "" {
		return nil, models.NewValidationError("Test is required")
	}
	lang := &models.Language{
		Test:       listing.NormalizeTestCode(in.Test),
		Classify:   strings.TrimSpace(in.Classify),
		ExamDate:   in.ExamDate,
		CloseDate:  in.CloseDate,
		ResultDate: in.ResultDate,
		HomePage:   in.HomePage,
	}
	if err := s.exams.CreateLanguage(ctx, lang); err != nil {
		return nil, err
	}
	return lang, nil
}

// IndexQnet stores a certification exam under its sub category, creating the
// taxonomy entries on first use.
func (s *IngestService) IndexQnet(ctx context.Context, in QnetInput) (*models.Qnet, error) {
	main, sub := strings.TrimSpace(in.MainCategory), strings.TrimSpace(in.SubCategory)
	switch {
	case main == "" || sub == "":
		return nil, models.NewValidationError("Main and sub category are required")
	case strings.TrimSpace(in.Title) == "":
		return nil, models.NewValidationError("Title is required")
	}

	category, err := s.exams.GetOrCreateSubCategory(ctx, main, sub)
	if err != nil {
		return nil, err
	}
	qnet := &models.Qnet{
		Title:         strings.TrimSpace(in.Title),
		Institution:   in.Institution,
		Summary:       in.Summary,
		SubCategoryID: category.ID,
		ExamSchedules: in.ExamSchedules,
	}
	if err := s.exams.CreateQnet(ctx, qnet); err != nil {
		return nil, err
	}
	qnet.SubCategory = *category
	return qnet, nil
}
