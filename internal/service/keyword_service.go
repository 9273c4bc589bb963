package service

import (
	"context"
	"strings"

	"careerhub/internal/listing"
	"careerhub/internal/models"
	"careerhub/internal/repository"
	"careerhub/internal/validation"
)

const maxKeywords = 20

// KeywordService manages the interest keywords that personalize a user's listings.
type KeywordService struct {
	keywordRepo repository.KeywordRepository
	userRepo    repository.UserRepository
	registry    *listing.Registry
}

func NewKeywordService(keywordRepo repository.KeywordRepository, userRepo repository.UserRepository, registry *listing.Registry) *KeywordService {
	return &KeywordService{keywordRepo: keywordRepo, userRepo: userRepo, registry: registry}
}

// Replace stores keywords as the user's full keyword set for the category.
// Blank and duplicate keywords are dropped.
func (s *KeywordService) Replace(ctx context.Context, userID uint, category string, keywords []string) ([]string, error) {
	h, err := s.registry.Lookup(category)
	if err != nil {
		return nil, unknownCategory(err)
	}
	if h.KeywordField() == "" {
		return nil, models.NewValidationError("Category does not support keywords")
	}
	ok, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("User", userID)
	}

	seen := make(map[string]bool, len(keywords))
	clean := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		if err := validation.ValidateKeyword(k); err != nil {
			return nil, models.NewValidationError("Invalid keyword: " + err.Error())
		}
		seen[k] = true
		clean = append(clean, k)
	}
	if len(clean) > maxKeywords {
		return nil, models.NewValidationError("Too many keywords (max 20)")
	}

	if err := s.keywordRepo.Replace(ctx, userID, string(h.Category()), clean); err != nil {
		return nil, err
	}
	return clean, nil
}

// List returns the user's keywords for the category.
func (s *KeywordService) List(ctx context.Context, userID uint, category string) ([]string, error) {
	h, err := s.registry.Lookup(category)
	if err != nil {
		return nil, unknownCategory(err)
	}
	return s.keywordRepo.List(ctx, userID, string(h.Category()))
}
