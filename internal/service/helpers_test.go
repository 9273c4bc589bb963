package service

import (
	"context"
	"testing"

	"careerhub/internal/listing"
	"careerhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRegistry = listing.NewRegistry(listing.Options{QnetImage: "https://cdn.example.com/qnet.png"})

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	existsFn func(context.Context, uint) (bool, error)
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	return &models.User{ID: id}, nil
}
func (s *userRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *userRepoStub) Create(_ context.Context, _ *models.User) error { return nil }

func knownUsers(ids ...uint) *userRepoStub {
	return &userRepoStub{existsFn: func(_ context.Context, id uint) (bool, error) {
		for _, known := range ids {
			if known == id {
				return true, nil
			}
		}
		return false, nil
	}}
}

// keywordRepoStub is a stub for repository.KeywordRepository.
type keywordRepoStub struct {
	listFn    func(context.Context, uint, string) ([]string, error)
	replaceFn func(context.Context, uint, string, []string) error
}

func (s *keywordRepoStub) List(ctx context.Context, userID uint, path string) ([]string, error) {
	return s.listFn(ctx, userID, path)
}
func (s *keywordRepoStub) Replace(ctx context.Context, userID uint, path string, keywords []string) error {
	return s.replaceFn(ctx, userID, path, keywords)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}
