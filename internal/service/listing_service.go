package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"careerhub/internal/cache"
	"careerhub/internal/listing"
	"careerhub/internal/models"
	"careerhub/internal/observability"
	"careerhub/internal/repository"

	"golang.org/x/sync/errgroup"
)

// RandomPickCategories are the categories served by RandomPick, in response order.
var RandomPickCategories = []listing.Category{listing.Outside, listing.Competition, listing.Intern, listing.Qnet}

// ReadThroughCache serves a key from the cache or fills it through fetch.
type ReadThroughCache interface {
	Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch cache.Fetch) (bool, error)
}

// ListingService answers the crawling listing queries over the search and relational stores.
type ListingService struct {
	registry  *listing.Registry
	stores    map[listing.Backend]repository.ListingStore
	keywords  repository.KeywordRepository
	community *CommunityService
	cache     ReadThroughCache
	randomTTL time.Duration
}

type FindManyInput struct {
	Category string
	Params   map[string]string
	Page     string
	// Count asks for the number of matches instead of a page of listings.
	Count bool
}

type FindManyResult struct {
	Listings []listing.Listing
	Total    int64
}

func NewListingService(
	registry *listing.Registry,
	search repository.ListingStore,
	sql repository.ListingStore,
	keywords repository.KeywordRepository,
	community *CommunityService,
	rc ReadThroughCache,
	randomTTL time.Duration,
) *ListingService {
	if rc == nil {
		rc = cache.NewReadThrough(nil)
	}
	if randomTTL <= 0 {
		randomTTL = cache.RandomPickTTL
	}
	return &ListingService{
		registry: registry,
		stores: map[listing.Backend]repository.ListingStore{
			listing.BackendSearch: search,
			listing.BackendSQL:    sql,
		},
		keywords:  keywords,
		community: community,
		cache:     rc,
		randomTTL: randomTTL,
	}
}

func unknownCategory(err error) error {
	return &models.AppError{Code: models.CodeValidation, Message: "Unknown category", Err: err}
}

// resolve finds the handler and store of a listing category.
func (s *ListingService) resolve(category string) (listing.Handler, repository.ListingStore, error) {
	h, err := s.registry.Lookup(category)
	if err != nil {
		return nil, nil, unknownCategory(err)
	}
	store, ok := s.stores[h.Backend()]
	if !ok || store == nil {
		return nil, nil, models.NewValidationError(fmt.Sprintf("Category %s has no listings", category))
	}
	return h, store, nil
}

func (s *ListingService) FindMany(ctx context.Context, in FindManyInput) (*FindManyResult, error) {
	h, store, err := s.resolve(in.Category)
	if err != nil {
		return nil, err
	}
	f := listing.Translate(h, in.Params)

	if in.Count {
		n, err := store.Count(ctx, h, f)
		if err != nil {
			return nil, err
		}
		return &FindManyResult{Total: n}, nil
	}

	page := listing.ParsePage(in.Page)
	recs, err := store.Find(ctx, h, repository.ListingQuery{
		Filter: f,
		Sort:   h.Sort(),
		Skip:   page.Skip,
		Limit:  page.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := listing.NormalizeAll(h, recs, listing.ViewList)
	return &FindManyResult{Listings: out, Total: int64(len(out))}, nil
}

// FindOne returns the detail view of a listing and counts the view.
func (s *ListingService) FindOne(ctx context.Context, category, id string) (listing.Listing, error) {
	h, store, err := s.resolve(category)
	if err != nil {
		return nil, err
	}
	rec, err := store.FindByIDAndIncrementView(ctx, h, id)
	if err != nil {
		return nil, err
	}
	return listing.Normalize(h, rec, listing.ViewDetail), nil
}

// FindByUserKeyword narrows FindMany to the user's saved keywords of the category.
// A user without keywords gets an empty result and no query is issued.
func (s *ListingService) FindByUserKeyword(ctx context.Context, userID uint, in FindManyInput) (*FindManyResult, error) {
	h, _, err := s.resolve(in.Category)
	if err != nil {
		return nil, err
	}
	keywords, err := s.keywords.List(ctx, userID, string(h.Category()))
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return &FindManyResult{Listings: []listing.Listing{}}, nil
	}

	params := make(map[string]string, len(in.Params)+1)
	for k, v := range in.Params {
		params[k] = v
	}
	field := h.KeywordField()
	injected := strings.Join(keywords, ",")
	if existing := strings.TrimSpace(params[field]); existing != "" {
		injected = existing + "," + injected
	}
	params[field] = injected
	in.Params = params
	return s.FindMany(ctx, in)
}

// BestOf returns the most viewed listings of a category. The community
// pseudo-category lists the community board instead.
func (s *ListingService) BestOf(ctx context.Context, category string) ([]listing.Listing, error) {
	if category == string(listing.Community) {
		return s.bestCommunity(ctx)
	}

	h, store, err := s.resolve(category)
	if err != nil {
		return nil, err
	}
	recs, err := store.Find(ctx, h, repository.ListingQuery{
		Sort:  listing.Sort{Field: "view", Desc: true},
		Limit: listing.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return listing.NormalizeAll(h, recs, listing.ViewBest), nil
}

func (s *ListingService) bestCommunity(ctx context.Context) ([]listing.Listing, error) {
	h := s.registry.Must(listing.Community)
	posts, err := s.community.FindMany(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]listing.Listing, 0, len(posts))
	for _, p := range posts {
		out = append(out, listing.Normalize(h, p.Record(), listing.ViewBest))
	}
	return out, nil
}

// RandomPick returns one random listing per RandomPickCategories entry, keyed by
// category. Picks are cached per category; an empty category maps to nil and is
// not cached.
func (s *ListingService) RandomPick(ctx context.Context) (map[string]listing.Listing, error) {
	var mu sync.Mutex
	out := make(map[string]listing.Listing, len(RandomPickCategories))

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range RandomPickCategories {
		c := c
		g.Go(func() error {
			pick, err := s.randomPick(gctx, c)
			if err != nil {
				return fmt.Errorf("random pick %s: %w", c, err)
			}
			mu.Lock()
			out[string(c)] = pick
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ListingService) randomPick(ctx context.Context, c listing.Category) (listing.Listing, error) {
	h, store, err := s.resolve(string(c))
	if err != nil {
		return nil, err
	}

	var pick listing.Listing
	hit, err := s.cache.Aside(ctx, cache.RandomPickKey(string(c)), &pick, s.randomTTL, func(ctx context.Context) (bool, error) {
		rec, ok, err := store.Sample(ctx, h)
		if err != nil || !ok {
			return false, err
		}
		pick = listing.Normalize(h, rec, listing.ViewRandom)
		return true, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		observability.LogAsyncOperationError(ctx, "random_pick", err, map[string]any{"category": c})
		return nil, err
	}

	result := "miss"
	switch {
	case hit:
		result = "hit"
	case pick == nil:
		result = "empty"
	}
	observability.RandomPickCache.WithLabelValues(string(c), result).Inc()
	return pick, nil
}
