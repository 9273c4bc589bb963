package seed

import (
	"context"
	"fmt"
	"log"

	"careerhub/internal/cache"
	"careerhub/internal/listing"
	"careerhub/internal/models"
	"careerhub/internal/repository"
	"careerhub/internal/service"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	NumPosts     int
	NumComments  int
	NumLanguages int
	NumQnets     int
	// NumListings is the number of crawled documents per search category.
	NumListings int
	ShouldClean bool
	DryRun      bool
	MaxDays     int
	// RandSeed fixes the generated data; zero seeds from the clock.
	RandSeed int64
}

// DefaultOptions returns the sizes used by cmd/seed.
func DefaultOptions() Options {
	return Options{
		NumUsers:     10,
		NumPosts:     40,
		NumComments:  80,
		NumLanguages: 20,
		NumQnets:     20,
		NumListings:  30,
		MaxDays:      60,
	}
}

// Summary reports what a seed run created.
type Summary struct {
	Users     int
	Posts     int
	Comments  int
	Likes     int
	Languages int
	Qnets     int
	Listings  map[listing.Category]int
}

// Seeder writes demo data. Exams and crawled listings go through the ingest
// service so they are stored exactly like ingested records.
type Seeder struct {
	db        *gorm.DB
	factory   *Factory
	community repository.CommunityRepository
	ingest    *service.IngestService
	opts      Options
}

// NewSeeder builds a Seeder. A nil ingest service skips exams and listings.
func NewSeeder(db *gorm.DB, ingest *service.IngestService, opts Options) *Seeder {
	return &Seeder{
		db:        db,
		factory:   NewFactory(db, opts),
		community: repository.NewCommunityRepository(db),
		ingest:    ingest,
		opts:      opts,
	}
}

// Seed populates the database and search index with demo data.
func (s *Seeder) Seed(ctx context.Context) (*Summary, error) {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)
	sum := &Summary{Listings: make(map[listing.Category]int)}

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := clearData(s.db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
		// Cached picks may point at cleared rows.
		for _, c := range service.RandomPickCategories {
			cache.InvalidateRandomPick(ctx, string(c))
		}
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	if len(users) > 0 {
		if err := s.seedCommunity(ctx, users, sum); err != nil {
			return nil, err
		}
	}

	if s.ingest != nil && !s.opts.DryRun {
		if err := s.seedExams(ctx, sum); err != nil {
			return nil, err
		}
		if err := s.seedListings(ctx, sum); err != nil {
			return nil, err
		}
	}

	log.Println("✅ Database seeding completed successfully!")
	return sum, nil
}

func (s *Seeder) seedCommunity(ctx context.Context, users []*models.User, sum *Summary) error {
	posts := make([]*models.Community, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[s.factory.rand.Intn(len(users))]
		posts = append(posts, s.factory.BuildCommunityPost(author))
	}
	if err := s.factory.CreateCommunityPostsBatch(posts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	sum.Posts = len(posts)
	log.Printf("✓ %d community posts created", sum.Posts)

	if s.opts.DryRun || len(posts) == 0 {
		return nil
	}

	for i := 0; i < s.opts.NumComments; i++ {
		post := posts[s.factory.rand.Intn(len(posts))]
		author := users[s.factory.rand.Intn(len(users))]
		if err := s.community.CreateComment(ctx, s.factory.BuildComment(author, post)); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		sum.Comments++
	}

	// Every user likes a few posts; toggling keeps like_count in step.
	for _, u := range users {
		for _, idx := range s.factory.rand.Perm(len(posts))[:min(3, len(posts))] {
			liked, err := s.community.ToggleLike(ctx, u.ID, posts[idx].ID)
			if err != nil {
				return fmt.Errorf("failed to like post: %w", err)
			}
			if liked {
				sum.Likes++
			}
		}
	}
	log.Printf("✓ %d comments and %d likes created", sum.Comments, sum.Likes)
	return nil
}

func (s *Seeder) seedExams(ctx context.Context, sum *Summary) error {
	for i := 0; i < s.opts.NumLanguages; i++ {
		if _, err := s.ingest.IndexLanguage(ctx, s.factory.BuildLanguage()); err != nil {
			return fmt.Errorf("failed to create language exam: %w", err)
		}
		sum.Languages++
	}
	for i := 0; i < s.opts.NumQnets; i++ {
		if _, err := s.ingest.IndexQnet(ctx, s.factory.BuildQnet()); err != nil {
			return fmt.Errorf("failed to create certification: %w", err)
		}
		sum.Qnets++
	}
	log.Printf("✓ %d language exams and %d certifications created", sum.Languages, sum.Qnets)
	return nil
}

func (s *Seeder) seedListings(ctx context.Context, sum *Summary) error {
	for _, c := range []listing.Category{listing.Outside, listing.Intern, listing.Competition} {
		for i := 0; i < s.opts.NumListings; i++ {
			if _, err := s.ingest.IndexLinkareer(ctx, s.factory.BuildLinkareer(c)); err != nil {
				return fmt.Errorf("failed to index %s listing: %w", c, err)
			}
			sum.Listings[c]++
		}
		log.Printf("✓ %d %s listings indexed", sum.Listings[c], c)
	}
	return nil
}

// clearData removes seeded rows, children first.
func clearData(db *gorm.DB) error {
	tables := []string{
		"comment_likes", "community_likes", "comments", "communities",
		"user_keywords", "qnets", "sub_categories", "main_categories", "languages", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	log.Println("✓ Cleared existing data")
	return nil
}
