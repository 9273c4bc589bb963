// Command main runs the database seeder for CareerHub.
package main

import (
	"context"
	"flag"
	"log"

	"careerhub/internal/bootstrap"
	"careerhub/internal/config"
	"careerhub/internal/listing"
	"careerhub/internal/repository"
	"careerhub/internal/seed"
	"careerhub/internal/service"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of community posts to create")
	numComments := flag.Int("comments", defaults.NumComments, "Number of comments to create")
	numLanguages := flag.Int("languages", defaults.NumLanguages, "Number of language exams to create")
	numQnets := flag.Int("qnets", defaults.NumQnets, "Number of certifications to create")
	numListings := flag.Int("listings", defaults.NumListings, "Number of crawled listings per search category")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	withSearch := flag.Bool("search", true, "Also index crawled listings into the search index")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{Search: *withSearch})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	var index repository.SearchIndexer
	if rt.Search != nil {
		index = repository.NewSearchStore(rt.Search)
	} else {
		*numListings = 0
	}
	registry := listing.NewRegistry(listing.Options{QnetImage: cfg.QnetImage})
	ingest := service.NewIngestService(registry, index, repository.NewExamRepository(rt.DB))

	opts := seed.Options{
		NumUsers:     *numUsers,
		NumPosts:     *numPosts,
		NumComments:  *numComments,
		NumLanguages: *numLanguages,
		NumQnets:     *numQnets,
		NumListings:  *numListings,
		ShouldClean:  *shouldClean,
		DryRun:       *dryRun,
		MaxDays:      defaults.MaxDays,
	}
	sum, err := seed.NewSeeder(rt.DB, ingest, opts).Seed(context.Background())
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! users=%d posts=%d comments=%d likes=%d languages=%d qnets=%d",
		sum.Users, sum.Posts, sum.Comments, sum.Likes, sum.Languages, sum.Qnets)
}
