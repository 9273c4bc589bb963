// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"careerhub/internal/config"
	"careerhub/internal/database"
	"careerhub/internal/listing"
	"careerhub/internal/repository"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <auto|indexes>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0))); cmd {
	case "auto":
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("automigrations applied")
	case "indexes":
		client, db, err := database.ConnectMongo(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		defer func() { _ = client.Disconnect(ctx) }()

		registry := listing.NewRegistry(listing.Options{})
		handlers := make([]listing.Handler, 0, len(listing.All()))
		for _, c := range listing.All() {
			handlers = append(handlers, registry.Must(c))
		}
		if err := repository.EnsureSearchIndexes(ctx, db, handlers); err != nil {
			return err
		}
		log.Println("search indexes ensured")
	default:
		return usage()
	}
	return nil
}
