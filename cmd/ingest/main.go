// Command ingest consumes crawled records from NATS and stores them. With
// -replay it instead publishes the records of a JSON file to the crawling subjects.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"careerhub/internal/bootstrap"
	"careerhub/internal/config"
	"careerhub/internal/ingest"
	"careerhub/internal/listing"
	"careerhub/internal/repository"
	"careerhub/internal/service"
)

func main() {
	replay := flag.String("replay", "", "JSON file with an array of messages to publish instead of consuming")
	category := flag.String("category", "", "category of the replayed messages")
	flag.Parse()

	if err := run(*replay, *category); err != nil {
		log.Fatal(err)
	}
}

func run(replay, category string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.NATSURL == "" {
		return errors.New("NATS_URL is required")
	}

	if replay != "" {
		return publish(cfg, replay, category)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{Search: true, NATS: true, Name: "careerhub-ingest"})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.Close(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	registry := listing.NewRegistry(listing.Options{QnetImage: cfg.QnetImage})
	handlers := make([]listing.Handler, 0, len(listing.All()))
	for _, c := range listing.All() {
		handlers = append(handlers, registry.Must(c))
	}
	if err := repository.EnsureSearchIndexes(context.Background(), rt.Search, handlers); err != nil {
		log.Printf("Search index warning: %v", err)
	}

	svc := service.NewIngestService(registry, repository.NewSearchStore(rt.Search), repository.NewExamRepository(rt.DB))
	consumer := ingest.NewConsumer(rt.NATS, svc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		return err
	}
	log.Println("Ingest consumer running, waiting for messages...")
	<-ctx.Done()

	log.Println("Shutting down ingest consumer...")
	consumer.Stop()
	return nil
}

func publish(cfg *config.Config, path, category string) error {
	c := listing.Category(category)
	valid := false
	for _, known := range listing.All() {
		valid = valid || (known == c && c != listing.Community)
	}
	if !valid {
		return fmt.Errorf("unknown category %q", category)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var messages []json.RawMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	nc, err := ingest.Connect(cfg.NATSURL, "careerhub-replay")
	if err != nil {
		return err
	}
	defer nc.Close()

	pub := ingest.NewPublisher(nc)
	for _, m := range messages {
		if err := pub.Publish(context.Background(), c, m); err != nil {
			return err
		}
	}
	if err := pub.Flush(); err != nil {
		return err
	}
	log.Printf("Published %d messages to %s", len(messages), ingest.Subject(c))
	return nil
}
