// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"careerhub/internal/listing"
	"careerhub/internal/models"
	"careerhub/internal/repository"
)

// ListingStoreStub is an in-memory listing store. Find ignores the filter and
// returns records in insertion order; the last query is kept for assertions.
type ListingStoreStub struct {
	mu        sync.Mutex
	items     map[listing.Category][]listing.Record
	LastQuery *repository.ListingQuery
	Finds     int
	Samples   int
	Indexed   map[listing.Category][]map[string]any
	rotation  map[listing.Category]int
}

// NewListingStoreStub creates an empty in-memory listing store.
func NewListingStoreStub() *ListingStoreStub {
	return &ListingStoreStub{
		items:    make(map[listing.Category][]listing.Record),
		Indexed:  make(map[listing.Category][]map[string]any),
		rotation: make(map[listing.Category]int),
	}
}

// Add stores records under category c.
func (s *ListingStoreStub) Add(c listing.Category, recs ...listing.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c] = append(s.items[c], recs...)
}

// Find returns a copy of the stored page window.
func (s *ListingStoreStub) Find(_ context.Context, h listing.Handler, q repository.ListingQuery) ([]listing.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Finds++
	s.LastQuery = &q

	recs := s.items[h.Category()]
	if q.Skip >= len(recs) {
		return []listing.Record{}, nil
	}
	recs = recs[q.Skip:]
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[:q.Limit]
	}
	return append([]listing.Record(nil), recs...), nil
}

// Count returns the number of stored records of the category.
func (s *ListingStoreStub) Count(_ context.Context, h listing.Handler, f listing.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastQuery = &repository.ListingQuery{Filter: f}
	return int64(len(s.items[h.Category()])), nil
}

// FindByIDAndIncrementView increments the stored "view" of the matching record.
func (s *ListingStoreStub) FindByIDAndIncrementView(_ context.Context, h listing.Handler, id string) (listing.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.items[h.Category()] {
		if fmt.Sprint(rec["id"]) != id {
			continue
		}
		view, _ := rec["view"].(int)
		rec["view"] = view + 1
		out := make(listing.Record, len(rec))
		for k, v := range rec {
			out[k] = v
		}
		return out, nil
	}
	return nil, models.NewNotFoundError(string(h.Category()), id)
}

// Sample rotates through the stored records of a category so consecutive calls differ.
func (s *ListingStoreStub) Sample(_ context.Context, h listing.Handler) (listing.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.items[h.Category()]
	if len(recs) == 0 {
		return nil, false, nil
	}
	rec := recs[s.rotation[h.Category()]%len(recs)]
	s.rotation[h.Category()]++
	s.Samples++
	return rec, true, nil
}

// Index records the document and assigns it a sequential id.
func (s *ListingStoreStub) Index(_ context.Context, h listing.Handler, doc map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Indexed[h.Category()] = append(s.Indexed[h.Category()], doc)
	return fmt.Sprintf("doc-%d", len(s.Indexed[h.Category()])), nil
}
