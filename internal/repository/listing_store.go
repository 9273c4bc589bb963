package repository

import (
	"context"

	"careerhub/internal/listing"
)

// ListingQuery is a resolved listing search: filter, ordering and page window.
type ListingQuery struct {
	Filter listing.Filter
	Sort   listing.Sort
	Skip   int
	Limit  int
}

// ListingStore is implemented once per listing backend.
type ListingStore interface {
	Find(ctx context.Context, h listing.Handler, q ListingQuery) ([]listing.Record, error)
	Count(ctx context.Context, h listing.Handler, f listing.Filter) (int64, error)
	// FindByIDAndIncrementView bumps the view counter by one and returns the
	// updated record, or a NOT_FOUND AppError.
	FindByIDAndIncrementView(ctx context.Context, h listing.Handler, id string) (listing.Record, error)
	// Sample returns one record chosen at random; false when the category is empty.
	Sample(ctx context.Context, h listing.Handler) (listing.Record, bool, error)
}
