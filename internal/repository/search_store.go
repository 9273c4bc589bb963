package repository

import (
	"context"
	"errors"
	"fmt"

	"careerhub/internal/listing"
	"careerhub/internal/models"
	"careerhub/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SearchIndexer writes crawled documents into the search index.
type SearchIndexer interface {
	Index(ctx context.Context, h listing.Handler, doc map[string]any) (string, error)
}

// SearchStore is the listing store over the document search index; it also indexes.
type SearchStore interface {
	ListingStore
	SearchIndexer
}

type searchStore struct {
	db  *mongo.Database
	log *observability.RepoLogger
}

// NewSearchStore returns the store over one MongoDB collection per category.
func NewSearchStore(db *mongo.Database) SearchStore {
	return &searchStore{db: db, log: observability.NewRepoLogger("listings_search")}
}

func (s *searchStore) collection(h listing.Handler) (*mongo.Collection, error) {
	if h.Backend() != listing.BackendSearch {
		return nil, ErrUnsupportedCategory
	}
	return s.db.Collection(h.Collection()), nil
}

func (s *searchStore) trace(ctx context.Context, h listing.Handler, op string) (context.Context, func(error)) {
	done := observability.TrackListingQuery(string(h.Category()), listing.BackendSearch.String(), op)
	ctx, span := observability.GetTraceLayer().TraceSearchOperation(ctx, op, h.Collection())
	return ctx, func(err error) {
		done()
		observability.EndSpan(span, err)
		if err != nil && !models.IsCode(err, models.CodeNotFound) {
			s.log.LogError(ctx, err, op)
		}
	}
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]listing.Record, error) {
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]listing.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, toRecord(d))
	}
	return out, nil
}

func (s *searchStore) Find(ctx context.Context, h listing.Handler, q ListingQuery) (recs []listing.Record, err error) {
	ctx, end := s.trace(ctx, h, "find")
	defer func() { end(err) }()
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("listing.predicates", q.Filter.Len()))

	coll, err := s.collection(h)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(sortBSON(q.Sort)).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))
	cur, err := coll.Find(ctx, compileBSON(q.Filter), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cur)
}

func (s *searchStore) Count(ctx context.Context, h listing.Handler, f listing.Filter) (n int64, err error) {
	ctx, end := s.trace(ctx, h, "count")
	defer func() { end(err) }()
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("listing.predicates", f.Len()))

	coll, err := s.collection(h)
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, compileBSON(f))
}

func (s *searchStore) FindByIDAndIncrementView(ctx context.Context, h listing.Handler, id string) (rec listing.Record, err error) {
	ctx, end := s.trace(ctx, h, "detail")
	defer func() { end(err) }()

	coll, err := s.collection(h)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"view": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError(string(h.Category()), id)
	}
	if err != nil {
		return nil, err
	}
	s.log.LogUpdate(ctx, map[string]any{"category": h.Category(), "id": id, "view": doc["view"]})
	return toRecord(doc), nil
}

func (s *searchStore) Sample(ctx context.Context, h listing.Handler) (rec listing.Record, ok bool, err error) {
	ctx, end := s.trace(ctx, h, "sample")
	defer func() { end(err) }()

	coll, err := s.collection(h)
	if err != nil {
		return nil, false, err
	}
	cur, err := coll.Aggregate(ctx, mongo.Pipeline{{{Key: "$sample", Value: bson.M{"size": 1}}}})
	if err != nil {
		return nil, false, err
	}
	recs, err := decodeAll(ctx, cur)
	if err != nil || len(recs) == 0 {
		return nil, false, err
	}
	return recs[0], true, nil
}

// Index stores doc under a new string id. Crawled documents start with no views or scraps.
func (s *searchStore) Index(ctx context.Context, h listing.Handler, doc map[string]any) (id string, err error) {
	ctx, end := s.trace(ctx, h, "index")
	defer func() { end(err) }()

	coll, err := s.collection(h)
	if err != nil {
		return "", err
	}
	id = primitive.NewObjectID().Hex()
	stored := bson.M{"_id": id, "view": 0, "scrap": 0}
	for k, v := range doc {
		if k == "_id" || k == "id" || k == "view" || k == "scrap" {
			continue
		}
		stored[k] = v
	}
	if _, err := coll.InsertOne(ctx, stored); err != nil {
		return "", err
	}
	s.log.LogCreate(ctx, map[string]any{"category": h.Category(), "id": id})
	return id, nil
}

// EnsureSearchIndexes creates the view ordering index and the keyword field index
// on the collection of every search-backed category in handlers.
func EnsureSearchIndexes(ctx context.Context, db *mongo.Database, handlers []listing.Handler) error {
	for _, h := range handlers {
		if h.Backend() != listing.BackendSearch {
			continue
		}
		indexes := []mongo.IndexModel{
			{Keys: bson.D{{Key: "view", Value: -1}, {Key: "_id", Value: -1}}},
		}
		if field := h.KeywordField(); field != "" {
			indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}})
		}
		if _, err := db.Collection(h.Collection()).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes for %s: %w", h.Collection(), err)
		}
	}
	return nil
}
