package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"careerhub/internal/listing"
	"careerhub/internal/models"
	"careerhub/internal/observability"

	"gorm.io/gorm"
)

// ErrUnsupportedCategory is returned when a store is asked for a category it does not hold.
var ErrUnsupportedCategory = errors.New("category not held by this store")

type sqlStore struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewSQLStore returns the ListingStore over the relational language and qnet tables.
func NewSQLStore(db *gorm.DB) ListingStore {
	return &sqlStore{db: db, log: observability.NewRepoLogger("listings_sql")}
}

func (s *sqlStore) base(db *gorm.DB, h listing.Handler) (*gorm.DB, error) {
	switch h.Category() {
	case listing.Language:
		return db.Model(&models.Language{}), nil
	case listing.Qnet:
		return db.Model(&models.Qnet{}).
			Joins("JOIN sub_categories ON sub_categories.id = qnets.sub_category_id").
			Joins("JOIN main_categories ON main_categories.id = sub_categories.main_category_id"), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCategory, h.Category())
	}
}

func applyFilter(q *gorm.DB, f listing.Filter) *gorm.DB {
	if where, args := compileSQL(f); where != "" {
		return q.Where(where, args...)
	}
	return q
}

// load runs q and converts the rows of the category into records.
func (s *sqlStore) load(q *gorm.DB, h listing.Handler) ([]listing.Record, error) {
	switch h.Category() {
	case listing.Language:
		var rows []models.Language
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]listing.Record, 0, len(rows))
		for i := range rows {
			out = append(out, rows[i].Record())
		}
		return out, nil
	case listing.Qnet:
		var rows []models.Qnet
		if err := q.Select("qnets.*").Preload("SubCategory.MainCategory").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]listing.Record, 0, len(rows))
		for i := range rows {
			out = append(out, rows[i].Record())
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCategory, h.Category())
	}
}

func (s *sqlStore) trace(ctx context.Context, h listing.Handler, op string) (context.Context, func(error)) {
	done := observability.TrackListingQuery(string(h.Category()), listing.BackendSQL.String(), op)
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, op, h.Collection())
	return ctx, func(err error) {
		done()
		observability.EndSpan(span, err)
		if err != nil {
			s.log.LogError(ctx, err, op)
		}
	}
}

func (s *sqlStore) Find(ctx context.Context, h listing.Handler, lq ListingQuery) (recs []listing.Record, err error) {
	ctx, end := s.trace(ctx, h, "find")
	defer func() { end(err) }()

	q, err := s.base(s.db.WithContext(ctx), h)
	if err != nil {
		return nil, err
	}
	q = applyFilter(q, lq.Filter).
		Order(orderSQL(h.Collection(), lq.Sort)).
		Offset(lq.Skip).
		Limit(lq.Limit)
	return s.load(q, h)
}

func (s *sqlStore) Count(ctx context.Context, h listing.Handler, f listing.Filter) (n int64, err error) {
	ctx, end := s.trace(ctx, h, "count")
	defer func() { end(err) }()

	q, err := s.base(s.db.WithContext(ctx), h)
	if err != nil {
		return 0, err
	}
	err = applyFilter(q, f).Count(&n).Error
	return n, err
}

func (s *sqlStore) FindByIDAndIncrementView(ctx context.Context, h listing.Handler, id string) (rec listing.Record, err error) {
	ctx, end := s.trace(ctx, h, "detail")
	defer func() {
		if models.IsCode(err, models.CodeNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	rowID, convErr := strconv.ParseUint(id, 10, 64)
	if convErr != nil {
		return nil, models.NewNotFoundError(string(h.Category()), id)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(h.Collection()).
			Where("id = ?", rowID).
			UpdateColumn("view", gorm.Expr("view + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError(string(h.Category()), id)
		}

		q, err := s.base(tx, h)
		if err != nil {
			return err
		}
		recs, err := s.load(q.Where(h.Collection()+".id = ?", rowID).Limit(1), h)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return models.NewNotFoundError(string(h.Category()), id)
		}
		rec = recs[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.LogUpdate(ctx, map[string]any{"category": h.Category(), "id": rowID, "view": rec["view"]})
	return rec, nil
}

func (s *sqlStore) Sample(ctx context.Context, h listing.Handler) (rec listing.Record, ok bool, err error) {
	ctx, end := s.trace(ctx, h, "sample")
	defer func() { end(err) }()

	q, err := s.base(s.db.WithContext(ctx), h)
	if err != nil {
		return nil, false, err
	}
	recs, err := s.load(q.Order("RANDOM()").Limit(1), h)
	if err != nil || len(recs) == 0 {
		return nil, false, err
	}
	return recs[0], true, nil
}
