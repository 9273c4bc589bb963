package repository

import (
	"regexp"
	"time"

	"careerhub/internal/listing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// compileBSON renders a filter as a MongoDB query document. An empty filter matches everything.
func compileBSON(f listing.Filter) bson.M {
	clauses := make(bson.A, 0, len(f.Predicates)+len(f.Groups))
	for _, p := range f.Predicates {
		clauses = append(clauses, predicateBSON(p))
	}
	for _, g := range f.Groups {
		if g.Empty() {
			continue
		}
		clauses = append(clauses, compileBSON(g))
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0].(bson.M)
	}
	op := "$and"
	if f.Logic == listing.LogicOr {
		op = "$or"
	}
	return bson.M{op: clauses}
}

func predicateBSON(p listing.Predicate) bson.M {
	switch p.Match {
	case listing.MatchContains:
		return bson.M{p.Field: bson.M{"$regex": regexp.QuoteMeta(p.Value), "$options": "i"}}
	case listing.MatchRange:
		bounds := bson.M{"$gte": p.Min}
		if p.Max != nil {
			bounds["$lte"] = *p.Max
		}
		return bson.M{p.Field: bounds}
	default:
		return bson.M{p.Field: p.Value}
	}
}

func sortBSON(s listing.Sort) bson.D {
	dir := 1
	if s.Desc {
		dir = -1
	}
	return bson.D{{Key: s.Field, Value: dir}, {Key: "_id", Value: dir}}
}

// toRecord converts a decoded document into plain Go values; "_id" becomes "id".
func toRecord(doc bson.M) listing.Record {
	rec := make(listing.Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			k = "id"
		}
		rec[k] = plain(v)
	}
	return rec
}

func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = plain(e)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, 0, len(t))
		for _, e := range t {
			out = append(out, plain(e))
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC()
	default:
		return v
	}
}
