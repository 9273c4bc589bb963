// Package listing implements the crawling listing categories: which fields each
// category exposes, how raw query parameters become a store filter, and how raw
// records are reshaped into the uniform listing contract.
package listing

import (
	"errors"
	"fmt"
)

// Category identifies a listing domain.
type Category string

const (
	Outside     Category = "outside"
	Intern      Category = "intern"
	Competition Category = "competition"
	Language    Category = "language"
	Qnet        Category = "qnet"
	Community   Category = "community"
)

// ErrUnknownCategory is returned by Lookup for keys outside the closed category set.
var ErrUnknownCategory = errors.New("unknown category")

// View selects which projection of a category is returned.
type View int

const (
	ViewList View = iota
	ViewBest
	ViewRandom
	ViewDetail
)

// Backend names the store that holds a category's records.
type Backend int

const (
	BackendSearch Backend = iota + 1
	BackendSQL
	BackendCommunity
)

func (b Backend) String() string {
	switch b {
	case BackendSearch:
		return "search"
	case BackendSQL:
		return "sql"
	case BackendCommunity:
		return "community"
	default:
		return "unknown"
	}
}

// Sort is the fixed ordering of a category's listing queries.
type Sort struct {
	Field string
	Desc  bool
}

// Record is a raw stored record keyed by field name.
type Record map[string]any

// Listing is a normalized record holding only the fields allowed for its view.
type Listing map[string]any

// Handler is implemented once per category.
type Handler interface {
	Category() Category
	Backend() Backend
	// Collection is the search index collection or relational table name.
	Collection() string
	// Projection is the ordered allow-list of fields for a view. It always starts with "id".
	Projection(view View) []string
	// Field resolves a filter parameter into the store field it filters on.
	Field(param string) (string, bool)
	// KeywordField is the parameter a user's saved keywords are injected into.
	KeywordField() string
	Sort() Sort
	// Translate turns raw query parameters into a filter. It never fails.
	Translate(params map[string]string) Filter
	// Normalize derives the view's computed fields and applies its projection.
	Normalize(rec Record, view View) Listing
}

// Options carries configuration the handlers need at normalization time.
type Options struct {
	QnetImage string
}

// Registry resolves category keys to their handlers.
type Registry struct {
	handlers map[Category]Handler
}

// All lists every category in a stable order.
func All() []Category {
	return []Category{Outside, Intern, Competition, Language, Qnet, Community}
}

// NewRegistry builds the handler set for every category.
func NewRegistry(opts Options) *Registry {
	r := &Registry{handlers: make(map[Category]Handler, len(All()))}
	for _, h := range []Handler{
		newLinkareer(Outside, "field"),
		newIntern(),
		newLinkareer(Competition, "interests"),
		languageHandler{},
		qnetHandler{image: opts.QnetImage},
		communityHandler{},
	} {
		r.handlers[h.Category()] = h
	}
	return r
}

// Lookup returns the handler for key, or ErrUnknownCategory.
func (r *Registry) Lookup(key string) (Handler, error) {
	h, ok := r.handlers[Category(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return h, nil
}

// Must returns the handler of a known category and panics otherwise.
func (r *Registry) Must(c Category) Handler {
	h, err := r.Lookup(string(c))
	if err != nil {
		panic(err)
	}
	return h
}
