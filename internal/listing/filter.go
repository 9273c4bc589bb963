package listing

import (
	"sort"
	"strconv"
	"strings"
)

// PageSize is the fixed number of listings per page.
const PageSize = 12

// Match is the comparison a predicate applies.
type Match int

const (
	MatchEquals Match = iota + 1
	MatchContains
	MatchRange
)

func (m Match) String() string {
	switch m {
	case MatchEquals:
		return "equals"
	case MatchContains:
		return "contains"
	case MatchRange:
		return "range"
	default:
		return "unknown"
	}
}

// Predicate is one store-agnostic condition. Range predicates use Min and, when
// set, Max; the others compare against Value.
type Predicate struct {
	Field string
	Match Match
	Value string
	Min   float64
	Max   *float64
}

// Logic combines the members of a Filter.
type Logic int

const (
	LogicAnd Logic = iota + 1
	LogicOr
)

// Filter is a tree of predicates. Predicates and Groups are siblings joined by Logic.
type Filter struct {
	Logic      Logic
	Predicates []Predicate
	Groups     []Filter
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	if len(f.Predicates) > 0 {
		return false
	}
	for _, g := range f.Groups {
		if !g.Empty() {
			return false
		}
	}
	return true
}

// Len counts every predicate in the tree.
func (f Filter) Len() int {
	n := len(f.Predicates)
	for _, g := range f.Groups {
		n += g.Len()
	}
	return n
}

var reserved = map[string]struct{}{
	"path":  {},
	"page":  {},
	"count": {},
}

// IsReserved reports whether a query parameter steers the request rather than filtering it.
func IsReserved(param string) bool {
	_, ok := reserved[param]
	return ok
}

// Translate builds the store filter of a category from raw query parameters.
// Reserved and unknown parameters are ignored.
func Translate(h Handler, params map[string]string) Filter {
	return h.Translate(params)
}

type paramGroup struct {
	param string
	preds []Predicate
}

func always(m Match) func(string) Match {
	return func(string) Match { return m }
}

// collect turns every whitelisted parameter into its predicates, one group per
// parameter, in parameter name order.
func collect(h Handler, params map[string]string, matchFor func(param string) Match) []paramGroup {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var groups []paramGroup
	for _, param := range keys {
		if IsReserved(param) {
			continue
		}
		field, ok := h.Field(param)
		if !ok {
			continue
		}
		raw := params[param]

		var preds []Predicate
		if param == "scale" {
			if strings.TrimSpace(raw) != "" {
				preds = append(preds, scalePredicate(field, raw))
			}
		} else {
			for _, v := range splitValues(raw) {
				preds = append(preds, Predicate{Field: field, Match: matchFor(param), Value: v})
			}
		}
		if len(preds) > 0 {
			groups = append(groups, paramGroup{param: param, preds: preds})
		}
	}
	return groups
}

func flatten(groups []paramGroup) []Predicate {
	var out []Predicate
	for _, g := range groups {
		out = append(out, g.preds...)
	}
	return out
}

func hasGroup(groups []paramGroup, param string) bool {
	for _, g := range groups {
		if g.param == param {
			return true
		}
	}
	return false
}

// scalePredicate reads "A" as a lower bound and "A,B" as an inclusive range.
// An empty B leaves the range open above.
func scalePredicate(field, raw string) Predicate {
	p := Predicate{Field: field, Match: MatchRange}
	lo, hi, _ := strings.Cut(raw, ",")
	p.Min = parseNumber(lo)
	if strings.TrimSpace(hi) != "" {
		upper := parseNumber(hi)
		p.Max = &upper
	}
	return p
}

func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return n
}

func splitValues(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Page is a resolved page window.
type Page struct {
	Number int
	Skip   int
	Limit  int
}

// ParsePage resolves a 1-based page number. Missing or invalid input means page 1.
func ParsePage(raw string) Page {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		n = 1
	}
	return Page{Number: n, Skip: (n - 1) * PageSize, Limit: PageSize}
}
